package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"storeadmin/internal/apperr"
	"storeadmin/internal/models"
)

type OrderService struct {
	orders OrderStore
	// StrictTransitions enforces the lifecycle table instead of accepting
	// any allowed status regardless of the current one.
	StrictTransitions bool
	// AcceptStatusAliases lets status updates use any letter case and the
	// legacy spellings "canceled" and "new".
	AcceptStatusAliases bool
	Now                 func() time.Time
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{orders: orders, Now: time.Now}
}

// List returns all orders newest first. A non-empty status keeps only orders
// in that status.
func (s *OrderService) List(ctx context.Context, status string) ([]models.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(status) != "" {
		wanted, ok := models.NormalizeStatus(status)
		if !ok {
			return nil, apperr.ErrInvalidStatus
		}
		filtered := make([]models.Order, 0, len(orders))
		for _, order := range orders {
			if current, _ := models.NormalizeStatus(order.Status); current == wanted {
				filtered = append(filtered, order)
			}
		}
		orders = filtered
	}

	sortNewestFirst(orders)
	return orders, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.OrderSummary, error) {
	orders, err := s.ListFullForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, order.Summary())
	}
	return summaries, nil
}

func (s *OrderService) ListFullForUser(ctx context.Context, userID string) ([]models.Order, error) {
	id, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	sortNewestFirst(orders)
	return orders, nil
}

// UpdateStatus validates newStatus against the allow-list and persists it.
// An invalid value leaves the stored order untouched.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) (models.Order, error) {
	parse := models.ParseStatus
	if s.AcceptStatusAliases {
		parse = models.NormalizeStatus
	}
	status, ok := parse(newStatus)
	if !ok {
		log.Printf("[ORDER] [ERROR] invalid status value: %q", newStatus)
		return models.Order{}, fmt.Errorf("%w %q: must be one of %s",
			apperr.ErrInvalidStatus, newStatus, strings.Join(models.OrderStatuses, ", "))
	}
	id, err := parseID("orderId", orderID)
	if err != nil {
		return models.Order{}, err
	}

	if s.StrictTransitions {
		current, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return models.Order{}, err
		}
		if !models.CanTransition(current.Status, status) {
			log.Printf("[ORDER] [ERROR] transition %s -> %s rejected for %s", current.Status, status, id.Hex())
			return models.Order{}, apperr.ErrInvalidTransition
		}
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status, s.Now())
	if err != nil {
		return models.Order{}, err
	}
	log.Printf("[ORDER] [INFO] order %s status set to %s", id.Hex(), status)
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	id, err := parseID("orderId", orderID)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	log.Println("[ORDER] [INFO] order deleted:", id.Hex())
	return nil
}

// CountByStatus folds legacy spellings into the canonical statuses; unknown
// values are kept under their lower-cased name.
func (s *OrderService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	raw, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		counts[status] = 0
	}
	for status, n := range raw {
		normalized, _ := models.NormalizeStatus(status)
		counts[normalized] += n
	}
	return counts, nil
}

func sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
