package services

import (
	"context"
	"errors"

	"storeadmin/internal/apperr"
	"storeadmin/internal/models"
)

type DirectoryService struct {
	users  UserStore
	orders OrderStore
	carts  CartStore
}

func NewDirectoryService(users UserStore, orders OrderStore, carts CartStore) *DirectoryService {
	return &DirectoryService{users: users, orders: orders, carts: carts}
}

// ListUsersWithOrderCounts issues one users query and one grouped count
// instead of a count per user.
func (s *DirectoryService) ListUsersWithOrderCounts(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.orders.CountByUser(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, models.UserSummary{
			UserID:     user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Address:    user.PrimaryAddress(),
			OrderCount: counts[user.ID.Hex()],
		})
	}
	return summaries, nil
}

func (s *DirectoryService) GetUser(ctx context.Context, id string) (models.User, error) {
	userID, err := parseID("userId", id)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	return user, nil
}

func (s *DirectoryService) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

// GetUserCart returns the user's current cart. A user without a cart gets an
// empty one rather than ErrNotFound.
func (s *DirectoryService) GetUserCart(ctx context.Context, id string) (models.Cart, error) {
	userID, err := parseID("userId", id)
	if err != nil {
		return models.Cart{}, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return models.Cart{}, err
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}
