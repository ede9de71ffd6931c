package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"storeadmin/internal/apperr"
	"storeadmin/internal/models"
)

const (
	imageDeleteConcurrency = 8
	imageDeleteTimeout     = 30 * time.Second
)

// ProductInput carries the fields accepted when a product is created.
type ProductInput struct {
	Title           string
	Description     string
	Category        string
	Price           float64
	DiscountedPrice *float64
	Tags            []string
	Sizes           []models.SizeStock
	Colors          []string
	Images          []string
	// Stock is only honoured for products without per-size counts.
	Stock *int
}

// ProductPatch lists the whitelisted fields an update may replace. Nil
// fields are left untouched.
type ProductPatch struct {
	Title           *string
	Description     *string
	Category        *string
	Price           *float64
	DiscountedPrice *float64
	ClearDiscount   bool
	Tags            *[]string
	Sizes           *[]models.SizeStock
	Colors          *[]string
	Images          *[]string
	Stock           *int
}

// AttributeEdit mirrors the incremental edits of the product form.
type AttributeEdit struct {
	AddTags      []string
	RemoveTags   []string
	AddColors    []string
	RemoveColors []string
	UpsertSizes  []models.SizeStock
	RemoveSizes  []string
}

func (e AttributeEdit) empty() bool {
	return len(e.AddTags) == 0 && len(e.RemoveTags) == 0 &&
		len(e.AddColors) == 0 && len(e.RemoveColors) == 0 &&
		len(e.UpsertSizes) == 0 && len(e.RemoveSizes) == 0
}

// DeleteReport describes the asset cleanup that followed a product delete.
type DeleteReport struct {
	Product models.Product
	Removed []string
	Failed  []string
	Skipped []string
}

type CatalogService struct {
	products ProductStore
	objects  ObjectStore
	Now      func() time.Time
}

func NewCatalogService(products ProductStore, objects ObjectStore) *CatalogService {
	return &CatalogService{products: products, objects: objects, Now: time.Now}
}

// ValidateProduct enforces the invariants every stored product must keep.
func ValidateProduct(p models.Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return apperr.Validation("title", "is required")
	}
	if p.Price <= 0 {
		return apperr.Validation("price", "must be greater than 0")
	}
	if p.DiscountedPrice != nil {
		if *p.DiscountedPrice <= 0 {
			return apperr.Validation("discountedPrice", "must be greater than 0")
		}
		if *p.DiscountedPrice >= p.Price {
			return apperr.Validation("discountedPrice", "must be less than price")
		}
	}
	if err := p.Sizes.Validate(); err != nil {
		return apperr.Validation("sizes", err.Error())
	}
	if p.UsesScalarStock() && p.Stock < 0 {
		return apperr.Validation("stock", "must be zero or greater")
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, input ProductInput) (models.Product, error) {
	now := s.Now()
	product := models.Product{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Category:        strings.TrimSpace(input.Category),
		Price:           input.Price,
		DiscountedPrice: input.DiscountedPrice,
		Tags:            models.StringList(input.Tags).Normalize(),
		Sizes:           trimSizes(input.Sizes),
		Colors:          models.StringList(input.Colors).Normalize(),
		Images:          models.StringList(input.Images).Normalize(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if err := ValidateProduct(product); err != nil {
		return models.Product{}, err
	}
	product.Refresh()

	created, err := s.products.Insert(ctx, product)
	if err != nil {
		log.Println("[PRODUCT] [ERROR] create failed:", err)
		return models.Product{}, err
	}
	created.Refresh()
	log.Println("[PRODUCT] [INFO] product created:", created.ID.Hex())
	return created, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return models.Product{}, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	product.Refresh()
	return product, nil
}

// List returns every product. A non-empty search keeps only products whose
// title contains it, ignoring case.
func (s *CatalogService) List(ctx context.Context, search string) ([]models.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Product, 0, len(products))
	for _, product := range products {
		if needle != "" && !strings.Contains(strings.ToLower(product.Title), needle) {
			continue
		}
		product.Refresh()
		out = append(out, product)
	}
	return out, nil
}

func (s *CatalogService) Count(ctx context.Context) (int64, error) {
	return s.products.Count(ctx)
}

func (s *CatalogService) Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return models.Product{}, err
	}
	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}

	updated := applyPatch(existing, patch)
	if err := ValidateProduct(updated); err != nil {
		return models.Product{}, err
	}
	return s.save(ctx, updated)
}

func (s *CatalogService) EditAttributes(ctx context.Context, id string, edit AttributeEdit) (models.Product, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return models.Product{}, err
	}
	if edit.empty() {
		return models.Product{}, apperr.Validation("", "no fields to update")
	}
	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}

	updated := applyAttributeEdit(existing, edit)
	if err := ValidateProduct(updated); err != nil {
		return models.Product{}, err
	}
	return s.save(ctx, updated)
}

func (s *CatalogService) save(ctx context.Context, product models.Product) (models.Product, error) {
	product.UpdatedAt = s.Now()
	product.Refresh()

	saved, err := s.products.Save(ctx, product)
	if err != nil {
		log.Printf("[PRODUCT] [ERROR] update %s failed: %v", product.ID.Hex(), err)
		return models.Product{}, err
	}
	saved.Refresh()
	return saved, nil
}

// Delete removes the product, then deletes each of its images from object
// storage. Image failures are logged and reported but never fail the call.
func (s *CatalogService) Delete(ctx context.Context, id string) (DeleteReport, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return DeleteReport{}, err
	}

	product, err := s.products.Delete(ctx, productID)
	if err != nil {
		return DeleteReport{}, err
	}
	product.Refresh()
	log.Println("[PRODUCT] [INFO] product deleted:", product.ID.Hex())

	report := s.removeImages(ctx, product.Images)
	report.Product = product
	return report, nil
}

func (s *CatalogService) removeImages(ctx context.Context, urls []string) DeleteReport {
	report := DeleteReport{Removed: []string{}, Failed: []string{}, Skipped: []string{}}
	if len(urls) == 0 {
		log.Println("[PRODUCT] [INFO] no images to delete")
		return report
	}

	// The product is already gone, so cleanup outlives a cancelled request.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), imageDeleteTimeout)
	defer cancel()

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(imageDeleteConcurrency)

	for _, raw := range urls {
		key, ok := s.objects.KeyFromURL(raw)
		if !ok {
			log.Printf("[PRODUCT] [WARN] invalid image URL, skipping: %s", raw)
			report.Skipped = append(report.Skipped, raw)
			continue
		}

		g.Go(func() error {
			if err := s.objects.Delete(cleanupCtx, key); err != nil {
				log.Printf("[PRODUCT] [ERROR] failed to delete image %s: %v", key, err)
				captureError(ctx, fmt.Errorf("delete image %s: %w", key, err))
				mu.Lock()
				report.Failed = append(report.Failed, key)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			report.Removed = append(report.Removed, key)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[PRODUCT] [INFO] image cleanup: removed=%d failed=%d skipped=%d",
		len(report.Removed), len(report.Failed), len(report.Skipped))
	return report
}

func applyPatch(p models.Product, patch ProductPatch) models.Product {
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ClearDiscount {
		p.DiscountedPrice = nil
	} else if patch.DiscountedPrice != nil {
		discounted := *patch.DiscountedPrice
		p.DiscountedPrice = &discounted
	}
	if patch.Tags != nil {
		p.Tags = models.StringList(*patch.Tags).Normalize()
	}
	if patch.Sizes != nil {
		p.Sizes = trimSizes(*patch.Sizes)
	}
	if patch.Colors != nil {
		p.Colors = models.StringList(*patch.Colors).Normalize()
	}
	if patch.Images != nil {
		p.Images = models.StringList(*patch.Images).Normalize()
	}
	if patch.Stock != nil && p.UsesScalarStock() {
		p.Stock = *patch.Stock
	}
	return p
}

func applyAttributeEdit(p models.Product, edit AttributeEdit) models.Product {
	p.Tags = append(p.Tags.Without(edit.RemoveTags...), edit.AddTags...).Normalize()
	p.Colors = append(p.Colors.Without(edit.RemoveColors...), edit.AddColors...).Normalize()

	sizes := make(models.SizeList, 0, len(p.Sizes)+len(edit.UpsertSizes))
	drop := make(map[string]struct{}, len(edit.RemoveSizes))
	for _, label := range edit.RemoveSizes {
		drop[strings.TrimSpace(label)] = struct{}{}
	}
	for _, entry := range p.Sizes {
		if _, ok := drop[entry.Size]; ok {
			continue
		}
		sizes = append(sizes, entry)
	}
	for _, entry := range trimSizes(edit.UpsertSizes) {
		if i := sizes.Index(entry.Size); i >= 0 {
			sizes[i] = entry
			continue
		}
		sizes = append(sizes, entry)
	}
	p.Sizes = sizes
	return p
}

func trimSizes(in []models.SizeStock) models.SizeList {
	out := make(models.SizeList, 0, len(in))
	for _, entry := range in {
		out = append(out, models.SizeStock{Size: strings.TrimSpace(entry.Size), Stock: entry.Stock})
	}
	return out
}
