package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeadmin/internal/models"
)

// Stores return apperr.ErrNotFound for missing documents and wrap driver
// failures with apperr.ErrPersistence.

type ProductStore interface {
	Insert(ctx context.Context, product models.Product) (models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Save(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Count(ctx context.Context) (int64, error)
}

type OrderStore interface {
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// CountByUser groups orders by owner, keyed by the hex user id.
	CountByUser(ctx context.Context) (map[string]int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type UserStore interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Count(ctx context.Context) (int64, error)
}

// CartStore is read-only; carts are written by the storefront.
type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
}

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	Insert(ctx context.Context, admin models.Admin) (models.Admin, error)
}

// ObjectStore is the slice of the object storage client the services use.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(rawURL string) (string, bool)
}
