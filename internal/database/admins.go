package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storeadmin/internal/apperr"
	"storeadmin/internal/models"
)

type AdminRepository struct {
	coll *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{coll: db.Collection("admins")}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var admin models.Admin
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&admin); err != nil {
		return models.Admin{}, wrap("admin", "find admin", err)
	}
	return admin, nil
}

// Insert relies on the email_unique index to close the race between the
// existence check and the write.
func (r *AdminRepository) Insert(ctx context.Context, admin models.Admin) (models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	admin.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Admin{}, apperr.ErrEmailTaken
		}
		return models.Admin{}, wrap("admin", "insert admin", err)
	}
	return admin, nil
}
