package database

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storeadmin/internal/models"
)

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection("products")}
}

func (r *ProductRepository) Insert(ctx context.Context, product models.Product) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return models.Product{}, wrap("product", "insert product", err)
	}
	return product, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return models.Product{}, wrap("product", "find product", err)
	}
	return product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, wrap("product", "find products", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			log.Printf("[PRODUCT] [WARN] skipping undecodable product: %v", err)
			continue
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrap("product", "find products", err)
	}
	return products, nil
}

// Save replaces the whitelisted fields and returns the stored document.
func (r *ProductRepository) Save(ctx context.Context, product models.Product) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var saved models.Product
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": product.ID},
		productUpdate(product),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return models.Product{}, wrap("product", "update product", err)
	}
	return saved, nil
}

func productUpdate(p models.Product) bson.M {
	set := bson.M{
		"title":       p.Title,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price,
		"tags":        p.Tags,
		"sizes":       p.Sizes,
		"colors":      p.Colors,
		"images":      p.Images,
		"stock":       p.Stock,
		"updatedAt":   p.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if p.DiscountedPrice != nil {
		set["discountedPrice"] = *p.DiscountedPrice
	} else {
		update["$unset"] = bson.M{"discountedPrice": ""}
	}
	return update
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var deleted models.Product
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return models.Product{}, wrap("product", "delete product", err)
	}
	return deleted, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, wrap("product", "count products", err)
	}
	return n, nil
}
