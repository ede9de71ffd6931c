package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storeadmin/internal/models"
)

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection("orders")}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

// FindByUser also matches orders whose userId was stored as a hex string.
func (r *OrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": bson.M{"$in": bson.A{userID, userID.Hex()}}})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, wrap("order", "find orders", err)
	}
	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, wrap("order", "decode orders", err)
	}
	return orders, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return models.Order{}, wrap("order", "find order", err)
	}
	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		return models.Order{}, wrap("order", "update order status", err)
	}
	return order, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap("order", "delete order", err)
	}
	if res.DeletedCount == 0 {
		return wrap("order", "delete order", mongo.ErrNoDocuments)
	}
	return nil
}

type groupCount struct {
	ID    bson.RawValue `bson:"_id"`
	Count int64         `bson:"count"`
}

func (r *OrderRepository) CountByUser(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "$userId")
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := r.countBy(ctx, "$status")
	if err != nil {
		return nil, err
	}
	lowered := make(map[string]int64, len(counts))
	for status, n := range counts {
		lowered[strings.ToLower(status)] += n
	}
	return lowered, nil
}

func (r *OrderRepository) countBy(ctx context.Context, field string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrap("order", "aggregate orders", err)
	}

	var rows []groupCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, wrap("order", "decode order counts", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[groupKey(row.ID)] += row.Count
	}
	return counts, nil
}

// groupKey renders a $group _id as a map key. ObjectIDs become hex so that
// string and ObjectID references to the same user fold together.
func groupKey(id bson.RawValue) string {
	switch id.Type {
	case bsontype.ObjectID:
		return id.ObjectID().Hex()
	case bsontype.String:
		return id.StringValue()
	default:
		return ""
	}
}
