package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexDef struct {
	collection string
	model      mongo.IndexModel
}

func indexDefs() []indexDef {
	return []indexDef{
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		}},
		{"admins", mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		}},
		{"orders", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		}},
		{"orders", mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		}},
		{"carts", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_unique").SetUnique(true),
		}},
		{"products", mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("createdAt_index"),
		}},
	}
}

// EnsureIndexes creates every index the stores rely on. A failing index is
// logged and the remaining ones are still attempted; the first error is
// returned.
func EnsureIndexes(db *mongo.Database) error {
	var firstErr error
	for _, def := range indexDefs() {
		if err := ensureIndex(db, def); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func ensureIndex(db *mongo.Database, def indexDef) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	name := ""
	if def.model.Options != nil && def.model.Options.Name != nil {
		name = *def.model.Options.Name
	}

	log.Printf("[DB] [INFO] ensuring %s.%s index", def.collection, name)
	if _, err := db.Collection(def.collection).Indexes().CreateOne(ctx, def.model); err != nil {
		log.Printf("[DB] [ERROR] %s.%s index error: %v", def.collection, name, err)
		return err
	}
	return nil
}
