package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"storeadmin/internal/apperr"
)

// wrap maps driver errors onto the shared error vocabulary.
func wrap(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(entity)
	}
	return apperr.Persistence(op, err)
}
