package services

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeadmin/internal/apperr"
)

func parseID(field, value string) (primitive.ObjectID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return primitive.NilObjectID, apperr.Validation(field, "is required")
	}
	id, err := primitive.ObjectIDFromHex(trimmed)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(field, "invalid id")
	}
	return id, nil
}
