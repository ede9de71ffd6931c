package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storeadmin/internal/apperr"
)

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] [ERROR] returning %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondServiceError maps the shared error vocabulary onto HTTP statuses.
// Anything unrecognised is a 500 and is reported to Sentry.
func respondServiceError(c *gin.Context, route string, err error) {
	var validation apperr.ValidationError
	switch {
	case errors.As(err, &validation):
		respondWithError(c, http.StatusBadRequest, route, validation.Error())
	case errors.Is(err, apperr.ErrInvalidStatus), errors.Is(err, apperr.ErrEmailTaken):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	case errors.Is(err, apperr.ErrInvalidCredentials):
		respondWithError(c, http.StatusUnauthorized, route, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, err.Error())
	case errors.Is(err, apperr.ErrInvalidTransition):
		respondWithError(c, http.StatusConflict, route, err.Error())
	default:
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		log.Printf("[%s] [ERROR] %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, internalMessage(err))
	}
}

func internalMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrPersistence):
		return "db error"
	case errors.Is(err, apperr.ErrUpstream):
		return "storage error"
	default:
		return "internal server error"
	}
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "gt", "min":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
