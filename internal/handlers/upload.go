package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/services"
)

type UploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// RequestUpload hands out a presigned PUT. The client uploads the bytes
// itself and later sends publicUrl as part of the product's images.
func RequestUpload(uploads *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		slot, err := uploads.RequestUploadSlot(c.Request.Context(), req.Filename, req.ContentType)
		if err != nil {
			respondServiceError(c, "UPLOAD", err)
			return
		}
		c.JSON(http.StatusOK, slot)
	}
}
