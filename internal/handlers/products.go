package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/models"
	"storeadmin/internal/services"
)

type ProductCreateRequest struct {
	Title           string             `json:"title" binding:"required"`
	Description     string             `json:"description"`
	Category        string             `json:"category"`
	Price           float64            `json:"price" binding:"required,gt=0"`
	DiscountedPrice *float64           `json:"discountedPrice" binding:"omitempty,gt=0"`
	Tags            []string           `json:"tags"`
	Sizes           []models.SizeStock `json:"sizes" binding:"dive"`
	Colors          []string           `json:"colors"`
	Images          []string           `json:"images" binding:"dive,url"`
	Stock           *int               `json:"stock" binding:"omitempty,min=0"`
}

type ProductUpdateRequest struct {
	Title           *string             `json:"title"`
	Description     *string             `json:"description"`
	Category        *string             `json:"category"`
	Price           *float64            `json:"price" binding:"omitempty,gt=0"`
	OnSale          *bool               `json:"onSale"`
	DiscountedPrice *float64            `json:"discountedPrice" binding:"omitempty,min=0"`
	Tags            *[]string           `json:"tags"`
	Sizes           *[]models.SizeStock `json:"sizes" binding:"omitempty,dive"`
	Colors          *[]string           `json:"colors"`
	Images          *[]string           `json:"images" binding:"omitempty,dive,url"`
	Stock           *int                `json:"stock" binding:"omitempty,min=0"`
}

type ProductAttributesRequest struct {
	AddTags      []string           `json:"addTags"`
	RemoveTags   []string           `json:"removeTags"`
	AddColors    []string           `json:"addColors"`
	RemoveColors []string           `json:"removeColors"`
	UpsertSizes  []models.SizeStock `json:"upsertSizes" binding:"dive"`
	RemoveSizes  []string           `json:"removeSizes"`
}

func ListProducts(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.List(c.Request.Context(), c.Query("search"))
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func GetProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := catalog.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func CreateProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[PRODUCT] [ERROR] create bind failed:", err)
			respondValidationError(c, err)
			return
		}

		product, err := catalog.Create(c.Request.Context(), services.ProductInput{
			Title:           req.Title,
			Description:     req.Description,
			Category:        req.Category,
			Price:           req.Price,
			DiscountedPrice: req.DiscountedPrice,
			Tags:            req.Tags,
			Sizes:           req.Sizes,
			Colors:          req.Colors,
			Images:          req.Images,
			Stock:           req.Stock,
		})
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[PRODUCT] [ERROR] update bind failed:", err)
			respondValidationError(c, err)
			return
		}

		ctx := c.Request.Context()
		existing, err := catalog.Get(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}

		discount, err := resolveDiscountUpdate(existing, discountUpdateInput{
			OnSale:          req.OnSale,
			DiscountedPrice: req.DiscountedPrice,
		})
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}

		product, err := catalog.Update(ctx, existing.ID.Hex(), services.ProductPatch{
			Title:           req.Title,
			Description:     req.Description,
			Category:        req.Category,
			Price:           req.Price,
			DiscountedPrice: discount.DiscountedPrice,
			ClearDiscount:   discount.Clear,
			Tags:            req.Tags,
			Sizes:           req.Sizes,
			Colors:          req.Colors,
			Images:          req.Images,
			Stock:           req.Stock,
		})
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func EditProductAttributes(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductAttributesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := catalog.EditAttributes(c.Request.Context(), c.Param("id"), services.AttributeEdit{
			AddTags:      req.AddTags,
			RemoveTags:   req.RemoveTags,
			AddColors:    req.AddColors,
			RemoveColors: req.RemoveColors,
			UpsertSizes:  req.UpsertSizes,
			RemoveSizes:  req.RemoveSizes,
		})
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DeleteProduct reports image cleanup alongside the result; failed image
// deletes never turn the response into an error.
func DeleteProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		report, err := catalog.Delete(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, "PRODUCT", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "product deleted",
			"id":      report.Product.ID.Hex(),
			"images": gin.H{
				"removed": report.Removed,
				"failed":  report.Failed,
				"skipped": report.Skipped,
			},
		})
	}
}
