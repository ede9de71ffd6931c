package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/services"
)

// The admin UI is rendered elsewhere. Page routes answer with the page name.

func LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "login"})
}

func RegisterPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "register"})
}

func Dashboard(catalog *services.CatalogService, directory *services.DirectoryService, orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		products, err := catalog.Count(ctx)
		if err != nil {
			respondServiceError(c, "DASHBOARD", err)
			return
		}
		users, err := directory.CountUsers(ctx)
		if err != nil {
			respondServiceError(c, "DASHBOARD", err)
			return
		}
		byStatus, err := orders.CountByStatus(ctx)
		if err != nil {
			respondServiceError(c, "DASHBOARD", err)
			return
		}

		var total int64
		for _, n := range byStatus {
			total += n
		}

		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"users":    users,
			"orders": gin.H{
				"total":    total,
				"byStatus": byStatus,
			},
		})
	}
}
