package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/services"
)

func ListUsers(directory *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := directory.ListUsersWithOrderCounts(c.Request.Context())
		if err != nil {
			respondServiceError(c, "USER", err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func GetUser(directory *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := directory.GetUser(c.Request.Context(), c.Param("userId"))
		if err != nil {
			respondServiceError(c, "USER", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// ListUserOrders backs the user detail view with full order documents.
func ListUserOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListFullForUser(c.Request.Context(), c.Param("userId"))
		if err != nil {
			respondServiceError(c, "USER", err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetUserCart(directory *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := directory.GetUserCart(c.Request.Context(), c.Param("userId"))
		if err != nil {
			respondServiceError(c, "USER", err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
