package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/services"
)

type OrderStatusRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	NewStatus string `json:"newStatus" binding:"required"`
}

func ListOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context(), c.Query("status"))
		if err != nil {
			respondServiceError(c, "ORDER", err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func UpdateOrderStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := orders.UpdateStatus(c.Request.Context(), req.OrderID, req.NewStatus)
		if err != nil {
			respondServiceError(c, "ORDER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order status updated", "order": order})
	}
}

func DeleteOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orders.Delete(c.Request.Context(), c.Query("orderId")); err != nil {
			respondServiceError(c, "ORDER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

func ListOrdersForUser(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := orders.ListForUser(c.Request.Context(), c.Query("userId"))
		if err != nil {
			respondServiceError(c, "ORDER", err)
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}
