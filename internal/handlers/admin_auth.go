package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/models"
	"storeadmin/internal/services"
	"storeadmin/internal/session"
)

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	AdminSecret string `json:"adminSecret"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func accountView(admin models.Admin) gin.H {
	return gin.H{
		"id":      admin.ID.Hex(),
		"name":    admin.Name,
		"email":   admin.Email,
		"isAdmin": admin.IsAdmin,
	}
}

func Register(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[AUTH] [ERROR] register bind failed:", err)
			respondValidationError(c, err)
			return
		}

		admin, err := auth.Register(c.Request.Context(), services.RegisterInput{
			Name:        req.Name,
			Email:       req.Email,
			Password:    req.Password,
			AdminSecret: req.AdminSecret,
		})
		if err != nil {
			respondServiceError(c, "AUTH", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"user":    accountView(admin),
		})
	}
}

func Login(auth *services.AuthService, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		admin, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondServiceError(c, "AUTH", err)
			return
		}

		token, err := sessions.Issue(admin)
		if err != nil {
			respondServiceError(c, "AUTH", err)
			return
		}
		sessions.SetCookie(c, token)

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"user":    accountView(admin),
		})
	}
}

func Logout(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.ClearCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
