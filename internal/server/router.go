// Package server wires handlers, guards and ambient middleware into a gin
// engine.
package server

import (
	"context"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storeadmin/internal/handlers"
	"storeadmin/internal/middleware"
	"storeadmin/internal/services"
	"storeadmin/internal/session"
)

type Deps struct {
	Catalog   *services.CatalogService
	Uploads   *services.UploadService
	Orders    *services.OrderService
	Directory *services.DirectoryService
	Auth      *services.AuthService
	Sessions  *session.Manager
	Health    func(context.Context) error

	CORSOrigins []string
	// Sentry attaches a per-request hub; only set it once sentry.Init ran.
	Sentry bool
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), securityHeaders())
	if d.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second}))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", handlers.Home())
	if d.Health != nil {
		r.GET("/healthz", handlers.Health(d.Health))
	}

	guest := r.Group("/", middleware.RedirectIfAuthenticated(d.Sessions))
	{
		guest.GET("/login", handlers.LoginPage)
		guest.GET("/register", handlers.RegisterPage)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register(d.Auth))
		auth.POST("/login", handlers.Login(d.Auth, d.Sessions))
		auth.POST("/logout", handlers.Logout(d.Sessions))
	}

	pages := r.Group(middleware.AdminPrefix, middleware.RequireAdminPage(d.Sessions))
	{
		pages.GET("/dashboard", handlers.Dashboard(d.Catalog, d.Directory, d.Orders))
	}
	// Unrouted /admin paths still redirect anonymous visitors to the login page.
	r.NoRoute(middleware.RequireAdminPrefix(d.Sessions), handlers.NotFound)

	api := r.Group("/", middleware.AdminAuth(d.Sessions))
	{
		api.GET("/products", handlers.ListProducts(d.Catalog))
		api.POST("/products", handlers.CreateProduct(d.Catalog))
		api.GET("/products/:id", handlers.GetProduct(d.Catalog))
		api.PUT("/products/:id", handlers.UpdateProduct(d.Catalog))
		api.DELETE("/products/:id", handlers.DeleteProduct(d.Catalog))
		api.PATCH("/products/:id/attributes", handlers.EditProductAttributes(d.Catalog))

		api.POST("/upload", handlers.RequestUpload(d.Uploads))

		api.GET("/orders", handlers.ListOrders(d.Orders))
		api.PATCH("/orders/status", handlers.UpdateOrderStatus(d.Orders))
		api.DELETE("/orders", handlers.DeleteOrder(d.Orders))
		api.GET("/orders/for-user", handlers.ListOrdersForUser(d.Orders))

		api.GET("/users", handlers.ListUsers(d.Directory))
		api.GET("/users/:userId", handlers.GetUser(d.Directory))
		api.GET("/users/:userId/orders", handlers.ListUserOrders(d.Orders))
		api.GET("/users/:userId/cart", handlers.GetUserCart(d.Directory))
	}

	return r
}
