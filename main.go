package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"storeadmin/internal/config"
	"storeadmin/internal/database"
	"storeadmin/internal/server"
	"storeadmin/internal/services"
	"storeadmin/internal/session"
	"storeadmin/internal/storage"
)

func main() {
	config.Load()
	cfg := config.AppEnv
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sentryEnabled := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			log.Println("[SENTRY] [ERROR] init failed:", err)
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureIndexes(db); err != nil {
		log.Printf("[DB] [WARN] index warning: %v", err)
	}

	objects, err := storage.NewObjectStore(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	products := database.NewProductRepository(db)
	orders := database.NewOrderRepository(db)
	users := database.NewUserRepository(db)
	admins := database.NewAdminRepository(db)
	carts := database.NewCartRepository(db)

	uploads := services.NewUploadService(objects, cfg.UploadURLTTL)
	uploads.RandomKeys = cfg.UploadKeyRandom

	orderService := services.NewOrderService(orders)
	orderService.StrictTransitions = cfg.StrictOrderTransitions
	orderService.AcceptStatusAliases = cfg.OrderStatusAliases

	router := server.NewRouter(server.Deps{
		Catalog:   services.NewCatalogService(products, objects),
		Uploads:   uploads,
		Orders:    orderService,
		Directory: services.NewDirectoryService(users, orders, carts),
		Auth:      services.NewAuthService(admins, cfg.AdminSecret),
		Sessions:  session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction()),
		Health: func(ctx context.Context) error {
			return database.Ping(ctx, client)
		},
		CORSOrigins: cfg.CORSOrigins,
		Sentry:      sentryEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("server starting on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdown(srv, client)
}

func shutdown(srv *http.Server, client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Println("server shutdown error:", err)
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Println("mongo disconnect error:", err)
	}
	log.Println("server stopped")
}
