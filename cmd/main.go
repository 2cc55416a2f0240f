package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cristianxmm/tv-signage-system/internal/config"
	"github.com/cristianxmm/tv-signage-system/internal/events"
	"github.com/cristianxmm/tv-signage-system/internal/handler"
	"github.com/cristianxmm/tv-signage-system/internal/hub"
	"github.com/cristianxmm/tv-signage-system/internal/ingest"
	"github.com/cristianxmm/tv-signage-system/internal/log"
	"github.com/cristianxmm/tv-signage-system/internal/metrics"
	"github.com/cristianxmm/tv-signage-system/internal/middleware"
	"github.com/cristianxmm/tv-signage-system/internal/service"
	"github.com/cristianxmm/tv-signage-system/internal/state"
	"github.com/cristianxmm/tv-signage-system/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log.Init(cfg.Log)
	stdlog.Printf("Starting Signage Dispatcher on %s:%d", cfg.Server.Host, cfg.Server.Port)

	metrics.Register()

	// Initialize upload storage
	var store storage.Storage
	var localStore *storage.LocalStorage
	switch cfg.Storage.Type {
	case "s3":
		s3Store, err := storage.NewS3Storage(context.Background(), cfg.Storage.S3)
		if err != nil {
			stdlog.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		store = s3Store
		stdlog.Printf("Using S3 storage (bucket: %s)", cfg.Storage.S3.Bucket)
	default:
		localStore, err = storage.NewLocalStorage(cfg.Storage.Local)
		if err != nil {
			stdlog.Fatalf("Failed to initialize local storage: %v", err)
		}
		store = localStore
		stdlog.Printf("Using local storage at %s", localStore.BasePath())
	}

	// Retention cleanup
	cleaner := storage.NewCleaner(store, cfg.Storage.RetentionDays, cfg.Storage.SweepInterval)
	cleaner.Start()
	defer cleaner.Stop()

	// Last-state cache
	var stateStore state.Store
	switch cfg.State.Type {
	case "redis":
		redisStore, err := state.NewRedisStore(cfg.State.Redis)
		if err != nil {
			stdlog.Fatalf("Failed to initialize Redis state store: %v", err)
		}
		defer redisStore.Close()
		stateStore = redisStore
		stdlog.Printf("Using Redis state store at %s", cfg.State.Redis.Address)
	default:
		stateStore = state.NewMemoryStore()
		stdlog.Println("Using in-memory state store")
	}

	// Initialize Hub
	wsHub := hub.NewHub(cfg.WebSocket)
	wsHub.SetConnectionCountCallback(func(count int) {
		metrics.ConnectedDisplays.Set(float64(count))
	})
	go wsHub.Run()

	// Optional published-event stream
	var producer events.Producer = events.NoopProducer{}
	if cfg.Events.Enabled {
		kp, err := events.NewConfluentProducer(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic, cfg.Events.Kafka.Partitions)
		if err != nil {
			stdlog.Fatalf("Failed to initialize Kafka producer: %v", err)
		}
		producer = kp
		stdlog.Printf("Connected to Kafka at %s (topic: %s)", cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
	}

	// Core dispatch service
	dispatchSvc := service.NewDispatchService(wsHub, stateStore, producer)
	defer dispatchSvc.Stop()

	// Ingest pipeline
	ingestor := ingest.NewIngestor(store, cfg.Storage.MaxUploadFiles)

	// Auth gate
	gate := middleware.NewGate(cfg.Auth)
	if cfg.Auth.Password == "" {
		stdlog.Println("Warning: no admin password configured, publish endpoint will reject everything")
	}

	// Handlers
	wsHandler := handler.NewWSHandler(wsHub, dispatchSvc, cfg.WebSocket)
	publishHandler := handler.NewPublishHandler(dispatchSvc, ingestor, cleaner, cfg.Storage.MaxUploadBytes)
	authHandler := handler.NewAuthHandler(gate)

	// Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(log.L()))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = 32 << 20

	// Display-facing routes
	wsHandler.RegisterRoutes(router)
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/state/:zone", publishHandler.HandleCurrentState)

	// Admin routes behind the auth gate
	router.POST("/api/auth/login", authHandler.HandleLogin)
	router.POST("/publicar", gate.RequireAuth(), publishHandler.HandlePublish)
	router.POST("/api/publish", gate.RequireAuth(), publishHandler.HandlePublish)
	router.GET("/admin.html", gate.RequireAuth(), func(c *gin.Context) {
		c.File("./public/admin.html")
	})

	// Static: display client at /, uploads with long-lived cache headers
	router.StaticFile("/", "./public/index.html")
	router.StaticFile("/display.js", "./public/display.js")
	if localStore != nil {
		uploads := router.Group("/uploads", func(c *gin.Context) {
			c.Header("Cache-Control", "public, max-age=2592000, immutable")
		})
		uploads.Static("/", localStore.BasePath())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		stdlog.Printf("Signage Dispatcher listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			stdlog.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stdlog.Println("Shutting down Signage Dispatcher...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		stdlog.Printf("Server forced to shutdown: %v", err)
	}

	stdlog.Println("Signage Dispatcher stopped")
}
