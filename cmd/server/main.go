package main

import (
	"log"
	"net/http"
	"os"

	"tasklist/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tasklist/internal/auth"
	"tasklist/internal/cache"
	"tasklist/internal/config"
	"tasklist/internal/db"
	"tasklist/internal/handler"
	"tasklist/internal/model"
	"tasklist/internal/repository"
	"tasklist/internal/router"
	"tasklist/internal/service"
)

// @title Tasklist API
// @version 1.0
// @description Task-list REST API with email/password registration, JWT bearer authentication, and ownership-scoped todo operations.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Todo{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Todo{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	// Redis is optional: without it the login throttle is process-local
	// and the auth gate hits the database on every request.
	var cacheClient *cache.Client
	var throttle auth.LoginThrottle
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		throttle = auth.NewRedisThrottle(cacheClient)
	} else {
		throttle = auth.NewMemoryThrottle()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	gate := auth.NewGate(jwtService, userRepo, cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, throttle)
	todoService := service.NewTodoService(todoRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	todoHandler := handler.NewTodoHandler(todoService)

	// Register routes
	router.Register(e, gate, authHandler, todoHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
