package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"gridbase/internal/database"
	"gridbase/internal/formula"
	"gridbase/internal/handlers"
	"gridbase/internal/middlewares"
	"gridbase/internal/repositories"
	"gridbase/internal/routes"
	"gridbase/internal/services"
)

func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	pool, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Fail fast with a clear message if Redis is down.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to Redis at %s: %v", redisAddr, err)
		}
		log.Println("Connected to Redis successfully")
	}

	// Dependency injection
	userRepo := repositories.NewUserRepository(pool)
	sessionRepo := repositories.NewSessionRepository(pool)
	baseRepo := repositories.NewBaseRepository(pool)
	tableRepo := repositories.NewTableRepository(pool)
	columnRepo := repositories.NewColumnRepository(pool)
	recordRepo := repositories.NewRecordRepository(pool)
	cacheRepo := repositories.NewCacheRepository(rdb)

	engine := formula.NewEngine(nil)

	coercionService := services.NewCoercionService(recordRepo)
	lookupService := services.NewLookupService(tableRepo, columnRepo, recordRepo)
	recordService := services.NewRecordService(recordRepo, columnRepo, tableRepo, cacheRepo, engine, lookupService)
	columnService := services.NewColumnService(columnRepo, tableRepo, cacheRepo, coercionService, recordService, engine)
	tableService := services.NewTableService(tableRepo, columnRepo, recordRepo, baseRepo, columnService)
	baseService := services.NewBaseService(baseRepo, userRepo)
	authService := services.NewAuthService(userRepo, sessionRepo)
	userService := services.NewUserService(userRepo, sessionRepo)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	baseHandler := handlers.NewBaseHandler(baseService, tableService)
	tableHandler := handlers.NewTableHandler(tableService)
	columnHandler := handlers.NewColumnHandler(columnService, lookupService, tableService)
	recordHandler := handlers.NewRecordHandler(recordService, tableService)

	authMiddleware := middlewares.Authenticate(userRepo)

	router := gin.Default()
	router.Use(cors.New(corsConfig()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	routes.NewAuthRoutes(authHandler, authMiddleware).RegisterRoutes(api)
	routes.NewUserRoutes(userHandler, authMiddleware).RegisterRoutes(api)
	routes.NewBaseRoutes(baseHandler, authMiddleware).RegisterRoutes(api)
	routes.NewTableRoutes(tableHandler, columnHandler, recordHandler, authMiddleware).RegisterRoutes(api)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func corsConfig() cors.Config {
	config := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		config.AllowOrigins = strings.Split(origins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:3000"}
	}
	config.AllowCredentials = true
	config.AllowHeaders = append(config.AllowHeaders, "Authorization")
	return config
}
