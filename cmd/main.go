/**
 * @description
 * This is the main entry point for the service. It is responsible for
 * initializing all components: configuration, database connection pool, Redis,
 * the RabbitMQ producer, repositories, the application services, and the HTTP
 * server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: For loading .env files during local development.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/practpec/api-voyaj-sub001/internal/api"
	"github.com/practpec/api-voyaj-sub001/internal/app"
	"github.com/practpec/api-voyaj-sub001/internal/config"
	"github.com/practpec/api-voyaj-sub001/internal/store"
	rmrabbit "github.com/practpec/api-voyaj-sub001/pkg/rabbitmq"
)

func main() {
	// Load a local .env file if present; production uses real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found; using environment values\"")
	}

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting trip service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish friendship events.
	var producer rmrabbit.Publisher
	if eventProducer, prodErr := rmrabbit.NewEventProducer(cfg.RabbitMQURL, cfg.FriendshipEventExchange); prodErr != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", prodErr)
		producer = &rmrabbit.EventProducerFallback{}
	} else {
		defer eventProducer.Close()
		producer = eventProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Redis backs the distributed login rate limiter; a missing or unhealthy
	// Redis disables throttling but never blocks startup.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; login rate limiting disabled\" env=REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; login rate limiting disabled\" err=%v", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; login rate limiting disabled\" err=%v", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	// Initialize the data access layer (repositories).
	userRepo := store.NewPostgresUserRepository(dbpool)
	tripRepo := store.NewPostgresTripRepository(dbpool)
	splitRepo := store.NewPostgresSplitRepository(dbpool)
	diffRepo := store.NewPostgresDifferenceRepository(dbpool)

	// Initialize the core application services with their dependencies.
	var limiter app.RateLimiter
	if redisClient != nil {
		limiter = app.NewRedisLoginRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
	}
	authService := app.NewAuthService(
		userRepo,
		limiter,
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationHours)*time.Hour,
		cfg.LoginRateLimitPerMinute,
	)
	friendshipService := app.NewFriendshipService(userRepo, producer)
	tripService := app.NewTripService(tripRepo)
	splitService := app.NewExpenseSplitService(splitRepo)
	planRealityService := app.NewPlanRealityService(diffRepo, tripRepo)

	// Initialize the API handlers and router.
	handlers := api.Handlers{
		Auth:        api.NewAuthHandlers(authService, friendshipService),
		Trips:       api.NewTripHandlers(tripService),
		Splits:      api.NewSplitHandlers(splitService, tripService),
		PlanReality: api.NewPlanRealityHandlers(planRealityService),
	}
	router := api.NewRouter(handlers, cfg.JWTSecret, cfg.CORSAllowedOrigins)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.ServerReadTimeoutSeconds) * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
