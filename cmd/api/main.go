// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"souffle/internal/account"
	"souffle/internal/adapter/storage"
	"souffle/internal/config"
	"souffle/internal/logger"
	"souffle/internal/moderation"
	"souffle/internal/server"
	"souffle/internal/server/handlers"
	"souffle/internal/service/ambient"
	"souffle/internal/service/location"
	souffleService "souffle/internal/service/souffle"
	ticketService "souffle/internal/service/ticket"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.Environment == "development")
	defer zlog.Sync()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	// Initialize storage adapters
	store := storage.NewRedisStore(redisClient)
	moderationStore := storage.NewModerationStore(db)
	acct := account.NewRedisAccount(redisClient)

	// Initialize services
	tracker := location.NewTracker()
	engine := moderation.NewEngine()

	souffleManager := souffleService.NewManager(
		store,
		moderationStore,
		natsConn,
		zlog,
		souffleService.ManagerConfig{
			EventsTopic:   cfg.Souffle.EventsTopic,
			SweepInterval: cfg.Souffle.SweepInterval,
		},
	)

	ticketManager := ticketService.NewManager(
		store,
		acct,
		natsConn,
		zlog,
		ticketService.ManagerConfig{
			EventsTopic:   cfg.Ticket.EventsTopic,
			SweepInterval: cfg.Ticket.SweepInterval,
		},
	)

	// Restore collections from storage
	if err := souffleManager.Load(ctx); err != nil {
		log.Fatalf("Failed to load souffles: %v", err)
	}
	if err := ticketManager.Load(ctx); err != nil {
		log.Fatalf("Failed to load tickets: %v", err)
	}

	// Initialize ambient generator
	generator := ambient.NewGenerator(souffleManager, tracker, zlog, ambient.GeneratorConfig{
		Interval:  cfg.Ambient.Interval,
		SeedCount: cfg.Ambient.SeedCount,
	})
	var seeder handlers.Seeder
	if cfg.Ambient.Enabled {
		generator.Activate(ctx)
		defer generator.Deactivate()
		seeder = generator
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, server.Dependencies{
		SouffleManager: souffleManager,
		TicketManager:  ticketManager,
		Moderation:     engine,
		Tracker:        tracker,
		Account:        acct,
		Violations:     moderationStore,
		Stats:          moderationStore,
		Seeder:         seeder,
		NATS:           natsConn,
		Logger:         zlog,
	})

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	log.Println("Shutting down services...")

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Stop background sweepers
	if err := souffleManager.Stop(shutdownCtx); err != nil {
		log.Printf("Souffle manager shutdown error: %v", err)
	}
	if err := ticketManager.Stop(shutdownCtx); err != nil {
		log.Printf("Ticket manager shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize Redis connection
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	return client, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
