package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"eventgate/internal/analytics"
	"eventgate/internal/analytics/analytics_api"
	"eventgate/internal/auth"
	"eventgate/internal/billing"
	billing_handler "eventgate/internal/billing/handler"
	"eventgate/internal/checkin"
	"eventgate/internal/checkin/checkin_api"
	checkin_db "eventgate/internal/checkin/db"
	"eventgate/internal/config"
	"eventgate/internal/database/migrations"
	"eventgate/internal/events"
	events_db "eventgate/internal/events/db"
	"eventgate/internal/events/events_api"
	"eventgate/internal/issuance"
	issuance_db "eventgate/internal/issuance/db"
	"eventgate/internal/issuance/issuance_api"
	"eventgate/internal/kafka"
	"eventgate/internal/logger"
	"eventgate/internal/sellers"
	sellers_db "eventgate/internal/sellers/db"
	"eventgate/internal/sellers/sellers_api"
	"eventgate/internal/sse"
	"eventgate/internal/token"
	"eventgate/internal/tombola"
	tombola_db "eventgate/internal/tombola/db"
	"eventgate/internal/tombola/tombola_api"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Gate Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Token.Secret == "" {
		log.Fatal("CONFIG", "TOKEN_SECRET not set")
	}

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	migrator := migrations.NewRunner(bunDB, os.Getenv("MIGRATIONS_DIR"), log)
	if err := migrator.Up(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}

	redisClient, err := auth.InitializeSessionCache(cfg.Redis.Addr, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()
	sessionCache := auth.NewSessionCache(redisClient)

	var scanPublisher checkin.ScanPublisher
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.ScanTopic}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ScanTopic)
		defer producer.Close()
		scanPublisher = producer
		log.Info("KAFKA", fmt.Sprintf("Scan producer initialized for topic %s", cfg.Kafka.ScanTopic))
	} else {
		log.Info("KAFKA", "Kafka disabled, door scans will not be streamed to the broker")
	}

	doorFeed := sse.NewDoorFeed()
	tokenService := token.NewService(cfg.Token.Secret)

	eventService := events.NewService(&events_db.DB{Bun: bunDB})
	checkinService := checkin.NewService(
		&checkin_db.DB{Bun: bunDB},
		&checkin_db.DB{Bun: bunDB},
		tokenService,
		scanPublisher,
		doorFeed,
		log,
	)
	issuanceService := issuance.NewService(&issuance_db.DB{Bun: bunDB}, tokenService, log)
	sellerService := sellers.NewService(&sellers_db.DB{Bun: bunDB}, log)
	analyticsService := analytics.NewService(bunDB)
	tombolaService := tombola.NewService(&tombola_db.DB{Bun: bunDB}, log)

	var planGate billing.PlanGate = billing.OpenGate{}
	if cfg.Billing.Enabled {
		planGate = &billing.DBGate{Bun: bunDB}
	}

	eventHandler := events_api.NewHandler(eventService, log)
	checkinHandler := checkin_api.NewHandler(checkinService, eventService, doorFeed, log)
	issuanceHandler := issuance_api.NewHandler(issuanceService, eventService, planGate, log)
	sellerHandler := sellers_api.NewHandler(sellerService, eventService, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, eventService, log)
	tombolaHandler := tombola_api.NewHandler(tombolaService, eventService, planGate, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		issuanceHandler.PublicRoutes(r)
		log.Info("ROUTER", "Public claim and QR endpoints registered")

		r.Group(func(r chi.Router) {
			if cfg.Auth.OIDCIssuer != "" {
				r.Use(auth.Middleware(cfg.Auth.OIDCIssuer, sessionCache, log))
				log.Info("AUTH", "OIDC middleware applied to organizer routes")
			} else {
				r.Use(auth.LocalMiddleware(tokenService, log))
				log.Info("AUTH", "Local identity middleware applied to organizer routes")
			}

			eventHandler.Routes(r)
			checkinHandler.Routes(r)
			issuanceHandler.Routes(r)
			sellerHandler.Routes(r)
			tombolaHandler.Routes(r)
			analyticsHandler.Routes(r)
			log.Info("ROUTER", "Organizer routes registered under /api/v1")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Gate Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// Billing webhooks listen on a separate port so the paywall surface can
	// be firewalled independently of the organizer API.
	var billingServer *http.Server
	if cfg.Billing.Enabled && cfg.Billing.StripeSecretKey != "" {
		stripeService, err := billing.NewStripeService(cfg.Billing.StripeSecretKey, log)
		if err != nil {
			log.Fatal("BILLING", fmt.Sprintf("Stripe initialization failed: %v", err))
		}
		webhookHandler := billing_handler.NewWebhookHandler(&billing.DBGate{Bun: bunDB}, stripeService, log)
		billingServer = webhookHandler.Serve(cfg.Billing.Port)
		log.Info("BILLING", fmt.Sprintf("Billing webhook listener running on %s", cfg.Billing.Port))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if billingServer != nil {
		if err := billingServer.Shutdown(ctxShutdown); err != nil {
			log.Error("BILLING", fmt.Sprintf("Billing listener shutdown failed: %v", err))
		}
	}
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Gate Service shutdown complete")
	}
}
