package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rsvp-collector/internal/config"
	"rsvp-collector/internal/i18n"
	"rsvp-collector/internal/kafka"
	"rsvp-collector/internal/logger"
	"rsvp-collector/internal/qr"
	"rsvp-collector/internal/rsvp/db"
	"rsvp-collector/internal/rsvp/render"
	"rsvp-collector/internal/rsvp/rsvp_api"
	"rsvp-collector/internal/rsvp/service"
)

func openStore(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) *db.DB {
	log.Info("DATABASE", fmt.Sprintf("Opening sqlite store at %s", cfg.Path))
	store, err := db.Open(cfg.Path, cfg.MaxOpenConns)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open store: %v", err))
	}
	if err := store.InitSchema(ctx); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to initialize schema: %v", err))
	}
	log.LogDatabase("INIT", "rsvp", "✅ Schema ready")
	return store
}

// newPublisher returns nil when Kafka is disabled.
func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *logger.Logger) *kafka.Publisher {
	if !cfg.Enabled {
		log.Info("KAFKA", "Submission notifier disabled")
		return nil
	}
	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v, topic %s", cfg.Brokers, cfg.Topic))
	if err := kafka.EnsureTopic(ctx, cfg.Brokers, cfg.Topic); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	return kafka.NewPublisher(cfg.Brokers, cfg.Topic, log)
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(logger.Options{
		Dir:      cfg.Log.Dir,
		Name:     "rsvp-collector",
		MinLevel: logger.ParseLevel(cfg.Log.Level),
	})
	defer log.Close()

	log.Info("APP", "Starting RSVP collector")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	ctx := context.Background()
	store := openStore(ctx, cfg.Database, log)
	defer store.Close()

	translator, err := i18n.NewTranslator(cfg.Dashboard.DefaultLocale)
	if err != nil {
		log.Fatal("APP", fmt.Sprintf("Failed to load translations: %v", err))
	}
	dashboard, err := render.NewDashboard(translator)
	if err != nil {
		log.Fatal("APP", fmt.Sprintf("Failed to load dashboard template: %v", err))
	}

	var publisher service.SubmissionPublisher
	if p := newPublisher(ctx, cfg.Kafka, log); p != nil {
		defer p.Close()
		publisher = p
	}

	svc := service.NewRSVPService(store, publisher, log)
	handler := rsvp_api.NewHandler(svc, dashboard, qr.NewGenerator(cfg.Dashboard.PublicFormURL), log)

	log.Info("HTTP", "Setting up router and middleware")
	r := rsvp_api.NewRouter(handler, cfg.CORS.AllowedOrigins)
	log.Info("ROUTER", "RSVP routes registered under /rsvp")

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 RSVP collector running on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ RSVP collector shutdown complete")
	}
}
