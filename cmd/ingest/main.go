package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/velwu/docker-fin-data/internal/alphavantage"
	"github.com/velwu/docker-fin-data/internal/config"
	"github.com/velwu/docker-fin-data/internal/database"
	"github.com/velwu/docker-fin-data/internal/ingest"
	"github.com/velwu/docker-fin-data/internal/kafka"
)

func main() {
	var (
		days     = flag.Int("days", 0, "number of trailing days to ingest (default from INGEST_DAYS)")
		interval = flag.Duration("interval", 0, "re-run interval; 0 runs once and exits")
	)
	flag.Parse()

	cfg := config.Load()

	if cfg.Ingest.APIKey == "" {
		log.Fatal("ALPHAVANTAGE_API_KEY is required; sign up at https://www.alphavantage.co/support/#api-key")
	}

	window := cfg.Ingest.Days
	if *days > 0 {
		window = *days
	}

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var publisher ingest.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	}

	client := alphavantage.NewClient(cfg.Ingest.APIKey, cfg.Ingest.BaseURL)
	service := ingest.NewService(client, db, publisher, cfg.Ingest.Symbols)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *interval > 0 {
		log.Printf("Ingesting %d days for %v every %s", window, cfg.Ingest.Symbols, *interval)
		if err := service.Run(ctx, *interval, window); err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		return
	}

	ctx, timeoutCancel := context.WithTimeout(ctx, 5*time.Minute)
	defer timeoutCancel()

	if err := service.RunOnce(ctx, window); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	log.Println("Ingestion complete")
}
