package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beecommerce/internal/config"
	"beecommerce/internal/events"
	"beecommerce/internal/http/handlers"
	"beecommerce/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := handlers.NewDeps(db, cfg)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if _, err := deps.AuthService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		log.Printf("[admin] ensured admin account %q", cfg.AdminUsername)
	}

	// Outbox relay; without brokers events stay queued in the outbox table.
	if kc := events.NewClient(cfg.KafkaBrokers); kc.Enabled() {
		pub := events.NewKafkaPublisher(kc, cfg.KafkaTopic)
		defer pub.Close()
		go events.NewRelay(repos.NewOutboxRepo(db), pub, cfg.OutboxInterval).Run(ctx)
		log.Printf("[events] relaying outbox to kafka topic %q", cfg.KafkaTopic)
	} else {
		log.Printf("[events] KAFKA_BROKERS not set, outbox relay disabled")
	}

	app := handlers.NewApp(cfg, deps)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Printf("[warn] shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
