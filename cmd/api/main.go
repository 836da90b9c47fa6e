package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-bazaar-nosql/internal/config"
	"github.com/go-bazaar-nosql/internal/infrastructure/dynamo"
	"github.com/go-bazaar-nosql/internal/infrastructure/google"
	jwtinfra "github.com/go-bazaar-nosql/internal/infrastructure/jwt"
	s3infra "github.com/go-bazaar-nosql/internal/infrastructure/s3"
	"github.com/go-bazaar-nosql/internal/infrastructure/smtp"
	"github.com/go-bazaar-nosql/internal/infrastructure/sns"
	"github.com/go-bazaar-nosql/internal/otpcache"
	transporthttp "github.com/go-bazaar-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("JWT provider not available", "err", err)
		os.Exit(1)
	}

	// S3 store for product images.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		slog.Warn("SNS sender not available", "err", err)
	}

	// Google sign-in is only wired when a client ID is configured.
	var googleVerifier *google.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = google.NewVerifier(cfg.GoogleClientID)
	}

	deps := &transporthttp.Deps{
		UserRepo:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ShopRepo:       dynamo.NewShopRepo(dynamoClient, cfg.DynamoTables.Shops),
		ProductRepo:    dynamo.NewProductRepo(dynamoClient, cfg.DynamoTables.Products),
		CartRepo:       dynamo.NewCartRepo(dynamoClient, cfg.DynamoTables.Carts),
		SessionRepo:    dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		S3Store:        s3Store,
		Mailer:         mailer,
		SMSSender:      smsSender,
		JWTProvider:    jwtProvider,
		GoogleVerifier: googleVerifier,
		OTPCache:       otpcache.New(),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
