package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecom-auth-api/internal/config"
	jwtinfra "github.com/ecom-auth-api/internal/infrastructure/jwt"
	"github.com/ecom-auth-api/internal/infrastructure/postgres"
	"github.com/ecom-auth-api/internal/infrastructure/rediskv"
	"github.com/ecom-auth-api/internal/infrastructure/smtp"
	transporthttp "github.com/ecom-auth-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}

	redisClient := rediskv.NewClient(cfg)
	kv := rediskv.NewStore(redisClient)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := kv.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("redis: %v", err)
	}
	cancel()

	// JWT provider (optional — login is disabled when no secret is set).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		AccountRepo: postgres.NewAccountRepo(db),
		KV:          kv,
		Mailer:      mailer,
		JWTProvider: jwtProvider,
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
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
