package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/storybloom/internal/agent/providers"
	"anoa.com/storybloom/internal/bootstrap"
	"anoa.com/storybloom/internal/config"
	"anoa.com/storybloom/internal/server"
	"anoa.com/storybloom/pkg/database"
	"anoa.com/storybloom/pkg/logger"
	"anoa.com/storybloom/pkg/response"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	response.SetLogger(log)

	db, err := database.Connect(database.Options{
		Driver:     cfg.DBDriver,
		Host:       cfg.DBHost,
		User:       cfg.DBUser,
		Password:   cfg.DBPass,
		Name:       cfg.DBName,
		Port:       cfg.DBPort,
		SQLitePath: cfg.SQLitePath,
		Debug:      !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatal("failed to seed roles", "error", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db, log); err != nil {
			log.Fatal("failed to seed admin user", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg.RedisURL, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var llm providers.LLMProvider
	if cfg.GeminiAPIKey != "" {
		gemini, err := providers.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("gemini unavailable, learning paths use the template generator", "error", err)
		} else {
			defer gemini.Close()
			llm = gemini
		}
	}

	srv, err := server.NewServer(cfg, db, redisClient, llm, log)
	if err != nil {
		log.Fatal("failed to build server", "error", err)
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatal("server exited with error", "error", err)
	}
	log.Info("server stopped")
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; the server
// then runs without rate limiting, caching or live notifications.
func connectRedis(ctx context.Context, url string, log *logger.Logger) *redis.Client {
	if url == "" {
		log.Warn("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid REDIS_URL, running without redis", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, running without redis", "error", err)
		client.Close()
		return nil
	}

	log.Info("connected to redis", "addr", opts.Addr)
	return client
}
