package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"snapwallet/internal/ai"
	"snapwallet/internal/api"
	"snapwallet/internal/cache"
	"snapwallet/internal/config"
	"snapwallet/internal/engagement"
	"snapwallet/internal/logging"
	"snapwallet/internal/models"
	"snapwallet/internal/storage"
	"snapwallet/internal/wallet"
)

// seedAccounts is the demo population. Process-lifetime only; every restart
// begins from this state.
func seedAccounts() []models.Account {
	return []models.Account{
		{ID: "u1", Username: "Santosh7988", TotalData: 10.5},
		{ID: "u2", Username: "Santosh8688", TotalData: 5.2},
		{ID: "u3", Username: "akastrickster8777", TotalData: 8.0},
	}
}

type s3Keys struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Region          string `json:"region"`
	PublicURL       string `json:"public_url"`
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting_service", "service", "snapwallet", "http_addr", cfg.HTTPAddr)

	store := wallet.NewStore(logger, seedAccounts())

	// redis is optional: a missing or unreachable cache only costs recomputes
	var cacheClient *cache.Client
	if cfg.RedisDSN != "" {
		cacheClient, err = cache.New(cfg.RedisDSN)
		if err != nil {
			logger.Warn("redis_connect_failed_running_without_cache", "error", err)
			cacheClient = nil
		} else {
			logger.Info("redis_connected")
		}
	}

	storageClient := buildStorage(logger, cfg)

	var analyzer ai.Analyzer
	var synth ai.Synthesizer
	if cfg.AIAPIKey != "" {
		client := ai.NewClient(logger, cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
		analyzer, synth = client, client
		logger.Info("ai_client_configured", "api_key", logging.MaskKey(cfg.AIAPIKey))
	} else {
		analyzer, synth = ai.StubAnalyzer{}, ai.StubSynthesizer{}
		logger.Info("ai_stubs_active")
	}

	hub := api.NewHub(logger)

	// after each tick: flush cached projections, push fresh stats to sockets
	notify := func() {
		accounts := store.List()
		ids := make([]string, 0, len(accounts))
		for _, acc := range accounts {
			ids = append(ids, acc.ID)
			if stats, ok := store.Stats(acc.ID); ok {
				hub.BroadcastStats(acc.ID, stats)
			}
		}
		if cacheClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cacheClient.InvalidateAll(ctx, ids); err != nil {
				logger.Warn("cache_invalidate_failed", "error", err)
			}
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	simulator := engagement.NewSimulator(logger, store, cfg.EngagementTick, engagement.DefaultParams(), rng, notify)
	simulator.Start()

	srv := api.NewServer(logger, store, cacheClient, analyzer, synth, storageClient, hub, cfg)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("api_server_ready", "addr", cfg.HTTPAddr)

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	simulator.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	} else {
		logger.Info("http_server_stopped")
	}

	if cacheClient != nil {
		if err := cacheClient.Close(); err != nil {
			logger.Warn("redis_close_error", "error", err)
		} else {
			logger.Info("redis_closed")
		}
	}

	logger.Info("service_stopped")
}

// buildStorage picks the S3 backend when a bucket and keys are configured,
// otherwise the in-process simulator.
func buildStorage(logger *slog.Logger, cfg config.Config) storage.Client {
	if cfg.S3Bucket == "" || cfg.S3KeysRaw == "" {
		logger.Info("storage_simulator_active")
		return storage.NewSimulator(cfg.S3Bucket, cfg.S3Endpoint)
	}

	var keys s3Keys
	if err := json.Unmarshal([]byte(cfg.S3KeysRaw), &keys); err != nil {
		logger.Warn("s3_keys_invalid_using_simulator", "error", err)
		return storage.NewSimulator(cfg.S3Bucket, cfg.S3Endpoint)
	}

	client, err := storage.NewS3Client(storage.S3Config{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     keys.AccessKeyID,
		SecretAccessKey: keys.SecretAccessKey,
		Bucket:          cfg.S3Bucket,
		PublicURL:       keys.PublicURL,
		Region:          keys.Region,
	})
	if err != nil {
		logger.Warn("s3_init_failed_using_simulator", "error", err)
		return storage.NewSimulator(cfg.S3Bucket, cfg.S3Endpoint)
	}

	logger.Info("s3_storage_active", "bucket", cfg.S3Bucket)
	return client
}
