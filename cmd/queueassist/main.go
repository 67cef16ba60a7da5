package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jojosay/Local-Queue-Assistant/internal/announce"
	"github.com/jojosay/Local-Queue-Assistant/internal/config"
	"github.com/jojosay/Local-Queue-Assistant/internal/display"
	"github.com/jojosay/Local-Queue-Assistant/internal/httpapi"
	"github.com/jojosay/Local-Queue-Assistant/internal/kv"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
	"github.com/jojosay/Local-Queue-Assistant/internal/telemetry"
)

func main() {
	cfg := config.Load()

	shutdownTracing := telemetry.Setup("queueassist")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}

	entityStore := store.New(backend)
	aggregator := display.NewAggregator(entityStore, cfg.DisplayNextDepth)
	poller := display.NewPoller(aggregator, cfg.PollInterval)
	announcer := announce.NewAnnouncer(cfg.AnnouncerKind, cfg.AnnouncerWebhook)

	handler := httpapi.NewHandler(entityStore, aggregator, poller, announcer, httpapi.Options{
		SkipReturnToQueue: cfg.SkipReturnToQueue,
	})

	pollCtx, stopPolling := context.WithCancel(context.Background())
	go poller.Run(pollCtx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(handler.Routes(), "queueassist"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("queueassist listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopPolling()
	poller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openBackend(cfg config.Config) (kv.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return kv.NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return kv.NewRedis(client, ""), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := kv.NewPostgres(pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return kv.NewFile(cfg.StorePath)
	}
}
