package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/ticket-inventory/config"
	"github.com/rl1809/ticket-inventory/internal/adapter/handler"
	"github.com/rl1809/ticket-inventory/internal/adapter/remote"
	"github.com/rl1809/ticket-inventory/internal/adapter/storage"
	"github.com/rl1809/ticket-inventory/internal/core/service"
	"github.com/rl1809/ticket-inventory/internal/logger"
	"github.com/rl1809/ticket-inventory/internal/metrics"
	"github.com/rl1809/ticket-inventory/internal/port"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	pflag.StringVar(&cfg.Server.HTTPAddr, "http-addr", cfg.Server.HTTPAddr, "HTTP listen address")
	pflag.StringVar(&cfg.Server.GRPCAddr, "grpc-addr", cfg.Server.GRPCAddr, "gRPC listen address")
	pflag.StringVar(&cfg.Store.Driver, "store", cfg.Store.Driver, "backing store: memory, mysql or mongo")
	pflag.StringVar(&cfg.Store.ItemSource, "source", cfg.Store.ItemSource, "listing source: store or remote")
	pflag.Parse()

	log := logger.NewZapLogger(logger.FromConfig(cfg))
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	opts := []service.Option{
		service.WithMetrics(m),
		service.WithWorkers(cfg.Writes.Workers),
		service.WithQueueSize(cfg.Writes.QueueSize),
		service.WithWriteTimeout(cfg.Writes.Timeout),
	}

	// Redis is optional: it backs the feed cache and create idempotency.
	var cache *storage.RedisAdapter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, running without cache", zap.Error(err))
			rdb.Close()
		} else {
			defer rdb.Close()
			log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
			cache = storage.NewRedisAdapter(rdb)
			opts = append(opts, service.WithIdempotency(cache))
		}
	}

	feedOpts := []remote.Option{remote.WithMetrics(m)}
	if cache != nil {
		feedOpts = append(feedOpts, remote.WithCache(cache))
	}
	feed, err := remote.NewClient(remote.Config{
		BaseURL:  cfg.Remote.BaseURL,
		Token:    cfg.Remote.Token,
		Timeout:  cfg.Remote.Timeout,
		CacheTTL: cfg.Remote.CacheTTL,
	}, log.Named("feed"), feedOpts...)
	if err != nil {
		log.Info("ticket feed disabled", zap.Error(err))
	} else {
		if cfg.Remote.Token == "" {
			log.Warn("TICKET_API_TOKEN is not set, feed requests are unauthenticated")
		}
		opts = append(opts, service.WithOverviewSource(feed))
		if cfg.Store.ItemSource == "remote" {
			opts = append(opts, service.WithSource(feed))
		}
	}

	manager := service.NewTableManager(store, log.Named("table"), opts...)
	if err := manager.Load(ctx); err != nil {
		log.Error("initial load failed, serving an empty table", zap.Error(err))
	}

	// gRPC
	grpcServer := grpc.NewServer()
	handler.NewGRPCHandler(manager, log.Named("grpc")).Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}
	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler.NewHTTPHandler(manager, log.Named("http"), m).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	if err := manager.Flush(shutdownCtx); err != nil {
		log.Warn("pending writes not flushed", zap.Error(err))
	}
	manager.Close()
	log.Info("write workers stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (port.ItemRepository, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Info("using in-memory store", zap.Duration("latency", cfg.Store.Latency))
		return storage.NewMemoryAdapter(storage.SeedListings(), storage.WithLatency(cfg.Store.Latency)), func() {}, nil

	case "mysql":
		db, err := sqlx.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.MySQL.ConnMaxLifetime) * time.Second)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("connected to mysql")
		return adapter, func() { db.Close() }, nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		adapter, err := storage.NewMongoAdapter(ctx, client.Database(cfg.Mongo.Database))
		if err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		log.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
		return adapter, func() { client.Disconnect(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
