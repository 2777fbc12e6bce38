// Command attentiond serves recordings and attention sessions over HTTP.
//
// Usage:
//
//	attentiond [-config attention.hcl] [-debug]
//
// Settings come from the optional HCL file, then ATTENTION_* environment
// variables (a .env file in the working directory is loaded first).
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-eeg/internal/config"
	"github.com/cwbudde/algo-eeg/internal/pubsub"
	"github.com/cwbudde/algo-eeg/internal/server"
)

func main() {
	configPath := flag.String("config", "", "HCL configuration file (default $ATTENTION_CONFIG)")
	debug := flag.Bool("debug", false, "development logging and gin debug mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := newLogger(true)
		bootLogger.Fatal("load config", zap.Error(err))
	}
	if *debug {
		cfg.Server.Debug = true
	}

	logger := newLogger(cfg.Server.Debug)
	defer func() { _ = logger.Sync() }()
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var opts []server.Option
	if cfg.Redis.Enabled() {
		rdb, err := pubsub.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		opts = append(opts, server.WithSink(pubsub.NewSink(rdb, cfg.Redis.Channel, logger)))
	}

	srv := server.New(ctx, cfg, logger, opts...)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.Server.Listen),
			zap.String("data_dir", cfg.Server.DataDir),
			zap.Bool("redis", cfg.Redis.Enabled()),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(debug bool) *zap.Logger {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
