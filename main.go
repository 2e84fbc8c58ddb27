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

	extprocv3 "github.com/envoyproxy/go-control-plane/envoy/service/ext_proc/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/eco2-team/backend/domains/json-masker/internal/api"
	"github.com/eco2-team/backend/domains/json-masker/internal/config"
	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
	"github.com/eco2-team/backend/domains/json-masker/internal/jwt"
	"github.com/eco2-team/backend/domains/json-masker/internal/logging"
	"github.com/eco2-team/backend/domains/json-masker/internal/masking"
	"github.com/eco2-team/backend/domains/json-masker/internal/mq"
	"github.com/eco2-team/backend/domains/json-masker/internal/server"
	"github.com/eco2-team/backend/domains/json-masker/internal/store"
	"github.com/eco2-team/backend/domains/json-masker/internal/tracing"
)

func main() {
	envFile := os.Getenv(constants.EnvEnvFile)
	if envFile == "" {
		envFile = constants.DefaultEnvFile
	}
	envLoaded, envErr := config.LoadEnvFile(envFile)

	logger := logging.New(logging.DefaultConfig())
	if envErr != nil {
		fatal(logger, "Failed to load env file", envErr, "path", envFile)
	}
	if envLoaded {
		logger.Info("Loaded env file", "path", envFile)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), constants.InitTimeout)
	defer cancel()

	tp, err := tracing.Init(ctx, tracing.DefaultConfig())
	if err != nil {
		fatal(logger, "Failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeout)
		defer shutdownCancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown tracer", "error", err)
		}
	}()

	var fieldStore *store.Store
	if cfg.RedisURL != "" {
		poolOpts := &store.PoolOptions{
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
			PoolTimeout:  time.Duration(cfg.RedisPoolTimeoutMs) * time.Millisecond,
			ReadTimeout:  time.Duration(cfg.RedisReadTimeoutMs) * time.Millisecond,
			WriteTimeout: time.Duration(cfg.RedisWriteTimeoutMs) * time.Millisecond,
		}
		logger.Info("Redis pool config",
			"pool_size", poolOpts.PoolSize,
			"min_idle_conns", poolOpts.MinIdleConns,
			"pool_timeout", poolOpts.PoolTimeout,
		)

		fieldStore, err = store.New(ctx, cfg.RedisURL, cfg.RedisFieldsKey, poolOpts)
		if err != nil {
			fatal(logger, "Failed to connect to Redis", err)
		}
		defer fieldStore.Close()
	}

	fields, source, err := store.ResolveFields(ctx, fieldStore, cfg.MaskedFields)
	if err != nil {
		fatal(logger, "Failed to read masked fields", err)
	}
	logger.Info("Resolved masked fields", constants.ECSFieldMaskSource, source)

	masker, err := masking.New(fields, logger)
	if err != nil {
		fatal(logger, "Failed to build masker", err)
	}

	apiOpts := api.Options{
		MaskChar:     cfg.MaskChar,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
	if cfg.AuthEnabled() {
		verifier, err := jwt.NewVerifier(
			cfg.JWTSecretKey,
			cfg.JWTAlgorithm,
			cfg.JWTIssuer,
			cfg.JWTAudience,
			time.Duration(cfg.JWTClockSkewSec)*time.Second,
			cfg.JWTRequiredScope,
		)
		if err != nil {
			fatal(logger, "Failed to create JWT verifier", err)
		}
		apiOpts.Verifier = verifier
	}

	handler, err := api.NewHandler(masker, apiOpts, logger)
	if err != nil {
		fatal(logger, "Failed to create API handler", err)
	}

	processor, err := server.New(masker, cfg.MaskChar, logger)
	if err != nil {
		fatal(logger, "Failed to create ext_proc server", err)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle(constants.PathMetrics, promhttp.Handler())
		mux.HandleFunc(constants.PathHealth, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(constants.HealthOK))
		})
		mux.HandleFunc(constants.PathReady, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(constants.HealthOK))
		})
		metricsAddr := fmt.Sprintf(":%d", cfg.MetricsPort)
		logger.Info("Starting metrics server", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error("Metrics server error", "error", err)
		}
	}()

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: constants.HTTPReadHeaderTimeout,
	}
	go func() {
		logger.Info("Starting HTTP API", "addr", apiServer.Addr, "auth", cfg.AuthEnabled())
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "HTTP API error", err)
		}
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		fatal(logger, "Failed to listen", err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	extprocv3.RegisterExternalProcessorServer(grpcServer, processor)

	go func() {
		logger.Info("Starting ext_proc gRPC server", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			fatal(logger, "Failed to serve", err)
		}
	}()

	var sanitizer *mq.Sanitizer
	if cfg.AMQPURL != "" {
		sanitizer, err = mq.NewSanitizer(cfg.AMQPURL, masker, cfg.MaskChar, logger)
		if err != nil {
			fatal(logger, "Failed to create MQ sanitizer", err)
		}
		sanitizer.Start()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	if sanitizer != nil {
		sanitizer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeout)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP API shutdown error", "error", err)
	}

	grpcServer.GracefulStop()
	logger.Info("Server stopped")
}

func fatal(logger *logging.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{"error", err}, args...)...)
	os.Exit(1)
}
