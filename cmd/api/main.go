package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"userbase.dev/internal/auth"
	"userbase.dev/internal/config"
	"userbase.dev/internal/httpapi"
	"userbase.dev/internal/obs"
	"userbase.dev/internal/store/memory"
	"userbase.dev/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.Logger().Error("load config", "error", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel).With(
		"service", "userbase-api",
		"env", cfg.AppEnv,
	)
	obs.SetLogger(logger)
	obs.Init()
	obs.InitBuildInfo(version, commit)

	if err := run(cfg); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func run(cfg *config.Config) error {
	logger := obs.Logger()

	var store auth.UserStore
	if cfg.PGDSN != "" {
		pgStore, err := pg.Open(cfg.PGDSN, pg.PoolOptions{MaxOpenConns: cfg.PGMaxOpenConns})
		if err != nil {
			return err
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		logger.Warn("PG_DSN not set, using in-memory user store")
		store = memory.New()
	}

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		return err
	}
	svc, err := auth.NewService(store, hasher, tokens)
	if err != nil {
		return err
	}

	probe := httpapi.ProbeFunc(svc.Ping)
	api := httpapi.New(svc, probe, httpapi.Options{
		Environment:       cfg.AppEnv,
		Version:           version,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		AuthRatePerMinute: cfg.AuthRateLimitPerMinute,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		RequestTimeout:    cfg.AppRequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: cfg.AppReadTimeout,
		WriteTimeout:      cfg.AppWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	var (
		grpcSrv *grpc.Server
		lis     net.Listener
	)
	if cfg.GRPCAddr != "" {
		lis, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		grpcSrv = grpc.NewServer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if grpcSrv != nil {
		httpapi.NewHealthServer(probe).Register(grpcSrv)
		g.Go(func() error {
			logger.Info("grpc listening", "addr", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
