package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sovicopay/swap-orchestrator/internal/asset"
	"github.com/sovicopay/swap-orchestrator/internal/balance"
	"github.com/sovicopay/swap-orchestrator/internal/cache"
	"github.com/sovicopay/swap-orchestrator/internal/config"
	"github.com/sovicopay/swap-orchestrator/internal/flags"
	"github.com/sovicopay/swap-orchestrator/internal/quote"
	"github.com/sovicopay/swap-orchestrator/internal/server"
	"github.com/sovicopay/swap-orchestrator/internal/storage"
	"github.com/sovicopay/swap-orchestrator/internal/swap"
	"github.com/sovicopay/swap-orchestrator/internal/transport"
	"github.com/sovicopay/swap-orchestrator/internal/wallet"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Shared backend client for quotes, execution and balances
	client := transport.NewClient(transport.ClientConfig{
		BaseURL:      cfg.BackendURL,
		SessionToken: cfg.SessionToken,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	// Quote provider and executor are selected together: a mock provider
	// with a live executor would settle imaginary prices.
	var provider quote.Provider
	var executor swap.Executor
	switch cfg.QuoteProvider {
	case "mock":
		provider = quote.NewMockProvider(nil, cfg.QuotePollInterval)
		executor = swap.NewMockExecutor()
	default:
		provider = quote.NewHTTPProvider(client, quote.DefaultQuoteTTL)
		executor = swap.NewHTTPExecutor(client)
	}

	session := wallet.NewSession(cfg.WalletAccount, cfg.SessionToken)
	snapshot := balance.NewSnapshot()
	reconciler := balance.NewReconciler(snapshot, balance.NewHTTPFetcher(client), logger)

	if cfg.QuoteProvider == "http" {
		if err := reconciler.Resync(ctx, session.Account()); err != nil {
			logger.WithError(err).Warn("initial balance sync failed, starting with an empty snapshot")
		}
	}

	// Redis backs swap history and feature flags; both are optional in dev
	var history storage.SwapHistory
	var flagStore *flags.Store
	rclient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	if err := rclient.Ping(ctx).Err(); err != nil {
		if cfg.DevMode {
			logger.WithError(err).Warn("redis unavailable, history and flags disabled")
		} else {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
	} else {
		history = cache.NewRedisHistory(rclient, logger)
		fs, err := flags.NewStore(rclient)
		if err != nil {
			logger.WithError(err).Fatal("failed to create flags store")
		}
		flagStore = fs
	}

	// ClickHouse archive is opt-in
	var store storage.SwapStore
	if cfg.ClickHouseEnabled {
		chs, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to ClickHouse")
		}
		store = chs
		defer func() {
			_ = chs.Close()
		}()
	}

	orc, err := swap.New(swap.Config{
		Provider:     provider,
		Executor:     executor,
		Session:      session,
		Reconciler:   reconciler,
		History:      history,
		Store:        store,
		Logger:       logger,
		PollInterval: cfg.QuotePollInterval,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create orchestrator")
	}

	// Well-known mainnet mints resolvable before the session holds them
	catalog := []asset.Reference{
		{Code: "USDC", IssuerOrMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
		{Code: "USDT", IssuerOrMint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
		{Code: "BONK", IssuerOrMint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Decimals: 5},
	}

	h := &server.Handlers{
		Orc:                orc,
		Resolver:           asset.NewResolver(cfg.NativeSymbol),
		Catalog:            catalog,
		History:            history,
		DefaultSlippageBps: uint16(cfg.DefaultSlippageBps),
		DevMode:            cfg.DevMode,
		Logger:             logger,
	}
	if flagStore != nil {
		// assign only when present so the interface stays nil and the
		// flags API and gating are cleanly disabled
		h.Flags = flagStore
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.ListenAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithFields(logrus.Fields{
		"addr":     cfg.ListenAddr,
		"provider": cfg.QuoteProvider,
	}).Info("swap orchestrator starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
