package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/config"
	"github.com/UmangSachdeva/fintrack/events"
	"github.com/UmangSachdeva/fintrack/handlers"
	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/logger"
	"github.com/UmangSachdeva/fintrack/router"
	"github.com/UmangSachdeva/fintrack/service"
	"github.com/UmangSachdeva/fintrack/store"
	"github.com/UmangSachdeva/fintrack/store/memory"
	"github.com/UmangSachdeva/fintrack/store/mongodb"
	"github.com/UmangSachdeva/fintrack/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, level, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.File != "" {
		go func() {
			source := func() (string, error) {
				lookup, err := config.ReadFile(cfg.File)
				if err != nil {
					return "", err
				}
				v, _ := lookup("LOG_LEVEL")
				return v, nil
			}
			if err := logger.WatchLevel(ctx, cfg.File, level, source, log); err != nil {
				log.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	var revoker utils.Revoker
	rdb, err := config.ConnectToRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		revoker = utils.NewRedisRevoker(rdb)
		log.Info("token revocation backed by redis")
	} else {
		revoker = utils.NewMemoryRevoker()
		log.Warn("REDIS_URL not set, token revocation is process local")
	}

	var publisher events.Publisher = events.Noop{}
	nc, err := config.ConnectToNats(cfg)
	if err != nil {
		return err
	}
	if nc != nil {
		defer nc.Drain()
		publisher = events.NewNatsPublisher(nc, cfg.EventPrefix, log)
		log.Info("publishing ledger events", zap.String("prefix", cfg.EventPrefix))
	}

	uploads, err := helpers.NewOSUploadStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	banks := service.NewBankLinker(service.NewPlaidLinkTokens(config.PlaidInit(cfg)), log)
	if !banks.Enabled() {
		log.Info("plaid credentials not set, bank linking disabled")
	}

	h := handlers.New(handlers.Deps{
		Store:   db,
		Ledger:  service.NewLedger(db, publisher, log),
		Auditor: service.NewAuditor(db, log),
		Banks:   banks,
		Tokens:  utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, revoker),
		Uploads: uploads,
		Log:     log,
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.Router(h, router.Options{
			CORSOrigins:    cfg.CORSOrigins,
			RequestTimeout: cfg.RequestTimeout,
			Log:            log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	client, err := config.ConnectToMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db := mongodb.New(client, cfg.MongoDatabase, !cfg.MongoStandalone)
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("connected to mongo", zap.String("database", cfg.MongoDatabase))
	return db, nil
}
