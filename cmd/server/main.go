package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/config"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/catalog"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/credentials"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/ledger"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/lockout"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/reports"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/db"
	httpx "github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/http"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/logger"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/sessions"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/storage/memory"
	"github.com/subosito/gotenv"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

type stores struct {
	ledger      ledger.Store
	lockout     lockout.Store
	credentials credentials.Store
	catalog     catalog.Store
}

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, func(), error) {
	if cfg.Storage.Backend == "memory" {
		log.Warn("using in-memory storage, data will not survive restart")
		m := memory.New()
		return stores{
			ledger:      m.Ledger(),
			lockout:     m.LoginAttempts(),
			credentials: m.Credentials(),
			catalog:     m.Catalog(),
		}, func() {}, nil
	}

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		return stores{}, nil, err
	}
	log.Info("migrations applied")

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return stores{}, nil, err
	}
	log.Info("db connected")
	return stores{
		ledger:      ledger.NewRepo(pool),
		lockout:     lockout.NewRepo(pool),
		credentials: credentials.NewRepo(pool),
		catalog:     catalog.NewRepo(pool),
	}, pool.Close, nil
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "err", err)
		return
	}
	defer closeStores()

	ledgerSvc := ledger.NewService(st.ledger, logger.Component(log, "ledger"))
	lockoutSvc := lockout.NewService(st.lockout, logger.Component(log, "lockout"))
	credsSvc := credentials.NewService(st.credentials, logger.Component(log, "credentials"))
	catalogSvc := catalog.NewService(st.catalog, ledgerSvc, logger.Component(log, "catalog"))
	reportsSvc := reports.NewService(ledgerSvc, catalogSvc)

	defaultCat, err := catalogSvc.EnsureDefault(ctx)
	if err != nil {
		log.Error("resolving default category", "err", err)
		return
	}
	log.Info("default category resolved", "category_id", defaultCat)

	handler := httpx.NewHandler(
		ledgerSvc, lockoutSvc, credsSvc, catalogSvc, reportsSvc,
		sessions.New(), defaultCat, logger.Component(log, "http"),
	)

	srv := httpx.New(cfg.HTTP.Addr, handler, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
