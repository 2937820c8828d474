package cli

import (
	"context"
	"fmt"
	"time"

	"loan-widget/config"
	"loan-widget/logging"
	"loan-widget/money"
	"loan-widget/repository"
	"loan-widget/service"
)

// app holds the widget and the stores behind it.
type app struct {
	kv      repository.KeyValueStore
	history repository.LoanRepository
	widget  *service.LoanWidget
}

func newApp(ctx context.Context, cfg *config.Config, extra ...service.Option) (*app, error) {
	log := logging.Component("app")

	kv, history, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	formatter, err := money.NewFormatter(cfg.Widget.Locale, cfg.Widget.Currency)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	opts := []service.Option{
		service.WithSimulatedLatency(cfg.Widget.SimulatedLatency),
		service.WithNoticeDuration(cfg.Widget.NoticeDuration),
		service.WithHistory(history),
		service.WithLogger(logging.Component("widget")),
	}
	opts = append(opts, extra...)

	widget := service.NewLoanWidget(
		service.NewValidator(),
		service.NewStateStore(kv, cfg.Storage.Key, logging.Component("state")),
		formatter,
		opts...,
	)

	log.Debug().Str("backend", cfg.Storage.Backend).Msg("widget ready")
	return &app{kv: kv, history: history, widget: widget}, nil
}

func openStores(ctx context.Context, cfg *config.Config) (repository.KeyValueStore, repository.LoanRepository, error) {
	log := logging.Component("app")

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return repository.NewMemoryStore(), repository.NewLoanRepositoryMemory(), nil

	case config.BackendSQLite:
		store, err := repository.OpenSQLiteStore(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.History(), nil

	case config.BackendRedis:
		store := repository.NewRedisStore(cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			// Persistence is best-effort: the widget keeps working without it.
			log.Warn().Err(err).Str("addr", cfg.Storage.RedisAddr).Msg("redis unreachable")
		}
		return store, repository.NewLoanRepositoryMemory(), nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func (a *app) Close() error {
	if a == nil || a.kv == nil {
		return nil
	}
	return a.kv.Close()
}
