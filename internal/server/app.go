package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/verse-courier/internal/auth"
	"github.com/taiwoajasa245/verse-courier/internal/corpus"
	"github.com/taiwoajasa245/verse-courier/internal/database"
	"github.com/taiwoajasa245/verse-courier/internal/delivery"
	"github.com/taiwoajasa245/verse-courier/internal/ledger"
	"github.com/taiwoajasa245/verse-courier/internal/mail"
	"github.com/taiwoajasa245/verse-courier/internal/messaging"
	"github.com/taiwoajasa245/verse-courier/internal/scheduler"
	"github.com/taiwoajasa245/verse-courier/internal/search"
	"github.com/taiwoajasa245/verse-courier/internal/subscriber"
	"github.com/taiwoajasa245/verse-courier/internal/topic"
	"github.com/taiwoajasa245/verse-courier/pkg/config"
)

// App holds every long-lived component wired from configuration.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Location   *time.Location
	Index      *corpus.Index
	Catalog    *topic.Catalog
	Engine     *search.Engine
	DB         database.Service
	Directory  subscriber.Directory
	Ledger     ledger.Ledger
	Sender     messaging.Sender
	Selector   *delivery.Selector
	Dispatcher *scheduler.Dispatcher
	Gateways   auth.Repository

	closers []func() error
}

// LoadContent builds the read-only corpus index and topic catalog. Any
// failure here must stop startup.
func LoadContent(cfg *config.Config) (*corpus.Index, *topic.Catalog, error) {
	ix, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading corpus: %w", err)
	}
	cat, err := topic.Load(cfg.TopicsPath, cfg.KeywordsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading topics: %w", err)
	}
	return ix, cat, nil
}

// Build wires the application. On error everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	if app.Location, err = cfg.Location(); err != nil {
		return nil, err
	}
	if app.Index, app.Catalog, err = LoadContent(cfg); err != nil {
		return nil, err
	}
	for label, refs := range app.Catalog.Unresolved(app.Index) {
		logger.Warn("topic refs missing from corpus", zap.String("topic", label), zap.Int("count", len(refs)))
	}
	logger.Info("content loaded",
		zap.Int("passages", app.Index.Len()),
		zap.Int("topics", len(app.Catalog.Topics())),
	)

	app.Engine = search.NewEngine(app.Index, search.WithCache(cfg.SearchCacheTTL))

	keys, err := auth.ParseGatewayKeys(cfg.GatewayKeys)
	if err != nil {
		return nil, fmt.Errorf("parsing GATEWAY_KEYS: %w", err)
	}
	app.Gateways = auth.NewStaticRepository(keys)

	if err = app.openStore(); err != nil {
		return nil, err
	}
	if err = app.openLedger(ctx); err != nil {
		return nil, err
	}
	if err = app.openTransport(ctx); err != nil {
		return nil, err
	}

	app.Selector = delivery.NewSelector(app.Index, app.Catalog, app.Engine, app.Ledger, cfg.DefaultTopic,
		delivery.WithLogger(logger))
	app.Dispatcher = scheduler.NewDispatcher(app.Directory, app.Selector, app.Sender, scheduler.Config{
		Location:           app.Location,
		Count:              delivery.DefaultCount,
		SendTimeout:        cfg.SendTimeout,
		MaxConcurrentSends: cfg.MaxConcurrentSends,
	}, logger)
	return app, nil
}

func (a *App) defaults() subscriber.Defaults {
	return subscriber.Defaults{
		Topic: a.Config.DefaultTopic,
		Slots: subscriber.Slots{
			Morning:   a.Config.DefaultMorning,
			Midday:    a.Config.DefaultMidday,
			Afternoon: a.Config.DefaultAfternoon,
			Evening:   a.Config.DefaultEvening,
		},
	}
}

func (a *App) openStore() error {
	cfg := a.Config
	var err error
	switch cfg.StoreDriver {
	case "memory":
		a.Directory = subscriber.NewMemoryDirectory(a.defaults())
		a.Ledger = ledger.NewMemoryLedger()
		return nil
	case "sqlite":
		a.DB, err = database.OpenSQLite(cfg.SQLitePath)
	case "postgres":
		a.DB, err = database.OpenPostgres(database.PostgresDSN(
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSchema))
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if err != nil {
		return err
	}
	a.closers = append(a.closers, a.DB.Close)
	a.Directory = subscriber.NewRepository(a.DB, a.defaults())
	a.Ledger = ledger.NewSQLLedger(a.DB)
	a.Logger.Info("store opened", zap.String("driver", cfg.StoreDriver))
	return nil
}

func (a *App) openLedger(ctx context.Context) error {
	switch a.Config.LedgerDriver {
	case "store", "":
		return nil
	case "redis":
		rdb, err := ledger.NewRedisClient(a.Config.RedisURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.Ledger = ledger.NewRedisLedger(rdb, a.Config.RedisPrefix)
		a.Logger.Info("ledger using redis")
		return nil
	default:
		return fmt.Errorf("unknown LEDGER_DRIVER %q", a.Config.LedgerDriver)
	}
}

func (a *App) openTransport(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Transport {
	case "log", "":
		a.Sender = messaging.NewLogSender(a.Logger)
	case "nats":
		nc, js, err := messaging.ConnectNATS(ctx, cfg.NatsURL, cfg.NatsSubject)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { return nc.Drain() })
		a.Sender = messaging.NewNATSSender(js, cfg.NatsSubject)
	case "mail":
		if cfg.SmtpFrom == "" {
			return errors.New("TRANSPORT=mail requires SMTP_FROM")
		}
		mailer := mail.NewMail(cfg.SmtpFrom, cfg.SmtpFromName, cfg.SmtpPassword, cfg.SmtpHost, cfg.SmtpPort)
		a.Sender = messaging.NewMailSender(mailer, a.Directory)
	default:
		return fmt.Errorf("unknown TRANSPORT %q", cfg.Transport)
	}
	a.Logger.Info("transport ready", zap.String("transport", cfg.Transport))
	return nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
