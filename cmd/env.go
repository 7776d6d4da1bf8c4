package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/primeprop/primeprop/internal/alert"
	"github.com/primeprop/primeprop/internal/history"
	"github.com/primeprop/primeprop/internal/ingest"
	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/internal/pipeline"
	"github.com/primeprop/primeprop/internal/resolve"
	"github.com/primeprop/primeprop/internal/store"
	"github.com/primeprop/primeprop/pkg/balldontlie"
	"github.com/primeprop/primeprop/pkg/oddsapi"
	"github.com/primeprop/primeprop/pkg/prizepicks"
)

// runEnv holds everything a pipeline run needs, wired from config.
type runEnv struct {
	store    store.Store
	odds     oddsapi.Client
	registry *resolve.Registry
	ingestor *ingest.Ingestor
	adapters []ingest.ProviderAdapter
	schedule pipeline.ScheduleSource
	pipe     *pipeline.Pipeline
}

func (e *runEnv) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
}

// initStore opens the configured pick-log backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DSN)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DSN)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initRunEnv wires clients, adapters, and the pipeline from config.
func initRunEnv(ctx context.Context) (*runEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	oddsClient := oddsapi.NewClient(cfg.OddsAPI.Key,
		oddsapi.WithBaseURL(cfg.OddsAPI.BaseURL),
		oddsapi.WithSport(cfg.OddsAPI.Sport),
		oddsapi.WithLimiter(rate.NewLimiter(rate.Limit(cfg.OddsAPI.RPS), 1)),
	)

	adapters := []ingest.ProviderAdapter{
		ingest.NewOddsAPIAdapter(oddsClient, cfg.OddsAPI.Regions, cfg.OddsAPI.Markets),
	}
	if cfg.PrizePicks.Enabled {
		ppClient := prizepicks.NewClient(prizepicks.WithBaseURL(cfg.PrizePicks.BaseURL))
		adapters = append(adapters, ingest.NewPrizePicksAdapter(ppClient, cfg.PrizePicks.LeagueID))
	}

	registry := resolve.NewRegistry(cfg.Pipeline.MinMatchScore)
	ingestor := ingest.New(registry, time.Duration(cfg.Pipeline.FetchTimeoutSecs)*time.Second)

	bdlClient := balldontlie.NewClient(cfg.Balldontlie.Key,
		balldontlie.WithBaseURL(cfg.Balldontlie.BaseURL),
	)
	hist := history.NewCachedSource(
		history.NewBalldontlieSource(bdlClient),
		time.Duration(cfg.Balldontlie.CacheTTLHours)*time.Hour,
	)

	var notifiers []alert.Notifier
	if cfg.Alert.TelegramToken != "" && cfg.Alert.TelegramChatID != "" {
		notifiers = append(notifiers, alert.NewTelegram(cfg.Alert.TelegramToken, cfg.Alert.TelegramChatID))
	}
	if cfg.Alert.DiscordWebhook != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alert.DiscordWebhook))
	}
	alerter := alert.New(cfg.Alert.MinEdge, notifiers...)

	opts := pipeline.Options{
		WindowN:       cfg.Pipeline.WindowN,
		Method:        projectionMethod(cfg.Pipeline.Method),
		EdgeThreshold: cfg.Pipeline.EdgeThreshold,
	}
	pipe := pipeline.New(opts, registry, ingestor, adapters, hist, alerter, st)

	return &runEnv{
		store:    st,
		odds:     oddsClient,
		registry: registry,
		ingestor: ingestor,
		adapters: adapters,
		schedule: pipeline.NewOddsAPISchedule(oddsClient),
		pipe:     pipe,
	}, nil
}

func projectionMethod(s string) model.ProjectionMethod {
	if s == string(model.MethodSimple) {
		return model.MethodSimple
	}
	return model.MethodWeighted
}
