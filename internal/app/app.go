// Package app wires configuration, sources, store, report, and mail into
// the daily run pipeline.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chineseneo/fuel-bot/internal/common"
	"github.com/chineseneo/fuel-bot/internal/config"
	"github.com/chineseneo/fuel-bot/internal/fuel"
	"github.com/chineseneo/fuel-bot/internal/fuel/sources"
	"github.com/chineseneo/fuel-bot/internal/mail"
	"github.com/chineseneo/fuel-bot/internal/report"
	"github.com/chineseneo/fuel-bot/internal/store"
)

// App owns the history store for the process lifetime and runs the daily
// fetch/record/prune/save/report cycle.
type App struct {
	cfg     *config.AppConfig
	logger  *common.Logger
	service *fuel.Service
	history *store.History
	mailer  mail.Mailer
}

// New constructs the App from loaded configuration. The history store is
// loaded here and persisted once per run.
func New(cfg *config.AppConfig, logger *common.Logger) *App {
	client := &http.Client{Timeout: cfg.FetchTimeout}

	resolver := fuel.NewResolver(cfg.Stations)
	filter := fuel.NewFilter(cfg.Stations)

	priceSources := []fuel.PriceSource{
		sources.NewStationBoxSource(client, cfg.StationBoxURL, cfg.Box, cfg.Grade, filter, resolver),
		sources.NewAggregatorSource(client, cfg.AggregatorURL, cfg.State, cfg.Grade, cfg.SentinelKey),
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		service: fuel.NewService(priceSources, cfg.FetchTimeout, logger),
		history: store.Load(cfg.HistoryPath, logger),
		mailer:  mail.New(cfg.Mail, logger),
	}
}

// History exposes the store for read-only consumers (daemon-mode API).
func (a *App) History() *store.History {
	return a.history
}

// RunDaily executes one full cycle: fetch today's prices, record them,
// prune and persist the history, then assemble and send the report. The
// history is saved before any rendering or mailing so a downstream failure
// never loses today's data. Only a failed save is fatal.
func (a *App) RunDaily(ctx context.Context) error {
	now := time.Now().In(a.cfg.Location)
	date := now.Format(store.DateFormat)

	observations, statuses := a.service.FetchToday(ctx)
	for _, status := range statuses {
		if status.Failed() {
			a.logger.Warn().Str("source", string(status.Source)).Err(status.Err).Msg("source degraded this run")
			continue
		}
		a.logger.Info().Str("source", string(status.Source)).Int("observations", status.Observations).Msg("source fetched")
	}

	for _, obs := range observations {
		a.history.Record(date, obs.Key, obs.Price)
	}
	a.history.Prune(a.cfg.RetentionDays, now)

	if err := a.history.Save(); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}

	rep := report.Assemble(a.history.Snapshot(), observations, statuses, report.Options{
		SeriesKeys:   a.cfg.SeriesKeys,
		SentinelKey:  a.cfg.SentinelKey,
		RankSentinel: a.cfg.RankSentinel,
		Suburb:       a.cfg.Suburb,
		Grade:        a.cfg.Grade,
	})

	title := fmt.Sprintf("%s Price Trend (%s)", a.cfg.Grade, a.cfg.Suburb)
	png, err := report.RenderChart(title, rep.Chart)
	if err != nil {
		// Not fatal: the history is already durable and the text report
		// still goes out.
		a.logger.Warn().Err(err).Msg("chart render failed; sending text-only report")
		png = nil
	}

	subject := fmt.Sprintf("Daily %s Fuel Prices - %s", a.cfg.Grade, a.cfg.Suburb)
	if err := a.mailer.Send(subject, rep.Summary, png, "fuel-trend.png"); err != nil {
		a.logger.Error().Err(err).Msg("report delivery failed")
	}

	return nil
}
