package app

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/tesoreria/internal/dataset"
	"github.com/odyssey-erp/tesoreria/internal/fetch"
	"github.com/odyssey-erp/tesoreria/internal/layout"
	"github.com/odyssey-erp/tesoreria/internal/observability"
	"github.com/odyssey-erp/tesoreria/internal/render"
	"github.com/odyssey-erp/tesoreria/internal/reporting"
)

// NewReportService wires the report pipeline from configuration. redisClient
// and metrics may be nil.
func NewReportService(cfg *Config, logger *slog.Logger, metrics *observability.Metrics, redisClient *redis.Client) (*reporting.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	keywords, err := dataset.LoadKeywordTable(cfg.DatasetKeywordsFile)
	if err != nil {
		return nil, fmt.Errorf("load dataset keywords: %w", err)
	}

	fetchOpts := fetch.Options{
		Timeout:      cfg.FetchTimeout,
		MaxBodyBytes: cfg.FetchMaxBodyBytes,
		Concurrency:  cfg.FetchConcurrency,
		Cache:        fetch.NewCache(redisClient, cfg.FetchCacheTTL, logger),
		Logger:       logger,
	}
	serviceOpts := reporting.Options{
		Observations: cfg.ReportObservations,
		Logger:       logger,
	}
	if metrics != nil {
		fetchOpts.Observer = metrics
		serviceOpts.Observer = metrics
	}

	engine := layout.NewEngine(layout.Options{
		Title:     cfg.ReportTitle,
		Treasurer: cfg.ReportTreasurer,
		Location:  cfg.Location(),
	})

	return reporting.NewService(
		fetch.NewFetcher(nil, fetchOpts),
		dataset.NewClassifier(keywords, logger),
		engine,
		render.NewPDFRenderer(),
		serviceOpts,
	), nil
}
