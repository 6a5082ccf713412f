package bbref

import (
	"log/slog"

	"github.com/albapepper/bbref-tables/internal/config"
	"github.com/albapepper/bbref-tables/internal/names"
)

// FromConfig builds a handler from configuration: a rate-limited client,
// the headless renderer when BBREF_HEADLESS is set, and the name exception
// list when BBREF_NAME_EXCEPTIONS names one.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Handler, error) {
	client := NewClient(cfg.BaseURL, cfg.RequestsPerMinute, ClientOptions{
		UserAgent: cfg.UserAgent,
		RetryMax:  cfg.RetryMax,
		Timeout:   cfg.Timeout,
	}, logger)

	var render Renderer
	if cfg.Headless {
		render = NewHeadlessRenderer(client, logger)
	}

	var exceptions *names.NameMap
	if cfg.NameExceptions != "" {
		m, err := names.LoadNameMap(cfg.NameExceptions)
		if err != nil {
			return nil, err
		}
		exceptions = m
		logger.Info("Name exceptions loaded", "path", cfg.NameExceptions, "count", m.Len())
	}

	return NewHandler(client, render, exceptions, logger), nil
}
