package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/marketlens/marketlens/internal/archive"
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/logger"
	"github.com/marketlens/marketlens/internal/metrics"
	"github.com/marketlens/marketlens/internal/notifier"
	"github.com/marketlens/marketlens/internal/notifier/telegram"
	"github.com/marketlens/marketlens/internal/notifier/webhook"
	"github.com/marketlens/marketlens/internal/pipeline"
	"github.com/marketlens/marketlens/internal/prices"
	"github.com/marketlens/marketlens/internal/sentiment"
	"github.com/marketlens/marketlens/internal/storage/analysis"
	"github.com/marketlens/marketlens/internal/storage/signalstore"
)

// loadConfig reads and validates the configuration, falling back to
// defaults when no file is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildPipeline assembles the batch pipeline and its collaborators from
// configuration.
func buildPipeline(cfg *config.Config, log *zap.Logger) (*pipeline.Pipeline, signalstore.Store, error) {
	var priceProvider prices.Provider
	switch priceFeed {
	case "", "csv":
		var err error
		priceProvider, err = prices.LoadCSVDir(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("loading price data: %w", err)
		}
	case "yahoo":
		priceProvider = prices.NewYahooProvider()
	default:
		return nil, nil, fmt.Errorf("unknown price feed %q", priceFeed)
	}

	sentimentProvider, err := buildSentiment(cfg)
	if err != nil {
		return nil, nil, err
	}

	signals, err := buildSignalStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := pipeline.Options{}
	if cfg.Archive.Enabled {
		archiver, err := buildArchiver(cfg)
		if err != nil {
			return nil, nil, err
		}
		opts.Archiver = archiver
	}
	if registry, err := buildNotifiers(cfg); err != nil {
		return nil, nil, err
	} else if registry.Len() > 0 {
		opts.Notifiers = registry
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = metrics.NewRegistry()
	}

	p := pipeline.New(cfg, log, priceProvider, sentimentProvider,
		signals, analysis.NewMemoryStore(), opts)
	return p, signals, nil
}

func buildSentiment(cfg *config.Config) (sentiment.Provider, error) {
	sc := cfg.Sentiment

	var source sentiment.HeadlineSource
	if sc.NewsAPIKey != "" {
		source = sentiment.NewNewsAPIClient(sc.NewsAPIKey)
	} else {
		source = sentiment.NewStaticHeadlines(nil)
	}

	var provider sentiment.Provider
	var err error

	switch sc.Provider {
	case "", "lexicon":
		provider = sentiment.NewLexiconProvider(source, sc.Lookback)
	case "newsapi":
		if sc.NewsAPIKey == "" {
			return nil, fmt.Errorf("newsapi sentiment requires newsapi_key")
		}
		provider = sentiment.NewLexiconProvider(source, sc.Lookback)
	case "openai":
		provider, err = sentiment.NewOpenAIProvider(sc.APIKey, sc.Model, source, sc.Lookback)
	case "claude":
		provider, err = sentiment.NewClaudeProvider(sc.APIKey, sc.Model, source, sc.Lookback)
	case "static":
		provider = sentiment.NewStaticProvider(nil)
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", sc.Provider)
	}
	if err != nil {
		return nil, err
	}

	if sc.Redis.Enabled {
		provider = sentiment.NewRedisCache(provider, sc.Redis.Addr, sc.Redis.DB, sc.Redis.TTL)
	}
	return provider, nil
}

func buildSignalStore(cfg *config.Config) (signalstore.Store, error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		return signalstore.NewMemoryStore(cfg.Storage.MaxSize), nil
	case "postgres":
		return signalstore.NewGormStore(cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildArchiver(cfg *config.Config) (*archive.Archiver, error) {
	var backend archive.Backend
	var err error

	switch cfg.Archive.Type {
	case "localfs":
		backend, err = archive.NewLocalFS(cfg.Archive.Path)
	case "s3":
		backend, err = archive.NewS3(cfg.Archive.S3)
	default:
		err = fmt.Errorf("unknown archive type %q", cfg.Archive.Type)
	}
	if err != nil {
		return nil, err
	}
	return archive.New(backend), nil
}

func buildNotifiers(cfg *config.Config) (*notifier.Registry, error) {
	registry := notifier.NewRegistry()

	for name, nc := range cfg.Notifiers {
		if !nc.Enabled {
			continue
		}
		var n notifier.Notifier
		var err error
		switch name {
		case "telegram":
			n, err = telegram.New(nc.BotToken, nc.ChatID)
		case "webhook":
			n, err = webhook.New(nc.URL, nc.Headers)
		default:
			err = fmt.Errorf("unknown notifier %q", name)
		}
		if err != nil {
			return nil, err
		}
		if err := registry.Register(n); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func newLogger() *zap.Logger {
	return logger.Must(debug)
}
