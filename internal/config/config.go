package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/marketlens/marketlens/internal/core"
	"github.com/spf13/viper"
)

// Config is the immutable per-run configuration. It is loaded once and
// threaded explicitly through every component constructor.
type Config struct {
	Weights    WeightsConfig             `mapstructure:"weights"`
	Thresholds ThresholdsConfig          `mapstructure:"thresholds"`
	Signals    SignalsConfig             `mapstructure:"signals"`
	Pipeline   PipelineConfig            `mapstructure:"pipeline"`
	Universe   []UniverseItem            `mapstructure:"universe"`
	Sentiment  SentimentConfig           `mapstructure:"sentiment"`
	Storage    StorageConfig             `mapstructure:"storage"`
	Archive    ArchiveConfig             `mapstructure:"archive"`
	Notifiers  map[string]NotifierConfig `mapstructure:"notifiers"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
}

// WeightsConfig holds the five scoring component weights. They must sum to
// exactly 1.0 (within 1e-9) or the run aborts before any computation.
type WeightsConfig struct {
	MAAlignment float64 `mapstructure:"ma_alignment"`
	Supertrend  float64 `mapstructure:"supertrend"`
	RSI         float64 `mapstructure:"rsi"`
	Volume      float64 `mapstructure:"volume"`
	Sentiment   float64 `mapstructure:"sentiment"`
}

// Sum returns the total of all component weights.
func (w WeightsConfig) Sum() float64 {
	return w.MAAlignment + w.Supertrend + w.RSI + w.Volume + w.Sentiment
}

// ThresholdsConfig holds score cutoffs and universe filters.
type ThresholdsConfig struct {
	BuyScore       float64 `mapstructure:"buy_score"`
	SellScore      float64 `mapstructure:"sell_score"`
	MinPrice       float64 `mapstructure:"min_price"`
	MinVolume      int64   `mapstructure:"min_volume"`
	MinRewardRatio float64 `mapstructure:"min_reward_ratio"`
}

// SignalsConfig holds signal construction and lifecycle settings.
type SignalsConfig struct {
	ExpiryDays       int     `mapstructure:"expiry_days"`
	ATRTargetMult    float64 `mapstructure:"atr_target_mult"`
	RiskTarget1Mult  float64 `mapstructure:"risk_target1_mult"`
	SwingLookback    int     `mapstructure:"swing_lookback"`
	Target2Enabled   bool    `mapstructure:"target2_enabled"`
	TrailToBreakeven bool    `mapstructure:"trail_to_breakeven"`
}

// PipelineConfig holds batch execution settings.
type PipelineConfig struct {
	Workers          int           `mapstructure:"workers"`
	MinLookbackBars  int           `mapstructure:"min_lookback_bars"`
	SentimentRetries int           `mapstructure:"sentiment_retries"`
	SentimentBackoff time.Duration `mapstructure:"sentiment_backoff"`
}

// UniverseItem is one stock eligible for daily analysis.
type UniverseItem struct {
	Symbol string `mapstructure:"symbol"`
	Name   string `mapstructure:"name"`
}

// SentimentConfig selects and configures the sentiment provider.
type SentimentConfig struct {
	Provider   string        `mapstructure:"provider"` // "lexicon", "newsapi", "openai", "claude", "static"
	APIKey     string        `mapstructure:"api_key"`
	NewsAPIKey string        `mapstructure:"newsapi_key"`
	Model      string        `mapstructure:"model"`
	Lookback   time.Duration `mapstructure:"lookback"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds the optional sentiment cache settings.
type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	DB      int           `mapstructure:"db"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// StorageConfig selects the signal store backend.
type StorageConfig struct {
	Driver  string `mapstructure:"driver"` // "memory" or "postgres"
	DSN     string `mapstructure:"dsn"`
	MaxSize int    `mapstructure:"max_size"`
}

// ArchiveConfig selects the daily result archive backend.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"`
	S3      S3Config `mapstructure:"s3"`
}

// S3Config holds S3 archive settings.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// NotifierConfig holds per-notifier settings.
type NotifierConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	BotToken string            `mapstructure:"bot_token"`
	ChatID   string            `mapstructure:"chat_id"`
	URL      string            `mapstructure:"url"`
	Headers  map[string]string `mapstructure:"headers"`
}

// MetricsConfig holds metrics exposure settings.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from file with environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand ${VAR} references in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with the documented default parameters.
func Defaults() *Config {
	return &Config{
		Weights: WeightsConfig{
			MAAlignment: 0.30,
			Supertrend:  0.25,
			RSI:         0.15,
			Volume:      0.10,
			Sentiment:   0.20,
		},
		Thresholds: ThresholdsConfig{
			BuyScore:       70.0,
			SellScore:      30.0,
			MinPrice:       20.0,
			MinVolume:      100000,
			MinRewardRatio: 1.5,
		},
		Signals: SignalsConfig{
			ExpiryDays:       5,
			ATRTargetMult:    2.0,
			RiskTarget1Mult:  1.5,
			SwingLookback:    10,
			Target2Enabled:   true,
			TrailToBreakeven: false,
		},
		Pipeline: PipelineConfig{
			Workers:          runtime.NumCPU(),
			MinLookbackBars:  100,
			SentimentRetries: 2,
			SentimentBackoff: 500 * time.Millisecond,
		},
		Sentiment: SentimentConfig{
			Provider: "lexicon",
			Lookback: 72 * time.Hour,
			Redis: RedisConfig{
				TTL: 6 * time.Hour,
			},
		},
		Storage: StorageConfig{
			Driver:  "memory",
			MaxSize: 10000,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "data/archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 1e-9

// Validate checks the configuration for errors. Any violation is fatal at
// startup and aborts the run before computation begins.
func (c *Config) Validate() error {
	if diff := math.Abs(c.Weights.Sum() - 1.0); diff > weightTolerance {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("scoring weights must sum to 1.0, got %.12f", c.Weights.Sum()))
	}
	for name, w := range map[string]float64{
		"ma_alignment": c.Weights.MAAlignment,
		"supertrend":   c.Weights.Supertrend,
		"rsi":          c.Weights.RSI,
		"volume":       c.Weights.Volume,
		"sentiment":    c.Weights.Sentiment,
	} {
		if w < 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("weight %s cannot be negative, got %f", name, w))
		}
	}

	if c.Thresholds.BuyScore <= c.Thresholds.SellScore {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("buy_score (%.1f) must be above sell_score (%.1f)",
				c.Thresholds.BuyScore, c.Thresholds.SellScore))
	}
	if c.Thresholds.BuyScore > 100 || c.Thresholds.SellScore < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("score thresholds must lie in [0,100]"))
	}
	if c.Thresholds.MinRewardRatio <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_reward_ratio must be positive, got %f", c.Thresholds.MinRewardRatio))
	}

	if c.Signals.ExpiryDays <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("expiry_days must be positive, got %d", c.Signals.ExpiryDays))
	}
	if c.Signals.SwingLookback <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("swing_lookback must be positive, got %d", c.Signals.SwingLookback))
	}
	if c.Signals.ATRTargetMult <= 0 || c.Signals.RiskTarget1Mult <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("target multipliers must be positive"))
	}

	if c.Pipeline.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers must be at least 1, got %d", c.Pipeline.Workers))
	}

	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("postgres storage requires a dsn"))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("localfs archive requires a path"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 archive requires a bucket"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	return nil
}
