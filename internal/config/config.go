// Package config defines service configuration and its loading from file and env.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/racecard/internal/domain/racecard"
	"github.com/okian/racecard/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory analysis queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many card ids are remembered for duplicate detection.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreCapacity bounds the number of analyzed cards kept in memory.
	StoreCapacity int `koanf:"store_capacity"`

	// MaxBodyBytes caps request bodies on card uploads.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// VerdictMarker holds one or more comma separated markers of non-data lines.
	VerdictMarker string `koanf:"verdict_marker"`
	WeightSuffix  string `koanf:"weight_suffix"`

	// Scoring coefficients.
	WeightCoef       float64 `koanf:"weight_coef"`
	JockeyCoef       float64 `koanf:"jockey_coef"`
	TrainerCoef      float64 `koanf:"trainer_coef"`
	GroundCoef       float64 `koanf:"ground_coef"`
	WeightGainFactor float64 `koanf:"weight_gain_factor"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	c := scoring.DefaultCoefficients()
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       50_000,
		StoreCapacity:    10_000,
		MaxBodyBytes:     4 << 20,
		VerdictMarker:    "ATR VERDICT",
		WeightSuffix:     "kg",
		WeightCoef:       c.Weight,
		JockeyCoef:       c.Jockey,
		TrainerCoef:      c.Trainer,
		GroundCoef:       c.Ground,
		WeightGainFactor: c.WeightGainFactor,
	}
}

// Coefficients returns the scoring coefficients carried by c.
func (c *Config) Coefficients() scoring.Coefficients {
	return scoring.Coefficients{
		Weight:           c.WeightCoef,
		Jockey:           c.JockeyCoef,
		Trainer:          c.TrainerCoef,
		Ground:           c.GroundCoef,
		WeightGainFactor: c.WeightGainFactor,
	}
}

// ParserOptions returns the record parser settings carried by c.
func (c *Config) ParserOptions() []racecard.Option {
	var markers []string
	for _, m := range strings.Split(c.VerdictMarker, ",") {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	return []racecard.Option{
		racecard.WithVerdictMarkers(markers...),
		racecard.WithWeightSuffix(strings.TrimSpace(c.WeightSuffix)),
	}
}

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WeightGainFactor <= 0:
		return fmt.Errorf("%w: weight_gain_factor must be positive, got %g", ErrInvalidConfig, c.WeightGainFactor)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
