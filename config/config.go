// Package config loads generator settings.
//
// Sources apply in order: built-in defaults, an optional TOML file, then REDKING_*
// environment variables. Command-line flags are applied by the CLI afterwards.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/lixenwraith/redking/constant"
	"github.com/lixenwraith/redking/parameter"
)

// Config is the full runtime configuration
type Config struct {
	StoreKind string `toml:"store_kind" env:"REDKING_STORE_KIND"`
	StorePath string `toml:"store_path" env:"REDKING_STORE_PATH"`
	MediaDir  string `toml:"media_dir" env:"REDKING_MEDIA_DIR"`
	SiteURL   string `toml:"site_url" env:"REDKING_SITE_URL"`

	// WebhookURL enables publishing over HTTP; empty logs instead
	WebhookURL string `toml:"webhook_url" env:"REDKING_WEBHOOK_URL"`
	// LameBinary converts wav to mp3; empty keeps wav
	LameBinary string `toml:"lame_binary" env:"REDKING_LAME_BINARY"`

	SampleRate   int           `toml:"sample_rate" env:"REDKING_SAMPLE_RATE"`
	TimeLength   int           `toml:"time_length" env:"REDKING_TIME_LENGTH"`
	BarDuration  time.Duration `toml:"bar_duration" env:"REDKING_BAR_DURATION"`
	MasterVolume float64       `toml:"master_volume" env:"REDKING_MASTER_VOLUME"`

	PreRunSteps int           `toml:"pre_run_steps" env:"REDKING_PRE_RUN_STEPS"`
	MicroSteps  int           `toml:"micro_steps" env:"REDKING_MICRO_STEPS"`
	StepPacing  time.Duration `toml:"step_pacing" env:"REDKING_STEP_PACING"`
	Magnify     int           `toml:"magnify" env:"REDKING_MAGNIFY"`
	MaxAttempts int           `toml:"max_attempts" env:"REDKING_MAX_ATTEMPTS"`

	RandomProbability float64 `toml:"random_probability" env:"REDKING_RANDOM_PROBABILITY"`
	AcceptProbability float64 `toml:"accept_probability" env:"REDKING_ACCEPT_PROBABILITY"`
	MutationRate      float64 `toml:"mutation_rate" env:"REDKING_MUTATION_RATE"`
	MutationStdDev    float64 `toml:"mutation_stddev" env:"REDKING_MUTATION_STDDEV"`

	Monitor bool `toml:"monitor" env:"REDKING_MONITOR"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		StoreKind:         parameter.DefaultStoreKind,
		StorePath:         parameter.DefaultStorePath,
		MediaDir:          parameter.DefaultMediaDir,
		SiteURL:           parameter.DefaultSiteURL,
		LameBinary:        parameter.LameBinary,
		SampleRate:        constant.AudioSampleRate,
		TimeLength:        parameter.RunTimeLength,
		BarDuration:       parameter.BarDuration,
		MasterVolume:      parameter.EncodeMasterVolume,
		PreRunSteps:       parameter.PreRunSteps,
		MicroSteps:        parameter.MicroSteps,
		StepPacing:        parameter.StepPacing,
		Magnify:           parameter.TraceMagnify,
		RandomProbability: parameter.SelectRandomProbability,
		AcceptProbability: parameter.SelectAcceptProbability,
		MutationRate:      parameter.MutationRate,
		MutationStdDev:    parameter.MutationStdDev,
	}
}

// Load applies the TOML file at path (skipped when empty) and the environment over defaults
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.MasterVolume = min(max(cfg.MasterVolume, 0), 1)
	return cfg, nil
}

// Validate reports every setting that cannot produce a run
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	switch c.StoreKind {
	case constant.StoreMemory, constant.StoreTOML, constant.StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("store_kind: unsupported %q", c.StoreKind))
	}
	check(c.StoreKind == constant.StoreMemory || c.StorePath != "", "store_path: required for %s", c.StoreKind)
	check(c.MediaDir != "", "media_dir: required")
	check(c.SampleRate > 0, "sample_rate: must be positive, got %d", c.SampleRate)
	check(c.TimeLength > 0, "time_length: must be positive, got %d", c.TimeLength)
	check(c.BarDuration > 0, "bar_duration: must be positive, got %s", c.BarDuration)
	check(c.PreRunSteps >= 0, "pre_run_steps: must not be negative, got %d", c.PreRunSteps)
	check(c.MicroSteps > 0, "micro_steps: must be positive, got %d", c.MicroSteps)
	check(c.StepPacing >= 0, "step_pacing: must not be negative, got %s", c.StepPacing)
	check(c.Magnify >= 1, "magnify: must be at least 1, got %d", c.Magnify)
	check(c.MaxAttempts >= 0, "max_attempts: must not be negative, got %d", c.MaxAttempts)
	check(probability(c.RandomProbability), "random_probability: must be in [0,1], got %v", c.RandomProbability)
	check(probability(c.AcceptProbability), "accept_probability: must be in [0,1], got %v", c.AcceptProbability)
	check(probability(c.MutationRate), "mutation_rate: must be in [0,1], got %v", c.MutationRate)
	check(c.MutationStdDev >= 0, "mutation_stddev: must not be negative, got %v", c.MutationStdDev)

	bar := int(c.BarDuration.Seconds() * float64(c.SampleRate))
	check(bar > 0 && c.SampleRate*c.TimeLength >= 2*bar, "bar_duration: %s leaves no full bar pair in %ds", c.BarDuration, c.TimeLength)

	return errors.Join(errs...)
}

func probability(p float64) bool {
	return p >= 0 && p <= 1
}
