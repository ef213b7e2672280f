package config

import (
	"os"
	"strconv"

	"github.com/jsphweid/markovmidi/constants"
	"github.com/jsphweid/markovmidi/sequencer"
	"github.com/pkg/errors"
)

// Config holds everything a run needs. Values come from the environment
// (optionally a .env file) and can be overridden by command line flags.
type Config struct {
	Generation sequencer.Config

	InputDir   string // local directory or s3://bucket/prefix
	OutputPath string
	CorpusPath string // persisted corpus written by `index`
	MaxFiles   int
	// 0 picks a seed from the clock
	Seed int64

	Environment string
	Port        string
	LogLevel    string
	SentryDSN   string
}

func Load() (*Config, error) {
	gen := sequencer.DefaultConfig()
	var err error
	if gen.MaxGlobalPolyphony, err = getEnvInt("MAX_GLOBAL_POLYPHONY", gen.MaxGlobalPolyphony); err != nil {
		return nil, err
	}
	if gen.MaxVoices, err = getEnvInt("MAX_VOICES", gen.MaxVoices); err != nil {
		return nil, err
	}
	if gen.GridStepTicks, err = getEnvInt("GRID_STEP_TICKS", gen.GridStepTicks); err != nil {
		return nil, err
	}
	if gen.Bars, err = getEnvInt("BARS", gen.Bars); err != nil {
		return nil, err
	}
	if gen.OnsetProbability, err = getEnvFloat("ONSET_PROBABILITY", gen.OnsetProbability); err != nil {
		return nil, err
	}

	cfg := &Config{
		Generation:  gen,
		InputDir:    constants.GetInputDir(),
		OutputPath:  constants.GetOutputPath(),
		CorpusPath:  constants.GetCorpusPath(),
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
	if cfg.MaxFiles, err = getEnvInt("MAX_FILES", 0); err != nil {
		return nil, err
	}
	seed, err := getEnvInt("SEED", 0)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxFiles < 0 {
		return errors.Errorf("max files cannot be negative, got %d", c.MaxFiles)
	}
	return c.Generation.Validate()
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%v must be an integer", key)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%v must be a number", key)
	}
	return f, nil
}
