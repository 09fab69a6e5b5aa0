package asyncqueue

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned by LoadConfig when the environment holds
// values that cannot be parsed.
var ErrParsingConfig = errors.New("asyncqueue: failed to parse config")

// Config is the environment form of Options.
type Config struct {
	MaxConcurrency int           `env:"ASYNCQ_MAX_CONCURRENCY" envDefault:"5"`
	MaxRetries     int           `env:"ASYNCQ_MAX_RETRIES" envDefault:"0"`
	Timeout        time.Duration `env:"ASYNCQ_TIMEOUT" envDefault:"0s"`
	BaseDelay      time.Duration `env:"ASYNCQ_BASE_DELAY" envDefault:"300ms"`
}

// LoadConfig reads Config from the environment. Without arguments a
// .env file in the working directory is loaded when present; named
// files must exist.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		// the default .env file is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return c, nil
}

// Options converts c into queue options.
func (c Config) Options() Options {
	return Options{
		MaxConcurrency: c.MaxConcurrency,
		MaxRetries:     c.MaxRetries,
		Timeout:        c.Timeout,
		BaseDelay:      c.BaseDelay,
	}
}
