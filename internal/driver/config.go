package driver

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config controls how a Compilation resolves modules (spec.md §1.2/§4.2: the
// core itself never reads a config file or the environment — that is this
// package's job, performed once per process invocation in cmd/malphas).
type Config struct {
	// Roots lists module search directories. It is loaded from the config
	// file, but nothing in the driver reads it: Compile only sees the
	// Sources it is given, and an import of a module not among them is not
	// looked up on disk.
	Roots []string `yaml:"roots"`

	// WarningsAsErrors makes Failed report failure when any warning was
	// recorded. The sink's error count, which Compile checks between
	// phases, is not changed by it.
	WarningsAsErrors bool `yaml:"warnings_as_errors"`
}

// DefaultConfig is used when no config file is found.
func DefaultConfig() Config {
	return Config{Roots: []string{"."}}
}

// LoadConfig reads path as YAML into a Config, then applies the one
// environment override, MALPHAS_WARNINGS_AS_ERRORS — including when set in a local
// .env file, loaded via godotenv before the environment is consulted (mirrors
// the funxy example's config loading: file defaults, env overrides).
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if uerr := yaml.Unmarshal(data, &cfg); uerr != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, uerr)
		}
	case os.IsNotExist(err):
		// no config file: defaults plus environment overrides only
	default:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	_ = godotenv.Load() // best-effort; a missing .env is not an error

	if v, ok := os.LookupEnv("MALPHAS_WARNINGS_AS_ERRORS"); ok {
		cfg.WarningsAsErrors = v == "1" || v == "true"
	}

	return cfg, nil
}
