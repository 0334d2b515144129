package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PUNCHD_CONFIG is set
//  3. env (prefix PUNCHD_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PUNCHD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PUNCHD_ADDR, PUNCHD_STORE_KIND, ...
	// Map env keys like PUNCHD_STORE_KIND -> store_kind (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PUNCHD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "punchd_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreKind != StoreFile && c.StoreKind != StoreSQLite:
		return fmt.Errorf("%w: unknown store_kind %q", ErrInvalidConfig, c.StoreKind)
	case c.JudgeKind != JudgeStatic && c.JudgeKind != JudgeRemote:
		return fmt.Errorf("%w: unknown judge_kind %q", ErrInvalidConfig, c.JudgeKind)
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.NameLimit < 1:
		return fmt.Errorf("%w: name_limit must be positive", ErrInvalidConfig)
	case c.JudgeKind == JudgeRemote && c.JudgeAPIKey == "":
		return fmt.Errorf("%w: judge_api_key required for the remote judge", ErrInvalidConfig)
	case c.JudgeLatencyMinMS > c.JudgeLatencyMaxMS:
		return fmt.Errorf("%w: judge latency bounds inverted", ErrInvalidConfig)
	}
	return nil
}
