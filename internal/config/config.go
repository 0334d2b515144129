// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Store kinds selectable at startup.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Judge kinds selectable at startup.
const (
	JudgeStatic = "static"
	JudgeRemote = "remote"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreKind selects the leaderboard medium: "file" or "sqlite".
	StoreKind string `koanf:"store_kind"`

	// FilePath locates the JSON blob used by the file store.
	FilePath string `koanf:"file_path"`

	// SQLiteDSN is the DSN passed to the sqlite driver.
	SQLiteDSN string `koanf:"sqlite_dsn"`

	// Capacity bounds how many entries the leaderboard retains.
	Capacity int `koanf:"capacity"`

	// StoreOpTimeoutMS bounds each sqlite operation.
	StoreOpTimeoutMS int `koanf:"store_op_timeout_ms"`

	// TopN sets how many entries submissions echo back.
	TopN int `koanf:"top_n"`

	// MaxLeaderboardLimit caps GET /v1/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// NameLimit bounds display names in runes.
	NameLimit int `koanf:"name_limit"`

	// JudgeKind selects the judge: "static" or "remote".
	JudgeKind string `koanf:"judge_kind"`

	// JudgeAPIKey authenticates against the remote judge.
	JudgeAPIKey string `koanf:"judge_api_key"`

	// JudgeModel names the remote generation model.
	JudgeModel string `koanf:"judge_model"`

	// JudgeEndpoint overrides the remote judge base URL.
	JudgeEndpoint string `koanf:"judge_endpoint"`

	// JudgeTimeoutMS bounds a single remote judge call.
	JudgeTimeoutMS int `koanf:"judge_timeout_ms"`

	// JudgeRateRPS and JudgeBurst throttle remote judge calls.
	JudgeRateRPS float64 `koanf:"judge_rate_rps"`
	JudgeBurst   int     `koanf:"judge_burst"`

	// JudgeLatencyMinMS and JudgeLatencyMaxMS simulate judge latency bounds
	// for the static judge.
	JudgeLatencyMinMS int `koanf:"judge_latency_min_ms"`
	JudgeLatencyMaxMS int `koanf:"judge_latency_max_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StoreKind:           StoreFile,
		FilePath:            "punchd_leaderboard.json",
		SQLiteDSN:           "punchd.db",
		Capacity:            100,
		StoreOpTimeoutMS:    5_000,
		TopN:                10,
		MaxLeaderboardLimit: 100,
		NameLimit:           20,
		JudgeKind:           JudgeStatic,
		JudgeModel:          "gemini-flash-latest",
		JudgeTimeoutMS:      8_000,
		JudgeRateRPS:        2,
		JudgeBurst:          4,
		JudgeLatencyMinMS:   80,
		JudgeLatencyMaxMS:   150,
	}
}
