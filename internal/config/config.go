// Package config loads the daemon configuration from an optional HCL file
// and ATTENTION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/cwbudde/algo-eeg/eeg"
	"github.com/cwbudde/algo-eeg/eeg/prepare"
	"github.com/cwbudde/algo-eeg/eeg/stream"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ATTENTION_"

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Redis    RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen          string
	DataDir         string
	Debug           bool
	ShutdownTimeout time.Duration
}

// AnalysisConfig holds the defaults for new sessions.
type AnalysisConfig struct {
	ChunkSeconds  float64
	WindowSeconds float64
	HighPassHz    float64
	LowPassHz     float64
	// NotchHz is the mains frequency to remove; 0 disables the notch.
	NotchHz     float64
	HistorySize int
	// Speed scales playback; 2 ticks twice per chunk duration.
	Speed   float64
	Workers int
}

// Stream returns the analyzer configuration. The high-pass cutoff is the
// lower band-pass edge.
func (a AnalysisConfig) Stream() stream.Config {
	return stream.Config{
		ChunkSeconds:  a.ChunkSeconds,
		WindowSeconds: a.WindowSeconds,
		LowHz:         a.HighPassHz,
		HighHz:        a.LowPassHz,
	}
}

// PrepareOptions returns the preparation options for new sessions.
func (a AnalysisConfig) PrepareOptions() []prepare.Option {
	opts := []prepare.Option{prepare.WithWorkers(a.Workers)}
	if a.NotchHz > 0 {
		opts = append(opts, prepare.WithNotch(a.NotchHz))
	}
	return opts
}

// RedisConfig holds the optional event fan-out settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:          ":8080",
			DataDir:         "./sample_data",
			ShutdownTimeout: 10 * time.Second,
		},
		Analysis: AnalysisConfig{
			ChunkSeconds:  3,
			WindowSeconds: 10,
			HighPassHz:    1,
			LowPassHz:     50,
			HistorySize:   50,
			Speed:         1,
		},
		Redis: RedisConfig{
			Channel: "attention",
		},
	}
}

// Load reads .env if present, then the HCL file at path (or at
// $ATTENTION_CONFIG when path is empty), then environment overrides, and
// validates the result.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := Parse(src, path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

type fileConfig struct {
	Server   *fileServer   `hcl:"server,block"`
	Analysis *fileAnalysis `hcl:"analysis,block"`
	Redis    *fileRedis    `hcl:"redis,block"`
}

type fileServer struct {
	Listen          *string `hcl:"listen,optional"`
	DataDir         *string `hcl:"data_dir,optional"`
	Debug           *bool   `hcl:"debug,optional"`
	ShutdownTimeout *string `hcl:"shutdown_timeout,optional"`
}

type fileAnalysis struct {
	ChunkSeconds  *float64 `hcl:"chunk_seconds,optional"`
	WindowSeconds *float64 `hcl:"window_seconds,optional"`
	HighPassHz    *float64 `hcl:"high_pass_hz,optional"`
	LowPassHz     *float64 `hcl:"low_pass_hz,optional"`
	NotchHz       *float64 `hcl:"notch_hz,optional"`
	HistorySize   *int     `hcl:"history_size,optional"`
	Speed         *float64 `hcl:"speed,optional"`
	Workers       *int     `hcl:"workers,optional"`
}

type fileRedis struct {
	Addr     *string `hcl:"addr,optional"`
	Password *string `hcl:"password,optional"`
	DB       *int    `hcl:"db,optional"`
	Channel  *string `hcl:"channel,optional"`
}

// evalContext exposes env("NAME") to configuration files.
var evalContext = &hcl.EvalContext{
	Variables: map[string]cty.Value{},
	Functions: map[string]function.Function{
		"env": function.New(&function.Spec{
			Params: []function.Parameter{
				{Name: "name", Type: cty.String},
			},
			Type: function.StaticReturnType(cty.String),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return cty.StringVal(os.Getenv(args[0].AsString())), nil
			},
		}),
	},
}

// Parse decodes HCL source into cfg. Attributes absent from src keep their
// current values.
func Parse(src []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("config: failed to parse HCL: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, evalContext, &fc); diags.HasErrors() {
		return fmt.Errorf("config: failed to decode HCL body: %s", diags.Error())
	}

	if s := fc.Server; s != nil {
		set(&cfg.Server.Listen, s.Listen)
		set(&cfg.Server.DataDir, s.DataDir)
		set(&cfg.Server.Debug, s.Debug)
		if s.ShutdownTimeout != nil {
			d, err := time.ParseDuration(*s.ShutdownTimeout)
			if err != nil {
				return fmt.Errorf("config: server.shutdown_timeout: %w", err)
			}
			cfg.Server.ShutdownTimeout = d
		}
	}
	if a := fc.Analysis; a != nil {
		set(&cfg.Analysis.ChunkSeconds, a.ChunkSeconds)
		set(&cfg.Analysis.WindowSeconds, a.WindowSeconds)
		set(&cfg.Analysis.HighPassHz, a.HighPassHz)
		set(&cfg.Analysis.LowPassHz, a.LowPassHz)
		set(&cfg.Analysis.NotchHz, a.NotchHz)
		set(&cfg.Analysis.HistorySize, a.HistorySize)
		set(&cfg.Analysis.Speed, a.Speed)
		set(&cfg.Analysis.Workers, a.Workers)
	}
	if r := fc.Redis; r != nil {
		set(&cfg.Redis.Addr, r.Addr)
		set(&cfg.Redis.Password, r.Password)
		set(&cfg.Redis.DB, r.DB)
		set(&cfg.Redis.Channel, r.Channel)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ApplyEnv overrides cfg from ATTENTION_* variables. Unset or empty
// variables are ignored.
func ApplyEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("LISTEN", &cfg.Server.Listen)
	str("DATA_DIR", &cfg.Server.DataDir)
	if v := os.Getenv(EnvPrefix + "DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDEBUG: %w", EnvPrefix, err))
		} else {
			cfg.Server.Debug = b
		}
	}
	num("CHUNK_SECONDS", &cfg.Analysis.ChunkSeconds)
	num("WINDOW_SECONDS", &cfg.Analysis.WindowSeconds)
	num("HIGH_PASS_HZ", &cfg.Analysis.HighPassHz)
	num("LOW_PASS_HZ", &cfg.Analysis.LowPassHz)
	num("NOTCH_HZ", &cfg.Analysis.NotchHz)
	integer("HISTORY_SIZE", &cfg.Analysis.HistorySize)
	num("TICK_SPEED", &cfg.Analysis.Speed)
	integer("WORKERS", &cfg.Analysis.Workers)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	integer("REDIS_DB", &cfg.Redis.DB)
	str("REDIS_CHANNEL", &cfg.Redis.Channel)

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Validate enforces the control ranges of the dashboard.
func (c Config) Validate() error {
	a := c.Analysis
	checks := []struct {
		name   string
		v      float64
		lo, hi float64
	}{
		{"chunk_seconds", a.ChunkSeconds, 1, 10},
		{"window_seconds", a.WindowSeconds, 5, 30},
		{"high_pass_hz", a.HighPassHz, 0.1, 5},
		{"low_pass_hz", a.LowPassHz, 30, 100},
	}
	for _, ch := range checks {
		if !(ch.v >= ch.lo && ch.v <= ch.hi) {
			return fmt.Errorf("%w: analysis.%s must be in [%g, %g]: %g", eeg.ErrParameter, ch.name, ch.lo, ch.hi, ch.v)
		}
	}
	if !(a.NotchHz >= 0) {
		return fmt.Errorf("%w: analysis.notch_hz must be >= 0: %g", eeg.ErrParameter, a.NotchHz)
	}
	if a.HistorySize < 1 {
		return fmt.Errorf("%w: analysis.history_size must be >= 1: %d", eeg.ErrParameter, a.HistorySize)
	}
	if !(a.Speed > 0) {
		return fmt.Errorf("%w: analysis.speed must be > 0: %g", eeg.ErrParameter, a.Speed)
	}
	if a.Workers < 0 {
		return fmt.Errorf("%w: analysis.workers must be >= 0: %d", eeg.ErrParameter, a.Workers)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("%w: server.listen is empty", eeg.ErrParameter)
	}
	if c.Redis.Enabled() && c.Redis.Channel == "" {
		return fmt.Errorf("%w: redis.channel is empty", eeg.ErrParameter)
	}
	return nil
}
