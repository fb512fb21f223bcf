package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/speedwar/internal/sandbox"
	"github.com/programme-lv/speedwar/internal/xdg"
)

const AppName = "speedwar"

type Config struct {
	// BasePath holds cli/ and problems/<id>/{tests,secret_tests}.
	BasePath string `toml:"base_path"`
	// WorkRoot is where sandboxes are created; empty uses the OS temp dir.
	WorkRoot         string `toml:"work_root"`
	EnergyMonitorURL string `toml:"energy_monitor_url"`
	PollPeriod       string `toml:"poll_period"`
	MaxArchiveBytes  int64  `toml:"max_archive_bytes"`
	MaxUnpackedBytes int64  `toml:"max_unpacked_bytes"`
	LogLevel         string `toml:"log_level"`

	DatabaseDSN string `toml:"database_dsn"`

	NatsURL     string `toml:"nats_url"`
	NatsSubject string `toml:"nats_subject"`

	SqsQueueURL string `toml:"sqs_queue_url"`
	SqsRegion   string `toml:"sqs_region"`
}

func Default() *Config {
	limits := sandbox.DefaultUnpackLimits()
	return &Config{
		BasePath:         xdg.NewXDGDirs().AppDataDir(AppName),
		PollPeriod:       "2s",
		MaxArchiveBytes:  limits.MaxArchiveBytes,
		MaxUnpackedBytes: limits.MaxUnpackedBytes,
		LogLevel:         "info",
		NatsSubject:      "speedwar.judging",
		SqsRegion:        "eu-central-1",
	}
}

// ReadConfig loads .env (if present), then the TOML file at path, then
// environment overrides. An empty path searches the XDG config dirs and
// tolerates a missing file.
func ReadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path, _ = xdg.NewXDGDirs().FindConfigFile(AppName, "config.toml")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SPEEDWAR_BASE_PATH":          &c.BasePath,
		"SPEEDWAR_WORK_ROOT":          &c.WorkRoot,
		"SPEEDWAR_ENERGY_MONITOR_URL": &c.EnergyMonitorURL,
		"SPEEDWAR_POLL_PERIOD":        &c.PollPeriod,
		"SPEEDWAR_LOG_LEVEL":          &c.LogLevel,
		"DATABASE_URL":                &c.DatabaseDSN,
		"NATS_URL":                    &c.NatsURL,
		"NATS_SUBJECT":                &c.NatsSubject,
		"SQS_QUEUE_URL":               &c.SqsQueueURL,
		"AWS_REGION":                  &c.SqsRegion,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int64{
		"SPEEDWAR_MAX_ARCHIVE_BYTES":  &c.MaxArchiveBytes,
		"SPEEDWAR_MAX_UNPACKED_BYTES": &c.MaxUnpackedBytes,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.BasePath == "" {
		return errors.New("base path is not set")
	}
	d, err := time.ParseDuration(c.PollPeriod)
	if err != nil {
		return fmt.Errorf("invalid poll period: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("poll period must be positive, got %s", d)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) Poll() time.Duration {
	d, err := time.ParseDuration(c.PollPeriod)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

func (c *Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c *Config) UnpackLimits() sandbox.UnpackLimits {
	return sandbox.UnpackLimits{
		MaxArchiveBytes:  c.MaxArchiveBytes,
		MaxUnpackedBytes: c.MaxUnpackedBytes,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
