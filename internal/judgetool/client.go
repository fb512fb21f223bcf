// Package judgetool runs the external SpeedWarCLI judge and decodes its
// JSON report.
package judgetool

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/programme-lv/speedwar/internal/contest"
)

const (
	DefaultBinary = "SpeedWarCLI"

	// EnergyMonitorEnv passes the energy monitor websocket endpoint to the tool.
	EnergyMonitorEnv = "ENERGY_MONITOR_URL"
)

type Client struct {
	cliDir           string
	binary           string
	energyMonitorURL string
	logger           *slog.Logger
}

type Option func(*Client)

// WithBinary overrides the executable name inside the cli directory.
func WithBinary(name string) Option {
	return func(c *Client) { c.binary = name }
}

// WithEnergyMonitor enables energy measurement through the given endpoint.
func WithEnergyMonitor(url string) Option {
	return func(c *Client) { c.energyMonitorURL = url }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the tool installed under <basePath>/cli.
func NewClient(basePath string, opts ...Option) *Client {
	c := &Client{
		cliDir: filepath.Join(basePath, "cli"),
		binary: DefaultBinary,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run judges the prepared working directory. The returned error covers
// failures to run the tool or to parse its report, not judging verdicts.
func (c *Client) Run(ctx context.Context, lang contest.Lang, workDir string) (Output, error) {
	cmd := exec.CommandContext(ctx, filepath.Join(c.cliDir, c.binary), string(lang), workDir)
	cmd.Dir = c.cliDir
	cmd.Env = os.Environ()
	if c.energyMonitorURL != "" {
		cmd.Env = append(cmd.Env, EnergyMonitorEnv+"="+c.energyMonitorURL)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running judge tool", "lang", lang, "dir", workDir)
	err := cmd.Run()
	if stderr.Len() > 0 {
		c.logger.Warn("judge tool wrote to stderr", "stderr", strings.TrimSpace(stderr.String()))
	}
	if err != nil {
		return nil, fmt.Errorf("judge tool failed: %w", err)
	}

	out, err := Decode(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	return out, nil
}
