// Package config loads host-process configuration — queue limits,
// notification bus defaults, scan orchestrator timing, and export
// defaults — from a TOML or YAML file. This is read-only process
// configuration, not persisted event or queue state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/deeprave/gstats-sub001/pkg/export"
	"github.com/deeprave/gstats-sub001/pkg/queue"
	"github.com/deeprave/gstats-sub001/pkg/scanner"
	"gopkg.in/yaml.v3"
)

// Queue mirrors queue.Limits in config-file-friendly form (plain
// fields, no unexported normalization).
type Queue struct {
	MaxMessages    int     `toml:"max_messages" yaml:"max_messages"`
	MaxMemoryBytes int64   `toml:"max_memory_bytes" yaml:"max_memory_bytes"`
	HardMultiplier float64 `toml:"hard_multiplier" yaml:"hard_multiplier"`
	ModerateBand   float64 `toml:"moderate_band" yaml:"moderate_band"`
	HighBand       float64 `toml:"high_band" yaml:"high_band"`
	CriticalBand   float64 `toml:"critical_band" yaml:"critical_band"`
}

// Notify holds the notification bus's per-family defaults.
type Notify struct {
	MaxSubscribers int           `toml:"max_subscribers" yaml:"max_subscribers"`
	DefaultTimeout time.Duration `toml:"default_timeout" yaml:"default_timeout"`
}

// Scan holds the scan orchestrator's timing defaults.
type Scan struct {
	ProgressInterval  time.Duration `toml:"progress_interval" yaml:"progress_interval"`
	IdleTimeout       time.Duration `toml:"idle_timeout" yaml:"idle_timeout"`
	DrainPollInterval time.Duration `toml:"drain_poll_interval" yaml:"drain_poll_interval"`
}

// Export holds the export plugin's output preferences.
type Export struct {
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

// Log holds logging preferences shared with pkg/log.Config.
type Log struct {
	Level string `toml:"level" yaml:"level"`
	JSON  bool   `toml:"json" yaml:"json"`
}

// Config is the top-level host-process configuration document.
type Config struct {
	Log    Log    `toml:"log" yaml:"log"`
	Queue  Queue  `toml:"queue" yaml:"queue"`
	Notify Notify `toml:"notify" yaml:"notify"`
	Scan   Scan   `toml:"scan" yaml:"scan"`
	Export Export `toml:"export" yaml:"export"`
}

// Default returns the configuration a host gets with no config file at
// all: defaults borrowed directly from queue.DefaultLimits and
// export.DefaultConfig, plus this package's own sensible notify/scan
// defaults.
func Default() Config {
	limits := queue.DefaultLimits()
	exp := export.DefaultConfig()
	return Config{
		Log: Log{Level: "info", JSON: false},
		Queue: Queue{
			MaxMessages:    limits.MaxMessages,
			MaxMemoryBytes: limits.MaxMemoryBytes,
			HardMultiplier: limits.HardMultiplier,
			ModerateBand:   limits.ModerateBand,
			HighBand:       limits.HighBand,
			CriticalBand:   limits.CriticalBand,
		},
		Notify: Notify{
			MaxSubscribers: 64,
			DefaultTimeout: 2 * time.Second,
		},
		Scan: Scan{
			ProgressInterval:  200 * time.Millisecond,
			IdleTimeout:       30 * time.Second,
			DrainPollInterval: 20 * time.Millisecond,
		},
		Export: Export{Format: exp.OutputFormat.String(), File: exp.OutputFile},
	}
}

// Load reads a configuration document from path, dispatching on file
// extension: .toml decodes with github.com/BurntSushi/toml, .yaml/.yml
// with gopkg.in/yaml.v3. Fields absent from the file keep Default's
// value — Load starts from Default() and decodes over it.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode toml %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode yaml %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported extension %q for %s", ext, path)
	}

	return cfg, nil
}

// QueueLimits converts Queue into queue.Limits.
func (c Config) QueueLimits() queue.Limits {
	return queue.Limits{
		MaxMessages:    c.Queue.MaxMessages,
		MaxMemoryBytes: c.Queue.MaxMemoryBytes,
		HardMultiplier: c.Queue.HardMultiplier,
		ModerateBand:   c.Queue.ModerateBand,
		HighBand:       c.Queue.HighBand,
		CriticalBand:   c.Queue.CriticalBand,
	}
}

// ScannerConfig converts Scan into scanner.Config.
func (c Config) ScannerConfig() scanner.Config {
	return scanner.Config{
		ProgressInterval:  c.Scan.ProgressInterval,
		IdleTimeout:       c.Scan.IdleTimeout,
		DrainPollInterval: c.Scan.DrainPollInterval,
	}
}

// ExportConfig converts Export into export.Config, returning an error
// if the configured format name is not one export.OutputFormat knows.
func (c Config) ExportConfig() (export.Config, error) {
	format, err := parseOutputFormat(c.Export.Format)
	if err != nil {
		return export.Config{}, err
	}
	return export.Config{OutputFormat: format, OutputFile: c.Export.File}, nil
}

func parseOutputFormat(name string) (export.OutputFormat, error) {
	candidates := []export.OutputFormat{
		export.FormatConsole, export.FormatJSON, export.FormatYAML,
		export.FormatCSV, export.FormatXML, export.FormatHTML,
		export.FormatMarkdown, export.FormatTemplate,
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range candidates {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("config: unknown export format %q", name)
}
