package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deeprave/gstats-sub001/pkg/config"
	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/log"
	"github.com/deeprave/gstats-sub001/pkg/metrics"
	"github.com/deeprave/gstats-sub001/pkg/notify"
	"github.com/deeprave/gstats-sub001/pkg/plugin"
	"github.com/deeprave/gstats-sub001/pkg/plugin/builtin/commits"
	exportplugin "github.com/deeprave/gstats-sub001/pkg/plugin/builtin/export"
	metricsplugin "github.com/deeprave/gstats-sub001/pkg/plugin/builtin/metrics"
	"github.com/deeprave/gstats-sub001/pkg/queue"
	"github.com/deeprave/gstats-sub001/pkg/scanner"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gstats",
	Short: "gstats - plugin-driven repository statistics scanner",
	Long: `gstats scans a repository's commit and file history through a
pipeline of independent plugins: a bounded queue feeds processing
plugins, which publish their aggregated results to an export plugin
once a scan completes.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"gstats version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML or YAML configuration file")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(scanCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan against a synthetic repository walk",
	Long: `scan wires the full plugin pipeline together (queue, notify
buses, plugin registry, builtin commits/metrics/export plugins) and
runs one scan over a small fixed dataset standing in for a real
checkout, then prints the aggregated export.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("metrics-addr", "", "Address to serve /metrics and health endpoints on (disabled if empty)")
	scanCmd.Flags().String("output-file", "", "Write the export report to this file instead of stdout")
	scanCmd.Flags().String("function", "", "Resolve this command (\"function\" or \"plugin:function\") against the loaded plugins and exit, without scanning")
}

func runScan(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	outputFile, _ := cmd.Flags().GetString("output-file")
	function, _ := cmd.Flags().GetString("function")

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if outputFile != "" {
		cfg.Export.File = outputFile
	}
	exportCfg, err := cfg.ExportConfig()
	if err != nil {
		return fmt.Errorf("invalid export config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanBus := notify.NewManager[events.ScanEvent]()
	queueBus := notify.NewManager[events.QueueEvent]()
	pluginBus := notify.NewManager[events.PluginEvent]()

	q := queue.New(cfg.QueueLimits(), queueBus)
	registry := plugin.NewRegistry(0, pluginBus)

	expectedPlugins := []string{commits.Name, metricsplugin.Name}

	commitsPlugin := commits.New(pluginBus)
	metricsPlugin := metricsplugin.New(pluginBus)
	exportPlugin := exportplugin.New(expectedPlugins, exportCfg, pluginBus)

	for _, p := range []plugin.Plugin{commitsPlugin, metricsPlugin, exportPlugin} {
		if err := registry.Register(p); err != nil {
			return fmt.Errorf("registering plugin %s: %w", p.Info().Name, err)
		}
	}

	initErrs := registry.InitializeAll(ctx, &plugin.Context{Logger: log.WithComponent("plugin")})
	for name, err := range initErrs {
		fmt.Fprintf(os.Stderr, "plugin %s failed to initialize: %v\n", name, err)
	}

	if function != "" {
		res, err := plugin.NewCommandResolver(registry).Resolve(function)
		if err != nil {
			return err
		}
		fmt.Printf("%s resolves to %s:%s (default=%v)\n", function, res.PluginName, res.FunctionName, res.IsDefault)
		return nil
	}

	for _, p := range []plugin.Plugin{commitsPlugin, metricsPlugin, exportPlugin} {
		adapter := plugin.NewAdapter(p, registry, scanBus)
		_ = scanBus.Subscribe(adapter)
		go adapter.DrainDeregistrations(ctx)
	}
	// The export plugin also reacts directly to PluginDataReady, its
	// primary completion trigger (see pkg/plugin/builtin/export's doc).
	_ = pluginBus.Subscribe(exportPlugin)
	go exportPlugin.DrainCompletions(ctx)

	pumps := []*plugin.ConsumerPump{
		plugin.NewConsumerPump(q, commits.Name, commitsPlugin),
		plugin.NewConsumerPump(q, metricsplugin.Name, metricsPlugin),
	}
	for _, pump := range pumps {
		_ = queueBus.Subscribe(pump)
		go func(pump *plugin.ConsumerPump) {
			if err := pump.Run(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "consumer pump %s stopped: %v\n", pump.ID(), err)
			}
		}(pump)
	}

	collector := metrics.NewCollector(scanBus, queueBus, pluginBus, q, registry)
	collector.Start(time.Second)
	defer collector.Stop()
	_ = pluginBus.Subscribe(metrics.NewPluginEventSubscriber("metrics-plugin-errors"))

	metrics.SetVersion(Version)
	metrics.RegisterComponent("notify", true, "ready")
	metrics.RegisterComponent("queue", true, "ready")
	metrics.RegisterComponent("plugin-registry", true, "ready")

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
			}
		}()
		defer server.Close()
		fmt.Printf("metrics endpoint: http://%s/metrics\n", metricsAddr)
	}

	orchestrator := scanner.NewOrchestrator(q, scanBus, registry, cfg.ScannerConfig())
	sources := []scanner.Source{commitSource{}, fileSource{}}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\ninterrupted, cancelling scan...")
		cancel()
	}()

	scanID, err := orchestrator.Run(ctx, sources)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	fmt.Printf("scan %s completed\n", scanID)

	cleanupErrs := registry.CleanupAll(context.Background())
	for name, err := range cleanupErrs {
		fmt.Fprintf(os.Stderr, "plugin %s cleanup failed: %v\n", name, err)
	}

	return nil
}
