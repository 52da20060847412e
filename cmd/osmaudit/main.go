package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/osmaudit/pkg/audit"
	"github.com/NERVsystems/osmaudit/pkg/cache"
	"github.com/NERVsystems/osmaudit/pkg/clean"
	"github.com/NERVsystems/osmaudit/pkg/config"
	"github.com/NERVsystems/osmaudit/pkg/monitoring"
	"github.com/NERVsystems/osmaudit/pkg/osm"
	"github.com/NERVsystems/osmaudit/pkg/server"
	"github.com/NERVsystems/osmaudit/pkg/tools"
	"github.com/NERVsystems/osmaudit/pkg/tracing"
	ver "github.com/NERVsystems/osmaudit/pkg/version"
	"github.com/NERVsystems/osmaudit/pkg/watch"
)

var (
	showVersionFlag bool
	debug           bool
	generateConfig  string
	mergeOnly       bool

	// Audit flags
	input       string
	field       string
	classifier  string
	format      string
	profilePath string
	concurrency int
	cleanMode   bool
	verbose     bool
	watchMode   bool

	// MCP flags
	mcpMode   bool
	toolRPS   float64
	toolBurst int

	// Monitoring flags
	enableMonitoring bool
	monitoringAddr   string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate an MCP client config file at the specified path")
	flag.BoolVar(&mergeOnly, "merge-only", false, "Only merge new config, don't overwrite existing")

	flag.StringVar(&input, "input", "sample.osm", "Comma-separated extract paths or glob patterns (.osm, .xml, .pbf)")
	flag.StringVar(&field, "field", "", "Tag key to audit (defaults to the classifier's field)")
	flag.StringVar(&classifier, "classifier", "lorong", "Classifier to apply: lorong, postcode")
	flag.StringVar(&format, "format", "text", "Output format: text or json")
	flag.StringVar(&profilePath, "profile", "", "YAML audit profile; overrides -input, -field and -classifier")
	flag.IntVar(&concurrency, "concurrency", 1, "Number of audit passes to run at once")
	flag.BoolVar(&cleanMode, "clean", false, "Report how addr:postcode and addr:street values would be cleaned")
	flag.BoolVar(&verbose, "verbose", false, "Print a line for every value the cleaners rewrite")
	flag.BoolVar(&watchMode, "watch", false, "Re-run when the input file changes")

	flag.BoolVar(&mcpMode, "mcp", false, "Serve the audit tools over MCP on stdin/stdout")
	flag.Float64Var(&toolRPS, "tool-rps", tools.DefaultToolRPS, "MCP tool rate limit in calls per second (0 disables)")
	flag.IntVar(&toolBurst, "tool-burst", tools.DefaultToolBurst, "MCP tool rate limit burst size")

	flag.BoolVar(&enableMonitoring, "enable-monitoring", true, "Enable Prometheus metrics")
	flag.StringVar(&monitoringAddr, "monitoring-addr", ":9090", "Monitoring server address, used by -mcp and -watch")
}

func main() {
	flag.Parse()

	var logLevel slog.Level
	if debug {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	if generateConfig != "" {
		if err := generateClientConfig(generateConfig, mergeOnly); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated MCP client config", "path", generateConfig)
		return
	}

	if err := run(logger); err != nil {
		logger.Error("osmaudit failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracing(ctx, ver.BuildVersion)
	if err != nil {
		// tracing is optional
		logger.Error("failed to initialize tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()
		if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", endpoint)
		}
	}

	if enableMonitoring {
		monitoring.SetSystemInfo(ver.BuildVersion)
		installMonitoringHooks()
		if mcpMode || watchMode {
			startMonitoringServer(ctx, logger)
		}
	}

	if mcpMode {
		return serveMCP(ctx, logger)
	}

	profile, err := loadProfile()
	if err != nil {
		return err
	}
	jobs, err := profile.Jobs()
	if err != nil {
		return err
	}

	normalizer := clean.NewNormalizer(os.Stdout, verbose || profile.Verbose)
	once := func(ctx context.Context) error {
		if cleanMode {
			return runClean(ctx, os.Stdout, jobs, normalizer, format)
		}
		return runAudits(ctx, os.Stdout, jobs, profile.Concurrency, format)
	}

	if err := once(ctx); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	path, err := watchedPath(jobs)
	if err != nil {
		return err
	}
	w, err := watch.New(path, watch.DefaultDebounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, once)
}

func loadProfile() (*config.Profile, error) {
	if profilePath != "" {
		return config.LoadFromFile(profilePath)
	}

	profile := &config.Profile{
		Inputs:      splitInputs(input),
		Concurrency: concurrency,
		Audits:      []config.AuditConfig{{Classifier: classifier, Field: field}},
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

func splitInputs(s string) []string {
	var inputs []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			inputs = append(inputs, part)
		}
	}
	return inputs
}

func watchedPath(jobs []audit.Job) (string, error) {
	if len(jobs) == 0 {
		return "", errors.New("-watch needs an input file")
	}
	path := jobs[0].Path
	for _, job := range jobs[1:] {
		if job.Path != path {
			return "", errors.New("-watch needs a single input file")
		}
	}
	return path, nil
}

func serveMCP(ctx context.Context, logger *slog.Logger) error {
	var limiter *tools.RateLimiter
	if toolRPS > 0 {
		limiter = tools.NewRateLimiter(rate.Limit(toolRPS), toolBurst)
	}

	logger.Info("starting osmaudit MCP server",
		"version", ver.BuildVersion,
		"tool_rps", toolRPS,
		"tool_burst", toolBurst,
		"monitoring_enabled", enableMonitoring,
		"monitoring_addr", monitoringAddr)

	s, err := server.NewServer(server.Options{Logger: logger, Limiter: limiter})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cache.StopGlobalCache()

	logger.Info("transport_enabled", "type", "stdio", "mode", "blocking")
	return s.RunWithContext(ctx)
}

func installMonitoringHooks() {
	osm.SetMonitoringHooks(&osm.MonitoringHooks{
		OnElement: func(format osm.Format, elementType string) {
			monitoring.RecordElementScanned(string(format), elementType)
		},
		OnComplete: func(format osm.Format, duration time.Duration, success bool) {
			monitoring.RecordScan(string(format), duration, success)
		},
		OnError: func(format osm.Format, errorType string) {
			monitoring.RecordError("scanner_"+string(format), errorType)
		},
	})
}

func startMonitoringServer(ctx context.Context, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	monitoringServer := &http.Server{
		Addr:              monitoringAddr,
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting Prometheus metrics server", "addr", monitoringAddr)
		if err := monitoringServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("monitoring server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := monitoringServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown monitoring server", "error", err)
		}
	}()
}
