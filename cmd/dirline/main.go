package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/OCAP2/dirline/internal/config"
	"github.com/OCAP2/dirline/internal/dispatcher"
	"github.com/OCAP2/dirline/internal/logging"
	intOtel "github.com/OCAP2/dirline/internal/otel"
	"github.com/OCAP2/dirline/internal/storage"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// AppName prefixes log files and the OTel instrumentation scope.
const AppName = "dirline"

// set via -ldflags at build time
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager = logging.NewSlogManager()

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger = slog.Default()

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File

	SessionStartTime time.Time = time.Now()

	eventDispatcher *dispatcher.Dispatcher

	// Snapshot store (optional)
	storageBackend storage.Backend
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return errors.New("no command given")
	}

	switch strings.ToLower(args[0]) {
	case "render":
		return runRender(args[1:], stdout)
	case "version":
		fmt.Fprintf(stdout, "%s %s (%s)\n", AppName, Version, BuildDate)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [flags]\n\n", AppName)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render    draw a line with its direction markers into an SVG file")
	fmt.Fprintln(w, "  version   print version information")
	fmt.Fprintf(w, "\nRun '%s render --help' for render flags.\n", AppName)
}

// loadConfig reads dirline.cfg.json from dir. A missing file leaves the
// defaults in place.
func loadConfig(dir string) {
	if err := config.Load(dir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
		return
	}
	Logger.Info("Loaded config", "dir", dir)
}

// setupLogging opens the session log file and wires the optional Graylog and
// OTel sinks. It is safe to call once per run.
func setupLogging() {
	level := viper.GetString("logLevel")
	sinks := logging.Sinks{}

	if logsDir := viper.GetString("logsDir"); logsDir != "" {
		f, path, err := logging.OpenSessionLog(logsDir, AppName, SessionStartTime)
		if err != nil {
			Logger.Error("Failed to create/open log file!", "error", err, "path", logsDir)
		} else {
			LogFilePath = path
			LogFile = f
			sinks.File = f
		}
	}

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.NewGraylogWriter(graylogCfg.Address, graylogCfg.Facility)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			sinks.Graylog = w
		}
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var otelOut io.Writer = os.Stderr
		if LogFile != nil {
			otelOut = LogFile
		}
		cfg := intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    otelOut,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		}
		if otelCfg.Metrics {
			cfg.MetricWriter = otelOut
		}
		provider, err := intOtel.New(cfg)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			OTelProvider = provider
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	sinks.Provider = otelLogProvider

	SlogManager.Setup(level, sinks)
	Logger = SlogManager.Logger()
	if LogFilePath != "" {
		Logger.Info("Logging to file", "path", LogFilePath)
	}
}

// setupDispatcher creates the event dispatcher. Its event stream goes to the
// session log file through zerolog.
func setupDispatcher() error {
	var out io.Writer
	if LogFile != nil {
		out = LogFile
	}
	zl := logging.NewZerolog(out, viper.GetString("logLevel"))

	d, err := dispatcher.New(logging.NewDispatcherLogger(zl))
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}
	eventDispatcher = d
	return nil
}

// shutdown drains queued snapshots into the store and closes it, then
// flushes telemetry and closes the log file.
func shutdown() error {
	var errs []error

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if eventDispatcher != nil {
		if err := eventDispatcher.Drain(ctx, EventSnapshotRecorded); err != nil {
			Logger.Error("Snapshots still queued at shutdown", "error", err)
			errs = append(errs, err)
		}
	}

	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Failed to close snapshot store", "error", err)
			errs = append(errs, err)
		} else if exp, ok := storageBackend.(storage.Exportable); ok && exp.ExportedFilePath() != "" {
			Logger.Info("Snapshots exported", "path", exp.ExportedFilePath())
		}
		storageBackend = nil
	}

	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
		OTelProvider = nil
	}

	if LogFile != nil {
		if err := LogFile.Close(); err != nil {
			errs = append(errs, err)
		}
		LogFile = nil
	}
	return errors.Join(errs...)
}
