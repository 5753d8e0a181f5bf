package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"panrgp/internal/blob"
	"panrgp/internal/core"
)

type globalFlags struct {
	storage     string
	sqlitePath  string
	postgresDSN string
	blobDriver  string
	blobRoot    string
	verbose     bool
	profile     string
	profileDir  string
	metricsFile string
	traceFile   string
}

// app carries the service shared by subcommands and the resources to
// release once the command returns.
type app struct {
	stdout, stderr io.Writer
	flags          globalFlags
	logger         *slog.Logger
	svc            *core.Service
	metrics        *core.PrometheusMetricsRecorder
	closers        []func() error
	profiler       interface{ Stop() }
}

func (a *app) bindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&a.flags.storage, "storage", "", "storage driver: memory|sqlite|postgres (env PANRGP_STORAGE_DRIVER)")
	f.StringVar(&a.flags.sqlitePath, "sqlite-path", "", "sqlite database file (env PANRGP_SQLITE_PATH)")
	f.StringVar(&a.flags.postgresDSN, "postgres-dsn", "", "postgres DSN (env PANRGP_POSTGRES_DSN)")
	f.StringVar(&a.flags.blobDriver, "blob", "", "blob driver: fs|s3|memory (env PANRGP_BLOB_DRIVER)")
	f.StringVar(&a.flags.blobRoot, "blob-root", "", "filesystem blob root (env PANRGP_BLOB_FS_ROOT)")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug messages")
	f.StringVar(&a.flags.profile, "profile", "", "write a profile: cpu|mem|block|mutex|trace")
	f.StringVar(&a.flags.profileDir, "profile-dir", ".", "directory receiving profiles")
	f.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	f.StringVar(&a.flags.traceFile, "trace-file", "", "append operation spans as JSON lines to this file")
}

func (a *app) storageConfig() core.StorageConfig {
	cfg := core.StorageConfigFromEnv()
	if a.flags.storage != "" {
		cfg.Driver = core.StorageDriver(a.flags.storage)
	}
	if a.flags.sqlitePath != "" {
		cfg.SQLitePath = a.flags.sqlitePath
	}
	if a.flags.postgresDSN != "" {
		cfg.PostgresDSN = a.flags.postgresDSN
	}
	return cfg
}

func (a *app) blobConfig() blob.Config {
	cfg := blob.ConfigFromEnv()
	if a.flags.blobDriver != "" {
		cfg.Driver = blob.Driver(a.flags.blobDriver)
	}
	if a.flags.blobRoot != "" {
		cfg.FSRoot = a.flags.blobRoot
	}
	return cfg
}

func profileMode(name string) (func(*profile.Profile), error) {
	switch name {
	case "cpu":
		return profile.CPUProfile, nil
	case "mem":
		return profile.MemProfile, nil
	case "block":
		return profile.BlockProfile, nil
	case "mutex":
		return profile.MutexProfile, nil
	case "trace":
		return profile.TraceProfile, nil
	}
	return nil, usageError{fmt.Errorf("unknown profile %q", name)}
}

// setup opens the store, the blob store and the observability sinks.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	if a.flags.profile != "" {
		mode, err := profileMode(a.flags.profile)
		if err != nil {
			return err
		}
		a.profiler = profile.Start(mode, profile.ProfilePath(a.flags.profileDir), profile.Quiet, profile.NoShutdownHook)
	}

	store, err := core.OpenPersistentStoreConfig(a.storageConfig(), core.NewDefaultRulesEngine())
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}
	blobs, err := blob.OpenConfig(cmd.Context(), a.blobConfig())
	if err != nil {
		return err
	}

	a.metrics = core.NewPrometheusMetricsRecorder("")
	opts := []core.ServiceOption{
		core.WithLogger(a.logger),
		core.WithMetricsRecorder(a.metrics),
		core.WithBlobStore(blobs),
	}
	if a.flags.traceFile != "" {
		f, err := os.OpenFile(a.flags.traceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}
	a.svc = core.NewService(store, opts...)
	a.logger.Debug("storage opened", "driver", a.storageConfig().Driver, "blob", blobs.Driver())
	return nil
}

// teardown flushes metrics and releases resources in reverse order.
func (a *app) teardown() error {
	var errs []error
	if a.metrics != nil && a.flags.metricsFile != "" {
		if err := a.metrics.WriteTextfile(a.flags.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.profiler != nil {
		a.profiler.Stop()
		a.profiler = nil
	}
	return errors.Join(errs...)
}
