package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	diskarb "github.com/ehrlich-b/go-diskarb"
	"github.com/ehrlich-b/go-diskarb/internal/config"
	"github.com/ehrlich-b/go-diskarb/internal/logging"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	root := &cobra.Command{
		Use:           "diskarbd",
		Short:         "Disk arbitration daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string

	start := &cobra.Command{
		Use:   "start",
		Short: "Start the arbitration daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	start.Flags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(start)
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("diskarbd %s (%s)\n", version, commit)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: os.Stderr,
	})
	logging.SetDefault(logger)

	var observer diskarb.Observer
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		observer = diskarb.NewPrometheusObserver(registry)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			logger.Info("metrics listening", "addr", cfg.Metrics.Listen)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	engine := diskarb.New(diskarb.Config{
		Devices:  diskarb.SystemDevices{},
		Observer: observer,
		Logger:   logger,
	})

	if err := registerDisks(engine, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("diskarbd started", "version", version, "disks", len(cfg.Disks))
	engine.Run(ctx)
	logger.Info("diskarbd stopping")

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// registerDisks seeds the registry from the static disk table. Each unit
// named by the table is created once and shared by its disks.
func registerDisks(engine *diskarb.Engine, cfg *config.Config) error {
	units := make(map[string]*diskarb.Unit)
	for _, dc := range cfg.Disks {
		unit := units[dc.Unit]
		if unit == nil {
			unit = diskarb.NewUnit(dc.Unit)
			units[dc.Unit] = unit
		}

		disk := diskarb.NewDisk(dc.ID, unit)
		disk.SetDevicePath(dc.Device)
		if dc.Filesystem != "" {
			disk.SetFilesystem(diskarb.NewFilesystem(dc.Filesystem))
		}
		if dc.Name != "" {
			disk.SetDescription(diskarb.DescriptionVolumeNameKey, dc.Name)
		}
		if dc.MediaPath != "" {
			disk.SetDescription(diskarb.DescriptionMediaPathKey, dc.MediaPath)
		}
		disk.SetDescription(diskarb.DescriptionMediaWholeKey, dc.Whole)
		disk.SetDescription(diskarb.DescriptionVolumeMountableKey, dc.Mountable)
		disk.SetState(diskarb.DiskStateStagedAppear, true)
		disk.SetState(diskarb.DiskStateStagedProbe, true)

		if err := engine.AddDisk(disk); err != nil {
			return err
		}
	}
	return nil
}
