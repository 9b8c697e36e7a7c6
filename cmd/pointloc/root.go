package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/pointloc"
	"github.com/hupe1980/pointloc/blobstore"
	"github.com/hupe1980/pointloc/blobstore/minio"
	"github.com/hupe1980/pointloc/blobstore/s3"
	"github.com/hupe1980/pointloc/config"
	"github.com/hupe1980/pointloc/resource"
	"github.com/hupe1980/pointloc/snapshot"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	paramsPath string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *pointloc.BasicMetricsCollector

	// store overrides the configured snapshot source. Tests use it to
	// serve fixtures from memory.
	store blobstore.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pointloc",
		Short: "Neighbour queries over SPH snapshot particles",
		Long: `pointloc indexes the particle positions of an SPH snapshot in a uniform
grid and searches it incrementally, shell by shell, around each particle.

All commands read their settings from a YAML parameter file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.paramsPath, "params", "p", "", "YAML parameter file (required)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log.level from the parameter file")
	_ = root.MarkPersistentFlagRequired("params")

	root.AddCommand(a.statsCmd(), a.neighboursCmd(), a.verifyCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.paramsPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	a.metrics = &pointloc.BasicMetricsCollector{}
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.Level))

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) openStore(ctx context.Context) (blobstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	s := a.cfg.Snapshot
	switch s.Source {
	case config.SourceLocal:
		return blobstore.NewLocalStore(s.Dir, a.logger), nil
	case config.SourceS3:
		var optFns []func(*awss3.Options)
		if s.Endpoint != "" {
			optFns = append(optFns, s3.WithEndpoint(s.Endpoint))
		}
		store, err := s3.NewFromConfig(ctx, s.Bucket, s.Prefix, optFns...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SourceMinio:
		store, err := minio.Dial(s.Endpoint, s.Bucket, s.Prefix, s.Secure)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown snapshot source %q", s.Source)
}

func (a *app) snapshotOptions() (snapshot.Options, error) {
	s := a.cfg.Snapshot

	c, err := snapshot.ParseCompression(s.Compression)
	if err != nil {
		return snapshot.Options{}, err
	}
	opts := snapshot.Options{
		Strict:      s.Strict,
		Compression: c,
		ReadLimit:   s.ReadLimit,
		Logger:      a.logger,
	}
	if s.ByteOrder == "big" {
		opts.Order = binary.BigEndian
	}
	if s.MemoryLimit > 0 {
		opts.Resources = resource.NewController(resource.Config{MemoryLimitBytes: s.MemoryLimit})
	}
	return opts, nil
}

// loadIndex reads the configured snapshot and builds the grid over its
// positions.
func (a *app) loadIndex(ctx context.Context) (*pointloc.PointLocations, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := a.snapshotOptions()
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.Load(ctx, store, a.cfg.Snapshot.Name, opts)
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	idxOpts := []pointloc.Option{
		pointloc.WithTargetOccupancy(a.cfg.Index.TargetOccupancy),
		pointloc.WithLogger(pointloc.NewLogger(a.logger.Handler())),
		pointloc.WithMetricsCollector(a.metrics),
	}
	if a.cfg.Index.MaxCells > 0 {
		idxOpts = append(idxOpts, pointloc.WithMaxCells(a.cfg.Index.MaxCells))
	}
	if a.cfg.Query.Concurrency > 0 {
		idxOpts = append(idxOpts, pointloc.WithConcurrency(a.cfg.Query.Concurrency))
	}
	return pointloc.New(snap.Positions(), idxOpts...)
}

// logMetrics reports the collected counters once a command finishes.
func (a *app) logMetrics(ctx context.Context) {
	s := a.metrics.GetStats()
	a.logger.InfoContext(ctx, "run statistics",
		slog.Int64("queries", s.QueryCount),
		slog.Int64("query_errors", s.QueryErrors),
		slog.Duration("avg_query", time.Duration(s.QueryAvgNanos)),
		slog.Float64("avg_levels", s.QueryAvgLevels),
		slog.Float64("avg_candidates", s.QueryAvgCandidates),
	)
}
