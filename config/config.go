// Package config reads the YAML parameter file driving the pointloc
// command line tool.
//
//	snapshot:
//	  source: s3
//	  bucket: sim-output
//	  prefix: run-17/
//	  name: snap_042
//	  compression: zstd
//	index:
//	  target_occupancy: 10
//	stats:
//	  num_bins: 50
//	  min_dist: 0.001
//	  max_dist: 1
//	query:
//	  radius: 0.05
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Snapshot sources.
const (
	SourceLocal = "local"
	SourceS3    = "s3"
	SourceMinio = "minio"
)

// Config is the complete run configuration.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Index    IndexConfig    `yaml:"index"`
	Stats    StatsConfig    `yaml:"stats"`
	Query    QueryConfig    `yaml:"query"`
	Log      LogConfig      `yaml:"log"`
}

// SnapshotConfig locates and decodes the snapshot.
type SnapshotConfig struct {
	// Source is one of local, s3 or minio.
	Source string `yaml:"source"`
	// Dir is the directory of a local source.
	Dir string `yaml:"dir,omitempty"`
	// Bucket, Prefix and Endpoint address object storage. Endpoint is
	// required for minio and optional for s3.
	Bucket   string `yaml:"bucket,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Secure   bool   `yaml:"secure,omitempty"`

	Name        string `yaml:"name"`
	Compression string `yaml:"compression,omitempty"`
	ByteOrder   string `yaml:"byte_order,omitempty"`
	Strict      bool   `yaml:"strict,omitempty"`

	// ReadLimit throttles reads in bytes per second; 0 disables it.
	ReadLimit int `yaml:"read_limit,omitempty"`
	// MemoryLimit caps the bytes reserved for decoded blocks; 0 disables it.
	MemoryLimit int64 `yaml:"memory_limit,omitempty"`
}

// IndexConfig tunes the grid.
type IndexConfig struct {
	TargetOccupancy float64 `yaml:"target_occupancy"`
	MaxCells        int     `yaml:"max_cells,omitempty"`
}

// StatsConfig describes the nearest-neighbour distance histogram.
type StatsConfig struct {
	NumBins int     `yaml:"num_bins"`
	MinDist float64 `yaml:"min_dist"`
	MaxDist float64 `yaml:"max_dist"`
	// Output is the histogram file; empty or "-" writes to stdout.
	Output string `yaml:"output,omitempty"`
}

// QueryConfig holds neighbour query defaults.
type QueryConfig struct {
	Radius      float64 `yaml:"radius"`
	Concurrency int     `yaml:"concurrency,omitempty"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for keys missing from a file.
func Default() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			Source:      SourceLocal,
			Dir:         ".",
			Compression: "auto",
			ByteOrder:   "little",
		},
		Index: IndexConfig{TargetOccupancy: 10},
		Stats: StatsConfig{NumBins: 50, MinDist: 1e-3, MaxDist: 1},
		Query: QueryConfig{Radius: 0.1},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FieldError reports an invalid setting.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks every section and joins all field errors.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, field, format string, args ...any) {
		if !ok {
			errs = append(errs, &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
		}
	}

	s := c.Snapshot
	switch s.Source {
	case SourceLocal:
		check(s.Dir != "", "snapshot.dir", "required for a local source")
	case SourceS3:
		check(s.Bucket != "", "snapshot.bucket", "required for an s3 source")
	case SourceMinio:
		check(s.Bucket != "", "snapshot.bucket", "required for a minio source")
		check(s.Endpoint != "", "snapshot.endpoint", "required for a minio source")
	default:
		check(false, "snapshot.source", "unknown source %q", s.Source)
	}
	check(s.Name != "", "snapshot.name", "required")
	check(oneOf(s.Compression, "", "auto", "none", "zstd", "lz4"), "snapshot.compression", "unknown compression %q", s.Compression)
	check(oneOf(s.ByteOrder, "", "little", "big"), "snapshot.byte_order", "must be little or big, got %q", s.ByteOrder)
	check(s.ReadLimit >= 0, "snapshot.read_limit", "must not be negative")
	check(s.MemoryLimit >= 0, "snapshot.memory_limit", "must not be negative")

	check(c.Index.TargetOccupancy > 0, "index.target_occupancy", "must be positive, got %g", c.Index.TargetOccupancy)
	check(c.Index.MaxCells >= 0, "index.max_cells", "must not be negative")

	check(c.Stats.NumBins > 0, "stats.num_bins", "must be positive, got %d", c.Stats.NumBins)
	check(c.Stats.MinDist > 0, "stats.min_dist", "must be positive, got %g", c.Stats.MinDist)
	check(c.Stats.MaxDist > c.Stats.MinDist, "stats.max_dist", "must exceed min_dist")

	check(c.Query.Radius >= 0, "query.radius", "must not be negative")
	check(c.Query.Concurrency >= 0, "query.concurrency", "must not be negative")

	check(oneOf(c.Log.Level, "debug", "info", "warn", "error"), "log.level", "unknown level %q", c.Log.Level)
	check(oneOf(c.Log.Format, "text", "json"), "log.format", "must be text or json, got %q", c.Log.Format)

	return errors.Join(errs...)
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
