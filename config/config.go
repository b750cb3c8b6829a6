// Package config loads column table settings from YAML, the same shape the
// embedding engine ships in its configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/INLOpen/columnbase/cache"
	"github.com/INLOpen/columnbase/columntable"
	"github.com/INLOpen/columnbase/core"
)

// TableConfig is the YAML-visible configuration of the table layer.
type TableConfig struct {
	// ColumnCount is the number of subcolumn files per table.
	ColumnCount int `yaml:"column_count"`

	// BlockSize is the target uncompressed data block size in bytes.
	BlockSize int `yaml:"block_size"`

	// BlockRestartInterval is the entry spacing of restart points in data
	// blocks.
	BlockRestartInterval int `yaml:"block_restart_interval"`

	// IndexBlockRestartInterval is the restart spacing of index blocks.
	IndexBlockRestartInterval int `yaml:"index_block_restart_interval"`

	// Compression names the block codec: none, snappy, zlib, lz4, lz4hc
	// or zstd.
	Compression string `yaml:"compression"`

	// Splitter names the value splitter: pipe or encoded.
	Splitter string `yaml:"splitter"`

	// BlockCacheCapacity is the number of decompressed blocks the shared
	// LRU cache holds; zero disables the cache.
	BlockCacheCapacity int `yaml:"block_cache_capacity"`
}

// DefaultTableConfig uses the columntable package defaults for block size
// and restart intervals, and sets one column, snappy compression, the pipe
// splitter and a 1024-block cache.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		ColumnCount:               1,
		BlockSize:                 columntable.DefaultBlockSize,
		BlockRestartInterval:      columntable.DefaultBlockRestartInterval,
		IndexBlockRestartInterval: columntable.DefaultIndexBlockRestartInterval,
		Compression:               "snappy",
		Splitter:                  "pipe",
		BlockCacheCapacity:        1024,
	}
}

// Load reads a YAML table configuration, filling unset fields with
// defaults and validating the result.
func Load(path string) (TableConfig, error) {
	cfg := DefaultTableConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// compressionTypes maps config names to trailer values.
var compressionTypes = map[string]core.CompressionType{
	"none":   core.CompressionNone,
	"snappy": core.CompressionSnappy,
	"zlib":   core.CompressionZlib,
	"lz4":    core.CompressionLZ4,
	"lz4hc":  core.CompressionLZ4HC,
	"zstd":   core.CompressionZSTDNotFinal,
}

// Validate rejects configurations the table layer cannot honor.
func (c TableConfig) Validate() error {
	if c.ColumnCount < 0 {
		return fmt.Errorf("column_count must be >= 0, got %d", c.ColumnCount)
	}
	if c.BlockSize < 1 {
		return fmt.Errorf("block_size must be >= 1, got %d", c.BlockSize)
	}
	if c.BlockRestartInterval < 1 {
		return fmt.Errorf("block_restart_interval must be >= 1, got %d", c.BlockRestartInterval)
	}
	if c.IndexBlockRestartInterval < 1 {
		return fmt.Errorf("index_block_restart_interval must be >= 1, got %d", c.IndexBlockRestartInterval)
	}
	if _, ok := compressionTypes[c.Compression]; !ok {
		return fmt.Errorf("unknown compression %q", c.Compression)
	}
	if _, err := core.SplitterForName(c.Splitter); err != nil {
		return err
	}
	if c.BlockCacheCapacity < 0 {
		return fmt.Errorf("block_cache_capacity must be >= 0, got %d", c.BlockCacheCapacity)
	}
	return nil
}

// BuildOptions materializes columntable.Options from the configuration.
// Validate must have passed.
func (c TableConfig) BuildOptions() (columntable.Options, error) {
	if err := c.Validate(); err != nil {
		return columntable.Options{}, err
	}
	splitter, err := core.SplitterForName(c.Splitter)
	if err != nil {
		return columntable.Options{}, err
	}
	opts := columntable.Options{
		Splitter:                  splitter,
		ColumnCount:               c.ColumnCount,
		BlockSize:                 c.BlockSize,
		BlockRestartInterval:      c.BlockRestartInterval,
		IndexBlockRestartInterval: c.IndexBlockRestartInterval,
		Compression:               compressionTypes[c.Compression],
	}
	if c.BlockCacheCapacity > 0 {
		opts.BlockCache = cache.NewLRUCache(c.BlockCacheCapacity, nil)
	}
	return opts.Normalized(), nil
}
