package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INLOpen/columnbase/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "column_count: 3\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	def := DefaultTableConfig()
	assert.Equal(t, 3, cfg.ColumnCount)
	assert.Equal(t, def.BlockSize, cfg.BlockSize)
	assert.Equal(t, def.Compression, cfg.Compression)
	assert.Equal(t, def.Splitter, cfg.Splitter)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
column_count: 5
block_size: 8192
block_restart_interval: 8
index_block_restart_interval: 2
compression: zstd
splitter: encoded
block_cache_capacity: 256
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	opts, err := cfg.BuildOptions()
	require.NoError(t, err)
	assert.Equal(t, 5, opts.ColumnCount)
	assert.Equal(t, 8192, opts.BlockSize)
	assert.Equal(t, 8, opts.BlockRestartInterval)
	assert.Equal(t, 2, opts.IndexBlockRestartInterval)
	assert.Equal(t, core.CompressionZSTDNotFinal, opts.Compression)
	assert.IsType(t, &core.EncodedSplitter{}, opts.Splitter)
	require.NotNil(t, opts.BlockCache)
}

func TestLoadRejectsBadCompression(t *testing.T) {
	path := writeConfig(t, "compression: brotli\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brotli")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultTableConfig()
	cfg.BlockSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultTableConfig()
	cfg.ColumnCount = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultTableConfig()
	cfg.Splitter = "csv"
	assert.Error(t, cfg.Validate())

	assert.NoError(t, DefaultTableConfig().Validate())
}

func TestBuildOptionsZeroCacheDisablesCache(t *testing.T) {
	cfg := DefaultTableConfig()
	cfg.BlockCacheCapacity = 0
	opts, err := cfg.BuildOptions()
	require.NoError(t, err)
	assert.Nil(t, opts.BlockCache)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
