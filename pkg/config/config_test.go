package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-lens/pkg/parser"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "", config.Extract.Strategy)
	assert.Equal(t, "auto", config.Extract.Format)
	assert.Equal(t, 2, config.Extract.SecurityLevel)
	assert.Equal(t, "mkey", config.Extract.Marker)
	assert.Equal(t, 5, config.Extract.WindowLen)
	assert.Equal(t, 5, config.Extract.KeyLen)
	assert.Equal(t, 30, config.Extract.TimeoutSeconds)
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.NoError(t, config.Validate())
	assert.NoError(t, config.ValidateServer())
}

func TestLoadConfig(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		data := []byte("extract:\n  security_level: 3\n  marker: ckey\nlogging:\n  level: debug\n")
		require.NoError(t, os.WriteFile(configPath, data, 0600))

		config, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, 3, config.Extract.SecurityLevel)
		assert.Equal(t, "ckey", config.Extract.Marker)
		assert.Equal(t, 5, config.Extract.WindowLen)
		assert.Equal(t, "debug", config.Logging.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("extract: [unclosed"), 0600))

		_, err := LoadConfig(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := DefaultConfig()
	config.Extract.Workers = 4

	require.NoError(t, SaveConfig(config, configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		option string
	}{
		{"bad strategy", func(c *Config) { c.Extract.Strategy = "guess" }, "--strategy"},
		{"bad format", func(c *Config) { c.Extract.Format = "modern" }, "--type"},
		{"security too low", func(c *Config) { c.Extract.SecurityLevel = 0 }, "--sec"},
		{"security too high", func(c *Config) { c.Extract.SecurityLevel = 4 }, "--sec"},
		{"short marker", func(c *Config) { c.Extract.Marker = "key" }, "--marker"},
		{"odd marker hex", func(c *Config) { c.Extract.MarkerHex = "6d6b657" }, "--marker-hex"},
		{"long marker hex", func(c *Config) { c.Extract.MarkerHex = "6d6b657979" }, "--marker-hex"},
		{"zero window", func(c *Config) { c.Extract.WindowLen = 0 }, "--window"},
		{"zero timeout", func(c *Config) { c.Extract.TimeoutSeconds = 0 }, "--timeout"},
		{"zero workers", func(c *Config) { c.Extract.Workers = 0 }, "--workers"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "--log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOption))
			assert.Contains(t, err.Error(), tt.option)
		})
	}

	t.Run("marker hex overrides bad marker", func(t *testing.T) {
		config := DefaultConfig()
		config.Extract.Marker = ""
		config.Extract.MarkerHex = "636b6579"
		assert.NoError(t, config.Validate())

		m, err := config.Marker()
		require.NoError(t, err)
		assert.Equal(t, "ckey", m.String())
	})
}

func TestValidateServer(t *testing.T) {
	config := DefaultConfig()
	config.Server.Port = 70000
	assert.ErrorIs(t, config.ValidateServer(), ErrInvalidOption)

	config = DefaultConfig()
	config.Server.MaxUploadBytes = 0
	assert.ErrorIs(t, config.ValidateServer(), ErrInvalidOption)
}

func TestFlags(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(fs, DefaultConfig())
		return fs
	}

	t.Run("defaults from config", func(t *testing.T) {
		fs := newFlags()
		v, err := fs.GetInt("sec")
		require.NoError(t, err)
		assert.Equal(t, 2, v)

		m, err := fs.GetString("marker")
		require.NoError(t, err)
		assert.Equal(t, "mkey", m)
	})

	t.Run("only changed flags override", func(t *testing.T) {
		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"--sec", "3", "--json", "-o", "report.txt"}))

		config := DefaultConfig()
		config.Extract.Marker = "ckey" // as if loaded from a file
		require.NoError(t, ApplyFlags(fs, config))

		assert.Equal(t, 3, config.Extract.SecurityLevel)
		assert.True(t, config.Output.JSON)
		assert.Equal(t, "report.txt", config.Output.Path)
		assert.Equal(t, "ckey", config.Extract.Marker)
	})
}

func TestExtractOptions(t *testing.T) {
	t.Run("format maps to strategy", func(t *testing.T) {
		config := DefaultConfig()
		config.Extract.Format = "current"
		config.Extract.Workers = 4

		opts, err := config.ExtractOptions(nil)
		require.NoError(t, err)
		assert.Equal(t, parser.StrategyTagged, opts.Strategy)
		require.NotNil(t, opts.Marker)
		assert.Equal(t, parser.DefaultMarker, *opts.Marker)
		assert.Equal(t, 4, opts.Shards)
	})

	t.Run("automated detection forces auto", func(t *testing.T) {
		config := DefaultConfig()
		config.Extract.Format = "legacy"
		config.Extract.AutomatedDetection = true

		opts, err := config.ExtractOptions(nil)
		require.NoError(t, err)
		assert.Equal(t, parser.FormatAuto, opts.Format)
		assert.Equal(t, parser.StrategyAuto, opts.Strategy)
	})

	t.Run("explicit strategy wins", func(t *testing.T) {
		config := DefaultConfig()
		config.Extract.Format = "current"
		config.Extract.Strategy = "entropy"

		opts, err := config.ExtractOptions(nil)
		require.NoError(t, err)
		assert.Equal(t, parser.StrategyEntropy, opts.Strategy)
	})
}

func TestLogLevel(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, logrus.WarnLevel, config.LogLevel())

	config.Logging.Level = "error"
	assert.Equal(t, logrus.ErrorLevel, config.LogLevel())

	config.Output.Verbose = true
	assert.Equal(t, logrus.DebugLevel, config.LogLevel())
}

func TestApplyValues(t *testing.T) {
	query := map[string]string{"strategy": "entropy", "window": "8", "automated-detection": "true", "log-level": "debug"}
	lookup := func(name string) (string, bool) {
		v, ok := query[name]
		return v, ok
	}

	config := DefaultConfig()
	require.NoError(t, ApplyValues(config, lookup, "strategy", "window", "automated-detection"))
	assert.Equal(t, "entropy", config.Extract.Strategy)
	assert.Equal(t, 8, config.Extract.WindowLen)
	assert.True(t, config.Extract.AutomatedDetection)
	assert.Equal(t, "warn", config.Logging.Level, "names not listed are ignored")

	query["window"] = "wide"
	err := ApplyValues(DefaultConfig(), lookup, "window")
	assert.ErrorIs(t, err, ErrInvalidOption)
}
