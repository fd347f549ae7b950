package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		assert.Equal(t, "clover", cfg.AppName)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.False(t, cfg.PrettyLogs)
		assert.Equal(t, "VIRGINIA AtoZ CORRECTED ADDRESSES 11.28.2024.csv", cfg.PrimaryPath)
		assert.Equal(t, "EFGH CORRECTED ADDRESSES.csv", cfg.SecondaryPath)
		assert.Equal(t, "output.csv", cfg.OutputPath)
		assert.Empty(t, cfg.CSVDelimiter)
		assert.Equal(t, 80.0, cfg.AddressMatchThreshold)
		assert.Equal(t, 80.0, cfg.NameMatchThreshold)
		assert.Equal(t, "indel", cfg.SimilarityMetric)
		assert.Equal(t, 100, cfg.FlushBatchSize)
		assert.Equal(t, 4, cfg.MatchWorkerCount)
		assert.Equal(t, 512, cfg.MatchWindowSize)
		assert.False(t, cfg.TracingEnabled)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("ADDRESS_MATCH_THRESHOLD", "90")
		t.Setenv("SIMILARITY_METRIC", "levenshtein")
		t.Setenv("FLUSH_BATCH_SIZE", "25")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, 90.0, cfg.AddressMatchThreshold)
		assert.Equal(t, "levenshtein", cfg.SimilarityMetric)
		assert.Equal(t, 25, cfg.FlushBatchSize)
	})

	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("OUTPUT_PATH=matches.csv\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("OUTPUT_PATH") })

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "matches.csv", cfg.OutputPath)
	})

	t.Run("empty variables keep their defaults", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("MATCH_WINDOW_SIZE", "")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 512, cfg.MatchWindowSize)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Setenv("MATCH_WORKER_COUNT", "many")

		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppName:               "clover",
			LogLevel:              "info",
			PrimaryPath:           "primary.csv",
			SecondaryPath:         "secondary.csv",
			OutputPath:            "output.csv",
			AddressMatchThreshold: 80,
			NameMatchThreshold:    80,
			SimilarityMetric:      "indel",
			FlushBatchSize:        100,
			MatchWorkerCount:      1,
			MatchWindowSize:       1,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{"valid", func(c *Config) {}, true},
		{"threshold above 100", func(c *Config) { c.AddressMatchThreshold = 101 }, false},
		{"negative name threshold", func(c *Config) { c.NameMatchThreshold = -1 }, false},
		{"zero batch size", func(c *Config) { c.FlushBatchSize = 0 }, false},
		{"unknown metric", func(c *Config) { c.SimilarityMetric = "jaro" }, false},
		{"zero workers", func(c *Config) { c.MatchWorkerCount = 0 }, false},
		{"zero window", func(c *Config) { c.MatchWindowSize = 0 }, false},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"missing output", func(c *Config) { c.OutputPath = "" }, false},
		{"tab delimiter", func(c *Config) { c.CSVDelimiter = "tab" }, true},
		{"multi-character delimiter", func(c *Config) { c.CSVDelimiter = ";;" }, false},
		{"quote delimiter", func(c *Config) { c.CSVDelimiter = `"` }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestDelimiter(t *testing.T) {
	tests := map[string]rune{
		"":    0,
		",":   ',',
		";":   ';',
		"|":   '|',
		"tab": '\t',
		`\t`:  '\t',
		"\t":  '\t',
	}

	for in, want := range tests {
		got, err := (&Config{CSVDelimiter: in}).Delimiter()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
