package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "file::memory:")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 1920, cfg.RenderWidth)
	assert.Equal(t, 1080, cfg.RenderHeight)
	assert.Equal(t, 30, cfg.FrameRate)
	assert.Equal(t, "authorized", cfg.DefaultGrant)
	assert.Equal(t, 10*time.Minute, cfg.ProbeCacheTTL)
	assert.NotEmpty(t, cfg.DocumentsDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RENDER_WIDTH", "1280")
	t.Setenv("RENDER_HEIGHT", "720")
	t.Setenv("ALLOWED_ORIGINS", " http://a , ,http://b")
	t.Setenv("PROBE_CACHE_TTL", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 1280, cfg.RenderWidth)
	assert.Equal(t, 720, cfg.RenderHeight)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.ProbeCacheTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AllowedOrigins: []string{"http://localhost:3000"},
			DatabaseDriver: "sqlite",
			DatabaseDSN:    "x.db",
			RenderWidth:    1920,
			RenderHeight:   1080,
			FrameRate:      30,
			VideoCRF:       18,
			DefaultGrant:   "authorized",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no origins", mutate: func(c *Config) { c.AllowedOrigins = nil }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mysql" }, wantErr: true},
		{name: "odd width", mutate: func(c *Config) { c.RenderWidth = 1921 }, wantErr: true},
		{name: "zero frame rate", mutate: func(c *Config) { c.FrameRate = 0 }, wantErr: true},
		{name: "crf out of range", mutate: func(c *Config) { c.VideoCRF = 60 }, wantErr: true},
		{name: "bad grant", mutate: func(c *Config) { c.DefaultGrant = "maybe" }, wantErr: true},
		{name: "denied grant", mutate: func(c *Config) { c.DefaultGrant = "denied" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
