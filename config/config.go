package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port           string
	AllowedOrigins []string
	JWTSecret      string

	// Storage
	DocumentsDir    string
	LibraryDir      string
	CaptureDir      string
	AudioLibraryDir string
	DatabaseDriver  string
	DatabaseDSN     string

	// Library authorization answer used when a subject was never asked
	DefaultGrant string

	// Render Settings
	FFmpegPath   string
	FFprobePath  string
	RenderWidth  int
	RenderHeight int
	FrameRate    int
	VideoCRF     int
	VideoPreset  string
	AudioBitrate string

	// Housekeeping
	ProbeCacheTTL time.Duration
	CleanupAfter  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	dataHome := filepath.Join(xdg.DataHome, "videoninja")

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		JWTSecret:      getEnv("JWT_SECRET", ""),

		DocumentsDir:    getEnv("DOCUMENTS_DIR", filepath.Join(dataHome, "Documents")),
		LibraryDir:      getEnv("LIBRARY_DIR", filepath.Join(dataHome, "Library")),
		CaptureDir:      getEnv("CAPTURE_DIR", filepath.Join(dataHome, "Capture")),
		AudioLibraryDir: getEnv("AUDIO_LIBRARY_DIR", filepath.Join(dataHome, "Music")),
		DatabaseDriver:  getEnv("DB_DRIVER", "sqlite"),
		DatabaseDSN:     getEnv("DB_DSN", filepath.Join(dataHome, "library.db")),

		DefaultGrant: getEnv("LIBRARY_DEFAULT_GRANT", "authorized"),

		FFmpegPath:   getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:  getEnv("FFPROBE_PATH", "ffprobe"),
		RenderWidth:  getEnvAsInt("RENDER_WIDTH", 1920),
		RenderHeight: getEnvAsInt("RENDER_HEIGHT", 1080),
		FrameRate:    getEnvAsInt("FRAME_RATE", 30),
		VideoCRF:     getEnvAsInt("VIDEO_CRF", 18),
		VideoPreset:  getEnv("VIDEO_PRESET", "slow"),
		AudioBitrate: getEnv("AUDIO_BITRATE", "192k"),

		ProbeCacheTTL: getEnvAsDuration("PROBE_CACHE_TTL", 10*time.Minute),
		CleanupAfter:  getEnvAsDuration("CLEANUP_AFTER", 24*time.Hour),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if len(c.AllowedOrigins) == 0 {
		return errors.New("ALLOWED_ORIGINS must list at least one origin")
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.RenderWidth <= 0 || c.RenderHeight <= 0 {
		return errors.New("RENDER_WIDTH and RENDER_HEIGHT must be positive")
	}
	if c.RenderWidth%2 != 0 || c.RenderHeight%2 != 0 {
		return errors.New("RENDER_WIDTH and RENDER_HEIGHT must be even")
	}
	if c.FrameRate <= 0 {
		return errors.New("FRAME_RATE must be positive")
	}
	if c.VideoCRF < 0 || c.VideoCRF > 51 {
		return errors.New("VIDEO_CRF must be between 0 and 51")
	}
	switch c.DefaultGrant {
	case "authorized", "denied", "not_determined":
	default:
		return fmt.Errorf("LIBRARY_DEFAULT_GRANT must be authorized, denied or not_determined, got %q", c.DefaultGrant)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseList(listStr string) []string {
	if listStr == "" {
		return []string{}
	}
	parts := strings.Split(listStr, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s, Library: %s, Render: %dx%d@%d}",
		c.Port, c.DatabaseDriver, c.LibraryDir, c.RenderWidth, c.RenderHeight, c.FrameRate)
}
