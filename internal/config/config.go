// Package config loads file and environment configuration for OrbView.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr      = "0.0.0.0:8080"
	defaultDataDir         = "./data"
	defaultFFmpegPath      = "ffmpeg"
	defaultFPS             = 60
	defaultBitrateKbps     = 4000
	defaultMJPEGEnabled    = true
	defaultMJPEGIntervalMs = 50
	defaultMJPEGQuality    = 70
	defaultWebRTCEnabled   = true
)

// Config holds runtime configuration values. YAML supplies the file layer;
// environment variables override it.
type Config struct {
	ListenAddr      string `yaml:"listen_addr"`
	DataDir         string `yaml:"data_dir"`
	ViewPath        string `yaml:"view_path"`
	Dataset         string `yaml:"dataset"`
	FFmpegPath      string `yaml:"ffmpeg_path"`
	FPS             int    `yaml:"fps"`
	BitrateKbps     int    `yaml:"bitrate_kbps"`
	MJPEGEnabled    bool   `yaml:"mjpeg_enabled"`
	MJPEGIntervalMs int    `yaml:"mjpeg_interval_ms"`
	MJPEGQuality    int    `yaml:"mjpeg_quality"`
	WebRTCEnabled   bool   `yaml:"webrtc_enabled"`
	Debug           bool   `yaml:"debug"`

	// UIPassword comes from the environment only; empty disables auth.
	UIPassword string `yaml:"-"`
}

// Load reads configuration from ./data/config.yaml (or ORBVIEW_CONFIG),
// a ./data/.env file, and environment variables, in increasing precedence.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:      defaultListenAddr,
		DataDir:         defaultDataDir,
		FFmpegPath:      defaultFFmpegPath,
		FPS:             defaultFPS,
		BitrateKbps:     defaultBitrateKbps,
		MJPEGEnabled:    defaultMJPEGEnabled,
		MJPEGIntervalMs: defaultMJPEGIntervalMs,
		MJPEGQuality:    defaultMJPEGQuality,
		WebRTCEnabled:   defaultWebRTCEnabled,
	}

	if err := loadEnvFile(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return Config{}, err
	}

	yamlPath := envString("ORBVIEW_CONFIG", filepath.Join(cfg.DataDir, "config.yaml"))
	if err := loadYAML(yamlPath, &cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	if cfg.ViewPath == "" {
		cfg.ViewPath = filepath.Join(cfg.DataDir, "view.json")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = filepath.Join(cfg.DataDir, "world.geojson")
	}
	return cfg, nil
}

// loadYAML merges an optional YAML file into cfg. A missing file is fine.
func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) error {
	cfg.ListenAddr = envString("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.ViewPath = envString("VIEW_PATH", cfg.ViewPath)
	cfg.Dataset = envString("DATASET", cfg.Dataset)
	cfg.FFmpegPath = envString("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.UIPassword = strings.TrimSpace(os.Getenv("UI_PASSWORD"))

	var err error
	if cfg.FPS, err = envInt("FPS", cfg.FPS); err != nil {
		return err
	}
	if cfg.BitrateKbps, err = envInt("BITRATE_KBPS", cfg.BitrateKbps); err != nil {
		return err
	}
	cfg.MJPEGEnabled = envBool("MJPEG_ENABLED", cfg.MJPEGEnabled)
	if cfg.MJPEGIntervalMs, err = envInt("MJPEG_INTERVAL_MS", cfg.MJPEGIntervalMs); err != nil {
		return err
	}
	if cfg.MJPEGQuality, err = envInt("MJPEG_QUALITY", cfg.MJPEGQuality); err != nil {
		return err
	}
	cfg.WebRTCEnabled = envBool("WEBRTC_ENABLED", cfg.WebRTCEnabled)
	cfg.Debug = envBool("DEBUG", cfg.Debug)
	return nil
}

// validate rejects out-of-range values.
func validate(cfg Config) error {
	if cfg.FPS <= 0 || cfg.FPS > 240 {
		return fmt.Errorf("FPS must be 1-240")
	}
	if cfg.BitrateKbps <= 0 {
		return fmt.Errorf("BITRATE_KBPS must be > 0")
	}
	if cfg.MJPEGQuality <= 0 || cfg.MJPEGQuality > 100 {
		return fmt.Errorf("MJPEG_QUALITY must be 1-100")
	}
	if cfg.MJPEGIntervalMs < 0 {
		return fmt.Errorf("MJPEG_INTERVAL_MS must be >= 0")
	}
	return nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	if strings.HasPrefix(line, "export ") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", false
	}
	value = strings.Trim(value, `"'`)
	return key, value, true
}
