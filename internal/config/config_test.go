package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadYAML_MergesFileValues verifies YAML values land on top of
// defaults.
func TestLoadYAML_MergesFileValues(t *testing.T) {
	cfg := Config{FPS: 60, ListenAddr: "0.0.0.0:8080"}
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen_addr: 127.0.0.1:9000\nfps: 30\nwebrtc_enabled: false\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	if err := loadYAML(path, &cfg); err != nil {
		t.Fatalf("loadYAML: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" || cfg.FPS != 30 || cfg.WebRTCEnabled {
		t.Fatalf("unexpected merged config: %+v", cfg)
	}
}

// TestLoadYAML_MissingFileIsFine verifies absence of the file keeps
// defaults untouched.
func TestLoadYAML_MissingFileIsFine(t *testing.T) {
	cfg := Config{FPS: 60}
	if err := loadYAML(filepath.Join(t.TempDir(), "none.yaml"), &cfg); err != nil {
		t.Fatalf("expected missing file to be fine, got %v", err)
	}
	if cfg.FPS != 60 {
		t.Fatalf("expected defaults untouched, got %+v", cfg)
	}
}

// TestLoadYAML_RejectsBadSyntax verifies YAML parse errors surface.
func TestLoadYAML_RejectsBadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fps: [oops"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	var cfg Config
	if err := loadYAML(path, &cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}

// TestApplyEnv_Overrides verifies environment values beat file values.
func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("FPS", "24")
	t.Setenv("DATASET", "/tmp/land.geojson")
	t.Setenv("MJPEG_ENABLED", "off")

	cfg := Config{FPS: 60, MJPEGEnabled: true}
	if err := applyEnv(&cfg); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.FPS != 24 || cfg.Dataset != "/tmp/land.geojson" || cfg.MJPEGEnabled {
		t.Fatalf("unexpected env overlay: %+v", cfg)
	}
}

// TestApplyEnv_RejectsBadInt verifies malformed numeric overrides error
// instead of being dropped.
func TestApplyEnv_RejectsBadInt(t *testing.T) {
	t.Setenv("FPS", "sixty")
	var cfg Config
	if err := applyEnv(&cfg); err == nil {
		t.Fatalf("expected error for non-integer FPS")
	}
}

// TestValidate_Ranges verifies the range checks.
func TestValidate_Ranges(t *testing.T) {
	good := Config{FPS: 60, BitrateKbps: 4000, MJPEGQuality: 70}
	if err := validate(good); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	bad := []Config{
		{FPS: 0, BitrateKbps: 4000, MJPEGQuality: 70},
		{FPS: 60, BitrateKbps: 0, MJPEGQuality: 70},
		{FPS: 60, BitrateKbps: 4000, MJPEGQuality: 101},
		{FPS: 60, BitrateKbps: 4000, MJPEGQuality: 70, MJPEGIntervalMs: -1},
	}
	for i, cfg := range bad {
		if err := validate(cfg); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, cfg)
		}
	}
}

// TestParseEnvLine verifies .env parsing of comments, exports, and quotes.
func TestParseEnvLine(t *testing.T) {
	if _, _, ok := parseEnvLine("# comment"); ok {
		t.Fatalf("expected comment to be skipped")
	}
	key, value, ok := parseEnvLine(`export UI_PASSWORD="secret"`)
	if !ok || key != "UI_PASSWORD" || value != "secret" {
		t.Fatalf("unexpected parse: %q %q %v", key, value, ok)
	}
	if _, _, ok := parseEnvLine("not-a-pair"); ok {
		t.Fatalf("expected malformed line to be skipped")
	}
}
