package funique

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "funique", "config")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.GetChecksumConfig().Algorithm != "sha512" {
		t.Errorf("Expected default algorithm 'sha512', got '%s'", config.GetChecksumConfig().Algorithm)
	}
	if config.GetIndexConfig().Divisor != 256 {
		t.Errorf("Expected default divisor 256, got %d", config.GetIndexConfig().Divisor)
	}

	// a missing config file is not created
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("Expected config file not to be created")
	}

	settings, err := config.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	defaults := DefaultSettings()
	if *settings != *defaults {
		t.Errorf("Expected resolved settings to equal defaults:\n got  %+v\n want %+v", *settings, *defaults)
	}
}

func TestConfigFromFile(t *testing.T) {
	configPath := writeTestFile(t, t.TempDir(), "config", `
[checksum]
algorithm = blake3
leading_threshold = 1M
leading_size = 4K

[index]
divisor = 4096

[scan]
hidden = true
symlinks = contained

[pacing]
every = 0
interval = 2s

[output]
format = yaml
side_marker = true

[errors]
read_errors = skip
`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	settings, err := config.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	if settings.Algorithm != "blake3" {
		t.Errorf("Expected blake3, got %s", settings.Algorithm)
	}
	if settings.LeadingThreshold != 1024*1024 || settings.LeadingSize != 4096 {
		t.Errorf("Expected leading 1M/4K, got %d/%d", settings.LeadingThreshold, settings.LeadingSize)
	}
	if settings.HashBuffer != DefaultHashBuffer {
		t.Errorf("Expected default hash buffer for missing key, got %d", settings.HashBuffer)
	}
	if settings.Divisor != 4096 {
		t.Errorf("Expected divisor 4096, got %d", settings.Divisor)
	}
	if !settings.Scan.IncludeHidden || settings.Scan.SymlinkMode != SymlinkModeContained {
		t.Errorf("Unexpected scan options %+v", settings.Scan)
	}
	if settings.PaceEvery != 0 || settings.PaceInterval != 2*time.Second || settings.PaceSleep != time.Millisecond {
		t.Errorf("Unexpected pacing %d/%v/%v", settings.PaceEvery, settings.PaceInterval, settings.PaceSleep)
	}
	if settings.Format != FormatYAML || !settings.SideMarker {
		t.Errorf("Unexpected output %s/%v", settings.Format, settings.SideMarker)
	}
	if settings.ReadErrors != ReadErrorSkip {
		t.Errorf("Expected read_errors skip, got %s", settings.ReadErrors)
	}
}

func TestConfigOverrides(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	err = config.ApplyOverrides([]string{
		"algorithm:sha256",
		"format:json",
		"level:2",
		"debug:scan,match",
		"divisor:1024",
		"pace_sleep:5ms",
	})
	if err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	allConfig := config.GetAllConfig()
	if allConfig.Checksum.Algorithm != "sha256" {
		t.Errorf("Expected algorithm 'sha256' after override, got '%s'", allConfig.Checksum.Algorithm)
	}
	if allConfig.Output.Format != "json" {
		t.Errorf("Expected output format 'json' after override, got '%s'", allConfig.Output.Format)
	}
	if allConfig.Verbose.Level != 2 {
		t.Errorf("Expected verbose level 2 after override, got %d", allConfig.Verbose.Level)
	}
	if allConfig.Verbose.Debug != "scan,match" {
		t.Errorf("Expected debug flags 'scan,match' after override, got '%s'", allConfig.Verbose.Debug)
	}
	if allConfig.Index.Divisor != 1024 {
		t.Errorf("Expected divisor 1024 after override, got %d", allConfig.Index.Divisor)
	}
	if allConfig.Pacing.Sleep != "5ms" {
		t.Errorf("Expected pacing sleep 5ms after override, got %s", allConfig.Pacing.Sleep)
	}
}

func TestConfigOverrideErrors(t *testing.T) {
	config, _ := LoadConfig("")

	if err := config.ApplyOverrides([]string{"algorithm=sha1"}); err == nil {
		t.Error("Expected error for override without ':'")
	}
	err := config.ApplyOverrides([]string{"colour:blue"})
	if err == nil || !strings.Contains(err.Error(), "unsupported override key") {
		t.Errorf("Expected unsupported key error, got %v", err)
	}

	testCases := []struct {
		override string
		message  string
	}{
		{"divisor:abc", `index.divisor: invalid integer "abc"`},
		{"pace_every:lots", `pacing.every: invalid integer "lots"`},
		{"level:loud", `verbose.level: invalid integer "loud"`},
		{"hidden:maybe", `scan.hidden: invalid boolean "maybe"`},
		{"side_marker:2", `output.side_marker: invalid boolean "2"`},
		{"relative:perhaps", `output.relative: invalid boolean "perhaps"`},
	}

	for _, tc := range testCases {
		t.Run(tc.override, func(t *testing.T) {
			config, _ := LoadConfig("")
			if err := config.ApplyOverrides([]string{tc.override}); err != nil {
				t.Fatalf("ApplyOverrides error = %v", err)
			}
			settings, err := config.Settings()
			if err == nil {
				t.Fatalf("Expected error for %s, got settings %+v", tc.override, settings)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("Expected error containing %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestConfigFileMalformedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	content := "[index]\ndivisor = 1k\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error = %v", err)
	}
	if _, err := config.Settings(); err == nil || !strings.Contains(err.Error(), "index.divisor") {
		t.Errorf("Expected index.divisor error, got %v", err)
	}
}

func TestConfigSettingsValidation(t *testing.T) {
	testCases := []struct {
		override string
		message  string
	}{
		{"algorithm:crc32", "unsupported checksum algorithm"},
		{"divisor:0", "divisor"},
		{"format:xml", "unsupported output format"},
		{"symlinks:sometimes", "unsupported symlink mode"},
		{"level:9", "invalid verbose level"},
		{"read_errors:ignore", "unsupported read error policy"},
		{"leading_size:lots", "checksum.leading_size"},
		{"pace_sleep:soon", "pacing.sleep"},
	}

	for _, tc := range testCases {
		t.Run(tc.override, func(t *testing.T) {
			config, _ := LoadConfig("")
			if err := config.ApplyOverrides([]string{tc.override}); err != nil {
				t.Fatalf("ApplyOverrides error = %v", err)
			}
			_, err := config.Settings()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("Expected error containing %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestConfigSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config")
	config, _ := LoadConfig(configPath)
	if err := config.ApplyOverrides([]string{"algorithm:md5"}); err != nil {
		t.Fatalf("ApplyOverrides error = %v", err)
	}
	if err := config.Save(); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	reloaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if reloaded.GetChecksumConfig().Algorithm != "md5" {
		t.Errorf("Expected saved algorithm md5, got %s", reloaded.GetChecksumConfig().Algorithm)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := DefaultConfigPath(); got != "/tmp/xdg-test/funique/config" {
		t.Errorf("Expected XDG config path, got %s", got)
	}
}
