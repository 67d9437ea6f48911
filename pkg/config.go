package funique

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ini/ini"
)

// Config represents the funique configuration file
type Config struct {
	configPath string
	ini        *ini.File
}

// ChecksumConfig represents checksum configuration
type ChecksumConfig struct {
	Algorithm        string // Full checksum algorithm
	LeadingThreshold string // Files larger than this get a leading checksum check
	LeadingSize      string // Bytes covered by the leading checksum
	Buffer           string // Read buffer for full checksums
}

// IndexConfig represents size bucketing configuration
type IndexConfig struct {
	Divisor int64 // Bytes per size bucket
}

// ScanConfig represents directory enumeration configuration
type ScanConfig struct {
	Hidden     bool   // Include hidden files and directories
	Symlinks   string // Symlink mode: none, contained, all
	IgnoreFile string // File of regex patterns to skip
}

// PacingConfig represents throttling configuration
type PacingConfig struct {
	Every    int    // Sleep after this many files (0 disables)
	Sleep    string // Sleep duration
	Interval string // Also sleep when this much wall-clock time passed (0 disables)
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format     string // plain, json, yaml
	SideMarker bool   // Prefix plain output with "<" or ">"
	Relative   bool   // Print paths relative to their scan root
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=warnings, 1=info, 2=debug, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// ErrorsConfig represents error handling configuration
type ErrorsConfig struct {
	ReadErrors string // abort or skip
}

// AllConfig represents all configuration options
type AllConfig struct {
	Checksum *ChecksumConfig
	Index    *IndexConfig
	Scan     *ScanConfig
	Pacing   *PacingConfig
	Output   *OutputConfig
	Verbose  *VerboseConfig
	Errors   *ErrorsConfig
}

// overrideKeys maps override keys to their section and key
var overrideKeys = map[string][2]string{
	"algorithm":         {"checksum", "algorithm"},
	"leading_threshold": {"checksum", "leading_threshold"},
	"leading_size":      {"checksum", "leading_size"},
	"buffer":            {"checksum", "buffer"},
	"divisor":           {"index", "divisor"},
	"hidden":            {"scan", "hidden"},
	"symlinks":          {"scan", "symlinks"},
	"ignore_file":       {"scan", "ignore_file"},
	"pace_every":        {"pacing", "every"},
	"pace_sleep":        {"pacing", "sleep"},
	"pace_interval":     {"pacing", "interval"},
	"format":            {"output", "format"},
	"side_marker":       {"output", "side_marker"},
	"relative":          {"output", "relative"},
	"level":             {"verbose", "level"},
	"debug":             {"verbose", "debug"},
	"read_errors":       {"errors", "read_errors"},
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/funique/config, or an empty
// string if no config directory can be determined
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "funique", "config")
}

// LoadConfig loads configuration from configPath. A missing file (or an
// empty path) yields the built-in defaults; nothing is written to disk.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{configPath: configPath}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			iniFile, err := ini.Load(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
			cfg.ini = iniFile
			if IsDebugEnabled(DebugConfig) {
				VerboseLog(2, "loaded config from %s", configPath)
			}
			return cfg, nil
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	cfg.ini = ini.Empty()
	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set default config: %w", err)
	}
	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section string
		keys    [][2]string
	}{
		{"checksum", [][2]string{
			{"algorithm", DefaultAlgorithm},
			{"leading_threshold", "128K"},
			{"leading_size", "2K"},
			{"buffer", "2M"},
		}},
		{"index", [][2]string{{"divisor", fmt.Sprintf("%d", DefaultGroupingDivisor)}}},
		{"scan", [][2]string{{"hidden", "false"}, {"symlinks", SymlinkModeNone}, {"ignore_file", ""}}},
		{"pacing", [][2]string{{"every", fmt.Sprintf("%d", DefaultPaceEvery)}, {"sleep", DefaultPaceSleep}, {"interval", "0s"}}},
		{"output", [][2]string{{"format", FormatPlain}, {"side_marker", "false"}, {"relative", "false"}}},
		{"verbose", [][2]string{{"level", "0"}, {"debug", ""}}},
		{"errors", [][2]string{{"read_errors", ReadErrorAbort}}},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		for _, kv := range d.keys {
			if _, err := section.NewKey(kv[0], kv[1]); err != nil {
				return fmt.Errorf("failed to set default %s.%s: %w", d.section, kv[0], err)
			}
		}
	}
	return nil
}

// stringKey returns section.key or fallback
func (c *Config) stringKey(section, key, fallback string) string {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			return s.Key(key).String()
		}
	}
	return fallback
}

func (c *Config) boolKey(section, key string, fallback bool) bool {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			if v, err := s.Key(key).Bool(); err == nil {
				return v
			}
		}
	}
	return fallback
}

func (c *Config) intKey(section, key string, fallback int) int {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			if v, err := s.Key(key).Int(); err == nil {
				return v
			}
		}
	}
	return fallback
}

// lookupKey returns section.key if the config sets it
func (c *Config) lookupKey(section, key string) (*ini.Key, bool) {
	if !c.ini.HasSection(section) {
		return nil, false
	}
	s := c.ini.Section(section)
	if !s.HasKey(key) {
		return nil, false
	}
	return s.Key(key), true
}

// parseBoolKey is the checked form of boolKey used when resolving Settings
func (c *Config) parseBoolKey(section, key string, fallback bool) (bool, error) {
	k, ok := c.lookupKey(section, key)
	if !ok {
		return fallback, nil
	}
	v, err := k.Bool()
	if err != nil {
		return false, fmt.Errorf("%s.%s: invalid boolean %q", section, key, k.String())
	}
	return v, nil
}

// parseIntKey is the checked form of intKey used when resolving Settings
func (c *Config) parseIntKey(section, key string, fallback int) (int, error) {
	k, ok := c.lookupKey(section, key)
	if !ok {
		return fallback, nil
	}
	v, err := k.Int()
	if err != nil {
		return 0, fmt.Errorf("%s.%s: invalid integer %q", section, key, k.String())
	}
	return v, nil
}

func (c *Config) parseInt64Key(section, key string, fallback int64) (int64, error) {
	k, ok := c.lookupKey(section, key)
	if !ok {
		return fallback, nil
	}
	v, err := k.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s.%s: invalid integer %q", section, key, k.String())
	}
	return v, nil
}

// GetChecksumConfig returns the checksum configuration
func (c *Config) GetChecksumConfig() *ChecksumConfig {
	return &ChecksumConfig{
		Algorithm:        c.stringKey("checksum", "algorithm", DefaultAlgorithm),
		LeadingThreshold: c.stringKey("checksum", "leading_threshold", "128K"),
		LeadingSize:      c.stringKey("checksum", "leading_size", "2K"),
		Buffer:           c.stringKey("checksum", "buffer", "2M"),
	}
}

// GetIndexConfig returns the index configuration
func (c *Config) GetIndexConfig() *IndexConfig {
	indexConfig := &IndexConfig{Divisor: DefaultGroupingDivisor}
	if c.ini.HasSection("index") {
		section := c.ini.Section("index")
		if section.HasKey("divisor") {
			if divisor, err := section.Key("divisor").Int64(); err == nil {
				indexConfig.Divisor = divisor
			}
		}
	}
	return indexConfig
}

// GetScanConfig returns the scan configuration
func (c *Config) GetScanConfig() *ScanConfig {
	return &ScanConfig{
		Hidden:     c.boolKey("scan", "hidden", false),
		Symlinks:   c.stringKey("scan", "symlinks", SymlinkModeNone),
		IgnoreFile: c.stringKey("scan", "ignore_file", ""),
	}
}

// GetPacingConfig returns the pacing configuration
func (c *Config) GetPacingConfig() *PacingConfig {
	return &PacingConfig{
		Every:    c.intKey("pacing", "every", DefaultPaceEvery),
		Sleep:    c.stringKey("pacing", "sleep", DefaultPaceSleep),
		Interval: c.stringKey("pacing", "interval", "0s"),
	}
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format:     c.stringKey("output", "format", FormatPlain),
		SideMarker: c.boolKey("output", "side_marker", false),
		Relative:   c.boolKey("output", "relative", false),
	}
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	return &VerboseConfig{
		Level: c.intKey("verbose", "level", 0),
		Debug: c.stringKey("verbose", "debug", ""),
	}
}

// GetErrorsConfig returns the error handling configuration
func (c *Config) GetErrorsConfig() *ErrorsConfig {
	return &ErrorsConfig{
		ReadErrors: c.stringKey("errors", "read_errors", ReadErrorAbort),
	}
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Checksum: c.GetChecksumConfig(),
		Index:    c.GetIndexConfig(),
		Scan:     c.GetScanConfig(),
		Pacing:   c.GetPacingConfig(),
		Output:   c.GetOutputConfig(),
		Verbose:  c.GetVerboseConfig(),
		Errors:   c.GetErrorsConfig(),
	}
}

// Save writes the configuration to its path
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config has no path")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return c.ini.SaveTo(c.configPath)
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "algorithm:sha256", "format:json", "level:2", "divisor:1024"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		target, ok := overrideKeys[key]
		if !ok {
			return fmt.Errorf("unsupported override key '%s' (supported: %s)", key, strings.Join(supportedOverrideKeys(), ", "))
		}
		c.ini.Section(target[0]).Key(target[1]).SetValue(value)
		if IsDebugEnabled(DebugConfig) {
			VerboseLog(2, "override %s.%s = %s", target[0], target[1], value)
		}
	}

	return nil
}

func supportedOverrideKeys() []string {
	return []string{
		"algorithm", "leading_threshold", "leading_size", "buffer", "divisor",
		"hidden", "symlinks", "ignore_file", "pace_every", "pace_sleep",
		"pace_interval", "format", "side_marker", "relative", "level",
		"debug", "read_errors",
	}
}

// Settings are the resolved, validated options of one run
type Settings struct {
	Algorithm        string
	LeadingThreshold int64
	LeadingSize      int
	HashBuffer       int
	Divisor          int64
	Scan             ScanOptions
	IgnoreFile       string
	PaceEvery        int
	PaceSleep        time.Duration
	PaceInterval     time.Duration
	Format           string
	SideMarker       bool
	Relative         bool
	VerboseLevel     int
	DebugFlags       string
	ReadErrors       string
}

// DefaultSettings returns the built-in defaults
func DefaultSettings() *Settings {
	return &Settings{
		Algorithm:        DefaultAlgorithm,
		LeadingThreshold: DefaultLeadingThreshold,
		LeadingSize:      DefaultLeadingSize,
		HashBuffer:       DefaultHashBuffer,
		Divisor:          DefaultGroupingDivisor,
		Scan:             ScanOptions{SymlinkMode: SymlinkModeNone},
		PaceEvery:        DefaultPaceEvery,
		PaceSleep:        time.Millisecond,
		Format:           FormatPlain,
		ReadErrors:       ReadErrorAbort,
	}
}

// Settings resolves the configuration into validated settings
func (c *Config) Settings() (*Settings, error) {
	all := c.GetAllConfig()

	leadingThreshold, err := ParseHumanSize(all.Checksum.LeadingThreshold)
	if err != nil {
		return nil, fmt.Errorf("checksum.leading_threshold: %w", err)
	}
	leadingSize, err := ParseHumanSize(all.Checksum.LeadingSize)
	if err != nil {
		return nil, fmt.Errorf("checksum.leading_size: %w", err)
	}
	buffer, err := ParseHumanSize(all.Checksum.Buffer)
	if err != nil {
		return nil, fmt.Errorf("checksum.buffer: %w", err)
	}
	sleep, err := parseDuration(all.Pacing.Sleep)
	if err != nil {
		return nil, fmt.Errorf("pacing.sleep: %w", err)
	}
	interval, err := parseDuration(all.Pacing.Interval)
	if err != nil {
		return nil, fmt.Errorf("pacing.interval: %w", err)
	}

	// typed getters fall back to defaults on malformed values, Settings does not
	divisor, err := c.parseInt64Key("index", "divisor", DefaultGroupingDivisor)
	if err != nil {
		return nil, err
	}
	hidden, err := c.parseBoolKey("scan", "hidden", false)
	if err != nil {
		return nil, err
	}
	paceEvery, err := c.parseIntKey("pacing", "every", DefaultPaceEvery)
	if err != nil {
		return nil, err
	}
	sideMarker, err := c.parseBoolKey("output", "side_marker", false)
	if err != nil {
		return nil, err
	}
	relative, err := c.parseBoolKey("output", "relative", false)
	if err != nil {
		return nil, err
	}
	verboseLevel, err := c.parseIntKey("verbose", "level", 0)
	if err != nil {
		return nil, err
	}

	settings := &Settings{
		Algorithm:        all.Checksum.Algorithm,
		LeadingThreshold: int64(leadingThreshold),
		LeadingSize:      leadingSize,
		HashBuffer:       buffer,
		Divisor:          divisor,
		Scan: ScanOptions{
			IncludeHidden: hidden,
			SymlinkMode:   strings.ToLower(all.Scan.Symlinks),
		},
		IgnoreFile:   all.Scan.IgnoreFile,
		PaceEvery:    paceEvery,
		PaceSleep:    sleep,
		PaceInterval: interval,
		Format:       strings.ToLower(all.Output.Format),
		SideMarker:   sideMarker,
		Relative:     relative,
		VerboseLevel: verboseLevel,
		DebugFlags:   all.Verbose.Debug,
		ReadErrors:   strings.ToLower(all.Errors.ReadErrors),
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks every setting
func (s *Settings) Validate() error {
	if err := ValidateHashAlgorithm(s.Algorithm); err != nil {
		return err
	}
	if err := ValidateDivisor(s.Divisor); err != nil {
		return err
	}
	if s.LeadingSize <= 0 {
		return fmt.Errorf("leading checksum size must be positive, got %d", s.LeadingSize)
	}
	if s.LeadingThreshold < 0 {
		return fmt.Errorf("leading checksum threshold must not be negative, got %d", s.LeadingThreshold)
	}
	if err := ValidateSymlinkMode(s.Scan.SymlinkMode); err != nil {
		return err
	}
	if err := ValidateOutputFormat(s.Format); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(s.VerboseLevel); err != nil {
		return err
	}
	if err := ValidateReadErrorPolicy(s.ReadErrors); err != nil {
		return err
	}
	if s.PaceEvery < 0 {
		return fmt.Errorf("pacing interval must not be negative, got %d", s.PaceEvery)
	}
	return nil
}

// parseDuration accepts Go durations and a bare "0"
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}
	return time.ParseDuration(value)
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	_, err := GetHashAlgorithm(algorithm)
	return err
}

// ValidateDivisor validates the size bucket divisor
func ValidateDivisor(divisor int64) error {
	if divisor < 1 {
		return fmt.Errorf("size bucket divisor must be at least 1, got: %d", divisor)
	}
	return nil
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatPlain, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: plain, json, yaml)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateSymlinkMode validates that a symlink mode is supported
func ValidateSymlinkMode(mode string) error {
	switch strings.ToLower(mode) {
	case SymlinkModeNone, SymlinkModeContained, SymlinkModeAll:
		return nil
	default:
		return fmt.Errorf("unsupported symlink mode: %s (supported: none, contained, all)", mode)
	}
}

// ValidateReadErrorPolicy validates the read error policy
func ValidateReadErrorPolicy(policy string) error {
	switch strings.ToLower(policy) {
	case ReadErrorAbort, ReadErrorSkip:
		return nil
	default:
		return fmt.Errorf("unsupported read error policy: %s (supported: abort, skip)", policy)
	}
}
