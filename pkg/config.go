package dupindex

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-ini/ini"
	"github.com/spf13/afero"
)

// Config is the ini backed dupindex configuration
type Config struct {
	configPath string
	fs         afero.Fs
	ini        *ini.File
}

// IndexConfig represents index construction settings
type IndexConfig struct {
	Mode        string // digest or filename
	EmptySubkey string // sentinel for keys too short for a level
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string
}

// ScanConfig represents directory scan defaults
type ScanConfig struct {
	Pattern         string
	IncludeHidden   bool
	ContinueOnError bool
	IgnoreFile      string
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // human, json, fdupes
	Sort   bool   // order groups by key
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int
	Debug string
}

// AllConfig represents all configuration options
type AllConfig struct {
	Index   *IndexConfig
	Hash    *HashConfig
	Scan    *ScanConfig
	Output  *OutputConfig
	Verbose *VerboseConfig
}

// configOption maps an override key onto its ini section and key
type configOption struct {
	override string
	section  string
	key      string
	value    string // default
}

var configOptions = []configOption{
	{"mode", "index", "mode", "digest"},
	{"empty_subkey", "index", "empty_subkey", DefaultEmptySubkey},
	{"hash", "filehash", "default", DefaultHashAlgorithm},
	{"pattern", "scan", "pattern", "*"},
	{"include_hidden", "scan", "include_hidden", "false"},
	{"continue_on_error", "scan", "continue_on_error", "false"},
	{"ignore_file", "scan", "ignore_file", ""},
	{"format", "output", "format", FormatHuman},
	{"sort", "output", "sort", "false"},
	{"level", "verbose", "level", "0"},
	{"debug", "verbose", "debug", ""},
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/dupindex/config
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "dupindex", "config")
}

// LoadConfig loads the configuration at configPath. A missing file yields the
// defaults without writing anything; call Save to persist them.
func LoadConfig(fs afero.Fs, configPath string) (*Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	cfg := &Config{configPath: configPath, fs: fs}

	exists, err := afero.Exists(fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check config file: %w", err)
	}
	if !exists {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg.ini, err = ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

// setDefaults fills every missing key with its default value
func (c *Config) setDefaults() error {
	for _, opt := range configOptions {
		section := c.ini.Section(opt.section)
		if section.HasKey(opt.key) {
			continue
		}
		if _, err := section.NewKey(opt.key, opt.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", opt.section, opt.key, err)
		}
	}
	return nil
}

// Path returns the file the configuration is loaded from and saved to
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) lookup(section, key, fallback string) string {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			return s.Key(key).String()
		}
	}
	return fallback
}

func (c *Config) lookupBool(section, key string, fallback bool) bool {
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

// GetIndexConfig returns the index configuration
func (c *Config) GetIndexConfig() *IndexConfig {
	return &IndexConfig{
		Mode:        c.lookup("index", "mode", "digest"),
		EmptySubkey: c.lookup("index", "empty_subkey", DefaultEmptySubkey),
	}
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	return &HashConfig{
		Default: c.lookup("filehash", "default", DefaultHashAlgorithm),
	}
}

// GetScanConfig returns the scan configuration
func (c *Config) GetScanConfig() *ScanConfig {
	return &ScanConfig{
		Pattern:         c.lookup("scan", "pattern", "*"),
		IncludeHidden:   c.lookupBool("scan", "include_hidden", false),
		ContinueOnError: c.lookupBool("scan", "continue_on_error", false),
		IgnoreFile:      c.lookup("scan", "ignore_file", ""),
	}
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format: c.lookup("output", "format", FormatHuman),
		Sort:   c.lookupBool("output", "sort", false),
	}
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Debug: c.lookup("verbose", "debug", ""),
	}
	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
	}
	return verboseConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Index:   c.GetIndexConfig(),
		Hash:    c.GetHashConfig(),
		Scan:    c.GetScanConfig(),
		Output:  c.GetOutputConfig(),
		Verbose: c.GetVerboseConfig(),
	}
}

// Set stores value under an override key such as "mode" or "format"
func (c *Config) Set(key, value string) error {
	for _, opt := range configOptions {
		if opt.override == key {
			c.ini.Section(opt.section).Key(opt.key).SetValue(value)
			return nil
		}
	}

	supported := make([]string, 0, len(configOptions))
	for _, opt := range configOptions {
		supported = append(supported, opt.override)
	}
	return fmt.Errorf("unsupported override key '%s' (supported: %s)", key, strings.Join(supported, ", "))
}

// ApplyOverrides applies "key:value" overrides, e.g. "mode:filename", "level:2"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		key, value, ok := strings.Cut(override, ":")
		if !ok {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}
		if err := c.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the configuration to its path, creating the directory if needed
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	file, err := c.fs.Create(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if _, err := c.ini.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks every setting
func (c *Config) Validate() error {
	all := c.GetAllConfig()
	if _, err := ParseIndexMode(all.Index.Mode); err != nil {
		return err
	}
	if err := ValidateEmptySubkey(all.Index.EmptySubkey); err != nil {
		return err
	}
	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	return ValidateVerboseLevel(all.Verbose.Level)
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	if _, err := GetHashAlgorithm(algorithm); err != nil {
		return fmt.Errorf("%w (supported: %s)", err, strings.Join(SupportedHashAlgorithms(), ", "))
	}
	return nil
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatJSON, FormatFdupes:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, fdupes)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateEmptySubkey rejects an empty sentinel
func ValidateEmptySubkey(subkey string) error {
	if subkey == "" {
		return fmt.Errorf("empty subkey sentinel cannot be blank")
	}
	return nil
}
