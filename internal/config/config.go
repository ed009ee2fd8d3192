package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the codeaudit configuration.
type Config struct {
	Model             string   `json:"model"`
	Temperature       float64  `json:"temperature"`
	MaxRetriesPerKey  int      `json:"maxRetriesPerKey"`
	CooldownSeconds   float64  `json:"cooldownSeconds"`
	Addr              string   `json:"addr"`
	StaticDir         string   `json:"staticDir"`
	Extensions        []string `json:"extensions"`
	SkipFolders       []string `json:"skipFolders,omitempty"`
	HistoryLimit      int      `json:"historyLimit"`
	DatabasePath      string   `json:"databasePath"`
	RequestsPerSecond float64  `json:"requestsPerSecond"`
	Burst             int      `json:"burst"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Model:             "openai/gpt-oss-20b",
		Temperature:       0,
		MaxRetriesPerKey:  1,
		CooldownSeconds:   5,
		Addr:              ":8000",
		StaticDir:         "static",
		Extensions:        []string{".py", ".sql"},
		HistoryLimit:      50,
		DatabasePath:      "codeaudit.db",
		RequestsPerSecond: 5,
		Burst:             10,
	}
}

// ConfigDir returns the platform-appropriate config directory for codeaudit.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codeaudit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "codeaudit"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codeaudit"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "codeaudit"), nil
	default:
		return filepath.Join(home, ".config", "codeaudit"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
// A .env file in the working directory is loaded first, if present, so that
// GROQ_API_KEY* and CODEAUDIT_* entries behave like real environment variables.
func Load(overrides map[string]string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.MaxRetriesPerKey > 0 {
		dst.MaxRetriesPerKey = src.MaxRetriesPerKey
	}
	if src.CooldownSeconds > 0 {
		dst.CooldownSeconds = src.CooldownSeconds
	}
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.StaticDir != "" {
		dst.StaticDir = src.StaticDir
	}
	if len(src.Extensions) > 0 {
		dst.Extensions = src.Extensions
	}
	if len(src.SkipFolders) > 0 {
		dst.SkipFolders = src.SkipFolders
	}
	if src.HistoryLimit > 0 {
		dst.HistoryLimit = src.HistoryLimit
	}
	if src.DatabasePath != "" {
		dst.DatabasePath = src.DatabasePath
	}
	if src.RequestsPerSecond > 0 {
		dst.RequestsPerSecond = src.RequestsPerSecond
	}
	if src.Burst > 0 {
		dst.Burst = src.Burst
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("CODEAUDIT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CODEAUDIT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("CODEAUDIT_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("CODEAUDIT_DATABASE"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("CODEAUDIT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("CODEAUDIT_COOLDOWN_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CooldownSeconds = f
		}
	}
	if v := os.Getenv("CODEAUDIT_MAX_RETRIES_PER_KEY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetriesPerKey = n
		}
	}
	if v := os.Getenv("CODEAUDIT_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HistoryLimit = n
		}
	}
	// SKIP_FOLDERS predates the CODEAUDIT_ prefix; a comma-separated value
	// replaces the built-in skip list wholesale.
	if v := os.Getenv("SKIP_FOLDERS"); v != "" {
		var folders []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				folders = append(folders, f)
			}
		}
		if len(folders) > 0 {
			cfg.SkipFolders = folders
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["addr"]; ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := overrides["staticDir"]; ok && v != "" {
		cfg.StaticDir = v
	}
	if v, ok := overrides["database"]; ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := overrides["temperature"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v, ok := overrides["cooldownSeconds"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CooldownSeconds = f
		}
	}
	if v, ok := overrides["maxRetriesPerKey"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetriesPerKey = n
		}
	}
	if v, ok := overrides["extensions"]; ok && v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				if !strings.HasPrefix(e, ".") {
					e = "." + e
				}
				exts = append(exts, e)
			}
		}
		if len(exts) > 0 {
			cfg.Extensions = exts
		}
	}
}

// keyPattern matches the primary key variable and its numbered variants:
// GROQ_API_KEY, GROQ_API_KEY_0, GROQ_API_KEY_1, ...
var keyPattern = regexp.MustCompile(`^GROQ_API_KEY(_\d+)?$`)

// DiscoverKeys collects every GROQ_API_KEY* value from the given environment
// in "NAME=value" form (typically os.Environ()). Variable names are sorted
// lexicographically so rotation order is reproducible across runs with the
// same configuration. Values are trimmed of surrounding whitespace and
// quotes; blanks are dropped and duplicates keep their first position.
func DiscoverKeys(environ []string) []string {
	names := make([]string, 0, len(environ))
	byName := make(map[string]string, len(environ))
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !keyPattern.MatchString(name) {
			continue
		}
		if _, dup := byName[name]; !dup {
			names = append(names, name)
		}
		byName[name] = value
	}
	sort.Strings(names)

	var keys []string
	seen := make(map[string]bool)
	for _, name := range names {
		clean := strings.TrimSpace(byName[name])
		clean = strings.Trim(clean, `"'`)
		if clean == "" || seen[clean] {
			continue
		}
		keys = append(keys, clean)
		seen[clean] = true
	}
	return keys
}
