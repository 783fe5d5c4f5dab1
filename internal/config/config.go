package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// ContentDir is the root of the article corpus. Relative paths are
	// resolved against the working directory.
	ContentDir string `json:"content_dir,omitempty"`

	// Extensions lists the file extensions treated as articles (with leading dot).
	Extensions []string `json:"extensions,omitempty"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// ListMaxLimit caps the page size of list operations.
	ListMaxLimit int `json:"list_max_limit,omitempty"`

	// ExportDir is where export writes when no path is given.
	ExportDir string `json:"export_dir,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ContentDir:   "content",
		Extensions:   []string{".md", ".markdown"},
		LogLevel:     "info",
		ListMaxLimit: 500,
		ExportDir:    "exports",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.folio.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// LoadWithRepo loads configuration from both global (~/.folio) and repo (.folio) directories.
// Repo config is found by walking upward from startDir to find the nearest .folio/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .folio/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".folio", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ContentDir = firstNonEmpty(overlay.ContentDir, base.ContentDir)
	result.LogLevel = firstNonEmpty(overlay.LogLevel, base.LogLevel)
	result.ExportDir = firstNonEmpty(overlay.ExportDir, base.ExportDir)

	result.ListMaxLimit = overlay.ListMaxLimit
	if result.ListMaxLimit == 0 {
		result.ListMaxLimit = base.ListMaxLimit
	}

	result.Extensions = mergeExtensions(base.Extensions, overlay.Extensions)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstNonEmpty(a, b string) string {
	if s := strings.TrimSpace(a); s != "" {
		return s
	}
	return strings.TrimSpace(b)
}

// mergeExtensions lowercases and dot-prefixes extensions before merging.
func mergeExtensions(a, b []string) []string {
	norm := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, ext := range in {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			out = append(out, ext)
		}
		return out
	}
	return mergeStringSlice(norm(a), norm(b))
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
