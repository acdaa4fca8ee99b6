// Loads and validates site configuration from folio.yaml with FOLIO_* env overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config holds everything the query services and the build driver need.
// Locales is the single supported-locale list: every enumeration function
// consumes it, so the set cannot drift between call sites.
type Config struct {
	Title       string `yaml:"title" env:"FOLIO_TITLE"`
	Description string `yaml:"description" env:"FOLIO_DESCRIPTION"`
	BaseURL     string `yaml:"baseURL" env:"FOLIO_BASE_URL"`

	ContentDir string `yaml:"contentDir" env:"FOLIO_CONTENT_DIR"`
	OutputDir  string `yaml:"outputDir" env:"FOLIO_OUTPUT_DIR"`
	ThemeDir   string `yaml:"themeDir" env:"FOLIO_THEME_DIR"`
	CacheDir   string `yaml:"cacheDir" env:"FOLIO_CACHE_DIR"`

	Locales      []string `yaml:"locales" env:"FOLIO_LOCALES" envSeparator:","`
	PostsPerPage int      `yaml:"postsPerPage" env:"FOLIO_POSTS_PER_PAGE"`
	Minify       bool     `yaml:"minify" env:"FOLIO_MINIFY"`
	Workers      int      `yaml:"workers" env:"FOLIO_WORKERS"`
}

// Default returns the configuration used when folio.yaml is absent.
func Default() *Config {
	return &Config{
		Title:        "folio",
		BaseURL:      "http://localhost:8080",
		ContentDir:   "content",
		OutputDir:    "public",
		ThemeDir:     "theme",
		CacheDir:     ".folio-cache",
		Locales:      []string{"en", "ja", "ko", "zh", "es", "fr"},
		PostsPerPage: 10,
		Minify:       true,
		Workers:      0, // 0 means NumCPU
	}
}

// Load reads path (if it exists), applies env overrides and validates.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if len(c.Locales) == 0 {
		c.Locales = Default().Locales
	}
	for _, loc := range c.Locales {
		if _, err := language.Parse(loc); err != nil {
			return fmt.Errorf("config: invalid locale %q: %w", loc, err)
		}
	}

	if c.PostsPerPage < 1 {
		c.PostsPerPage = 1
	}
	if c.PostsPerPage > 100 {
		c.PostsPerPage = 100
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.Workers > 32 {
		c.Workers = 32
	}
	return nil
}
