package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"en", "ja", "ko", "zh", "es", "fr"}
	if !reflect.DeepEqual(cfg.Locales, want) {
		t.Errorf("Locales = %v, want %v", cfg.Locales, want)
	}
	if cfg.PostsPerPage != 10 {
		t.Errorf("PostsPerPage = %d, want 10", cfg.PostsPerPage)
	}
	if cfg.ContentDir != "content" || cfg.OutputDir != "public" {
		t.Errorf("dirs = %q / %q", cfg.ContentDir, cfg.OutputDir)
	}
}

func TestLoadReadsYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	yaml := `
title: "Test Site"
baseURL: "https://example.com/"
locales: [en, fr]
postsPerPage: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "Test Site" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.BaseURL != "https://example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if !reflect.DeepEqual(cfg.Locales, []string{"en", "fr"}) {
		t.Errorf("Locales = %v", cfg.Locales)
	}
	if cfg.PostsPerPage != 5 {
		t.Errorf("PostsPerPage = %d", cfg.PostsPerPage)
	}
}

func TestLoadEnvOverridesYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	if err := os.WriteFile(path, []byte(`title: "From File"`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOLIO_TITLE", "From Env")
	t.Setenv("FOLIO_LOCALES", "en,ja")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "From Env" {
		t.Errorf("Title = %q, want env override", cfg.Title)
	}
	if !reflect.DeepEqual(cfg.Locales, []string{"en", "ja"}) {
		t.Errorf("Locales = %v, want env override", cfg.Locales)
	}
}

func TestLoadRejectsInvalidLocale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	if err := os.WriteFile(path, []byte(`locales: ["not a locale!"]`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want error for invalid locale")
	}
}

func TestValidateClamps(t *testing.T) {
	tests := []struct {
		name    string
		in, out int
	}{
		{"below minimum", 0, 1},
		{"above maximum", 500, 100},
		{"in range", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.PostsPerPage = tt.in
			if err := cfg.validate(); err != nil {
				t.Fatal(err)
			}
			if cfg.PostsPerPage != tt.out {
				t.Errorf("PostsPerPage = %d, want %d", cfg.PostsPerPage, tt.out)
			}
		})
	}
}

func TestValidateEmptyLocalesRestoresDefaults(t *testing.T) {
	cfg := Default()
	cfg.Locales = nil
	if err := cfg.validate(); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Locales) != 6 {
		t.Errorf("Locales = %v, want 6 defaults", cfg.Locales)
	}
}
