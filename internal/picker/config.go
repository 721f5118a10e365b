// Package picker implements the media picker: a per-open session state
// machine, its render projection and an event loop host that talks to the
// listing endpoint.
package picker

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/media-library/backend/internal/query"
)

// DefaultSearchDebounce is the input pause that triggers a search.
const DefaultSearchDebounce = 300 * time.Millisecond

// Config holds the texts and knobs shared by every session. A registry
// fixes it at construction time.
type Config struct {
	APIURL             string            `yaml:"api_url"`
	PerPage            int               `yaml:"per_page"`
	SearchDebounce     time.Duration     `yaml:"search_debounce"`
	Title              string            `yaml:"title"`
	SelectText         string            `yaml:"select_text"`
	CancelText         string            `yaml:"cancel_text"`
	AllText            string            `yaml:"all_text"`
	SearchPlaceholder  string            `yaml:"search_placeholder"`
	EmptyText          string            `yaml:"empty_text"`
	ErrorText          string            `yaml:"error_text"`
	FileInfoText       string            `yaml:"file_info_text"`     // supports {count}
	SelectedInfoText   string            `yaml:"selected_info_text"` // supports {count} and {selected}
	UploaderButtonText string            `yaml:"uploader_button_text"`
	UploaderButtonIcon string            `yaml:"uploader_button_icon"`
	AjaxHeaders        map[string]string `yaml:"ajax_headers"`
	AjaxData           map[string]string `yaml:"ajax_data"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:             "/api/media-list",
		PerPage:            query.DefaultPerPage,
		SearchDebounce:     DefaultSearchDebounce,
		Title:              "Media Library",
		SelectText:         "Select",
		CancelText:         "Cancel",
		AllText:            "All",
		SearchPlaceholder:  "Search files...",
		EmptyText:          "No files found",
		ErrorText:          "Error loading files",
		FileInfoText:       "{count} files",
		SelectedInfoText:   "{selected} selected — {count} files",
		UploaderButtonText: "Media Library",
		UploaderButtonIcon: "images",
		AjaxHeaders:        map[string]string{},
		AjaxData:           map[string]string{},
	}
}

// LoadConfig reads YAML overrides from path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read picker config: %w", err)
	}
	return ParseConfig(bytes.NewReader(data))
}

// ParseConfig decodes YAML overrides from r on top of DefaultConfig.
// Keys that are absent keep their defaults.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to parse picker config: %w", err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.PerPage <= 0 {
		c.PerPage = query.DefaultPerPage
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = DefaultSearchDebounce
	}
	if c.APIURL == "" {
		c.APIURL = DefaultConfig().APIURL
	}
	if c.AjaxHeaders == nil {
		c.AjaxHeaders = map[string]string{}
	}
	if c.AjaxData == nil {
		c.AjaxData = map[string]string{}
	}
	return c
}

// merge applies per-open overrides. Extra data and headers are merged key
// by key, the per-open value winning.
func (c Config) merge(opts Options) Config {
	out := c.withDefaults()
	if opts.APIURL != "" {
		out.APIURL = opts.APIURL
	}
	out.AjaxData = mergeMaps(c.AjaxData, opts.AjaxData)
	out.AjaxHeaders = mergeMaps(c.AjaxHeaders, opts.AjaxHeaders)
	return out
}

func mergeMaps(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
