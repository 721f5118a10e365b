// Package config provides XML-based configuration for the media library server.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"MediaLibrary"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Library configuration
	Library LibraryConfig `xml:"Library"`

	// Object storage, used when Library.Source is "s3"
	S3 S3Config `xml:"S3"`

	// Processing configuration
	Processing ProcessingConfig `xml:"Processing"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	APIPath      string `xml:"APIPath"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
}

// LibraryConfig describes what is indexed and how it is listed
type LibraryConfig struct {
	Source            string `xml:"Source"`      // "local" or "s3"
	QueryEngine       string `xml:"QueryEngine"` // "memory" or "duckdb"
	RootDirectory     string `xml:"RootDirectory"`
	PublicURLPrefix   string `xml:"PublicURLPrefix"`
	ServeFiles        bool   `xml:"ServeFiles"`
	PerPage           int    `xml:"PerPage"`
	MaxPerPage        int    `xml:"MaxPerPage"`
	MaxDepth          int    `xml:"MaxDepth"`
	ImageExtensions   string `xml:"ImageExtensions"`
	HiddenExtensions  string `xml:"HiddenExtensions"`
	HideExtensionless bool   `xml:"HideExtensionless"`
}

// S3Config contains object storage settings
type S3Config struct {
	Endpoint        string `xml:"Endpoint"`
	Bucket          string `xml:"Bucket"`
	Prefix          string `xml:"Prefix"`
	Region          string `xml:"Region"`
	AccessKeyID     string `xml:"AccessKeyID"`
	SecretAccessKey string `xml:"SecretAccessKey"`
	ForcePathStyle  bool   `xml:"ForcePathStyle"`
}

// ProcessingConfig contains request processing settings
type ProcessingConfig struct {
	ScanTimeoutSeconds int  `xml:"ScanTimeoutSeconds"`
	EnableCompression  bool `xml:"EnableCompression"`
	CompressionLevel   int  `xml:"CompressionLevel"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	EnableMetrics        bool   `xml:"EnableMetrics"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			APIPath:      "/api/media-list",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
		},
		Library: LibraryConfig{
			Source:            "local",
			QueryEngine:       "memory",
			RootDirectory:     "./uploads",
			PublicURLPrefix:   "/uploads",
			ServeFiles:        true,
			PerPage:           48,
			MaxPerPage:        200,
			MaxDepth:          3,
			ImageExtensions:   "jpg,jpeg,png,gif,webp,svg,ico,bmp,avif",
			HiddenExtensions:  "php,exe,sh,bat,env,htaccess,htpasswd,ini,conf",
			HideExtensionless: true,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Processing: ProcessingConfig{
			ScanTimeoutSeconds: 20,
			EnableCompression:  true,
			CompressionLevel:   5,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			EnableMetrics:        true,
			DuckDBThreads:        2,
		},
	}
}

// LoadConfig loads configuration from XML file. Elements missing from the
// file keep their default values.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run: write the defaults next to the binary
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Media Library Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the server cannot run with
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.APIPath, "/") {
		return fmt.Errorf("api path must start with '/': %q", c.Server.APIPath)
	}
	if c.Library.PerPage <= 0 {
		return fmt.Errorf("per page must be positive: %d", c.Library.PerPage)
	}
	if c.Library.MaxPerPage < c.Library.PerPage {
		c.Library.MaxPerPage = c.Library.PerPage
	}
	if c.Library.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative: %d", c.Library.MaxDepth)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if root := os.Getenv("MEDIA_ROOT"); root != "" {
		c.Library.RootDirectory = root
	}
	if prefix := os.Getenv("MEDIA_PUBLIC_URL"); prefix != "" {
		c.Library.PublicURLPrefix = prefix
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}

	// Object storage credentials are usually injected, not written to disk
	if key := os.Getenv("MEDIA_S3_ACCESS_KEY_ID"); key != "" {
		c.S3.AccessKeyID = key
	}
	if secret := os.Getenv("MEDIA_S3_SECRET_ACCESS_KEY"); secret != "" {
		c.S3.SecretAccessKey = secret
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Library.RootDirectory != "" && !filepath.IsAbs(c.Library.RootDirectory) {
		c.Library.RootDirectory = filepath.Join(configDir, c.Library.RootDirectory)
	}
}

// GetLibraryRoot returns the absolute library root directory
func (c *AppConfig) GetLibraryRoot() string {
	return c.Library.RootDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ImageExtensions returns the configured image extensions
func (c *AppConfig) ImageExtensions() []string {
	return splitList(c.Library.ImageExtensions)
}

// HiddenExtensions returns the configured hidden extensions. The empty
// string is included when extensionless files are hidden.
func (c *AppConfig) HiddenExtensions() []string {
	exts := splitList(c.Library.HiddenExtensions)
	if c.Library.HideExtensionless {
		exts = append(exts, "")
	}
	return exts
}

// CORSOrigins returns the allowed origins, "*" when none are set
func (c *AppConfig) CORSOrigins() []string {
	origins := splitList(c.Server.AllowOrigins)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
