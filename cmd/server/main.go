package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/media-library/backend/internal/api"
	"github.com/media-library/backend/internal/config"
	"github.com/media-library/backend/internal/library"
	"github.com/media-library/backend/internal/logging"
	"github.com/media-library/backend/internal/query"
	"github.com/media-library/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const configFileName = "media-library.config.xml"

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	configPath := filepath.Join(filepath.Dir(exePath), configFileName)
	if env := os.Getenv("MEDIA_CONFIG"); env != "" {
		configPath = env
	}

	// Load XML configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Advanced.LogLevel, os.Stderr)

	scanner, err := library.NewFromConfig(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize library scanner")
	}

	engine, closer, err := query.New(cfg.Library.QueryEngine, cfg.Advanced.DuckDBThreads)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize query engine")
	}
	defer closer.Close()

	deps := api.DependenciesFromConfig(cfg, scanner, engine, logger, Version)
	e := api.NewServer(cfg, deps)

	// Serve the library itself when the public URL points back at us
	serving := "no"
	if cfg.Library.ServeFiles &&
		strings.EqualFold(cfg.Library.Source, library.SourceLocal) &&
		web.CanServePrefix(cfg.Library.PublicURLPrefix) {
		opts := library.OptionsFromConfig(cfg)
		files := web.NewLibraryFiles(cfg.GetLibraryRoot(), opts.Classifier, cfg.Library.MaxDepth)
		web.RegisterLibraryRoutes(e, cfg.Library.PublicURLPrefix, files)
		serving = cfg.Library.PublicURLPrefix
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	root := cfg.GetLibraryRoot()
	if strings.EqualFold(cfg.Library.Source, library.SourceS3) {
		root = "s3://" + cfg.S3.Bucket + "/" + cfg.S3.Prefix
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Media Library Server                            ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Engine:     %-45s║\n", engine.Name())
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Endpoint:  %-46s║\n", cfg.Server.APIPath)
	fmt.Printf("║  Library:   %-46s║\n", root)
	fmt.Printf("║  Files at:  %-46s║\n", serving)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
