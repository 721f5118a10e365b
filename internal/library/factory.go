package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/media-library/backend/internal/config"
)

// Library sources.
const (
	SourceLocal = "local"
	SourceS3    = "s3"
)

// OptionsFromConfig derives scanner options from the application config.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		PublicURLPrefix: cfg.Library.PublicURLPrefix,
		MaxDepth:        cfg.Library.MaxDepth,
		Classifier:      NewClassifier(cfg.ImageExtensions(), cfg.HiddenExtensions()),
	}
}

// NewFromConfig builds the scanner selected by Library.Source.
func NewFromConfig(ctx context.Context, cfg *config.AppConfig) (Scanner, error) {
	opts := OptionsFromConfig(cfg)

	switch strings.ToLower(cfg.Library.Source) {
	case "", SourceLocal:
		return NewLocalScanner(cfg.GetLibraryRoot(), opts), nil
	case SourceS3:
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("library source s3 requires a bucket")
		}
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3Scanner(client, cfg.S3.Bucket, cfg.S3.Prefix, opts), nil
	default:
		return nil, fmt.Errorf("unknown library source %q", cfg.Library.Source)
	}
}
