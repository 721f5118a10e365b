package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/media-library/backend/internal/models"
)

// LocalScanner indexes a directory tree on the local filesystem.
type LocalScanner struct {
	root string
	opts Options
}

// NewLocalScanner creates a scanner rooted at root.
func NewLocalScanner(root string, opts Options) *LocalScanner {
	return &LocalScanner{
		root: root,
		opts: opts.withDefaults(),
	}
}

// Root returns the scanned directory.
func (s *LocalScanner) Root() string {
	return s.root
}

// Scan walks the tree depth-first in directory order. A missing root yields
// an empty list. Symlinks are skipped so the walk never leaves the root.
func (s *LocalScanner) Scan(ctx context.Context) ([]models.IndexedFile, error) {
	files := make([]models.IndexedFile, 0)

	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return files, nil
		}
		return nil, fmt.Errorf("stat library root: %w", err)
	}
	if !info.IsDir() {
		return files, nil
	}

	if err := s.walk(ctx, s.root, "", 0, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *LocalScanner) walk(ctx context.Context, dir, rel string, depth int, out *[]models.IndexedFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %q: %w", "/"+rel, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		relPath := path.Join(rel, name)

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			continue
		case entry.IsDir():
			if depth >= s.opts.MaxDepth {
				continue
			}
			if err := s.walk(ctx, filepath.Join(dir, name), relPath, depth+1, out); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if s.opts.Classifier.Hidden(name) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue // removed while scanning
				}
				return fmt.Errorf("stat %q: %w", "/"+relPath, err)
			}
			*out = append(*out, newIndexedFile(relPath, info.Size(), info.ModTime(), len(*out), s.opts))
		}
	}
	return nil
}
