// mock_scanner.go - Library fixtures and a static scanner for testing
package testutil

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/media-library/backend/internal/models"
)

// BaseTime is a fixed modification time fixtures are offset from.
var BaseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// StaticScanner returns a fixed file list, or Err when set.
type StaticScanner struct {
	Files []models.IndexedFile
	Err   error

	mu    sync.Mutex
	calls int
}

// NewStaticScanner creates a scanner over files.
func NewStaticScanner(files ...models.IndexedFile) *StaticScanner {
	return &StaticScanner{Files: files}
}

func (s *StaticScanner) Scan(ctx context.Context) ([]models.IndexedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.IndexedFile, len(s.Files))
	copy(out, s.Files)
	return out, nil
}

// Calls returns how many scans were performed.
func (s *StaticScanner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Indexed builds an indexed file for a root-relative path under /uploads.
// Seq is left to the caller; use Sequence to number a list.
func Indexed(rel string, modTime time.Time) models.IndexedFile {
	name := path.Base(rel)
	folder := ""
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		folder = rel[:i]
	}
	fileType := models.FileTypeDocument
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".ico", ".bmp", ".avif":
		fileType = models.FileTypeImage
	}
	return models.IndexedFile{
		FileEntry: models.FileEntry{
			URL:      "/uploads/" + rel,
			Name:     name,
			Type:     fileType,
			Size:     uint64(len(name)),
			Modified: modTime.UTC().Format(models.DateLayout),
		},
		Folder:  folder,
		ModTime: modTime,
	}
}

// Sequence assigns scan order to files in place and returns them.
func Sequence(files ...models.IndexedFile) []models.IndexedFile {
	for i := range files {
		files[i].Seq = i
	}
	return files
}

// WriteFile creates root/rel with content and sets its modification time.
func WriteFile(t testing.TB, root, rel, content string, modTime time.Time) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	if err := os.Chtimes(full, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", rel, err)
	}
	return full
}

// WriteTree writes each path with its own name as content, giving the
// i-th path a modification time i minutes after BaseTime.
func WriteTree(t testing.TB, root string, rels ...string) {
	t.Helper()
	for i, rel := range rels {
		WriteFile(t, root, rel, path.Base(rel), BaseTime.Add(time.Duration(i)*time.Minute))
	}
}
