// Package library indexes the files a media library exposes.
package library

import (
	"context"
	"strings"
	"time"

	"github.com/media-library/backend/internal/models"
)

// DefaultMaxDepth is how many directory levels below the root are entered.
const DefaultMaxDepth = 3

// Scanner enumerates the files of a library.
type Scanner interface {
	Scan(ctx context.Context) ([]models.IndexedFile, error)
}

// Options are shared by all scanner implementations.
type Options struct {
	PublicURLPrefix string
	MaxDepth        int
	Classifier      *Classifier
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Classifier == nil {
		o.Classifier = DefaultClassifier()
	}
	o.PublicURLPrefix = strings.TrimRight(o.PublicURLPrefix, "/")
	return o
}

// FolderOf returns the first segment of a root-relative path, or "" for
// files directly under the root.
func FolderOf(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	i := strings.IndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}

// PublicURL joins the public prefix and a root-relative path.
func PublicURL(prefix, rel string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimPrefix(rel, "/")
}

// newIndexedFile builds the entry for a root-relative, slash-separated path.
func newIndexedFile(rel string, size int64, modTime time.Time, seq int, opts Options) models.IndexedFile {
	name := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		name = rel[i+1:]
	}
	if size < 0 {
		size = 0
	}
	return models.IndexedFile{
		FileEntry: models.FileEntry{
			URL:      PublicURL(opts.PublicURLPrefix, rel),
			Name:     name,
			Type:     opts.Classifier.Type(name),
			Size:     uint64(size),
			Modified: modTime.UTC().Format(models.DateLayout),
		},
		Folder:  FolderOf(rel),
		ModTime: modTime,
		Seq:     seq,
	}
}
