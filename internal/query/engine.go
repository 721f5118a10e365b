// Package query filters, sorts and paginates an indexed library.
//
// Every engine produces the same PageResult for the same input:
//   - the folder list is taken from all files, ignoring the active filters
//   - folder filtering is an exact match, search is a case-insensitive
//     substring match on the file name
//   - files are ordered newest first, ties keep scan order
//   - the requested page is clamped into [1, pages]
package query

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/media-library/backend/internal/models"
)

// DefaultPerPage is used when a caller passes a non-positive page size.
const DefaultPerPage = 48

// Engine answers one listing request over a freshly scanned file list.
type Engine interface {
	Query(ctx context.Context, files []models.IndexedFile, q models.QueryState, perPage int) (*models.PageResult, error)
	Name() string
}

// Engine names accepted by New.
const (
	EngineMemory = "memory"
	EngineDuckDB = "duckdb"
)

// New builds the engine called name. The returned closer releases the
// engine's resources and is never nil.
func New(name string, duckThreads int) (Engine, io.Closer, error) {
	switch strings.ToLower(name) {
	case "", EngineMemory:
		return NewMemoryEngine(), io.NopCloser(nil), nil
	case EngineDuckDB:
		e, err := NewDuckEngine(duckThreads)
		if err != nil {
			return nil, nil, err
		}
		return e, e, nil
	default:
		return nil, nil, fmt.Errorf("unknown query engine %q", name)
	}
}

// PageCount returns max(1, ceil(total/perPage)).
func PageCount(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ClampPage moves page into [1, pages].
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// CollectFolders returns the distinct non-empty folders, sorted ascending.
func CollectFolders(files []models.IndexedFile) []string {
	seen := make(map[string]struct{})
	folders := make([]string, 0)
	for _, f := range files {
		if f.Folder == "" {
			continue
		}
		if _, ok := seen[f.Folder]; ok {
			continue
		}
		seen[f.Folder] = struct{}{}
		folders = append(folders, f.Folder)
	}
	sort.Strings(folders)
	return folders
}

// bounds returns the slice window of a clamped page.
func bounds(page, perPage, total int) (int, int) {
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}
