package query

import (
	"context"
	"sort"
	"strings"

	"github.com/media-library/backend/internal/models"
)

// MemoryEngine evaluates queries with plain slices.
type MemoryEngine struct{}

// NewMemoryEngine creates the default engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{}
}

// Name identifies the engine in logs and metrics.
func (e *MemoryEngine) Name() string {
	return EngineMemory
}

// Query filters, sorts and slices files. The input slice is not modified.
func (e *MemoryEngine) Query(ctx context.Context, files []models.IndexedFile, q models.QueryState, perPage int) (*models.PageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	folders := CollectFolders(files)
	matched := Filter(files, q.Folder, q.Search)
	SortNewestFirst(matched)

	total := len(matched)
	pages := PageCount(total, perPage)
	page := ClampPage(q.Page, pages)
	start, end := bounds(page, perPage, total)

	out := make([]models.FileEntry, 0, end-start)
	for _, f := range matched[start:end] {
		out = append(out, f.FileEntry)
	}

	return &models.PageResult{
		Files:         out,
		Folders:       folders,
		CurrentFolder: q.Folder,
		Total:         total,
		Page:          page,
		Pages:         pages,
	}, nil
}

// Filter returns the files in folder (when non-empty) whose name contains
// search case-insensitively (when non-empty). The result is a new slice.
func Filter(files []models.IndexedFile, folder, search string) []models.IndexedFile {
	needle := strings.ToLower(search)
	out := make([]models.IndexedFile, 0, len(files))
	for _, f := range files {
		if folder != "" && f.Folder != folder {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(f.Name), needle) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SortNewestFirst orders by modification time descending, then by scan order.
func SortNewestFirst(files []models.IndexedFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Seq < files[j].Seq
	})
}
