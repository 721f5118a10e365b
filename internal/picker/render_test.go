package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/media-library/backend/internal/models"
)

func pageNumbers(p Pagination) []int {
	out := make([]int, 0, len(p.Pages))
	for _, l := range p.Pages {
		out = append(out, l.Page)
	}
	return out
}

func TestRenderPagination(t *testing.T) {
	tests := []struct {
		page, pages int
		want        []int
	}{
		{1, 2, []int{1, 2}},
		{1, 10, []int{1, 2, 3, 4, 5, 6, 7}},
		{5, 10, []int{2, 3, 4, 5, 6, 7, 8}},
		{9, 10, []int{4, 5, 6, 7, 8, 9, 10}},
		{10, 10, []int{4, 5, 6, 7, 8, 9, 10}},
		{3, 5, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		p := RenderPagination(tt.page, tt.pages)
		assert.True(t, p.Visible)
		assert.Equal(t, tt.want, pageNumbers(p), "page %d of %d", tt.page, tt.pages)
		for _, l := range p.Pages {
			assert.Equal(t, l.Page == tt.page, l.Active)
		}
	}

	t.Run("ends are disabled", func(t *testing.T) {
		first := RenderPagination(1, 4)
		assert.True(t, first.Prev.Disabled)
		assert.False(t, first.Next.Disabled)
		assert.Equal(t, 2, first.Next.Page)

		last := RenderPagination(4, 4)
		assert.False(t, last.Prev.Disabled)
		assert.True(t, last.Next.Disabled)
	})

	t.Run("single page hides pager", func(t *testing.T) {
		assert.Equal(t, Pagination{}, RenderPagination(1, 1))
		assert.False(t, RenderPagination(1, 0).Visible)
	})
}

func TestRender(t *testing.T) {
	cfg := DefaultConfig()
	st := State{
		Files: []models.FileEntry{
			{URL: "/uploads/a.png", Name: "a.png", Type: models.FileTypeImage, Size: 2048},
			{URL: "/uploads/docs/r.pdf", Name: "r.pdf", Type: models.FileTypeDocument, Size: 500},
			{URL: "/uploads/x.bin", Name: "x.bin", Type: models.FileTypeDocument, Size: 3 * 1024 * 1024},
		},
		Folders:  []string{"avatars", "docs"},
		Selected: []models.SelectionEntry{{URL: "/uploads/docs/r.pdf", Name: "r.pdf"}},
		Folder:   "docs",
		Page:     1,
		Pages:    1,
		Total:    3,
	}

	v := Render(st, cfg)

	assert.Equal(t, []FolderTab{
		{Label: "All", Folder: "", Active: false},
		{Label: "avatars", Folder: "avatars", Active: false},
		{Label: "docs", Folder: "docs", Active: true},
	}, v.Folders)

	if assert.Len(t, v.Tiles, 3) {
		assert.Equal(t, "/uploads/a.png", v.Tiles[0].Thumbnail)
		assert.Equal(t, "2.0 KB", v.Tiles[0].SizeText)
		assert.False(t, v.Tiles[0].Selected)

		assert.Equal(t, IconPDF, v.Tiles[1].Icon)
		assert.Empty(t, v.Tiles[1].Thumbnail)
		assert.True(t, v.Tiles[1].Selected)
		assert.Equal(t, "r.pdf (500 B)", v.Tiles[1].Title)

		assert.Equal(t, IconFile, v.Tiles[2].Icon)
		assert.Equal(t, "3.0 MB", v.Tiles[2].SizeText)
	}

	assert.False(t, v.Empty)
	assert.False(t, v.Pagination.Visible)
	assert.Equal(t, "1 selected — 3 files", v.Info)
	assert.True(t, v.ConfirmEnabled)

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, v, Render(st, cfg))
	})
}

func TestRender_EmptyAndError(t *testing.T) {
	cfg := DefaultConfig()

	v := Render(State{Page: 1, Pages: 1}, cfg)
	assert.True(t, v.Empty)
	assert.False(t, v.Error)
	assert.Equal(t, "No files found", v.EmptyText)
	assert.Equal(t, "0 files", v.Info)
	assert.False(t, v.ConfirmEnabled)

	v = Render(State{Page: 1, Pages: 1, Failed: true}, cfg)
	assert.True(t, v.Empty)
	assert.True(t, v.Error)
	assert.Equal(t, "Error loading files", v.EmptyText)

	v = Render(State{Page: 1, Pages: 1, Loading: true}, cfg)
	assert.True(t, v.Loading)
	assert.False(t, v.Empty)
}

func TestTemplate(t *testing.T) {
	data := map[string]string{"count": "5", "selected": "2"}
	assert.Equal(t, "2 of 5", Template("{selected} of {count}", data))
	assert.Equal(t, "5 {unknown} {", Template("{count} {unknown} {", data))
	assert.Equal(t, "", Template("", data))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1023 B", FormatSize(1023))
	assert.Equal(t, "1.0 KB", FormatSize(1024))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "1.0 MB", FormatSize(1024*1024))
	assert.Equal(t, "2048.0 MB", FormatSize(2<<30))
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, IconWord, IconFor("Letter.DOCX"))
	assert.Equal(t, IconSpreadsheet, IconFor("data.csv"))
	assert.Equal(t, IconArchive, IconFor("bundle.rar"))
	assert.Equal(t, IconVideo, IconFor("clip.mp4"))
	assert.Equal(t, IconFile, IconFor("noext"))
}
