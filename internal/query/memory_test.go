package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-library/backend/internal/models"
	"github.com/media-library/backend/internal/testutil"
)

func names(files []models.FileEntry) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func fiftyImages() []models.IndexedFile {
	files := make([]models.IndexedFile, 0, 50)
	for i := 1; i <= 50; i++ {
		files = append(files, testutil.Indexed(fmt.Sprintf("img%d.jpg", i), testutil.BaseTime.Add(time.Duration(i)*time.Second)))
	}
	return testutil.Sequence(files...)
}

func mixedLibrary() []models.IndexedFile {
	t0 := testutil.BaseTime
	return testutil.Sequence(
		testutil.Indexed("b.png", t0.Add(1*time.Hour)),
		testutil.Indexed("avatars/a.png", t0.Add(2*time.Hour)),
		testutil.Indexed("docs/Report.PDF", t0.Add(3*time.Hour)),
		testutil.Indexed("avatars/me.jpg", t0.Add(4*time.Hour)),
		testutil.Indexed("banners/2024/summer.webp", t0),
		testutil.Indexed("docs/report-old.pdf", t0.Add(3*time.Hour)),
	)
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 48, 1},
		{1, 48, 1},
		{48, 48, 1},
		{49, 48, 2},
		{50, 48, 2},
		{96, 48, 2},
		{97, 48, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.total, tt.perPage), "total=%d perPage=%d", tt.total, tt.perPage)
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 1, ClampPage(-4, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 3, ClampPage(99, 3))
	assert.Equal(t, 1, ClampPage(5, 0))
}

func TestMemoryEngine_Pagination(t *testing.T) {
	engine := NewMemoryEngine()
	ctx := context.Background()
	files := fiftyImages()

	t.Run("first page", func(t *testing.T) {
		res, err := engine.Query(ctx, files, models.QueryState{Page: 1}, 48)
		require.NoError(t, err)
		assert.Len(t, res.Files, 48)
		assert.Equal(t, 50, res.Total)
		assert.Equal(t, 2, res.Pages)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, "img50.jpg", res.Files[0].Name)
	})

	t.Run("second page", func(t *testing.T) {
		res, err := engine.Query(ctx, files, models.QueryState{Page: 2}, 48)
		require.NoError(t, err)
		assert.Equal(t, []string{"img2.jpg", "img1.jpg"}, names(res.Files))
		assert.Equal(t, 2, res.Page)
	})

	t.Run("page past the end equals last page", func(t *testing.T) {
		last, err := engine.Query(ctx, files, models.QueryState{Page: 2}, 48)
		require.NoError(t, err)
		beyond, err := engine.Query(ctx, files, models.QueryState{Page: 40}, 48)
		require.NoError(t, err)
		assert.Equal(t, last, beyond)
	})

	t.Run("page below one equals first page", func(t *testing.T) {
		first, err := engine.Query(ctx, files, models.QueryState{Page: 1}, 48)
		require.NoError(t, err)
		zero, err := engine.Query(ctx, files, models.QueryState{Page: 0}, 48)
		require.NoError(t, err)
		assert.Equal(t, first, zero)
	})

	t.Run("empty library", func(t *testing.T) {
		res, err := engine.Query(ctx, nil, models.QueryState{Page: 3}, 48)
		require.NoError(t, err)
		assert.Equal(t, models.EmptyPage(""), res)
	})
}

func TestMemoryEngine_Search(t *testing.T) {
	engine := NewMemoryEngine()
	t0 := testutil.BaseTime
	files := testutil.Sequence(
		testutil.Indexed("photo1.png", t0.Add(1*time.Minute)),
		testutil.Indexed("beach.png", t0.Add(2*time.Minute)),
		testutil.Indexed("photo2.png", t0.Add(3*time.Minute)),
	)

	res, err := engine.Query(context.Background(), files, models.QueryState{Search: "photo", Page: 1}, 48)
	require.NoError(t, err)
	assert.Equal(t, []string{"photo2.png", "photo1.png"}, names(res.Files))
	assert.Equal(t, 2, res.Total)

	t.Run("case insensitive", func(t *testing.T) {
		res, err := engine.Query(context.Background(), mixedLibrary(), models.QueryState{Search: "rEpOrT", Page: 1}, 48)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Report.PDF", "report-old.pdf"}, names(res.Files))
	})

	t.Run("filtering is idempotent", func(t *testing.T) {
		once := Filter(mixedLibrary(), "", "a")
		twice := Filter(once, "", "a")
		assert.Equal(t, once, twice)
		for _, f := range once {
			assert.Contains(t, f.Name, "a")
		}
	})
}

func TestMemoryEngine_Folders(t *testing.T) {
	engine := NewMemoryEngine()
	ctx := context.Background()
	files := mixedLibrary()
	want := []string{"avatars", "banners", "docs"}

	for _, q := range []models.QueryState{
		{Page: 1},
		{Folder: "avatars", Page: 1},
		{Search: "zzz", Page: 1},
		{Folder: "docs", Search: "old", Page: 1},
	} {
		res, err := engine.Query(ctx, files, q, 48)
		require.NoError(t, err)
		assert.Equal(t, want, res.Folders, "query %+v", q)
		assert.Equal(t, q.Folder, res.CurrentFolder)
	}

	t.Run("folder filter is exact", func(t *testing.T) {
		res, err := engine.Query(ctx, files, models.QueryState{Folder: "avatars", Page: 1}, 48)
		require.NoError(t, err)
		assert.Equal(t, []string{"me.jpg", "a.png"}, names(res.Files))

		res, err = engine.Query(ctx, files, models.QueryState{Folder: "avatar", Page: 1}, 48)
		require.NoError(t, err)
		assert.Empty(t, res.Files)
		assert.Equal(t, 1, res.Pages)
	})
}

func TestMemoryEngine_StableSort(t *testing.T) {
	engine := NewMemoryEngine()
	files := mixedLibrary()

	res, err := engine.Query(context.Background(), files, models.QueryState{Page: 1}, 48)
	require.NoError(t, err)

	// equal mtimes keep scan order
	assert.Equal(t, []string{"me.jpg", "Report.PDF", "report-old.pdf", "a.png", "b.png", "summer.webp"}, names(res.Files))

	// input is left untouched
	assert.Equal(t, "b.png", files[0].Name)
}

func TestMemoryEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryEngine().Query(ctx, fiftyImages(), models.QueryState{Page: 1}, 48)
	assert.ErrorIs(t, err, context.Canceled)
}
