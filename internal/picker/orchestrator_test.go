package picker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-library/backend/internal/client"
	"github.com/media-library/backend/internal/models"
)

type fetchReply struct {
	res *models.PageResult
	err error
}

type fetchCall struct {
	req   client.Request
	reply chan fetchReply
}

// scriptedFetcher hands every request to the test and blocks until the
// test answers it.
type scriptedFetcher struct {
	calls chan fetchCall
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: make(chan fetchCall, 16)}
}

func (f *scriptedFetcher) FetchPage(ctx context.Context, req client.Request) (*models.PageResult, error) {
	call := fetchCall{req: req, reply: make(chan fetchReply, 1)}
	f.calls <- call
	select {
	case r := <-call.reply:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *scriptedFetcher) next(t *testing.T) fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return fetchCall{}
	}
}

func (f *scriptedFetcher) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected fetch %+v", c.req)
	case <-time.After(d):
	}
}

func waitView(t *testing.T, o *Orchestrator, match func(View) bool) View {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-o.Views():
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for a view")
			return View{}
		}
	}
}

func tileNames(v View) []string {
	out := make([]string, 0, len(v.Tiles))
	for _, tile := range v.Tiles {
		out = append(out, tile.Name)
	}
	return out
}

func startOrchestrator(t *testing.T, cfg Config, opts Options) (*Orchestrator, *scriptedFetcher, *Registry) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := NewRegistry(cfg, zerolog.Nop())
	s, effects := reg.Open(opts)
	fetcher := newScriptedFetcher()
	o := NewOrchestrator(s, fetcher, zerolog.Nop())
	o.Start(ctx, effects)
	return o, fetcher, reg
}

func TestOrchestrator_InitialLoad(t *testing.T) {
	o, fetcher, _ := startOrchestrator(t, DefaultConfig(), Options{Folder: "docs"})

	call := fetcher.next(t)
	assert.Equal(t, "docs", call.req.Folder)
	assert.Equal(t, 1, call.req.Page)

	waitView(t, o, func(v View) bool { return v.Loading })
	call.reply <- fetchReply{res: pageOf(1, 1, "a.png", "b.png")}

	v := waitView(t, o, func(v View) bool { return !v.Loading })
	assert.Equal(t, []string{"a.png", "b.png"}, tileNames(v))
	assert.Equal(t, "docs", v.Folders[2].Label)
	assert.True(t, v.Folders[2].Active)
}

func TestOrchestrator_FetchFailure(t *testing.T) {
	o, fetcher, _ := startOrchestrator(t, DefaultConfig(), Options{})

	fetcher.next(t).reply <- fetchReply{err: errors.New("connection refused")}

	v := waitView(t, o, func(v View) bool { return v.Error })
	assert.True(t, v.Empty)
	assert.Empty(t, v.Tiles)
	assert.Equal(t, "Error loading files", v.EmptyText)
}

func TestOrchestrator_SearchDebounce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SearchDebounce = 30 * time.Millisecond
	o, fetcher, _ := startOrchestrator(t, cfg, Options{})

	fetcher.next(t).reply <- fetchReply{res: pageOf(1, 1, "a.png")}
	waitView(t, o, func(v View) bool { return !v.Loading })

	for _, text := range []string{"p", "ph", "pho", "photo"} {
		require.NoError(t, o.SearchInput(text))
	}

	call := fetcher.next(t)
	assert.Equal(t, "photo", call.req.Search)
	assert.Equal(t, 1, call.req.Page)
	call.reply <- fetchReply{res: pageOf(1, 1, "photo.jpg")}

	fetcher.expectNone(t, 4*cfg.SearchDebounce)
	v := waitView(t, o, func(v View) bool { return !v.Loading })
	assert.Equal(t, []string{"photo.jpg"}, tileNames(v))
	assert.Equal(t, "photo", v.SearchText)
}

func TestOrchestrator_StaleResponseDiscarded(t *testing.T) {
	o, fetcher, _ := startOrchestrator(t, DefaultConfig(), Options{})

	fetcher.next(t).reply <- fetchReply{res: pageOf(1, 3, "one.png")}
	waitView(t, o, func(v View) bool { return !v.Loading && v.Pagination.Visible })

	require.NoError(t, o.SetPage(2))
	slow := fetcher.next(t)
	assert.Equal(t, 2, slow.req.Page)

	require.NoError(t, o.SetPage(3))
	fetcher.expectNone(t, 50*time.Millisecond)

	slow.reply <- fetchReply{res: pageOf(2, 3, "stale.png")}
	fresh := fetcher.next(t)
	assert.Equal(t, 3, fresh.req.Page)
	fresh.reply <- fetchReply{res: pageOf(3, 3, "three.png")}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-o.Views():
			assert.NotContains(t, tileNames(v), "stale.png")
			if !v.Loading && len(v.Tiles) == 1 && v.Tiles[0].Name == "three.png" {
				assert.True(t, v.Pagination.Pages[2].Active)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for page 3")
		}
	}
}

func TestOrchestrator_ConfirmDeliversSelection(t *testing.T) {
	selected := make(chan []models.SelectionEntry, 1)
	o, fetcher, reg := startOrchestrator(t, DefaultConfig(), Options{
		Multiple: true,
		OnSelect: func(files []models.SelectionEntry) { selected <- files },
	})
	fetcher.next(t).reply <- fetchReply{res: pageOf(1, 1, "a.png", "b.png")}

	require.NoError(t, o.Toggle("/uploads/a.png", "a.png"))
	require.NoError(t, o.Toggle("/uploads/b.png", "b.png"))
	v := waitView(t, o, func(v View) bool { return len(v.Tiles) == 2 && v.Tiles[1].Selected })
	assert.True(t, v.Tiles[0].Selected)

	require.NoError(t, o.Confirm())

	select {
	case files := <-selected:
		assert.Equal(t, []models.SelectionEntry{
			{URL: "/uploads/a.png", Name: "a.png"},
			{URL: "/uploads/b.png", Name: "b.png"},
		}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("selection was not delivered")
	}

	select {
	case <-o.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
	assert.Zero(t, reg.Len())
	assert.ErrorIs(t, o.Toggle("/uploads/a.png", "a.png"), ErrSessionClosed)
	assert.ErrorIs(t, o.Confirm(), ErrSessionClosed)
}

func TestOrchestrator_CloseDropsSelection(t *testing.T) {
	called := false
	o, fetcher, reg := startOrchestrator(t, DefaultConfig(), Options{
		OnSelect: func([]models.SelectionEntry) { called = true },
	})
	pending := fetcher.next(t)

	require.NoError(t, o.Toggle("/uploads/a.png", "a.png"))
	require.NoError(t, o.Close())
	<-o.Done()

	// a late reply after close is harmless
	pending.reply <- fetchReply{res: pageOf(1, 1, "a.png")}

	assert.False(t, called)
	assert.Zero(t, reg.Len())
	assert.ErrorIs(t, o.SetFolder("docs"), ErrSessionClosed)
}

func TestOrchestrator_ContextCancelClosesSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := NewRegistry(DefaultConfig(), zerolog.Nop())
	s, effects := reg.Open(Options{})
	o := NewOrchestrator(s, newScriptedFetcher(), zerolog.Nop())
	o.Start(ctx, effects)

	cancel()
	select {
	case <-o.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
	assert.True(t, s.Closed())
	assert.Zero(t, reg.Len())
}
