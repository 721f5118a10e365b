package picker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/media-library/backend/internal/client"
	"github.com/media-library/backend/internal/models"
)

// Fetcher performs one listing request. *client.Client implements it.
type Fetcher interface {
	FetchPage(ctx context.Context, req client.Request) (*models.PageResult, error)
}

// Orchestrator hosts a session on its own event loop goroutine. All
// session operations, fetch completions and debounce timers are funnelled
// through one channel, so the session only ever sees one caller. Fetches
// run on their own goroutines and are never cancelled by newer requests;
// the session discards their results when stale.
type Orchestrator struct {
	session *Session
	fetcher Fetcher
	logger  zerolog.Logger

	events chan func() []Effect
	views  chan View
	done   chan struct{}

	timer *time.Timer // newest debounce timer, owned by the loop
	once  sync.Once
}

// NewOrchestrator creates a host for s.
func NewOrchestrator(s *Session, fetcher Fetcher, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		session: s,
		fetcher: fetcher,
		logger:  logger.With().Str("session", s.ID()).Logger(),
		events:  make(chan func() []Effect),
		views:   make(chan View, 1),
		done:    make(chan struct{}),
	}
}

// Start runs the loop until the session closes or ctx ends. initial are
// the effects returned by Registry.Open.
func (o *Orchestrator) Start(ctx context.Context, initial []Effect) {
	o.once.Do(func() {
		go o.loop(ctx, initial)
	})
}

// Views delivers the newest view after every change. Intermediate views
// may be skipped when the reader is slow.
func (o *Orchestrator) Views() <-chan View {
	return o.views
}

// Done is closed when the loop has exited.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// Do runs op on the loop. It returns ErrSessionClosed once the loop has
// exited.
func (o *Orchestrator) Do(op func(*Session) []Effect) error {
	select {
	case o.events <- func() []Effect { return op(o.session) }:
		return nil
	case <-o.done:
		return ErrSessionClosed
	}
}

// SetFolder switches the folder filter.
func (o *Orchestrator) SetFolder(folder string) error {
	return o.Do(func(s *Session) []Effect { return s.SetFolder(folder) })
}

// SearchInput records the current search box text.
func (o *Orchestrator) SearchInput(text string) error {
	return o.Do(func(s *Session) []Effect { return s.SearchInput(text) })
}

// SetPage moves to page p.
func (o *Orchestrator) SetPage(p int) error {
	return o.Do(func(s *Session) []Effect { return s.SetPage(p) })
}

// Toggle flips the selection of a file.
func (o *Orchestrator) Toggle(url, name string) error {
	return o.Do(func(s *Session) []Effect {
		s.Toggle(url, name)
		return nil
	})
}

// Confirm confirms the selection. The callback runs on the loop.
func (o *Orchestrator) Confirm() error {
	return o.Do(func(s *Session) []Effect {
		s.Confirm()
		return nil
	})
}

// Close cancels the picker.
func (o *Orchestrator) Close() error {
	return o.Do(func(s *Session) []Effect {
		s.Close()
		return nil
	})
}

func (o *Orchestrator) loop(ctx context.Context, initial []Effect) {
	defer close(o.done)
	defer o.stopTimer()

	o.run(ctx, initial)
	o.publish()

	for {
		select {
		case <-ctx.Done():
			o.session.Close()
			o.publish()
			return
		case ev := <-o.events:
			o.run(ctx, ev())
			o.publish()
			if o.session.Closed() {
				return
			}
		}
	}
}

func (o *Orchestrator) run(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case LoadEffect:
			go o.fetch(ctx, e)
		case DebounceEffect:
			o.stopTimer()
			seq := e.Seq
			o.timer = time.AfterFunc(e.Delay, func() {
				_ = o.Do(func(s *Session) []Effect { return s.SearchTimerFired(seq) })
			})
		}
	}
}

func (o *Orchestrator) fetch(ctx context.Context, e LoadEffect) {
	started := time.Now()
	res, err := o.fetcher.FetchPage(ctx, e.Request)
	if err != nil {
		o.logger.Warn().Err(err).Uint64("seq", e.Seq).Msg("library fetch failed")
	} else {
		o.logger.Debug().
			Uint64("seq", e.Seq).
			Int("files", len(res.Files)).
			Dur("elapsed", time.Since(started)).
			Msg("library page fetched")
	}
	_ = o.Do(func(s *Session) []Effect { return s.LoadCompleted(e.Seq, res, err) })
}

func (o *Orchestrator) stopTimer() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// publish replaces any unread view with the current one. Only the loop
// sends, so draining first never blocks.
func (o *Orchestrator) publish() {
	v := o.session.View()
	select {
	case <-o.views:
	default:
	}
	o.views <- v
}
