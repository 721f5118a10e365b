package picker

import (
	"errors"
	"slices"
	"strings"

	"github.com/media-library/backend/internal/client"
	"github.com/media-library/backend/internal/models"
)

// ErrSessionClosed is returned for operations on a closed session.
var ErrSessionClosed = errors.New("session closed")

// Options are the per-open settings of a session.
type Options struct {
	Multiple    bool
	Folder      string
	OnSelect    func([]models.SelectionEntry)
	APIURL      string
	AjaxData    map[string]string
	AjaxHeaders map[string]string
}

// State is a snapshot of a session.
type State struct {
	Files      []models.FileEntry
	Folders    []string
	Selected   []models.SelectionEntry
	Folder     string
	Search     string
	SearchText string // raw input, Search is applied after the debounce
	Page       int
	Pages      int
	Total      int
	Multiple   bool
	Loading    bool
	Failed     bool
	Closed     bool
}

// Session is the state of one picker from open to close. It is not safe
// for concurrent use: a single host event loop drives it and executes the
// effects it returns.
//
// Loads are sequenced. Every reload bumps a counter; while a load is in
// flight further reloads only mark themselves pending and the newest one
// is dispatched when the in-flight load completes. A response is applied
// only if it answers the newest reload, so a late reply never overwrites
// newer state.
type Session struct {
	id       string
	cfg      Config
	state    State
	onSelect func([]models.SelectionEntry)
	onClose  func(*Session)

	loadSeq   uint64 // newest reload
	inflight  uint64 // seq of the outstanding load, 0 when idle
	searchSeq uint64
}

func newSession(id string, cfg Config, opts Options) (*Session, []Effect) {
	s := &Session{
		id:       id,
		cfg:      cfg.merge(opts),
		onSelect: opts.OnSelect,
		state: State{
			Files:    []models.FileEntry{},
			Folders:  []string{},
			Selected: []models.SelectionEntry{},
			Folder:   opts.Folder,
			Page:     1,
			Pages:    1,
			Multiple: opts.Multiple,
		},
	}
	return s, s.reload()
}

// ID returns the registry key of the session.
func (s *Session) ID() string {
	return s.id
}

// Config returns the merged configuration of the session.
func (s *Session) Config() Config {
	return s.cfg
}

// State returns a copy of the current state.
func (s *Session) State() State {
	st := s.state
	st.Files = slices.Clone(s.state.Files)
	st.Folders = slices.Clone(s.state.Folders)
	st.Selected = slices.Clone(s.state.Selected)
	return st
}

// View renders the current state.
func (s *Session) View() View {
	return Render(s.state, s.cfg)
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	return s.state.Closed
}

// SetFolder switches the folder filter and goes back to page 1. The
// selection is kept.
func (s *Session) SetFolder(folder string) []Effect {
	if s.state.Closed {
		return nil
	}
	s.state.Folder = folder
	s.state.Page = 1
	return s.reload()
}

// SearchInput records a keystroke and restarts the debounce.
func (s *Session) SearchInput(text string) []Effect {
	if s.state.Closed {
		return nil
	}
	s.state.SearchText = text
	s.searchSeq++
	return []Effect{DebounceEffect{SessionID: s.id, Seq: s.searchSeq, Delay: s.cfg.SearchDebounce}}
}

// SearchTimerFired applies the pending search if seq is the newest timer.
func (s *Session) SearchTimerFired(seq uint64) []Effect {
	if s.state.Closed || seq != s.searchSeq {
		return nil
	}
	s.searchSeq++
	s.state.Search = strings.TrimSpace(s.state.SearchText)
	s.state.Page = 1
	return s.reload()
}

// SetPage moves to page p. Out of range pages and the current page are
// ignored.
func (s *Session) SetPage(p int) []Effect {
	if s.state.Closed || p < 1 || p > s.state.Pages || p == s.state.Page {
		return nil
	}
	s.state.Page = p
	return s.reload()
}

// Toggle handles a click on a file. In single mode the file becomes the
// only selection; in multiple mode its membership flips.
func (s *Session) Toggle(url, name string) {
	if s.state.Closed {
		return
	}
	entry := models.SelectionEntry{URL: url, Name: name}
	if !s.state.Multiple {
		s.state.Selected = []models.SelectionEntry{entry}
		return
	}
	for i, sel := range s.state.Selected {
		if sel.URL == url {
			s.state.Selected = append(s.state.Selected[:i:i], s.state.Selected[i+1:]...)
			return
		}
	}
	s.state.Selected = append(s.state.Selected, entry)
}

// IsSelected reports whether url is selected.
func (s *Session) IsSelected(url string) bool {
	return isSelected(s.state.Selected, url)
}

// Confirm hands a copy of the selection to the callback, then closes the
// session. It does nothing when the selection is empty.
func (s *Session) Confirm() bool {
	if s.state.Closed || len(s.state.Selected) == 0 {
		return false
	}
	cb := s.onSelect
	s.onSelect = nil
	if cb != nil {
		cb(slices.Clone(s.state.Selected))
	}
	s.Close()
	return true
}

// Close ends the session, dropping the selection and the callback.
func (s *Session) Close() {
	if s.state.Closed {
		return
	}
	s.state.Closed = true
	s.state.Selected = []models.SelectionEntry{}
	s.onSelect = nil
	s.searchSeq++
	if s.onClose != nil {
		s.onClose(s)
	}
}

// LoadCompleted reports the outcome of the load tagged seq. The loading
// flag is always cleared; the result is applied only if seq is the newest
// reload, otherwise the newest pending reload is dispatched.
func (s *Session) LoadCompleted(seq uint64, res *models.PageResult, err error) []Effect {
	if s.state.Closed || seq == 0 || seq != s.inflight {
		return nil
	}
	s.state.Loading = false
	s.inflight = 0

	if seq != s.loadSeq {
		return s.dispatch()
	}

	if err != nil || res == nil {
		s.state.Files = []models.FileEntry{}
		s.state.Failed = true
		return nil
	}

	s.state.Failed = false
	s.state.Files = nonNil(res.Files)
	s.state.Folders = nonNil(res.Folders)
	s.state.Total = res.Total
	s.state.Page = max(res.Page, 1)
	s.state.Pages = max(res.Pages, 1)
	return nil
}

func (s *Session) reload() []Effect {
	s.loadSeq++
	if s.state.Loading {
		return nil
	}
	return s.dispatch()
}

func (s *Session) dispatch() []Effect {
	s.state.Loading = true
	s.inflight = s.loadSeq
	return []Effect{LoadEffect{SessionID: s.id, Seq: s.loadSeq, Request: s.request()}}
}

func (s *Session) request() client.Request {
	return client.Request{
		APIURL:  s.cfg.APIURL,
		Folder:  s.state.Folder,
		Search:  s.state.Search,
		Page:    s.state.Page,
		PerPage: s.cfg.PerPage,
		Data:    mergeMaps(s.cfg.AjaxData, nil),
		Headers: mergeMaps(s.cfg.AjaxHeaders, nil),
	}
}

func isSelected(selected []models.SelectionEntry, url string) bool {
	for _, sel := range selected {
		if sel.URL == url {
			return true
		}
	}
	return false
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}
