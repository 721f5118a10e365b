package picker

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Registry owns the open sessions. Each Open creates a fresh session; no
// state is shared between sessions apart from the immutable defaults.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	defaults Config
	logger   zerolog.Logger
}

// NewRegistry creates a registry whose sessions start from defaults.
func NewRegistry(defaults Config, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		defaults: defaults.withDefaults(),
		logger:   logger,
	}
}

// Defaults returns the configuration new sessions start from.
func (r *Registry) Defaults() Config {
	return r.defaults
}

// Open creates and registers a session and returns the effects of its
// initial load.
func (r *Registry) Open(opts Options) (*Session, []Effect) {
	id := uuid.New().String()
	s, effects := newSession(id, r.defaults, opts)
	s.onClose = r.remove

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Debug().
		Str("session", id).
		Bool("multiple", opts.Multiple).
		Str("folder", opts.Folder).
		Msg("picker session opened")
	return s, effects
}

// Get retrieves a session by ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close closes the session with the given ID. Like every session
// operation it must run on the session's host loop.
func (r *Registry) Close(id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s.id)
	r.mu.Unlock()

	r.logger.Debug().Str("session", s.id).Msg("picker session closed")
}
