package picker

import (
	"time"

	"github.com/media-library/backend/internal/client"
)

// Effect is work a session asks its host to perform. Sessions never do
// I/O or start timers themselves.
type Effect interface {
	effect()
}

// LoadEffect asks the host to fetch Request and report the outcome with
// Session.LoadCompleted(Seq, ...).
type LoadEffect struct {
	SessionID string
	Seq       uint64
	Request   client.Request
}

// DebounceEffect asks the host to call Session.SearchTimerFired(Seq) after
// Delay. A newer DebounceEffect supersedes older ones.
type DebounceEffect struct {
	SessionID string
	Seq       uint64
	Delay     time.Duration
}

func (LoadEffect) effect()     {}
func (DebounceEffect) effect() {}
