// Package hook connects the picker to an uploader component. The uploader
// calls Register once it is fully initialized; the hook then adds a browse
// trigger to it and pushes picked library files into its file list.
package hook

import (
	"net/url"
	"path"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/media-library/backend/internal/library"
	"github.com/media-library/backend/internal/models"
	"github.com/media-library/backend/internal/picker"
)

// StatusInitial marks an uploader entry that needs no upload.
const StatusInitial = "initial"

// Uploader types pushed entries.
const (
	TypeImage = "image"
	TypeOther = "other"
)

// Uploader is the part of an uploader component the hook drives.
type Uploader interface {
	Multiple() bool
	HasBrowseTrigger() bool
	AddBrowseTrigger(Trigger)
	PushFiles([]UploaderFile)
	RefreshPreview()
	RefreshValue()
}

// FolderScoped is implemented by uploaders that open the picker on a
// preselected folder.
type FolderScoped interface {
	Folder() string
}

// Trigger is the browse button injected into an uploader.
type Trigger struct {
	Label string
	Icon  string
	Open  func()
}

// UploaderFile is an entry for a file that already exists on the server.
// It carries no payload.
type UploaderFile struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// Opener opens a picker session.
type Opener func(picker.Options)

// Hook injects browse triggers into registered uploaders.
type Hook struct {
	cfg        picker.Config
	classifier *library.Classifier
	open       Opener
	logger     zerolog.Logger

	mu         sync.Mutex
	registered map[Uploader]struct{}
}

// New creates a hook. A nil classifier uses the library defaults.
func New(cfg picker.Config, classifier *library.Classifier, open Opener, logger zerolog.Logger) *Hook {
	if classifier == nil {
		classifier = library.DefaultClassifier()
	}
	return &Hook{
		cfg:        cfg,
		classifier: classifier,
		open:       open,
		logger:     logger,
		registered: make(map[Uploader]struct{}),
	}
}

// Register is called by an uploader once it has finished initializing.
// Registering the same uploader again has no effect.
func (h *Hook) Register(u Uploader) {
	h.mu.Lock()
	_, seen := h.registered[u]
	h.registered[u] = struct{}{}
	h.mu.Unlock()

	if seen {
		return
	}
	h.inject(u)
}

// Refreshed is called after the uploader rebuilt its UI. The trigger is
// injected again if the rebuild dropped it.
func (h *Hook) Refreshed(u Uploader) {
	h.mu.Lock()
	_, ok := h.registered[u]
	h.mu.Unlock()

	if ok {
		h.inject(u)
	}
}

// Unregister forgets u.
func (h *Hook) Unregister(u Uploader) {
	h.mu.Lock()
	delete(h.registered, u)
	h.mu.Unlock()
}

func (h *Hook) inject(u Uploader) {
	if u.HasBrowseTrigger() {
		return
	}
	u.AddBrowseTrigger(Trigger{
		Label: h.cfg.UploaderButtonText,
		Icon:  h.cfg.UploaderButtonIcon,
		Open:  func() { h.Browse(u) },
	})
}

// Browse opens a picker for u.
func (h *Hook) Browse(u Uploader) {
	opts := picker.Options{
		Multiple: u.Multiple(),
		OnSelect: func(files []models.SelectionEntry) { h.push(u, files) },
	}
	if fs, ok := u.(FolderScoped); ok {
		opts.Folder = fs.Folder()
	}
	h.open(opts)
}

func (h *Hook) push(u Uploader, files []models.SelectionEntry) {
	entries := make([]UploaderFile, 0, len(files))
	for _, f := range files {
		entries = append(entries, UploaderFile{
			ID:     uuid.NewString(),
			Type:   h.TypeOf(f.URL),
			Name:   f.Name,
			URL:    f.URL,
			Status: StatusInitial,
		})
	}
	h.logger.Debug().Int("files", len(entries)).Msg("pushing library files to uploader")

	u.PushFiles(entries)
	u.RefreshPreview()
	u.RefreshValue()
}

// TypeOf infers the uploader type of a file from the extension of its URL
// path. Query strings and fragments are ignored.
func (h *Hook) TypeOf(rawURL string) string {
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	}
	if h.classifier.IsImage(library.Extension(path.Base(p))) {
		return TypeImage
	}
	return TypeOther
}
