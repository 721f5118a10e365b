package cmd

import (
	"bytes"
	"encoding/json"

	"github.com/media-library/backend/internal/hook"
)

// stdoutUploader is a minimal uploader whose value is the JSON list of
// pushed entries. The command prints it once the picker has closed.
type stdoutUploader struct {
	multiple bool
	folder   string

	trigger *hook.Trigger
	files   []hook.UploaderFile
	preview []string
	value   []byte
}

func newStdoutUploader(multiple bool, folder string) *stdoutUploader {
	return &stdoutUploader{multiple: multiple, folder: folder}
}

func (u *stdoutUploader) Multiple() bool         { return u.multiple }
func (u *stdoutUploader) Folder() string         { return u.folder }
func (u *stdoutUploader) HasBrowseTrigger() bool { return u.trigger != nil }

func (u *stdoutUploader) AddBrowseTrigger(t hook.Trigger) {
	u.trigger = &t
}

func (u *stdoutUploader) PushFiles(files []hook.UploaderFile) {
	if !u.multiple {
		u.files = u.files[:0]
	}
	u.files = append(u.files, files...)
}

func (u *stdoutUploader) RefreshPreview() {
	u.preview = u.preview[:0]
	for _, f := range u.files {
		u.preview = append(u.preview, f.Name)
	}
}

func (u *stdoutUploader) RefreshValue() {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(u.files); err != nil {
		return
	}
	u.value = buf.Bytes()
}

// Value returns the serialized entries, nil until a selection was pushed.
func (u *stdoutUploader) Value() []byte {
	return u.value
}
