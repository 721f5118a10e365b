package hook

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-library/backend/internal/models"
	"github.com/media-library/backend/internal/picker"
)

type fakeUploader struct {
	multiple bool
	folder   string
	triggers []Trigger
	files    []UploaderFile
	calls    []string
}

func (u *fakeUploader) Multiple() bool         { return u.multiple }
func (u *fakeUploader) HasBrowseTrigger() bool { return len(u.triggers) > 0 }
func (u *fakeUploader) AddBrowseTrigger(t Trigger) {
	u.triggers = append(u.triggers, t)
}
func (u *fakeUploader) PushFiles(files []UploaderFile) {
	u.files = append(u.files, files...)
	u.calls = append(u.calls, "push")
}
func (u *fakeUploader) RefreshPreview() { u.calls = append(u.calls, "preview") }
func (u *fakeUploader) RefreshValue()   { u.calls = append(u.calls, "value") }

type scopedUploader struct {
	fakeUploader
}

func (u *scopedUploader) Folder() string { return u.folder }

func newTestHook(opened *[]picker.Options) *Hook {
	return New(picker.DefaultConfig(), nil, func(o picker.Options) {
		*opened = append(*opened, o)
	}, zerolog.Nop())
}

func TestHook_RegisterInjectsTriggerOnce(t *testing.T) {
	var opened []picker.Options
	h := newTestHook(&opened)
	u := &fakeUploader{}

	h.Register(u)
	h.Register(u)

	require.Len(t, u.triggers, 1)
	assert.Equal(t, "Media Library", u.triggers[0].Label)
	assert.Equal(t, "images", u.triggers[0].Icon)
	assert.Empty(t, opened, "registering must not open the picker")
}

func TestHook_RefreshedReinjects(t *testing.T) {
	var opened []picker.Options
	h := newTestHook(&opened)
	u := &fakeUploader{}

	h.Refreshed(u)
	assert.Empty(t, u.triggers, "unknown uploaders are ignored")

	h.Register(u)
	h.Refreshed(u)
	assert.Len(t, u.triggers, 1, "trigger still present")

	u.triggers = nil
	h.Refreshed(u)
	assert.Len(t, u.triggers, 1)

	h.Unregister(u)
	u.triggers = nil
	h.Refreshed(u)
	assert.Empty(t, u.triggers)
}

func TestHook_TriggerOpensPicker(t *testing.T) {
	var opened []picker.Options
	h := newTestHook(&opened)

	u := &fakeUploader{multiple: true}
	h.Register(u)
	u.triggers[0].Open()

	require.Len(t, opened, 1)
	assert.True(t, opened[0].Multiple)
	assert.Empty(t, opened[0].Folder)
	assert.NotNil(t, opened[0].OnSelect)

	scoped := &scopedUploader{fakeUploader{folder: "avatars"}}
	h.Register(scoped)
	scoped.triggers[0].Open()
	require.Len(t, opened, 2)
	assert.Equal(t, "avatars", opened[1].Folder)
	assert.False(t, opened[1].Multiple)
}

func TestHook_SelectionIsPushed(t *testing.T) {
	var opened []picker.Options
	h := newTestHook(&opened)
	u := &fakeUploader{multiple: true}
	h.Register(u)
	u.triggers[0].Open()

	opened[0].OnSelect([]models.SelectionEntry{
		{URL: "/uploads/avatars/me.JPG", Name: "me.JPG"},
		{URL: "/uploads/docs/report.pdf", Name: "report.pdf"},
	})

	require.Len(t, u.files, 2)
	assert.Equal(t, []string{"push", "preview", "value"}, u.calls)

	first := u.files[0]
	assert.Equal(t, TypeImage, first.Type)
	assert.Equal(t, "me.JPG", first.Name)
	assert.Equal(t, "/uploads/avatars/me.JPG", first.URL)
	assert.Equal(t, StatusInitial, first.Status)
	id, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())

	assert.Equal(t, TypeOther, u.files[1].Type)
	assert.NotEqual(t, first.ID, u.files[1].ID)
}

func TestHook_TypeOf(t *testing.T) {
	h := New(picker.DefaultConfig(), nil, func(picker.Options) {}, zerolog.Nop())

	assert.Equal(t, TypeImage, h.TypeOf("/uploads/a.avif"))
	assert.Equal(t, TypeImage, h.TypeOf("https://cdn.example.com/x/photo.png?v=2#top"))
	assert.Equal(t, TypeOther, h.TypeOf("/uploads/archive.zip"))
	assert.Equal(t, TypeOther, h.TypeOf("/uploads/README"))
	assert.Equal(t, TypeOther, h.TypeOf("/uploads/png"))
}
