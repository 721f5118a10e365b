package library

import (
	"strings"

	"github.com/media-library/backend/internal/models"
)

// DefaultImageExtensions are shown as thumbnails.
var DefaultImageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "ico", "bmp", "avif"}

// DefaultHiddenExtensions are never listed. The empty string stands for
// files without an extension.
var DefaultHiddenExtensions = []string{"php", "exe", "sh", "bat", "env", "htaccess", "htpasswd", "ini", "conf", ""}

// Classifier decides which files are listed and how they are typed.
type Classifier struct {
	image  map[string]struct{}
	hidden map[string]struct{}
}

// NewClassifier builds a classifier from extension lists. Entries are
// lower-cased and a leading dot is ignored.
func NewClassifier(imageExts, hiddenExts []string) *Classifier {
	return &Classifier{
		image:  extensionSet(imageExts),
		hidden: extensionSet(hiddenExts),
	}
}

// DefaultClassifier uses DefaultImageExtensions and DefaultHiddenExtensions.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultImageExtensions, DefaultHiddenExtensions)
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = struct{}{}
	}
	return set
}

// Extension returns the lower-cased text after the final dot of name, or ""
// when there is none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Hidden reports whether a file with this base name must not be listed.
func (c *Classifier) Hidden(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return true
	}
	_, hidden := c.hidden[Extension(name)]
	return hidden
}

// Type classifies name as image or document.
func (c *Classifier) Type(name string) models.FileType {
	if _, ok := c.image[Extension(name)]; ok {
		return models.FileTypeImage
	}
	return models.FileTypeDocument
}

// IsImage reports whether ext (without dot) is an image extension.
func (c *Classifier) IsImage(ext string) bool {
	_, ok := c.image[strings.ToLower(ext)]
	return ok
}
