// Package web serves the library files under their public URL prefix.
package web

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/media-library/backend/internal/api"
	"github.com/media-library/backend/internal/library"
)

// LibraryFiles serves files from a library root with the same visibility
// rules the scanner applies, so every listed URL resolves and nothing
// unlisted does.
type LibraryFiles struct {
	root       string
	classifier *library.Classifier
	maxDepth   int
}

// NewLibraryFiles creates a file server over root.
func NewLibraryFiles(root string, classifier *library.Classifier, maxDepth int) *LibraryFiles {
	if classifier == nil {
		classifier = library.DefaultClassifier()
	}
	if maxDepth <= 0 {
		maxDepth = library.DefaultMaxDepth
	}
	return &LibraryFiles{
		root:       root,
		classifier: classifier,
		maxDepth:   maxDepth,
	}
}

// CanServePrefix reports whether prefix is a local path this server can
// mount, as opposed to an absolute URL pointing at another host.
func CanServePrefix(prefix string) bool {
	if !strings.HasPrefix(prefix, "/") || strings.HasPrefix(prefix, "//") {
		return false
	}
	return strings.Trim(prefix, "/") != ""
}

// RegisterLibraryRoutes mounts the library under prefix.
// The API routes should be registered before calling this function.
func RegisterLibraryRoutes(e *echo.Echo, prefix string, files *LibraryFiles) {
	prefix = "/" + strings.Trim(prefix, "/")
	e.GET(prefix+"/*", files.Handle)
	e.HEAD(prefix+"/*", files.Handle)
}

// Handle serves the file named by the wildcard parameter. Errors are
// APIErrors and need the api error handler to render as JSON.
func (l *LibraryFiles) Handle(c echo.Context) error {
	rel, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return api.NewBadRequestError("invalid file path")
	}

	full, ok := l.resolve(rel)
	if !ok {
		return api.NewNotFoundError("file")
	}

	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	return c.File(full)
}

// resolve maps a request path to a regular file inside the root. Any
// dot-segment, symlink, hidden extension or over-deep path is refused.
func (l *LibraryFiles) resolve(rel string) (string, bool) {
	if rel == "" || strings.Contains(rel, "\\") || strings.ContainsRune(rel, 0) {
		return "", false
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if cleaned == "" || cleaned != strings.TrimPrefix(rel, "/") {
		return "", false
	}

	segments := strings.Split(cleaned, "/")
	if len(segments) > l.maxDepth+1 {
		return "", false
	}
	for _, seg := range segments {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	if l.classifier.Hidden(segments[len(segments)-1]) {
		return "", false
	}

	current := l.root
	for i, seg := range segments {
		current = filepath.Join(current, seg)
		info, err := os.Lstat(current)
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			return "", false
		}
		last := i == len(segments)-1
		if last && !info.Mode().IsRegular() {
			return "", false
		}
		if !last && !info.IsDir() {
			return "", false
		}
	}
	return current, true
}
