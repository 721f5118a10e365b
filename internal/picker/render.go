package picker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/media-library/backend/internal/library"
	"github.com/media-library/backend/internal/models"
)

// paginationWindow is the most page numbers shown at once.
const paginationWindow = 7

// IconKind names the icon drawn for a non-image file.
type IconKind string

const (
	IconPDF         IconKind = "pdf"
	IconWord        IconKind = "word"
	IconExcel       IconKind = "excel"
	IconSpreadsheet IconKind = "spreadsheet"
	IconSlides      IconKind = "ppt"
	IconText        IconKind = "text"
	IconArchive     IconKind = "zip"
	IconVideo       IconKind = "video"
	IconAudio       IconKind = "audio"
	IconSVG         IconKind = "svg"
	IconFile        IconKind = "file"
)

var fileIcons = map[string]IconKind{
	"pdf":  IconPDF,
	"doc":  IconWord,
	"docx": IconWord,
	"xls":  IconExcel,
	"xlsx": IconExcel,
	"csv":  IconSpreadsheet,
	"ppt":  IconSlides,
	"pptx": IconSlides,
	"txt":  IconText,
	"zip":  IconArchive,
	"rar":  IconArchive,
	"mp4":  IconVideo,
	"mp3":  IconAudio,
	"svg":  IconSVG,
}

// View is everything a host needs to draw a session.
type View struct {
	Title             string
	SearchPlaceholder string
	SearchText        string
	SelectText        string
	CancelText        string
	Multiple          bool

	Folders    []FolderTab
	Tiles      []Tile
	Loading    bool
	Empty      bool
	EmptyText  string
	Error      bool
	Pagination Pagination
	Info       string

	ConfirmEnabled bool
}

// FolderTab is one entry of the folder strip. The first tab is the
// pseudo-folder "" labelled with AllText.
type FolderTab struct {
	Label  string
	Folder string
	Active bool
}

// Tile is one file of the grid.
type Tile struct {
	URL       string
	Name      string
	Type      models.FileType
	Thumbnail string // image URL, empty for documents
	Icon      IconKind
	SizeText  string
	Title     string
	Selected  bool
}

// Pagination is hidden when there is a single page.
type Pagination struct {
	Visible bool
	Prev    PageLink
	Next    PageLink
	Pages   []PageLink
}

// PageLink targets Page. Disabled links must not be followed.
type PageLink struct {
	Page     int
	Active   bool
	Disabled bool
}

// Render projects a session state onto a view. It is pure: equal inputs
// give equal views.
func Render(st State, cfg Config) View {
	v := View{
		Title:             cfg.Title,
		SearchPlaceholder: cfg.SearchPlaceholder,
		SearchText:        st.SearchText,
		SelectText:        cfg.SelectText,
		CancelText:        cfg.CancelText,
		Multiple:          st.Multiple,
		Folders:           renderFolders(st, cfg),
		Tiles:             renderTiles(st),
		Loading:           st.Loading,
		Pagination:        RenderPagination(st.Page, st.Pages),
		Info:              renderInfo(st, cfg),
		ConfirmEnabled:    len(st.Selected) > 0 && !st.Closed,
	}

	switch {
	case st.Loading:
	case st.Failed:
		v.Tiles = []Tile{}
		v.Empty = true
		v.Error = true
		v.EmptyText = cfg.ErrorText
	case len(st.Files) == 0:
		v.Empty = true
		v.EmptyText = cfg.EmptyText
	}
	return v
}

func renderFolders(st State, cfg Config) []FolderTab {
	tabs := make([]FolderTab, 0, len(st.Folders)+1)
	tabs = append(tabs, FolderTab{Label: cfg.AllText, Folder: "", Active: st.Folder == ""})
	for _, f := range st.Folders {
		tabs = append(tabs, FolderTab{Label: f, Folder: f, Active: st.Folder == f})
	}
	return tabs
}

func renderTiles(st State) []Tile {
	tiles := make([]Tile, 0, len(st.Files))
	for _, f := range st.Files {
		t := Tile{
			URL:      f.URL,
			Name:     f.Name,
			Type:     f.Type,
			SizeText: FormatSize(f.Size),
			Selected: isSelected(st.Selected, f.URL),
		}
		t.Title = fmt.Sprintf("%s (%s)", f.Name, t.SizeText)
		if f.Type == models.FileTypeImage {
			t.Thumbnail = f.URL
		} else {
			t.Icon = IconFor(f.Name)
		}
		tiles = append(tiles, t)
	}
	return tiles
}

// RenderPagination builds the pager: previous, up to seven page numbers
// around the current page and next.
func RenderPagination(page, pages int) Pagination {
	if pages <= 1 {
		return Pagination{}
	}
	start := max(1, page-3)
	end := min(pages, start+paginationWindow-1)
	if end-start < paginationWindow-1 {
		start = max(1, end-paginationWindow+1)
	}

	p := Pagination{
		Visible: true,
		Prev:    PageLink{Page: page - 1, Disabled: page <= 1},
		Next:    PageLink{Page: page + 1, Disabled: page >= pages},
		Pages:   make([]PageLink, 0, end-start+1),
	}
	for n := start; n <= end; n++ {
		p.Pages = append(p.Pages, PageLink{Page: n, Active: n == page})
	}
	return p
}

func renderInfo(st State, cfg Config) string {
	count := strconv.Itoa(st.Total)
	if n := len(st.Selected); n > 0 {
		return Template(cfg.SelectedInfoText, map[string]string{
			"selected": strconv.Itoa(n),
			"count":    count,
		})
	}
	return Template(cfg.FileInfoText, map[string]string{"count": count})
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Template replaces {name} tokens with data values. Unknown tokens are
// left as they are.
func Template(s string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(token string) string {
		if v, ok := data[token[1:len(token)-1]]; ok {
			return v
		}
		return token
	})
}

// FormatSize renders a byte count as B, KB or MB with one decimal.
func FormatSize(bytes uint64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// IconFor picks the icon of a file by extension.
func IconFor(name string) IconKind {
	if icon, ok := fileIcons[library.Extension(strings.TrimSpace(name))]; ok {
		return icon
	}
	return IconFile
}
