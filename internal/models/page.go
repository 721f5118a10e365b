package models

// QueryState is the per-request filter derived from query parameters.
type QueryState struct {
	Folder string
	Search string
	Page   int
}

// PageResult is one page of the filtered library listing.
type PageResult struct {
	Files         []FileEntry `json:"files" msgpack:"files"`
	Folders       []string    `json:"folders" msgpack:"folders"`
	CurrentFolder string      `json:"current_folder" msgpack:"current_folder"`
	Total         int         `json:"total" msgpack:"total"`
	Page          int         `json:"page" msgpack:"page"`
	Pages         int         `json:"pages" msgpack:"pages"`
}

// EmptyPage returns the degenerate result for an empty library.
func EmptyPage(folder string) *PageResult {
	return &PageResult{
		Files:         []FileEntry{},
		Folders:       []string{},
		CurrentFolder: folder,
		Total:         0,
		Page:          1,
		Pages:         1,
	}
}
