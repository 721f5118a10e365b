// Package models contains domain types shared by the media library endpoint and the picker.
package models

import "time"

// FileType classifies a library file for preview purposes.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
)

// DateLayout is the format of FileEntry.Modified.
const DateLayout = "2006-01-02"

// FileEntry is the public metadata of a library file. URL is its identity.
type FileEntry struct {
	URL      string   `json:"url" msgpack:"url"`
	Name     string   `json:"name" msgpack:"name"`
	Type     FileType `json:"type" msgpack:"type"`
	Size     uint64   `json:"size" msgpack:"size"`
	Modified string   `json:"modified" msgpack:"modified"` // YYYY-MM-DD
}

// IndexedFile is a FileEntry as produced by a scanner, carrying the fields
// the query engine needs. The extra fields never leave the backend.
type IndexedFile struct {
	FileEntry
	Folder  string    `json:"-" msgpack:"-"`
	ModTime time.Time `json:"-" msgpack:"-"`
	Seq     int       `json:"-" msgpack:"-"` // enumeration order
}

// SelectionEntry is a file the user picked.
type SelectionEntry struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}
