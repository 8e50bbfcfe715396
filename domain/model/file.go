// Package model provides domain model for textscan
package model

import (
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// FileRef identifies the source a line was read from and carries the
// metadata exposed through the synthetic file columns.
type FileRef struct {
	// Path is the path or name the source was added with
	Path    string
	Size    int64
	Hidden  bool
	ModTime time.Time
	// URI is the file:// URI of the source; empty for in-memory readers
	URI string
	// RootURI is the URI of the filesystem root holding the source
	RootURI string
}

// NewFileRef builds a FileRef for a file on the local filesystem.
// info may be nil when the source is not a regular file.
func NewFileRef(path string, info fs.FileInfo) FileRef {
	ref := FileRef{Path: path}
	if info != nil {
		ref.Size = info.Size()
		ref.ModTime = info.ModTime()
	}
	ref.Hidden = strings.HasPrefix(filepath.Base(path), ".")

	abs, err := filepath.Abs(path)
	if err != nil {
		return ref
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	ref.URI = u.String()
	root := url.URL{Scheme: "file", Path: "/" + strings.TrimPrefix(filepath.ToSlash(filepath.VolumeName(abs)), "/")}
	ref.RootURI = strings.TrimSuffix(root.String(), "/") + "/"
	return ref
}

// NewReaderRef builds a FileRef for a named in-memory source
func NewReaderRef(name string) FileRef {
	return FileRef{
		Path:   name,
		Hidden: strings.HasPrefix(filepath.Base(name), "."),
	}
}

// ShortName returns the base name of the source
func (f FileRef) ShortName() string {
	if f.Path == "" {
		return ""
	}
	return filepath.Base(f.Path)
}

// Extension returns the extension of the source without the leading dot
func (f FileRef) Extension() string {
	return strings.TrimPrefix(filepath.Ext(f.Path), ".")
}

// Dir returns the directory holding the source
func (f FileRef) Dir() string {
	if f.Path == "" {
		return ""
	}
	return filepath.Dir(f.Path)
}
