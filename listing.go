// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"io"
	"net/http"
	"os"
	"time"
)

// ListingFileSystem decorates a http.FileSystem such that every directory
// enumerated through it carries one extra entry, Marker.
//
// The entry is decided per opened file. Nothing is shared between two calls to Open,
// hence concurrent listings are unaware of each other.
type ListingFileSystem struct {
	http.FileSystem
	Marker string
}

// Open implements http.FileSystem.
func (fs ListingFileSystem) Open(name string) (http.File, error) {
	f, err := fs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	return &listingFile{File: f, marker: fs.Marker}, nil
}

type listingFile struct {
	http.File

	marker     string
	markerSent bool // Readdir can be called repeatedly with count > 0
}

// Readdir returns the marker first, then what the wrapped directory holds.
func (f *listingFile) Readdir(count int) ([]os.FileInfo, error) {
	if f.markerSent {
		return f.File.Readdir(count)
	}
	if finfo, err := f.File.Stat(); err != nil || !finfo.IsDir() {
		return f.File.Readdir(count)
	}
	f.markerSent = true

	entries := []os.FileInfo{markerInfo(f.marker)}
	switch {
	case count == 1:
		return entries, nil
	case count > 1:
		count--
	}
	list, err := f.File.Readdir(count)
	if err == io.EOF && count > 0 { // the marker has been returned, so this is no EOF yet
		err = nil
	}
	return append(entries, list...), err
}

// markerInfo is the synthetic directory entry. It has no counterpart on disk.
type markerInfo string

func (m markerInfo) Name() string       { return string(m) }
func (m markerInfo) Size() int64        { return 0 }
func (m markerInfo) Mode() os.FileMode  { return 0444 }
func (m markerInfo) ModTime() time.Time { return time.Time{} }
func (m markerInfo) IsDir() bool        { return false }
func (m markerInfo) Sys() interface{}   { return nil }
