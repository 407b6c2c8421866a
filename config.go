// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Defaults applied by NewDefaultConfiguration and Validate.
const (
	DefaultMarker           = "... click here to upload files ..."
	DefaultFallbackFilename = "uploaded_file"
)

// Errors returned by Validate. Use errors.Cause to compare.
var (
	ErrNotADirectory   = errors.New("not a directory")
	ErrUnknownForm     = errors.New("unknown Unicode normal form, expected one of: NFC, NFD, none")
	ErrMarkerSeparator = errors.New("the marker must not contain a '/'")
)

// Configuration represents the settings of one Handler.
//
// Do not modify it after the Handler has been created.
type Configuration struct {
	// The served root. GET, HEAD, and listings never leave it.
	Directory string `yaml:"directory"`

	// The upload destination. Empty means Directory.
	WriteToPath string `yaml:"write_to"`

	// Injected into every listing, and recognized as prefix of the last path segment.
	Marker string `yaml:"marker"`

	// Used if a request comes without header "filename".
	FallbackFilename string `yaml:"fallback_filename"`

	// Selects the form that uploads several files one after another.
	// If false, the form takes one file only.
	MultipleFiles bool `yaml:"multiple_files"`

	// In bytes. Uploads announcing more get a 413. 0 disables the check.
	MaxFilesize uint64 `yaml:"max_filesize"`

	// Rejects names with path separators, or ones IsAcceptableFilename refuses.
	StrictFilenames bool `yaml:"strict_filenames"`

	// One of "NFC", "NFD", or "none". Requires StrictFilenames.
	FilenamesForm string `yaml:"filenames_form"`

	// Space-delimited Unicode ranges, see ParseUnicodeBlockList. Requires StrictFilenames.
	FilenamesIn string `yaml:"filenames_in"`

	// Set by Validate from FilenamesForm and FilenamesIn.
	UnicodeForm         *norm.Form            `yaml:"-"`
	RestrictFilenamesTo []*unicode.RangeTable `yaml:"-"`
}

// NewDefaultConfiguration creates a new default configuration.
func NewDefaultConfiguration(directory string) *Configuration {
	return &Configuration{
		Directory:        directory,
		Marker:           DefaultMarker,
		FallbackFilename: DefaultFallbackFilename,
		MultipleFiles:    true,
	}
}

// Validate fills in what has been left empty, and rejects what cannot work.
func (c *Configuration) Validate() error {
	if c.Directory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "no directory given")
		}
		c.Directory = wd
	}
	if c.WriteToPath == "" {
		c.WriteToPath = c.Directory
	}
	if c.FallbackFilename == "" {
		c.FallbackFilename = DefaultFallbackFilename
	}
	if c.Marker == "" {
		c.Marker = DefaultMarker
	}
	if strings.ContainsRune(c.Marker, '/') {
		return ErrMarkerSeparator
	}

	for _, dir := range []string{c.Directory, c.WriteToPath} {
		// must be a directory
		finfo, err := os.Stat(dir)
		if err != nil {
			return errors.Wrapf(err, "cannot use %q", dir)
		}
		if !finfo.IsDir() {
			return errors.Wrapf(ErrNotADirectory, "cannot use %q", dir)
		}
	}

	switch c.FilenamesForm {
	case "NFC":
		f := norm.NFC
		c.UnicodeForm = &f
	case "NFD":
		f := norm.NFD
		c.UnicodeForm = &f
	case "", "none":
		c.UnicodeForm = nil
	default:
		return errors.Wrap(ErrUnknownForm, c.FilenamesForm)
	}

	c.RestrictFilenamesTo = nil
	if c.FilenamesIn != "" {
		v, err := ParseUnicodeBlockList(c.FilenamesIn)
		if err != nil {
			return errors.Wrap(err, "filenames_in")
		}
		c.RestrictFilenamesTo = []*unicode.RangeTable{v}
	}

	return nil
}

// uploadDestination returns where an upload named 'filename' will end up.
//
// Relative names are resolved against WriteToPath, absolute ones are kept.
func (c *Configuration) uploadDestination(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(c.WriteToPath, filename)
}
