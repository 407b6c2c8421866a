// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/unicode/norm"
)

func TestConfiguration_Validate(t *testing.T) {
	Convey("Validate", t, func() {
		dir := t.TempDir()

		Convey("fills in defaults", func() {
			c := &Configuration{Directory: dir}
			So(c.Validate(), ShouldBeNil)

			So(c.WriteToPath, ShouldEqual, dir)
			So(c.Marker, ShouldEqual, DefaultMarker)
			So(c.FallbackFilename, ShouldEqual, DefaultFallbackFilename)
			So(c.UnicodeForm, ShouldBeNil)
			So(c.RestrictFilenamesTo, ShouldBeNil)
		})

		Convey("uses the current directory if none is given", func() {
			wd, err := os.Getwd()
			So(err, ShouldBeNil)

			c := NewDefaultConfiguration("")
			So(c.Validate(), ShouldBeNil)
			So(c.Directory, ShouldEqual, wd)
		})

		Convey("keeps a separate upload destination", func() {
			other := t.TempDir()
			c := NewDefaultConfiguration(dir)
			c.WriteToPath = other
			So(c.Validate(), ShouldBeNil)
			So(c.WriteToPath, ShouldEqual, other)
		})

		Convey("rejects files in place of directories", func() {
			file := filepath.Join(dir, "file")
			So(os.WriteFile(file, nil, 0640), ShouldBeNil)

			err := NewDefaultConfiguration(file).Validate()
			So(errors.Cause(err), ShouldEqual, ErrNotADirectory)

			c := NewDefaultConfiguration(dir)
			c.WriteToPath = file
			So(errors.Cause(c.Validate()), ShouldEqual, ErrNotADirectory)
		})

		Convey("rejects directories that don't exist", func() {
			err := NewDefaultConfiguration(filepath.Join(dir, "nope")).Validate()
			So(os.IsNotExist(errors.Cause(err)), ShouldBeTrue)
		})

		Convey("rejects markers that span path segments", func() {
			c := NewDefaultConfiguration(dir)
			c.Marker = "up/load"
			So(c.Validate(), ShouldEqual, ErrMarkerSeparator)
		})

		Convey("translates Unicode normal forms", func() {
			samples := []struct {
				input    string
				expected *norm.Form
			}{
				{"NFC", &[]norm.Form{norm.NFC}[0]},
				{"NFD", &[]norm.Form{norm.NFD}[0]},
				{"none", nil},
				{"", nil},
			}
			for _, sample := range samples {
				c := NewDefaultConfiguration(dir)
				c.FilenamesForm = sample.input
				So(c.Validate(), ShouldBeNil)
				So(c.UnicodeForm, ShouldResemble, sample.expected)
			}

			c := NewDefaultConfiguration(dir)
			c.FilenamesForm = "NFKC"
			So(errors.Cause(c.Validate()), ShouldEqual, ErrUnknownForm)
		})

		Convey("parses the acceptable Unicode ranges", func() {
			c := NewDefaultConfiguration(dir)
			c.FilenamesIn = "x0061-x007a"
			So(c.Validate(), ShouldBeNil)
			So(c.RestrictFilenamesTo, ShouldHaveLength, 1)

			c.FilenamesIn = "x0061-"
			So(c.Validate(), ShouldNotBeNil)
		})
	})
}

func TestConfiguration_uploadDestination(t *testing.T) {
	Convey("Uploads end up", t, func() {
		c := &Configuration{WriteToPath: "/srv/in"}

		Convey("in the destination directory", func() {
			So(c.uploadDestination("a.txt"), ShouldEqual, filepath.Join("/srv/in", "a.txt"))
		})

		Convey("wherever a relative path points to", func() {
			So(c.uploadDestination("../a.txt"), ShouldEqual, filepath.Join("/srv", "a.txt"))
		})

		Convey("at absolute paths as given", func() {
			So(c.uploadDestination("/tmp/a.txt"), ShouldEqual, "/tmp/a.txt")
		})
	})
}
