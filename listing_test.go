// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestListingFileSystem(t *testing.T) {
	Convey("ListingFileSystem", t, func() {
		dir := t.TempDir()
		for _, name := range []string{"a", "b"} {
			So(os.WriteFile(filepath.Join(dir, name), []byte(name), 0640), ShouldBeNil)
		}
		fs := ListingFileSystem{FileSystem: http.Dir(dir), Marker: "^marker^"}

		Convey("puts the marker first into a full listing", func() {
			f, err := fs.Open("/")
			So(err, ShouldBeNil)
			defer f.Close()

			list, err := f.Readdir(-1)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 3)
			So(list[0].Name(), ShouldEqual, "^marker^")
			So(list[0].IsDir(), ShouldBeFalse)
			So(list[0].Size(), ShouldEqual, 0)
		})

		Convey("emits the marker exactly once when paging", func() {
			f, err := fs.Open("/")
			So(err, ShouldBeNil)
			defer f.Close()

			var names []string
			for {
				list, err := f.Readdir(1)
				for _, fi := range list {
					names = append(names, fi.Name())
				}
				if err == io.EOF {
					break
				}
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
			}
			So(names[0], ShouldEqual, "^marker^")
			So(names, ShouldHaveLength, 3)
			So(names, ShouldContain, "a")
			So(names, ShouldContain, "b")
		})

		Convey("pages of two include the marker without exceeding the count", func() {
			f, err := fs.Open("/")
			So(err, ShouldBeNil)
			defer f.Close()

			list, err := f.Readdir(2)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 2)
			So(list[0].Name(), ShouldEqual, "^marker^")

			list, err = f.Readdir(2)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)
		})

		Convey("does not add anything to empty directories' EOF", func() {
			empty := filepath.Join(dir, "empty")
			So(os.Mkdir(empty, 0750), ShouldBeNil)
			f, err := fs.Open("/empty")
			So(err, ShouldBeNil)
			defer f.Close()

			list, err := f.Readdir(5)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)

			list, err = f.Readdir(5)
			So(err, ShouldEqual, io.EOF)
			So(list, ShouldBeEmpty)
		})

		Convey("leaves regular files alone", func() {
			f, err := fs.Open("/a")
			So(err, ShouldBeNil)
			defer f.Close()

			content, err := io.ReadAll(f)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, "a")

			list, err := f.Readdir(-1)
			So(err, ShouldNotBeNil)
			So(list, ShouldBeEmpty)
		})

		Convey("passes errors on", func() {
			_, err := fs.Open("/does-not-exist")
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}
