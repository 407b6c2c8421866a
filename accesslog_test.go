// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAccessLog(t *testing.T) {
	Convey("AccessLog", t, func() {
		logger, hook := test.NewNullLogger()
		h := AccessLog(logger)(passThrough)

		Convey("logs the outcome of every request", func() {
			req, _ := http.NewRequest("GET", "/whatever", nil)
			resp, body := serve(h, req)

			So(resp.StatusCode, ShouldEqual, http.StatusTeapot)
			entry := hook.LastEntry()
			So(entry, ShouldNotBeNil)
			So(entry.Data["method"], ShouldEqual, "GET")
			So(entry.Data["path"], ShouldEqual, "/whatever")
			So(entry.Data["status"], ShouldEqual, http.StatusTeapot)
			So(entry.Data["bytes"], ShouldEqual, int64(len(body)))
		})

		Convey("tags responses with the id it logs", func() {
			req, _ := http.NewRequest("HEAD", markerPath, nil)
			resp, _ := serve(h, req)

			id := resp.Header.Get(HeaderRequestID)
			_, err := uuid.Parse(id)
			So(err, ShouldBeNil)
			So(hook.LastEntry().Data["id"], ShouldEqual, id)
			So(hook.LastEntry().Data["status"], ShouldEqual, http.StatusOK)
		})

		Convey("assigns a different id to each request", func() {
			req, _ := http.NewRequest("GET", "/", nil)
			first, _ := serve(h, req)
			second, _ := serve(h, req)

			So(first.Header.Get(HeaderRequestID), ShouldNotEqual, second.Header.Get(HeaderRequestID))
			So(hook.AllEntries(), ShouldHaveLength, 2)
		})
	})
}
