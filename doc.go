// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package upload contains a HTTP handler for Go's own http server,
// which serves a directory and lets browsers upload files into it.
//
// Every directory listing gets one extra entry, the marker,
// which never exists on disk:
//
//	... click here to upload files ...
//
// Following that link renders a small page with a file picker.
// Any file picked there is sent as raw body of a POST to the marker's URL,
// with its name in a header "filename". This is how you'd do that using 'curl':
//
//	curl --data-binary @report.txt \
//	  --header 'filename: report.txt' \
//	  'http://127.0.0.1:8000/...%20click%20here%20to%20upload%20files%20...'
//
// Files are written in place: opened, written, and closed under their final name.
// A crash mid-write can leave a truncated file behind.
// Names are used verbatim unless Configuration.StrictFilenames is set,
// which means a client can write anywhere the name reaches.
// Do not expose this handler to untrusted networks.
package upload // import "blitznote.com/src/http.dirupload"
