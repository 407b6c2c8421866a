// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// The encoding of pages we generate. Paths are displayed in it, too.
const pageCharset = "utf-8"

type uploadPageVars struct {
	Charset     string
	DisplayPath string
	Multiple    bool
}

var uploadPage = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset={{.Charset}}">
  <title>Upload to {{.DisplayPath}}</title>
  <script>
{{- if .Multiple}}
    function upload() {
      var files = Array.from(document.getElementById("file").files);
      if (!files.length) { return; }
      var log = document.getElementById("log");
      var status = document.createElement("h2");
      status.textContent = "Uploading " + files.length + " files...";
      log.appendChild(status);
      files.reduce(function (acc, file, i) {
        return acc.then(function () {
          return fetch(document.location.href, { method: "POST", body: file, headers: { filename: file.name } });
        }).then(function () {
          var line = document.createElement("div");
          line.appendChild(document.createTextNode((i + 1) + ". Uploaded: "));
          var name = document.createElement("b");
          name.textContent = file.name;
          line.appendChild(name);
          log.appendChild(line);
        }).catch(console.error);
      }, Promise.resolve()).then(function () { window.location = document.referrer; });
    }
{{- else}}
    function upload() {
      var file = document.getElementById("file").files[0];
      if (!file) { return; }
      fetch(document.location.href, { method: "POST", body: file, headers: { filename: file.name } })
        .catch(console.error)
        .then(function () { window.location = document.referrer; });
    }
{{- end}}
  </script>
</head>
<body>
  <h1>Upload to {{.DisplayPath}}</h1>
  <hr><input id="file" type="file" onchange="upload()"{{if .Multiple}} multiple{{end}}><hr>
  <div id="log"></div>
</body>
</html>
`))

// displayPath decodes a percent-encoded path for humans.
//
// Bytes that don't form valid UTF-8 become U+FFFD. This never fails.
func displayPath(escaped string) string {
	s, err := url.PathUnescape(escaped)
	if err != nil {
		s = escaped
	}
	if utf8.ValidString(s) {
		return s
	}

	lossy, _, err := transform.String(unicode.UTF8.NewDecoder(), s)
	if err != nil {
		return strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return lossy
}

// serveUploadForm renders the page with the file picker.
// Its headings name the directory the marker has been found in.
func (h *Handler) serveUploadForm(w http.ResponseWriter, r *http.Request) {
	buf := &bytes.Buffer{}
	err := uploadPage.Execute(buf, uploadPageVars{
		Charset:     pageCharset,
		DisplayPath: displayPath(path.Dir(r.URL.EscapedPath())),
		Multiple:    h.Config.MultipleFiles,
	})
	if err != nil {
		h.Logger.WithError(err).Error("cannot render the upload form")
		code := http.StatusInternalServerError
		http.Error(w, http.StatusText(code), code)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset="+pageCharset)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		buf.WriteTo(w)
	}
}
