// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const msgUploaded = "File uploaded.\n"

// NewHandler creates a new instance of the upload handler,
// meant to be used in Go's own http server.
//
// Its responsibility is to reject invalid or formally incorrect configurations,
// and it will fill in defaults.
//
// 'next' is optional and serves everything that is not about uploads.
// If nil, a http.FileServer on config.Directory will be used
// which lists the marker in every directory.
func NewHandler(config *Configuration, next http.Handler) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	h := Handler{
		Next:   next,
		Config: config,
		Logger: logrus.StandardLogger(),
	}
	if next == nil {
		h.Next = http.FileServer(ListingFileSystem{
			FileSystem: http.Dir(config.Directory),
			Marker:     config.Marker,
		})
	}

	return &h, nil
}

// Handler implements http.Handler.
type Handler struct {
	Next   http.Handler
	Config *Configuration
	Logger logrus.FieldLogger
}

// ServeHTTP handles the marker and uploads, else defers the request to the next handler.
//
// GET and HEAD on the marker render a page with a form for uploads.
// POST to the marker is an upload, to anything else a 501.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if h.isUploadTarget(r.URL.Path) {
			h.serveUploadForm(w, r)
			return
		}
		h.Next.ServeHTTP(w, r)
		return
	case http.MethodPost:
		if h.isUploadTarget(r.URL.Path) {
			break
		}
		fallthrough
	default:
		h.notImplemented(w, r)
		return
	}

	filename := r.Header.Get("filename")
	if filename == "" {
		filename = h.Config.FallbackFilename
	}
	log := h.Logger.WithFields(logrus.Fields{
		"filename": filename,
		"path":     r.URL.Path,
	})

	bytesWritten, httpCode, err := h.WriteOneHTTPBlob(filename, r.ContentLength, r.Body)
	if httpCode >= 400 {
		log.WithError(err).WithField("bytes", bytesWritten).Warn("upload failed")
		msg := http.StatusText(httpCode)
		if err != nil {
			msg = msg + ": " + err.Error()
		}
		http.Error(w, msg, httpCode)
		return
	}
	log.WithField("bytes", bytesWritten).Info("file uploaded")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(msgUploaded)))
	w.WriteHeader(httpCode)
	io.WriteString(w, msgUploaded)
}

// isUploadTarget is true if the last path segment starts with the marker.
// The path need not exist.
func (h *Handler) isUploadTarget(urlPath string) bool {
	if strings.HasSuffix(urlPath, "/") { // has no basename, as with any directory
		return false
	}
	return strings.HasPrefix(path.Base(path.Clean("/"+urlPath)), h.Config.Marker)
}

func (h *Handler) notImplemented(w http.ResponseWriter, r *http.Request) {
	h.Logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Info("unsupported method")

	code := http.StatusNotImplemented
	http.Error(w, fmt.Sprintf("Unsupported method (%q) on %s", r.Method, r.URL.Path), code)
}

// WriteOneHTTPBlob adapts WriteFileFromReader to HTTP conventions by translating input formats and output values.
//
// 'anticipatedSize' is the number of bytes to be read from 'r'. Negative means unknown, which is treated as zero.
func (h *Handler) WriteOneHTTPBlob(filename string, anticipatedSize int64, r io.Reader) (int64, int, error) {
	if anticipatedSize < 0 {
		anticipatedSize = 0
	}
	if h.Config.MaxFilesize > 0 && uint64(anticipatedSize) > h.Config.MaxFilesize {
		return 0, http.StatusRequestEntityTooLarge, errors.Errorf("%d bytes exceed the limit", anticipatedSize)
	}
	if h.Config.StrictFilenames {
		if err := h.checkFilename(filename); err != nil {
			return 0, http.StatusUnprocessableEntity, err
		}
	}

	bytesWritten, err := WriteFileFromReader(h.Config.uploadDestination(filename), r, anticipatedSize)
	if err != nil {
		switch errors.Cause(err) {
		case io.EOF, io.ErrUnexpectedEOF: // the client sent less than it announced
			return bytesWritten, http.StatusBadRequest, err
		}
		return bytesWritten, http.StatusInternalServerError, err
	}
	return bytesWritten, http.StatusOK, nil
}

// WriteFileFromReader writes exactly 'size' bytes from 'r' to a file.
//
// The file is truncated if it exists, else created. It is visible under its name
// from the start, so a failure leaves a partially written file behind.
func WriteFileFromReader(filename string, r io.Reader, size int64) (int64, error) {
	fd, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}

	n, err := io.CopyN(fd, r, size)
	if err != nil {
		fd.Close()
		return n, errors.Wrapf(err, "after %d of %d bytes", n, size)
	}
	return n, fd.Close()
}
