// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Errors returned by Confine.
const (
	errUnveil       unveilError = "call 'unveil' failed"
	errUnveilE2BIG  unveilError = "call 'unveil' failed: per-process limit reached"
	errUnveilENOENT unveilError = "call 'unveil' failed: path does not exist"
	errUnveilEINVAL unveilError = "call 'unveil' failed: invalid value for 'permissions'"
	errUnveilEPERM  unveilError = "call 'unveil' failed: called after locking"
)

type unveilError string

func (e unveilError) Error() string { return string(e) }

func translateUnveilErrorCode(err error) error {
	switch err {
	case nil:
		return nil
	case syscall.E2BIG:
		return errUnveilE2BIG
	case syscall.ENOENT:
		return errUnveilENOENT
	case syscall.EINVAL:
		return errUnveilEINVAL
	case syscall.EPERM:
		return errUnveilEPERM
	}
	return errors.Wrap(err, string(errUnveil))
}

// Confine restricts the process to reading 'served' and writing to 'writeTo'.
//
// Uploads with names that point elsewhere will fail afterwards.
// Call this last, once all other files have been opened.
func Confine(served, writeTo string) error {
	if err := unix.Unveil(served, "r"); err != nil {
		return errors.Wrap(translateUnveilErrorCode(err), served)
	}
	if err := unix.Unveil(writeTo, "rwc"); err != nil {
		return errors.Wrap(translateUnveilErrorCode(err), writeTo)
	}
	return translateUnveilErrorCode(unix.UnveilBlock())
}
