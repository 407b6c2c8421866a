// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !openbsd

package upload

// Confine restricts the process to reading 'served' and writing to 'writeTo'.
//
// Is a nop on this operating system.
func Confine(served, writeTo string) error {
	return nil
}
