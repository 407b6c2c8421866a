// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const (
	// AlwaysRejectRunes contains runes that are not safe to use with network shares.
	AlwaysRejectRunes = `"*:<>?|\`

	runeSpatium = '\u2009'

	errStrUnexpectedRange = "unexpected Unicode range at: "
)

// Returned by the strict filename checks, and ParseUnicodeBlockList.
var (
	ErrFilenameEmpty      = errors.New("the filename is empty")
	ErrFilenameSeparator  = errors.New("the filename must not contain a path separator")
	ErrFilenameDots       = errors.New("the filename must not be '.' or '..'")
	ErrFilenameUnexpected = errors.New("the filename contains unacceptable characters")

	errOutOfBounds = errors.New("value out of bounds")
)

// Not all runes in unicode.PrintRanges are suitable for filenames.
var excludedRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2028, Hi: 0x202f, Stride: 1}, // new line, paragraph etc.
		{Lo: 0xfff0, Hi: 0xffff, Stride: 1}, // specials, and invalid
	},
}

// checkFilename is what StrictFilenames enables.
// The name is taken as one path segment, not a path.
func (h *Handler) checkFilename(s string) error {
	switch {
	case s == "":
		return ErrFilenameEmpty
	case s == "." || s == "..":
		return ErrFilenameDots
	case strings.ContainsAny(s, `/\`):
		return ErrFilenameSeparator
	}
	if !IsAcceptableFilename(s, h.Config.RestrictFilenamesTo, h.Config.UnicodeForm) {
		return errors.Wrapf(ErrFilenameUnexpected, "%q", s)
	}
	return nil
}

// IsAcceptableFilename is used to enforce filenames in wanted alphabet(s).
// Setting 'reduceAcceptableRunesTo' reduces the supremum unicode.PrintRanges.
//
// A string with runes other than U+0020 (space) or U+2009 (spatium)
// representing space will be rejected.
func IsAcceptableFilename(s string, reduceAcceptableRunesTo []*unicode.RangeTable,
	enforceForm *norm.Form) bool {
	if enforceForm != nil && !enforceForm.IsNormalString(s) {
		return false
	}

	for _, r := range s {
		if reduceAcceptableRunesTo != nil && !unicode.In(r, reduceAcceptableRunesTo...) {
			return false
		}
		if r <= unicode.MaxLatin1 && strings.ContainsRune(AlwaysRejectRunes, r) {
			return false
		}
		if r == runeSpatium {
			continue
		}
		if unicode.Is(excludedRunes, r) || !unicode.IsPrint(r) { // IsPrint takes care of the "spaces"
			return false
		}
	}

	return true
}

// ParseUnicodeBlockList naïvely translates a string with space-delimited Unicode ranges to Go's unicode.RangeTable.
//
// All elements must fit into uint32.
// A Range must begin with its lower bound, and ranges must not overlap (this is not checked).
//
// The format of one range is as follows, with 'stride' being set to '1' if left empty.
//
//	<low>-<high>[:<stride>]
func ParseUnicodeBlockList(str string) (*unicode.RangeTable, error) {
	var (
		s          scanner.Scanner
		haveRanges [][3]uint64
	)
	s.Init(strings.NewReader(str))
	unexpected := func() error { return errors.New(errStrUnexpectedRange + s.Pos().String()) }
	hexAt := func(tok rune) (uint64, error) {
		if tok != scanner.Ident {
			return 0, unexpected()
		}
		v, err := strconv.ParseUint(strings.TrimLeft(s.TokenText(), "uU+x"), 16, 32)
		if err != nil {
			return 0, unexpected()
		}
		return v, nil
	}

	for tok := s.Scan(); tok != scanner.EOF; {
		low, err := hexAt(tok)
		if err != nil {
			return nil, err
		}
		if tok = s.Scan(); !(tok == '-' || tok == '–') {
			return nil, unexpected()
		}
		high, err := hexAt(s.Scan())
		if err != nil {
			return nil, err
		}

		stride := uint64(1)
		if tok = s.Scan(); tok == ':' {
			if s.Scan() != scanner.Int {
				return nil, unexpected()
			}
			if stride, err = strconv.ParseUint(s.TokenText(), 10, 32); err != nil {
				return nil, unexpected()
			}
			tok = s.Scan()
		}
		haveRanges = append(haveRanges, [3]uint64{low, high, stride})
	}

	sort.Slice(haveRanges, func(i, j int) bool {
		for n := range haveRanges[i] {
			if haveRanges[i][n] != haveRanges[j][n] {
				return haveRanges[i][n] < haveRanges[j][n]
			}
		}
		return false
	})

	// fold
	rt := unicode.RangeTable{}
	for _, r := range haveRanges {
		switch {
		case r[1] <= unicode.MaxLatin1:
			rt.LatinOffset++
			fallthrough
		case r[1] <= math.MaxUint16:
			rt.R16 = append(rt.R16, unicode.Range16{Lo: uint16(r[0]), Hi: uint16(r[1]), Stride: uint16(r[2])})
		case r[1] <= math.MaxUint32:
			rt.R32 = append(rt.R32, unicode.Range32{Lo: uint32(r[0]), Hi: uint32(r[1]), Stride: uint32(r[2])})
		default:
			return nil, errOutOfBounds
		}
	}

	return &rt, nil
}
