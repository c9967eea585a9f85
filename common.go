// Package ar encodes Unix ar archive files in the GNU variant of the format.
//
// An archive is a sequence of header/data pairs behind a fixed 8-byte magic.
// GnuBuilder writes archives, routing filenames longer than the format's
// 16-byte inline field through the GNU extended name table and optionally
// emitting a symbol lookup table. Reader provides sequential read access to
// GNU-format archives.
package ar

import (
	"strconv"
)

const (
	HEADER_BYTE_SIZE = 60
	GLOBAL_HEADER    = "!<arch>\n"

	// MAX_INLINE_NAME_LEN is the widest identifier that fits the header's
	// name field without going through the extended name table.
	MAX_INLINE_NAME_LEN = 16

	// NAME_TABLE_ID is the reserved identifier of the GNU extended name table.
	NAME_TABLE_ID = "//"

	// SYMBOL_TABLE_ID is the reserved identifier of the GNU symbol lookup table.
	SYMBOL_TABLE_ID = "/"
)

type slicer []byte

func (sp *slicer) next(n int) (b []byte) {
	s := *sp
	b, *sp = s[0:n], s[n:]
	return
}

// putString copies s into b, padding with trailing spaces. The caller must
// ensure s fits.
func putString(b []byte, s string) {
	copy(b, s)
	for i := len(s); i < len(b); i++ {
		b[i] = ' '
	}
}

// parseString trims the trailing space padding from a header field.
func parseString(b []byte) string {
	i := len(b) - 1
	for i > 0 && b[i] == ' ' {
		i--
	}
	return string(b[0 : i+1])
}

// parseUint parses a space-padded numeric header field in the given base.
// Malformed fields parse as zero, which is as lenient as ar readers generally
// are about them.
func parseUint(b []byte, base int) uint64 {
	i := len(b) - 1
	for i > 0 && b[i] == ' ' {
		i--
	}
	n, _ := strconv.ParseUint(string(b[0:i+1]), base, 64)
	return n
}
