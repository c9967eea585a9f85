/*
Copyright (c) 2013 Blake Smith <blakesmith0@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package ar

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader provides sequential read access to a GNU-format ar archive. Call
// Next to advance to each member, then read its data section through Read.
//
// Example:
//
//     reader, err := ar.NewReader(f)
//     if err != nil {
//         return err
//     }
//     for {
//         hdr, err := reader.Next()
//         if errors.Is(err, io.EOF) {
//             break
//         }
//         if err != nil {
//             return err
//         }
//         io.Copy(&buf, reader)
//     }
type Reader struct {
	// r is the underlying archive file.
	r *bufio.Reader

	// nb is the number of bytes in the current data section that remain unread.
	nb uint64

	// pad is the number of padding bytes appended to the current data section; it is always
	// either 0 or 1, depending on whether the length of the data section is an even or odd
	// number of bytes respectively.
	pad uint64

	// stringTable is the archive's extended name table, the data section of the special "//"
	// member, which stores the names of members that are too long to fit in the header's
	// inline name field.
	stringTable []byte
}

// NewReader creates a new reader reading from r. It returns an error if the global archive
// header is missing or malformed.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{r: bufio.NewReader(r)}
	var hdr bytes.Buffer
	if _, err := io.CopyN(&hdr, rd.r, int64(len(GLOBAL_HEADER))); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingGlobalHeader
		}
		return nil, fmt.Errorf("ar: %w", err)
	}
	if hdr.String() != GLOBAL_HEADER {
		return nil, ErrInvalidGlobalHeader
	}
	return rd, nil
}

func (rd *Reader) skipUnread() error {
	skip := rd.nb + rd.pad
	rd.nb, rd.pad = 0, 0
	_, err := io.CopyN(io.Discard, rd.r, int64(skip))
	return err
}

// Next skips to the next member in the archive and returns its metadata. The
// symbol table and extended name table members are consumed transparently and
// never surfaced to the caller. io.EOF is returned at the end of the archive.
func (rd *Reader) Next() (*Header, error) {
	if err := rd.skipUnread(); err != nil {
		return nil, err
	}

	headerBuf := make([]byte, HEADER_BYTE_SIZE)
	if _, err := io.ReadFull(rd.r, headerBuf); err != nil {
		return nil, err
	}

	s := slicer(headerBuf)
	header := &Header{}
	name := parseString(s.next(16))
	header.modTime = parseUint(s.next(12), 10)
	header.uid = uint32(parseUint(s.next(6), 10))
	header.gid = uint32(parseUint(s.next(6), 10))
	header.mode = uint32(parseUint(s.next(8), 8))
	header.size = parseUint(s.next(10), 10)

	rd.nb = header.size
	rd.pad = header.size % 2

	switch name {
	// The special name "/" indicates that the data section contains a symbol table. It should
	// be invisible to the caller - skip over it.
	case SYMBOL_TABLE_ID:
		return rd.Next()
	// The special name "//" indicates that the data section contains the extended name table,
	// which holds the names of members that are too long to fit in the inline name field.
	// Store it, so we can resolve long names when we encounter them later.
	case NAME_TABLE_ID:
		if rd.stringTable != nil {
			return nil, &ErrStringTable{Err: errors.New("archive contains multiple string tables")}
		}
		buf := make([]byte, rd.nb)
		if _, err := io.ReadFull(rd.r, buf); err != nil {
			return nil, &ErrStringTable{Err: err}
		}
		rd.nb = 0
		rd.stringTable = buf
		return rd.Next()
	}

	resolved, err := rd.resolveName(name)
	if err != nil {
		return nil, err
	}
	header.identifier = []byte(resolved)
	return header, nil
}

// resolveName turns the raw 16-byte name field contents into the member's
// identifier, looking up "/<offset>" references in the extended name table.
func (rd *Reader) resolveName(name string) (string, error) {
	if len(name) == 0 {
		return "", &ErrFileName{Name: name, Err: errors.New("zero-length file name")}
	}
	if name[0] == '/' {
		if rd.stringTable == nil {
			return "", &ErrFileName{Name: name, Err: errors.New("missing string table")}
		}
		start, err := strconv.Atoi(name[1:])
		if err != nil || start < 0 || start >= len(rd.stringTable) {
			return "", &ErrFileName{Name: name, Err: errors.New("invalid string table offset")}
		}
		tableEntry := rd.stringTable[start:]
		end := bytes.IndexByte(tableEntry, '\n')
		if end == -1 {
			return "", &ErrStringTable{Err: errors.New("missing trailing newline")}
		}
		name = string(tableEntry[:end])
	}
	// GNU ar terminates names with "/" wherever they are stored; this library
	// writes inline names bare. Accept both.
	return strings.TrimSuffix(name, "/"), nil
}

// Read reads data from the current member's data section.
func (rd *Reader) Read(b []byte) (n int, err error) {
	if rd.nb == 0 {
		return 0, io.EOF
	}
	if uint64(len(b)) > rd.nb {
		b = b[0:rd.nb]
	}
	n, err = rd.r.Read(b)
	rd.nb -= uint64(n)
	return
}
