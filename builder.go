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
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// GnuBuilder writes a GNU-format ar archive to an underlying io.Writer.
//
// The builder is two-phase: the complete set of member identifiers (and the
// symbol table, if one is wanted) is committed at construction, because the
// extended name table must be written before any member that references it.
// Bodies are then supplied one member at a time via Append.
//
// Example:
//
//     builder := ar.NewGnuBuilder(w, [][]byte{[]byte("hello.txt")})
//     hdr := ar.NewHeader([]byte("hello.txt"), uint64(len(body)))
//     if err := builder.Append(hdr, bytes.NewReader(body)); err != nil {
//         return err
//     }
//     if err := builder.Close(); err != nil {
//         return err
//     }
//
// The builder owns the writer for its lifetime; no other writes may be
// interleaved. On any error the bytes already written do not form a valid
// archive and the destination should be discarded.
type GnuBuilder struct {
	// w is the underlying io.Writer to which the archive file is written.
	w io.Writer

	// longNames maps member identifiers that are too long for the inline name
	// field to the byte offset of their entry within nameTable.
	longNames map[string]int

	// nameTable is the data section of the extended name table member ("//"),
	// built up front from the identifiers given at construction.
	nameTable []byte

	// symbols maps member identifiers to the symbol names they define. It is
	// nil unless a symbol table was requested at construction.
	symbols map[string][]string

	// members holds the buffered members when a symbol table was requested:
	// the symbol table maps symbols to member header offsets, which are only
	// known once every member's size is, so the archive is emitted on Close.
	members []gnuMember

	// started is true once the global header (and name table, if any) have
	// been written to the underlying io.Writer.
	started bool

	// closed is true if Close has been called on this builder.
	closed bool
}

type gnuMember struct {
	name   string
	header []byte
	body   []byte
}

// NewGnuBuilder creates a builder that streams an archive to w. identifiers
// must contain every member identifier that will later be passed to Append
// and is longer than 16 bytes; shorter identifiers need no registration.
func NewGnuBuilder(w io.Writer, identifiers [][]byte) *GnuBuilder {
	b := &GnuBuilder{
		w:         w,
		longNames: map[string]int{},
	}
	for _, identifier := range identifiers {
		if len(identifier) <= MAX_INLINE_NAME_LEN {
			continue
		}
		if _, present := b.longNames[string(identifier)]; present {
			continue
		}
		// GNU name table entries are the literal name terminated by "/\n".
		b.longNames[string(identifier)] = len(b.nameTable)
		b.nameTable = append(b.nameTable, identifier...)
		b.nameTable = append(b.nameTable, '/', '\n')
	}
	return b
}

// NewGnuBuilderWithSymbolTable creates a builder that additionally writes a
// GNU symbol lookup table ("/") ahead of the name table and members. symbols
// maps a member identifier to the symbol names that member defines; symbol
// names are opaque to the builder. Because the table stores the file offset
// of each defining member's header, the builder buffers members in memory and
// writes the whole archive on Close.
func NewGnuBuilderWithSymbolTable(w io.Writer, identifiers [][]byte, symbols map[string][]string) *GnuBuilder {
	b := NewGnuBuilder(w, identifiers)
	if symbols == nil {
		symbols = map[string][]string{}
	}
	b.symbols = symbols
	return b
}

// Append validates hdr, serializes it and writes the member's data section,
// padded with one newline byte if its length is odd so that the next header
// starts at an even offset. body must yield exactly hdr.Size() bytes.
//
// An identifier longer than 16 bytes that was not given to the constructor
// fails with *ErrNameTableRequired before anything reaches the writer.
func (b *GnuBuilder) Append(hdr *Header, body io.Reader) error {
	if b.closed {
		return ErrBuilderClosed
	}
	name := string(hdr.Identifier())
	wireName := name
	if len(name) > MAX_INLINE_NAME_LEN {
		offset, present := b.longNames[name]
		if !present {
			return &ErrNameTableRequired{Name: name}
		}
		wireName = "/" + strconv.Itoa(offset)
	}
	header, err := hdr.marshal(wireName)
	if err != nil {
		return err
	}

	if b.symbols != nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("ar: read member body: %w", err)
		}
		if uint64(len(data)) != hdr.Size() {
			return &ErrBodySize{Name: name, Want: hdr.Size(), Got: uint64(len(data))}
		}
		b.members = append(b.members, gnuMember{name: name, header: header, body: data})
		return nil
	}

	if err := b.start(); err != nil {
		return err
	}
	if _, err := b.w.Write(header); err != nil {
		return fmt.Errorf("ar: write member header: %w", err)
	}
	n, err := io.Copy(b.w, body)
	if err != nil {
		return fmt.Errorf("ar: write member body: %w", err)
	}
	if uint64(n) != hdr.Size() {
		return &ErrBodySize{Name: name, Want: hdr.Size(), Got: uint64(n)}
	}
	return b.pad(n)
}

// Close finishes the archive. In streaming mode it ensures a valid global
// header (and name table) have been written even if the archive contains no
// members; with a symbol table it writes the entire buffered archive. It does
// not close the underlying io.Writer.
func (b *GnuBuilder) Close() error {
	if b.closed {
		return ErrBuilderClosed
	}
	b.closed = true
	if b.symbols == nil {
		return b.start()
	}

	if err := b.start(); err != nil {
		return err
	}
	for _, m := range b.members {
		if _, err := b.w.Write(m.header); err != nil {
			return fmt.Errorf("ar: write member header: %w", err)
		}
		if _, err := b.w.Write(m.body); err != nil {
			return fmt.Errorf("ar: write member body: %w", err)
		}
		if err := b.pad(int64(len(m.body))); err != nil {
			return err
		}
	}
	return nil
}

// start writes everything that must precede the first regular member: the
// global magic, then the symbol table (if requested), then the name table (if
// non-empty). This happens lazily on the first Append in streaming mode, and
// on Close when a symbol table is in play.
func (b *GnuBuilder) start() error {
	if b.started {
		return nil
	}
	b.started = true
	if _, err := io.WriteString(b.w, GLOBAL_HEADER); err != nil {
		return fmt.Errorf("ar: write global header: %w", err)
	}
	if b.symbols != nil {
		blob, err := b.symbolTable()
		if err != nil {
			return err
		}
		if err := b.writeTable(SYMBOL_TABLE_ID, blob); err != nil {
			return err
		}
	}
	if len(b.nameTable) > 0 {
		if err := b.writeTable(NAME_TABLE_ID, b.nameTable); err != nil {
			return err
		}
	}
	return nil
}

// writeTable writes one of the reserved table members. Table headers have
// mtime, uid, gid and mode all zero, and the table body pads to an even
// length like any other member.
func (b *GnuBuilder) writeTable(id string, blob []byte) error {
	hdr := &Header{identifier: []byte(id), size: uint64(len(blob))}
	header, err := hdr.marshal(id)
	if err != nil {
		return err
	}
	if _, err := b.w.Write(header); err != nil {
		return fmt.Errorf("ar: write table header: %w", err)
	}
	if _, err := b.w.Write(blob); err != nil {
		return fmt.Errorf("ar: write table: %w", err)
	}
	return b.pad(int64(len(blob)))
}

// symbolTable serializes the GNU symbol lookup table: a big-endian uint32
// symbol count, one big-endian uint32 per symbol holding the absolute file
// offset of the defining member's header, then the symbol names as
// NUL-terminated strings. Symbols appear in member order.
func (b *GnuBuilder) symbolTable() ([]byte, error) {
	count := 0
	namesLen := 0
	for _, m := range b.members {
		for _, sym := range b.symbols[m.name] {
			count++
			namesLen += len(sym) + 1
		}
	}
	size := 4 + 4*count + namesLen

	// The first member sits after the magic, the symbol table member itself
	// and the name table member (when present), each padded to even length.
	offset := len(GLOBAL_HEADER) + HEADER_BYTE_SIZE + size + size%2
	if len(b.nameTable) > 0 {
		offset += HEADER_BYTE_SIZE + len(b.nameTable) + len(b.nameTable)%2
	}

	blob := make([]byte, 4, size)
	binary.BigEndian.PutUint32(blob, uint32(count))
	for _, m := range b.members {
		for range b.symbols[m.name] {
			if offset > math.MaxUint32 {
				return nil, fmt.Errorf("ar: symbol table: member offset %d exceeds 32 bits", offset)
			}
			blob = binary.BigEndian.AppendUint32(blob, uint32(offset))
		}
		offset += HEADER_BYTE_SIZE + len(m.body) + len(m.body)%2
	}
	for _, m := range b.members {
		for _, sym := range b.symbols[m.name] {
			blob = append(blob, sym...)
			blob = append(blob, 0)
		}
	}
	return blob, nil
}

// pad writes the single newline that follows a data section of odd length.
func (b *GnuBuilder) pad(size int64) error {
	if size%2 == 0 {
		return nil
	}
	if _, err := b.w.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("ar: write padding: %w", err)
	}
	return nil
}
