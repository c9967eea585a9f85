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
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingGlobalHeader(t *testing.T) {
	for _, input := range []string{"", "!<ar"} {
		_, err := NewReader(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrMissingGlobalHeader)
	}
}

func TestInvalidGlobalHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("not an archive at all"))
	assert.ErrorIs(t, err, ErrInvalidGlobalHeader)
}

func TestReadHeader(t *testing.T) {
	archive := GLOBAL_HEADER +
		memberHeader("hello.txt", "1361157466", "501", "20", "644", "13") +
		"Hello world!\n" + "\n"

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	hdr, err := reader.Next()
	require.NoError(t, err)

	assert.Equal(t, "hello.txt", string(hdr.Identifier()))
	assert.Equal(t, uint64(1361157466), hdr.ModTime())
	assert.Equal(t, uint32(501), hdr.Uid())
	assert.Equal(t, uint32(20), hdr.Gid())
	assert.Equal(t, uint32(0644), hdr.Mode())
	assert.Equal(t, uint64(13), hdr.Size())

	var body bytes.Buffer
	_, err = io.Copy(&body, reader)
	require.NoError(t, err)
	assert.Equal(t, "Hello world!\n", body.String())

	hdr, err = reader.Next()
	assert.Nil(t, hdr)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadSlashTerminatedName(t *testing.T) {
	// GNU ar terminates inline names with a slash; it gets stripped.
	archive := GLOBAL_HEADER +
		memberHeader("hello.txt/", "0", "0", "0", "644", "2") + "ok"

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	hdr, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", string(hdr.Identifier()))
}

func TestSymbolTableSkipped(t *testing.T) {
	archive := GLOBAL_HEADER +
		memberHeader("/", "0", "0", "0", "0", "4") + "\x00\x00\x00\x00" +
		memberHeader("a.o", "0", "0", "0", "644", "1") + "x\n"

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	hdr, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "a.o", string(hdr.Identifier()))
}

func TestLongNameResolution(t *testing.T) {
	name := "test_long_filename.txt"
	table := name + "/\n"
	archive := GLOBAL_HEADER +
		memberHeader("//", "0", "0", "0", "0", "24") + table +
		memberHeader("/0", "0", "0", "0", "644", "1") + "x\n"

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	hdr, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, name, string(hdr.Identifier()))
}

func TestMissingStringTable(t *testing.T) {
	archive := GLOBAL_HEADER +
		memberHeader("/0", "0", "0", "0", "644", "1") + "x\n"

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	_, err = reader.Next()
	var fileName *ErrFileName
	require.ErrorAs(t, err, &fileName)
	assert.Contains(t, err.Error(), "missing string table")
}

func TestMultipleStringTables(t *testing.T) {
	table := memberHeader("//", "0", "0", "0", "0", "6") + "a.txt\n"
	archive := GLOBAL_HEADER + table + table

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	_, err = reader.Next()
	var stringTable *ErrStringTable
	require.ErrorAs(t, err, &stringTable)
	assert.Contains(t, err.Error(), "multiple string tables")
}

func TestInvalidStringTableOffset(t *testing.T) {
	archive := GLOBAL_HEADER +
		memberHeader("//", "0", "0", "0", "0", "6") + "a.txt\n" +
		memberHeader("/99", "0", "0", "0", "644", "1") + "x\n"

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	_, err = reader.Next()
	var fileName *ErrFileName
	require.ErrorAs(t, err, &fileName)
	assert.Contains(t, err.Error(), "invalid string table offset")
}

func TestStringTableMissingNewline(t *testing.T) {
	archive := GLOBAL_HEADER +
		memberHeader("//", "0", "0", "0", "0", "6") + "abcdef" +
		memberHeader("/0", "0", "0", "0", "644", "1") + "x\n"

	reader, err := NewReader(strings.NewReader(archive))
	require.NoError(t, err)
	_, err = reader.Next()
	var stringTable *ErrStringTable
	require.ErrorAs(t, err, &stringTable)
	assert.Contains(t, err.Error(), "missing trailing newline")
}
