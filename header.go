package ar

import (
	"strconv"
)

// Header represents the metadata of one archive member. The zero-width
// constraints of the on-wire format (each numeric field occupies a fixed
// number of ASCII columns) are not enforced by the setters; call Validate
// before serializing.
type Header struct {
	identifier []byte
	modTime    uint64
	uid        uint32
	gid        uint32
	mode       uint32
	size       uint64
}

// NewHeader creates a header with the given member identifier and size. All
// other fields are zero except the mode, which defaults to 0644.
func NewHeader(identifier []byte, size uint64) *Header {
	return &Header{
		identifier: identifier,
		mode:       0644,
		size:       size,
	}
}

// Identifier returns the member identifier.
func (h *Header) Identifier() []byte {
	return h.identifier
}

// Size returns the length of the member's data section, in bytes.
func (h *Header) Size() uint64 {
	return h.size
}

// ModTime returns the modification time, in seconds since the Unix epoch.
func (h *Header) ModTime() uint64 {
	return h.modTime
}

// SetModTime sets the modification time, in seconds since the Unix epoch.
func (h *Header) SetModTime(modTime uint64) {
	h.modTime = modTime
}

// Uid returns the ID of the member's owning user.
func (h *Header) Uid() uint32 {
	return h.uid
}

// SetUid sets the ID of the member's owning user.
func (h *Header) SetUid(uid uint32) {
	h.uid = uid
}

// Gid returns the ID of the member's owning group.
func (h *Header) Gid() uint32 {
	return h.gid
}

// SetGid sets the ID of the member's owning group.
func (h *Header) SetGid(gid uint32) {
	h.gid = gid
}

// Mode returns the member's mode bits.
func (h *Header) Mode() uint32 {
	return h.mode
}

// SetMode sets the member's mode bits.
func (h *Header) SetMode(mode uint32) {
	h.mode = mode
}

// Validate checks that each numeric field fits the fixed column width its
// on-wire encoding allows. A value needing more printed digits than its field
// holds can never be represented without corrupting the fixed-offset layout,
// so it is rejected here rather than truncated at write time.
func (h *Header) Validate() error {
	if numDigits(h.modTime, 10) > 12 {
		return &ErrFieldOverflow{Field: "mtime", Value: strconv.FormatUint(h.modTime, 10), Digits: 12}
	}
	if numDigits(uint64(h.uid), 10) > 6 {
		return &ErrFieldOverflow{Field: "uid", Value: strconv.FormatUint(uint64(h.uid), 10), Digits: 6}
	}
	if numDigits(uint64(h.gid), 10) > 6 {
		return &ErrFieldOverflow{Field: "gid", Value: strconv.FormatUint(uint64(h.gid), 10), Digits: 6}
	}
	if numDigits(uint64(h.mode), 8) > 8 {
		return &ErrFieldOverflow{Field: "mode", Value: strconv.FormatUint(uint64(h.mode), 8), Digits: 8}
	}
	return nil
}

// marshal serializes the header into its 60-byte on-wire form. wireName is
// the resolved name field contents: the identifier itself for inline names,
// or a "/<offset>" name table reference. Marshalling is pure; it fails rather
// than truncate if any field overflows its column width.
func (h *Header) marshal(wireName string) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if len(wireName) > MAX_INLINE_NAME_LEN {
		return nil, &ErrFieldOverflow{Field: "name", Value: wireName, Digits: MAX_INLINE_NAME_LEN}
	}
	size := strconv.FormatUint(h.size, 10)
	if len(size) > 10 {
		return nil, &ErrFieldOverflow{Field: "size", Value: size, Digits: 10}
	}

	header := make([]byte, HEADER_BYTE_SIZE)
	s := slicer(header)
	putString(s.next(16), wireName)
	putString(s.next(12), strconv.FormatUint(h.modTime, 10))
	putString(s.next(6), strconv.FormatUint(uint64(h.uid), 10))
	putString(s.next(6), strconv.FormatUint(uint64(h.gid), 10))
	putString(s.next(8), strconv.FormatUint(uint64(h.mode), 8))
	putString(s.next(10), size)
	putString(s.next(2), "`\n")
	return header, nil
}

// numDigits counts the printed digits of val in the given radix. Zero counts
// as one digit.
func numDigits(val uint64, radix uint64) int {
	if val == 0 {
		return 1
	}
	digits := 0
	for val != 0 {
		val /= radix
		digits++
	}
	return digits
}
