// Package wire implements the binary encoding shared by write records and
// DUMP/RESTORE payloads: a length-prefixed, type-tagged byte format that is
// independent of RESP (RESP frames carry these bytes as opaque Bulk payloads).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned when a buffer ends before a complete value can be read.
var ErrTruncated = errors.New("wire: truncated payload")

// ErrUnknownTag is returned when a tag byte does not match any known value kind.
var ErrUnknownTag = errors.New("wire: unknown tag byte")

// Tag bytes identify the encoded value kind. Stable across versions since
// RESTORE must accept DUMP output from the same implementation bit-for-bit.
const (
	TagNull      byte = 0
	TagStr       byte = 1
	TagBytes     byte = 2
	TagInt       byte = 3
	TagFloat     byte = 4
	TagDeque     byte = 5
	TagKvp       byte = 6
	TagSet       byte = 7
	TagSortedSet byte = 8
)

// PutFrame appends a 4-byte big-endian length prefix followed by payload to dst.
func PutFrame(dst []byte, payload []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, payload...)
	return dst
}

// ReadFrame reads one length-prefixed frame from buf, returning the payload
// and the number of bytes consumed. Returns ErrTruncated if buf does not yet
// hold a complete frame (the caller should wait for more bytes).
func ReadFrame(buf []byte) (payload []byte, consumed int, err error) {
	if len(buf) < 4 {
		return nil, 0, ErrTruncated
	}
	n := binary.BigEndian.Uint32(buf[:4])
	total := 4 + int(n)
	if len(buf) < total {
		return nil, 0, ErrTruncated
	}
	return buf[4:total], total, nil
}

// PutUint64 / PutInt64 / PutFloat64 append fixed-width big-endian encodings.
func PutUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func PutInt64(dst []byte, v int64) []byte {
	return PutUint64(dst, uint64(v))
}

func PutFloat64(dst []byte, v float64) []byte {
	return PutUint64(dst, math.Float64bits(v))
}

func ReadUint64(buf []byte) (uint64, int, error) {
	if len(buf) < 8 {
		return 0, 0, ErrTruncated
	}
	return binary.BigEndian.Uint64(buf[:8]), 8, nil
}

func ReadInt64(buf []byte) (int64, int, error) {
	u, n, err := ReadUint64(buf)
	return int64(u), n, err
}

func ReadFloat64(buf []byte) (float64, int, error) {
	u, n, err := ReadUint64(buf)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(u), n, nil
}

// PutBytes appends a 4-byte big-endian length followed by b.
func PutBytes(dst []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...)
}

func ReadBytes(buf []byte) ([]byte, int, error) {
	if len(buf) < 4 {
		return nil, 0, ErrTruncated
	}
	n := binary.BigEndian.Uint32(buf[:4])
	total := 4 + int(n)
	if len(buf) < total {
		return nil, 0, ErrTruncated
	}
	out := make([]byte, n)
	copy(out, buf[4:total])
	return out, total, nil
}

// PutUvarint appends buf with a standard Go unsigned varint encoding of v,
// used for element counts inside composite values.
func PutUvarint(dst []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(dst, tmp[:n]...)
}

func ReadUvarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: bad uvarint", ErrTruncated)
	}
	return v, n, nil
}
