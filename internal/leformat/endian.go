// Package leformat provides the little-endian byte-reading utilities and
// shared file-format constants used across the JET page decoders. Every
// multi-byte integer in a JET database file is little-endian, unlike the
// big-endian wire formats common in other embedded stores.
package leformat

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrShortRead is returned whenever a decode step needs more bytes than a
// buffer has remaining.
var ErrShortRead = errors.New("leformat: short read")

func checkBounds(b []byte, off, n int) error {
	if off < 0 || off+n > len(b) {
		return errors.Wrapf(ErrShortRead, "need %d bytes at offset %d, have %d", n, off, len(b))
	}
	return nil
}

// U8 reads an unsigned 8-bit integer at off.
func U8(b []byte, off int) (uint8, error) {
	if err := checkBounds(b, off, 1); err != nil {
		return 0, err
	}
	return b[off], nil
}

// U16 reads an unsigned 16-bit little-endian integer at off.
func U16(b []byte, off int) (uint16, error) {
	if err := checkBounds(b, off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[off : off+2]), nil
}

// U32 reads an unsigned 32-bit little-endian integer at off.
func U32(b []byte, off int) (uint32, error) {
	if err := checkBounds(b, off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[off : off+4]), nil
}

// U64 reads an unsigned 64-bit little-endian integer at off.
func U64(b []byte, off int) (uint64, error) {
	if err := checkBounds(b, off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[off : off+8]), nil
}

// F64 reads an IEEE-754 64-bit little-endian float at off.
func F64(b []byte, off int) (float64, error) {
	bits, err := U64(b, off)
	if err != nil {
		return 0, err
	}
	return float64frombits(bits), nil
}

// U24 reads an unsigned 24-bit little-endian integer at off, as used for
// tdef page pointers.
func U24(b []byte, off int) (uint32, error) {
	if err := checkBounds(b, off, 3); err != nil {
		return 0, err
	}
	var buf [4]byte
	copy(buf[:3], b[off:off+3])
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Bytes returns a bounds-checked slice [off, off+n).
func Bytes(b []byte, off, n int) ([]byte, error) {
	if err := checkBounds(b, off, n); err != nil {
		return nil, err
	}
	return b[off : off+n], nil
}
