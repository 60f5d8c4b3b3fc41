// Package unicodecodec implements JET4's "compressed" UCS-2 text encoding
// and the final text-to-string conversions for both JET versions.
//
// JET4 stores predominantly-ASCII text in roughly half the space of plain
// UTF-16 by emitting single bytes with an implicit 0x00 high byte, toggling
// between compressed and verbatim runs on an in-stream 0x00 marker. This
// bespoke scheme has no off-the-shelf decoder; everything else — decoding
// the expanded UTF-16LE bytes, or JET3's cp1252 text — defers to
// golang.org/x/text rather than hand-rolled byte munging.
package unicodecodec

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// CompressedPrefix marks a JET4 Text/Memo value as using the compressed
// UCS-2 scheme.
var CompressedPrefix = [2]byte{0xFF, 0xFE}

// Decompress expands a JET4 compressed-UCS-2 byte stream (without its
// 0xFF 0xFE prefix) into plain UTF-16LE bytes.
//
// Compression starts "on". A 0x00 byte toggles the flag and is not itself
// emitted. While "on", each remaining byte expands to two bytes (itself,
// then 0x00). While "off", two verbatim bytes are copied through. Decoding
// stops when the input is exhausted, or when only one byte remains while
// "off"; that lone byte is dropped.
func Decompress(src []byte) []byte {
	dst := make([]byte, 0, 2*len(src))
	compressed := true
	i := 0
	for i < len(src) {
		b := src[i]
		if b == 0x00 {
			compressed = !compressed
			i++
			continue
		}
		if compressed {
			dst = append(dst, b, 0x00)
			i++
			continue
		}
		if i+2 > len(src) {
			break
		}
		dst = append(dst, src[i], src[i+1])
		i += 2
	}
	return dst
}

// DecodeUTF16LE turns raw UTF-16LE bytes into a Go string.
func DecodeUTF16LE(b []byte) (string, error) {
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// DecodeJET4Text decodes a JET4 Text/Memo column's raw bytes: if the value
// starts with the compressed-UCS-2 marker, it is decompressed first;
// otherwise the bytes are already plain UTF-16LE.
func DecodeJET4Text(b []byte) (string, error) {
	if len(b) >= 2 && b[0] == CompressedPrefix[0] && b[1] == CompressedPrefix[1] {
		return DecodeUTF16LE(Decompress(b[2:]))
	}
	return DecodeUTF16LE(b)
}

// DecodeLatin1 decodes JET3 text (an explicit cp1252 approximation of
// latin1, per the source this format was distilled from) into a Go string.
// Callers needing a different single-byte code page can call
// golang.org/x/text/encoding/charmap directly; this is the default.
func DecodeLatin1(b []byte) (string, error) {
	return DecodeWith(charmap.Windows1252, b)
}

// DecodeWith decodes b with a caller-supplied single-byte or multi-byte
// encoding, for callers overriding the JET3 Text default.
func DecodeWith(enc encoding.Encoding, b []byte) (string, error) {
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
