package value_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/value"
)

func TestDecodeNullShortCircuits(t *testing.T) {
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeLongInt, nil, true)
	require.NoError(t, err)
	assert.Equal(t, value.KindNull, v.Kind)
}

func TestDecodeBoolean(t *testing.T) {
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeBoolean, []byte{1}, false)
	require.NoError(t, err)
	assert.Equal(t, value.KindBool, v.Kind)
	assert.True(t, v.Bool)
}

func TestDecodeLongInt(t *testing.T) {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, 333333333)
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeLongInt, raw, false)
	require.NoError(t, err)
	assert.EqualValues(t, 333333333, v.LongInt)
}

func TestDecodeDouble(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, math.Float64bits(444.555))
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeDouble, raw, false)
	require.NoError(t, err)
	assert.InDelta(t, 444.555, v.Double, 0.0001)
}

func TestDecodeDateTimeRaw(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, 4673231456670056448)
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeDateTime, raw, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4673231456670056448, v.DateTimeRaw)
}

func TestDecodeUnknownTypeSentinel(t *testing.T) {
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(99, []byte{0}, false)
	require.NoError(t, err)
	assert.Equal(t, value.KindUnknown, v.Kind)
	assert.Equal(t, value.Unsupported, v.String)
}

func TestDecodeTextJET4Verbatim(t *testing.T) {
	raw := []byte("A\x00B\x00C\x00")
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeText, raw, false)
	require.NoError(t, err)
	assert.Equal(t, "ABC", v.String)
}

func TestDecodeTextJET3Latin1(t *testing.T) {
	raw := []byte("hello")
	d := value.New(leformat.JET3, nil)
	v, err := d.Decode(value.TypeText, raw, false)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.String)
}

func buildMemoRaw(mask byte, lenLow uint16, lenHigh byte, pointer uint32, tail []byte) []byte {
	raw := make([]byte, 12+len(tail))
	binary.LittleEndian.PutUint16(raw[0:], lenLow)
	raw[2] = lenHigh
	raw[3] = mask
	binary.LittleEndian.PutUint32(raw[4:], pointer)
	copy(raw[12:], tail)
	return raw
}

func TestDecodeMemoInline(t *testing.T) {
	text := []byte("A\x00B\x00")
	raw := buildMemoRaw(0x80, uint16(len(text)), 0, 0, text)
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeMemo, raw, false)
	require.NoError(t, err)
	assert.Equal(t, value.KindString, v.Kind)
	assert.Equal(t, "AB", v.String)
}

func TestDecodeMemoOutOfLine(t *testing.T) {
	memoPage := make([]byte, leformat.JET4.PageSize())
	memoPage[0] = 0x01
	binary.LittleEndian.PutUint32(memoPage[4:], 3)
	off := 12
	binary.LittleEndian.PutUint16(memoPage[off:], 1)
	off += 2
	text := []byte("H\x00i\x00")
	start := leformat.JET4.PageSize() - len(text)
	binary.LittleEndian.PutUint16(memoPage[off:], uint16(start))
	copy(memoPage[start:], text)

	pointer := uint32(7)<<8 | 0 // memoPage=7, memoRow=0
	raw := buildMemoRaw(0x40, 0, 0, pointer, nil)

	fetch := func(idx uint32) ([]byte, error) {
		require.EqualValues(t, 7, idx)
		return memoPage, nil
	}
	d := value.New(leformat.JET4, fetch)
	v, err := d.Decode(value.TypeMemo, raw, false)
	require.NoError(t, err)
	assert.Equal(t, "Hi", v.String)
}

func TestDecodeMemoUnimplementedLongLVAL(t *testing.T) {
	raw := buildMemoRaw(0x00, 0, 0, 0, nil)
	d := value.New(leformat.JET4, nil)
	v, err := d.Decode(value.TypeMemo, raw, false)
	require.NoError(t, err)
	assert.Equal(t, value.KindUnknown, v.Kind)
	assert.Equal(t, value.Unsupported, v.String)
}
