package tdef_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/tdef"
)

type builder struct{ bytes.Buffer }

func (b *builder) u8(v uint8)   { b.WriteByte(v) }
func (b *builder) u16(v uint16) { binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *builder) u32(v uint32) { binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *builder) skip(n int)   { b.Write(make([]byte, n)) }
func (b *builder) raw(p []byte) { b.Write(p) }

// buildJET4Tdef constructs a minimal, single-page JET4 tdef page with two
// columns: an Int ("A") and a Text column ("B"), numRealIdx=0.
func buildJET4Tdef(t *testing.T) []byte {
	t.Helper()
	var b builder

	b.u8(0x02)     // page code
	b.u8(0)        // skip
	b.u16(0)       // freeSpaceInPage
	b.u32(0)       // nextPage
	b.u32(0)       // tdefLen (unchecked by decoder)

	b.skip(4)        // body leading skip
	b.u32(7)         // numRows
	b.u32(0)         // autoNumber
	b.u8(0)          // autoNumberFlag
	b.skip(3)        // skip
	b.u32(0)         // autoNumberValue
	b.skip(8)        // skip
	b.u8(1)          // tableType
	b.u16(2)         // maxCols
	b.u16(1)         // numVarCols
	b.u16(2)         // numCols
	b.u32(0)         // numIdx
	b.u32(0)         // numRealIdx
	b.u8(0)          // usedPagesRow
	b.raw([]byte{9, 0, 0}) // usedPagesMapPage = 9 (u24)
	b.u32(0)         // freePagesCount

	// column descriptor 0: Int, fixed, number=0
	b.u8(3)    // type = Int
	b.skip(4)  // skip
	b.u16(0)   // number
	b.u16(0)   // offsetV
	b.u16(0)   // num (unused)
	b.u16(0)   // misc
	b.u16(0)   // miscExt
	b.u8(1)    // bitmask: fixed
	b.u8(0)    // miscFlags
	b.skip(4)  // skip
	b.u16(0)   // offsetF
	b.u16(2)   // length

	// column descriptor 1: Text, variable, number=1
	b.u8(10)   // type = Text
	b.skip(4)  // skip
	b.u16(1)   // number
	b.u16(0)   // offsetV
	b.u16(0)   // num (unused)
	b.u16(0)   // misc
	b.u16(0)   // miscExt
	b.u8(0)    // bitmask: variable
	b.u8(0)    // miscFlags
	b.skip(4)  // skip
	b.u16(0)   // offsetF
	b.u16(0)   // length

	// column names (u16 length + UTF-16LE bytes)
	writeName := func(name string) {
		u16s := utf16Encode(name)
		b.u16(uint16(len(u16s)))
		b.raw(u16s)
	}
	writeName("A")
	writeName("B")

	page := make([]byte, leformat.JET4.PageSize())
	copy(page, b.Bytes())
	return page
}

func utf16Encode(s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, byte(r), 0x00)
	}
	return out
}

func TestDecodeJET4NoOverflow(t *testing.T) {
	page := buildJET4Tdef(t)
	td, err := tdef.Decode(leformat.JET4, page, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, td.NumRows)
	assert.EqualValues(t, 2, td.NumCols)
	assert.EqualValues(t, 1, td.NumVarCols)
	assert.EqualValues(t, 9, td.UsedPagesMapPage)
	assert.Equal(t, []string{"A", "B"}, td.ColNames)
	assert.True(t, td.Cols[0].IsFixedLength())
	assert.False(t, td.Cols[1].IsFixedLength())
	assert.Equal(t, 0, td.ColumnByName("A"))
	assert.Equal(t, 1, td.ColumnByName("B"))
	assert.Equal(t, -1, td.ColumnByName("missing"))
}

func TestDecodeRejectsWrongPageCode(t *testing.T) {
	page := make([]byte, leformat.JET4.PageSize())
	page[0] = 0x01
	_, err := tdef.Decode(leformat.JET4, page, nil)
	require.Error(t, err)
	var me *tdef.MalformedTdefError
	require.ErrorAs(t, err, &me)
}

// buildJET4TdefSpanningOverflow constructs a JET4 tdef whose second column's
// name is long enough that its trailing bytes fall past the first page's
// boundary, landing entirely inside the overflow page's payload. It returns
// the first-page bytes (truncated to exactly one page) and the overflow
// page's payload (the bytes that belong at overflow[8:]).
func buildJET4TdefSpanningOverflow(t *testing.T) (page []byte, overflowPayload []byte, longName string) {
	t.Helper()
	var b builder

	b.u8(0x02) // page code
	b.u8(0)    // skip
	b.u16(0)   // freeSpaceInPage
	b.u32(5)   // nextPage
	b.u32(0)   // tdefLen (unchecked by decoder)

	b.skip(4)              // body leading skip
	b.u32(7)                // numRows
	b.u32(0)                // autoNumber
	b.u8(0)                 // autoNumberFlag
	b.skip(3)               // skip
	b.u32(0)                // autoNumberValue
	b.skip(8)                // skip
	b.u8(1)                  // tableType
	b.u16(2)                 // maxCols
	b.u16(1)                 // numVarCols
	b.u16(2)                 // numCols
	b.u32(0)                 // numIdx
	b.u32(0)                 // numRealIdx
	b.u8(0)                  // usedPagesRow
	b.raw([]byte{9, 0, 0})   // usedPagesMapPage = 9 (u24)
	b.u32(0)                 // freePagesCount

	// column descriptor 0: Int, fixed, number=0
	b.u8(3)   // type = Int
	b.skip(4) // skip
	b.u16(0)  // number
	b.u16(0)  // offsetV
	b.u16(0)  // num (unused)
	b.u16(0)  // misc
	b.u16(0)  // miscExt
	b.u8(1)   // bitmask: fixed
	b.u8(0)   // miscFlags
	b.skip(4) // skip
	b.u16(0)  // offsetF
	b.u16(2)  // length

	// column descriptor 1: Text, variable, number=1
	b.u8(10)  // type = Text
	b.skip(4) // skip
	b.u16(1)  // number
	b.u16(0)  // offsetV
	b.u16(0)  // num (unused)
	b.u16(0)  // misc
	b.u16(0)  // miscExt
	b.u8(0)   // bitmask: variable
	b.u8(0)   // miscFlags
	b.skip(4) // skip
	b.u16(0)  // offsetF
	b.u16(0)  // length

	writeName := func(name string) {
		u16s := utf16Encode(name)
		b.u16(uint16(len(u16s)))
		b.raw(u16s)
	}
	writeName("A")

	// Long enough that its UTF-16LE bytes alone exceed a page, so the name
	// is guaranteed to straddle the page/overflow boundary regardless of
	// exactly where the header and first column land.
	longName = strings.Repeat("x", 3999) + "Z"
	writeName(longName)

	full := b.Bytes()
	pageSize := leformat.JET4.PageSize()
	require.Greater(t, len(full), pageSize, "fixture must spill into the overflow page")

	page = append([]byte{}, full[:pageSize]...)
	overflowPayload = append([]byte{}, full[pageSize:]...)
	return page, overflowPayload, longName
}

func TestDecodeJET4Overflow(t *testing.T) {
	page, overflowPayload, longName := buildJET4TdefSpanningOverflow(t)

	overflow := make([]byte, leformat.JET4.PageSize())
	require.LessOrEqual(t, 8+len(overflowPayload), len(overflow))
	copy(overflow[8:], overflowPayload)

	fetch := func(idx uint32) ([]byte, error) {
		require.EqualValues(t, 5, idx)
		return overflow, nil
	}

	td, err := tdef.Decode(leformat.JET4, page, fetch)
	require.NoError(t, err)

	// Both columns, and the second column's full name (whose tail lived
	// only in the overflow page), must have been reconstructed from the
	// concatenated buffer.
	assert.EqualValues(t, 2, td.NumCols)
	require.Equal(t, []string{"A", longName}, td.ColNames)
	assert.True(t, strings.HasSuffix(td.ColNames[1], "xZ"))
	assert.Equal(t, 1, td.ColumnByName(longName))
}
