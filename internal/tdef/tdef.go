// Package tdef parses a JET table-definition ("tdef") page — possibly
// spanning one overflow page — into column descriptors, column names, the
// used-pages-map pointer, and the row count.
//
// Columns are kept in declaration order alongside a name-indexed map;
// fixed/variable-length membership is read from each descriptor's bitmask
// on demand.
package tdef

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/pager"
	"github.com/wilhasse/go-mdb/internal/unicodecodec"
)

// MalformedTdefError reports a structural assertion failure while decoding
// a tdef page: an unexpected page code, a missing "VC" literal, or an
// out-of-bounds field read.
type MalformedTdefError struct {
	Reason string
}

func (e *MalformedTdefError) Error() string {
	return fmt.Sprintf("tdef: malformed table definition: %s", e.Reason)
}

func malformed(format string, args ...interface{}) error {
	return &MalformedTdefError{Reason: fmt.Sprintf(format, args...)}
}

// ColumnDescriptor is one column's fixed layout metadata, independent of its
// name.
type ColumnDescriptor struct {
	Type        uint8
	Index       uint16 // ordinal used to address this column's null-mask bit
	OffsetFixed uint16
	OffsetVar   uint16 // index into a row's variable-length-offset table
	Length      uint16
	Bitmask     uint8
}

// IsFixedLength reports whether this column uses the fixed-length row
// layout (bitmask bit 0 set) rather than the variable-length one.
func (c ColumnDescriptor) IsFixedLength() bool {
	return c.Bitmask&0x01 == 1
}

// Tdef is one table's parsed definition: its column descriptors and names,
// row count, and the page pointer to its used-pages map.
type Tdef struct {
	NumRows          uint32
	NumCols          uint16
	NumVarCols       uint16
	NumRealIdx       uint32
	UsedPagesMapPage uint32
	Cols             []ColumnDescriptor
	ColNames         []string

	byName map[string]int
}

// ColumnByName returns the ordinal of the named column, or -1 if absent.
func (t *Tdef) ColumnByName(name string) int {
	if idx, ok := t.byName[name]; ok {
		return idx
	}
	return -1
}

func (t *Tdef) indexNames() {
	t.byName = make(map[string]int, len(t.ColNames))
	for i, n := range t.ColNames {
		t.byName[n] = i
	}
}

// Decode parses the tdef page at `page`, following at most one overflow
// continuation via fetch.
func Decode(version leformat.Version, page []byte, fetch pager.PageFetcher) (*Tdef, error) {
	code, err := leformat.U8(page, 0)
	if err != nil {
		return nil, malformed("reading page code: %v", err)
	}
	if code != leformat.PageCodeTdef {
		return nil, malformed("expected page code 0x02, got 0x%02x", code)
	}

	off := 2 // 1 byte code + 1 byte skip
	if version == leformat.JET3 {
		vc, err := leformat.Bytes(page, off, 2)
		if err != nil {
			return nil, malformed("reading VC literal: %v", err)
		}
		if string(vc) != "VC" {
			return nil, malformed(`expected "VC" literal, got %q`, vc)
		}
		off += 2
	} else {
		off += 2 // u16 freeSpaceInPage, unused
	}

	nextPage, err := leformat.U32(page, off)
	if err != nil {
		return nil, malformed("reading nextPage: %v", err)
	}
	off += 4
	off += 4 // u32 tdefLen, unused beyond bounds-checking done by slice reads

	buf := page
	if nextPage > 0 {
		if fetch == nil {
			return nil, malformed("tdef has overflow page %d but no fetcher was provided", nextPage)
		}
		overflow, err := fetch(nextPage)
		if err != nil {
			return nil, errors.Wrapf(err, "tdef: fetching overflow page %d", nextPage)
		}
		if len(overflow) < 8 {
			return nil, malformed("overflow page %d too short", nextPage)
		}
		buf = append(append([]byte{}, page...), overflow[8:]...)
	}

	td, err := decodeBody(version, buf, off)
	if err != nil {
		return nil, malformed("%v", err)
	}
	return td, nil
}

func decodeBody(version leformat.Version, buf []byte, off int) (*Tdef, error) {
	if version == leformat.JET4 {
		off += 4 // skip
	}

	numRows, err := leformat.U32(buf, off)
	if err != nil {
		return nil, errors.Wrap(err, "tdef: reading numRows")
	}
	off += 4
	off += 4 // u32 autoNumber, unused

	if version == leformat.JET4 {
		off += 1 // u8 autoNumberFlag
		off += 3 // skip
		off += 4 // u32 autoNumberValue
		off += 8 // skip
	}

	off += 1 // u8 tableType, unused
	off += 2 // u16 maxCols, unused

	numVarCols, err := leformat.U16(buf, off)
	if err != nil {
		return nil, errors.Wrap(err, "tdef: reading numVarCols")
	}
	off += 2

	numCols, err := leformat.U16(buf, off)
	if err != nil {
		return nil, errors.Wrap(err, "tdef: reading numCols")
	}
	off += 2

	off += 4 // u32 numIdx, unused

	numRealIdx, err := leformat.U32(buf, off)
	if err != nil {
		return nil, errors.Wrap(err, "tdef: reading numRealIdx")
	}
	off += 4

	off += 1 // u8 usedPagesRow, unused

	usedPagesMapPage, err := leformat.U24(buf, off)
	if err != nil {
		return nil, errors.Wrap(err, "tdef: reading usedPagesMapPage")
	}
	off += 3

	off += 4 // u32 freePagesCount, unused

	idxRecSize := 8
	if version == leformat.JET4 {
		idxRecSize = 12
	}
	off += idxRecSize * int(numRealIdx)

	cols := make([]ColumnDescriptor, numCols)
	for i := range cols {
		col, consumed, err := decodeColumnDescriptor(version, buf, off)
		if err != nil {
			return nil, errors.Wrapf(err, "tdef: reading column descriptor %d", i)
		}
		cols[i] = col
		off += consumed
	}

	names := make([]string, numCols)
	for i := range names {
		name, consumed, err := decodeColumnName(version, buf, off)
		if err != nil {
			return nil, errors.Wrapf(err, "tdef: reading column name %d", i)
		}
		names[i] = name
		off += consumed
	}

	t := &Tdef{
		NumRows:          numRows,
		NumCols:          numCols,
		NumVarCols:       numVarCols,
		NumRealIdx:       numRealIdx,
		UsedPagesMapPage: usedPagesMapPage,
		Cols:             cols,
		ColNames:         names,
	}
	t.indexNames()
	return t, nil
}

func decodeColumnDescriptor(version leformat.Version, buf []byte, off int) (ColumnDescriptor, int, error) {
	start := off

	typ, err := leformat.U8(buf, off)
	if err != nil {
		return ColumnDescriptor{}, 0, err
	}
	off += 1

	if version == leformat.JET4 {
		off += 4 // skip
	}

	number, err := leformat.U16(buf, off)
	if err != nil {
		return ColumnDescriptor{}, 0, err
	}
	off += 2

	offsetV, err := leformat.U16(buf, off)
	if err != nil {
		return ColumnDescriptor{}, 0, err
	}
	off += 2

	off += 2 // u16 num, unused

	if version == leformat.JET3 {
		off += 2 // u16 sortOrder, unused
	}

	off += 2 // u16 misc, unused
	off += 2 // u16 miscExt, unused

	bitmask, err := leformat.U8(buf, off)
	if err != nil {
		return ColumnDescriptor{}, 0, err
	}
	off += 1

	if version == leformat.JET4 {
		off += 1 // u8 miscFlags, unused
		off += 4 // skip
	}

	offsetF, err := leformat.U16(buf, off)
	if err != nil {
		return ColumnDescriptor{}, 0, err
	}
	off += 2

	length, err := leformat.U16(buf, off)
	if err != nil {
		return ColumnDescriptor{}, 0, err
	}
	off += 2

	return ColumnDescriptor{
		Type:        typ,
		Index:       number,
		OffsetFixed: offsetF,
		OffsetVar:   offsetV,
		Length:      length,
		Bitmask:     bitmask,
	}, off - start, nil
}

func decodeColumnName(version leformat.Version, buf []byte, off int) (string, int, error) {
	start := off
	if version == leformat.JET3 {
		length, err := leformat.U8(buf, off)
		if err != nil {
			return "", 0, err
		}
		off += 1
		raw, err := leformat.Bytes(buf, off, int(length))
		if err != nil {
			return "", 0, err
		}
		off += int(length)
		name, err := unicodecodec.DecodeLatin1(raw)
		if err != nil {
			return "", 0, err
		}
		return name, off - start, nil
	}

	length, err := leformat.U16(buf, off)
	if err != nil {
		return "", 0, err
	}
	off += 2
	raw, err := leformat.Bytes(buf, off, int(length))
	if err != nil {
		return "", 0, err
	}
	off += int(length)
	name, err := unicodecodec.DecodeUTF16LE(raw)
	if err != nil {
		return "", 0, err
	}
	return name, off - start, nil
}
