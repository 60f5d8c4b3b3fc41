// Package rowslots decodes a data page's header and row-offset table —
// the part of a data page that can be parsed with no schema at all. This is
// split out of the full row decoder (internal/datapage) because the memo
// out-of-line ("LVAL") path needs to re-enter a data page purely to look up
// one slot's byte range, without a column list to decode against.
package rowslots

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wilhasse/go-mdb/internal/leformat"
)

// MalformedPageError reports that a buffer expected to be a data page does
// not start with the data-page code.
type MalformedPageError struct {
	Code byte
}

func (e *MalformedPageError) Error() string {
	return fmt.Sprintf("rowslots: expected data page code 0x01, got 0x%02x", e.Code)
}

// Slot is one row's byte range within a page, plus its flags.
type Slot struct {
	Offset    int
	Next      int
	IsDeleted bool
	IsLookup  bool
}

// Header is the data page header fields every decoder needs regardless of
// schema.
type Header struct {
	TdefPage uint32
	NumRows  uint16
}

// Decode parses a data page's header and row-offset table.
func Decode(version leformat.Version, page []byte) (Header, []Slot, error) {
	code, err := leformat.U8(page, 0)
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "rowslots: reading page code")
	}
	if code != leformat.PageCodeData {
		return Header{}, nil, &MalformedPageError{Code: code}
	}

	off := 1
	off += 1 // skip
	off += 2 // u16 freeSpaceInPage, unused

	tdefPage, err := leformat.U32(page, off)
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "rowslots: reading tdefPage")
	}
	off += 4

	if version == leformat.JET4 {
		off += 4 // skip
	}

	numRows, err := leformat.U16(page, off)
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "rowslots: reading numRows")
	}
	off += 2

	rawOffsets := make([]uint16, numRows)
	for i := range rawOffsets {
		v, err := leformat.U16(page, off)
		if err != nil {
			return Header{}, nil, errors.Wrapf(err, "rowslots: reading offset %d", i)
		}
		rawOffsets[i] = v
		off += 2
	}

	pageSize := version.PageSize()
	slots := make([]Slot, numRows)
	for i, raw := range rawOffsets {
		next := pageSize
		if i > 0 {
			next = int(rawOffsets[i-1] & leformat.SlotOffsetMask)
		}
		slots[i] = Slot{
			Offset:    int(raw & leformat.SlotOffsetMask),
			Next:      next,
			IsDeleted: raw&leformat.SlotDeleted != 0,
			IsLookup:  raw&leformat.SlotLookup != 0,
		}
	}

	return Header{TdefPage: tdefPage, NumRows: numRows}, slots, nil
}
