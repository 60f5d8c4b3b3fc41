// Package datapage decodes a data page's rows into column values, given the
// owning table's definition. It builds on internal/rowslots for the
// schema-free row-offset table and internal/value for per-column decoding.
package datapage

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/rowslots"
	"github.com/wilhasse/go-mdb/internal/tdef"
	"github.com/wilhasse/go-mdb/internal/value"
)

// MalformedRowError reports a structural inconsistency while decoding a
// row body: an out-of-range variable-length offset table, or a truncated
// null mask.
type MalformedRowError struct {
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("datapage: malformed row: %s", e.Reason)
}

// Row is one decoded row: column values in the table's declared column
// order (matching tdef.Tdef.Cols / tdef.Tdef.ColNames).
type Row struct {
	Values []value.Value
}

// Decode parses every non-deleted row on a data page into Rows, using td to
// locate each column's bytes and vd to interpret them.
func Decode(version leformat.Version, page []byte, td *tdef.Tdef, vd *value.Decoder) ([]Row, error) {
	_, slots, err := rowslots.Decode(version, page)
	if err != nil {
		return nil, errors.Wrap(err, "datapage: decoding row-offset table")
	}

	varLenSize := version.VarLenSize()
	rows := make([]Row, 0, len(slots))
	for i, slot := range slots {
		if slot.IsDeleted {
			continue
		}
		row, err := decodeRow(page, slot, varLenSize, td, vd)
		if err != nil {
			return nil, errors.Wrapf(err, "datapage: decoding row %d", i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readCount(page []byte, off, size int) (int, error) {
	if size == 1 {
		v, err := leformat.U8(page, off)
		return int(v), err
	}
	v, err := leformat.U16(page, off)
	return int(v), err
}

func decodeRow(page []byte, slot rowslots.Slot, varLenSize int, td *tdef.Tdef, vd *value.Decoder) (Row, error) {
	offset, next := slot.Offset, slot.Next
	if next < offset {
		return Row{}, &MalformedRowError{Reason: "slot end precedes start"}
	}

	columnsInRow, err := readCount(page, offset, varLenSize)
	if err != nil {
		return Row{}, errors.Wrap(err, "reading columnsInRow")
	}

	nullMaskSize := (columnsInRow + 7) / 8
	nullMaskStart := next - nullMaskSize
	if nullMaskStart < offset {
		return Row{}, &MalformedRowError{Reason: "null mask extends before row start"}
	}
	nullMask, err := leformat.Bytes(page, nullMaskStart, nullMaskSize)
	if err != nil {
		return Row{}, errors.Wrap(err, "reading null mask")
	}

	varLenCountStart := nullMaskStart - varLenSize
	varLen, err := readCount(page, varLenCountStart, varLenSize)
	if err != nil {
		return Row{}, errors.Wrap(err, "reading varLen count")
	}

	varTableStart := varLenCountStart - (varLen+1)*varLenSize
	if varTableStart < offset {
		return Row{}, &MalformedRowError{Reason: "variable-length offset table extends before row start"}
	}
	varOffsetsRev := make([]int, varLen+1)
	for i := range varOffsetsRev {
		v, err := readCount(page, varTableStart+i*varLenSize, varLenSize)
		if err != nil {
			return Row{}, errors.Wrapf(err, "reading var offset %d", i)
		}
		varOffsetsRev[i] = v
	}
	varOffsets := make([]int, len(varOffsetsRev))
	for i, v := range varOffsetsRev {
		varOffsets[len(varOffsetsRev)-1-i] = v
	}

	isNull := func(number uint16) bool {
		byteIdx := int(number) / 8
		bitIdx := uint(number) % 8
		if byteIdx >= len(nullMask) {
			return true
		}
		return nullMask[byteIdx]&(1<<bitIdx) == 0
	}

	row := Row{Values: make([]value.Value, len(td.Cols))}
	for i, col := range td.Cols {
		null := isNull(col.Index)

		var start, length int
		if col.IsFixedLength() {
			start = offset + int(col.OffsetFixed) + varLenSize
			length = int(col.Length)
		} else {
			idx := int(col.OffsetVar)
			if idx < 0 || idx >= len(varOffsets) {
				row.Values[i] = value.Value{Kind: value.KindNull}
				continue
			}
			start = offset + varOffsets[idx]
			if idx+1 < len(varOffsets) {
				length = varOffsets[idx+1] - varOffsets[idx]
			} else {
				length = 0
			}
		}

		if length == 0 {
			if null {
				row.Values[i] = value.Value{Kind: value.KindNull}
			} else {
				row.Values[i] = value.Value{Kind: value.KindString, String: ""}
			}
			continue
		}

		raw, err := leformat.Bytes(page, start, length)
		if err != nil {
			return Row{}, errors.Wrapf(err, "reading column %d bytes", i)
		}
		v, err := vd.Decode(col.Type, raw, null)
		if err != nil {
			return Row{}, errors.Wrapf(err, "decoding column %d", i)
		}
		row.Values[i] = v
	}

	return row, nil
}
