// Package value decodes one column's raw byte slice from a data row into a
// typed, tagged value — the last stage of the row-decode pipeline
// (pager → tdef/usedpages → datapage → value).
package value

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/pager"
	"github.com/wilhasse/go-mdb/internal/rowslots"
	"github.com/wilhasse/go-mdb/internal/unicodecodec"
)

// Kind tags which field of a Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindByte
	KindInt
	KindLongInt
	KindDouble
	KindDateTimeRaw
	KindString
	KindUnknown
)

// Unsupported is the sentinel text returned for column types this decoder
// does not know how to interpret: currency, float, binary, OLE, GUID,
// numeric, and long multi-page memos. Partial-row usability outweighs
// strictness here — callers get a placeholder rather than an error.
const Unsupported = "[unknown type]"

// Known JET column type codes.
const (
	TypeBoolean  = 1
	TypeByte     = 2
	TypeInt      = 3
	TypeLongInt  = 4
	TypeCurrency = 5
	TypeFloat    = 6
	TypeDouble   = 7
	TypeDateTime = 8
	TypeBinary   = 9
	TypeText     = 10
	TypeOLE      = 11
	TypeMemo     = 12
	TypeGUID     = 15
	TypeNumeric  = 16
)

// Value is one decoded column value, tagged by Kind. Exactly one of the
// typed fields is meaningful for a given Kind; String also carries the
// Unsupported sentinel when Kind is KindUnknown.
type Value struct {
	Kind    Kind
	Bool    bool
	Byte    uint8
	// Int holds the JET Integer (type code 3) column value. The on-disk
	// field is a raw 16-bit word; it is surfaced here as signed because a
	// real Access Integer column is a signed 16-bit quantity, not an
	// unsigned count.
	Int         int16
	LongInt     int32
	Double      float64
	DateTimeRaw uint64
	String      string
}

func nullValue() Value { return Value{Kind: KindNull} }

func unknownValue() Value { return Value{Kind: KindUnknown, String: Unsupported} }

// Decoder decodes column byte slices into Values. It carries the database
// version (for text/memo encoding rules) and a page fetcher for out-of-line
// memo resolution.
type Decoder struct {
	Version  leformat.Version
	FetchMem pager.PageFetcher

	// JET3Encoding overrides the default cp1252 approximation used to
	// decode JET3 Text columns. Nil means the default.
	JET3Encoding encoding.Encoding
}

// New builds a Decoder for the given version and memo page fetcher.
func New(version leformat.Version, fetch pager.PageFetcher) *Decoder {
	return &Decoder{Version: version, FetchMem: fetch}
}

// Decode interprets raw as a value of the given column type. isNull must
// have already been determined from the row's null mask; Decode honors it
// before looking at raw at all.
func (d *Decoder) Decode(colType uint8, raw []byte, isNull bool) (Value, error) {
	if isNull {
		return nullValue(), nil
	}

	switch colType {
	case TypeBoolean:
		b, err := leformat.U8(raw, 0)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding bool")
		}
		return Value{Kind: KindBool, Bool: b != 0}, nil

	case TypeByte:
		b, err := leformat.U8(raw, 0)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding byte")
		}
		return Value{Kind: KindByte, Byte: b}, nil

	case TypeInt:
		v, err := leformat.U16(raw, 0)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding int")
		}
		return Value{Kind: KindInt, Int: int16(v)}, nil

	case TypeLongInt:
		v, err := leformat.U32(raw, 0)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding longint")
		}
		return Value{Kind: KindLongInt, LongInt: int32(v)}, nil

	case TypeDouble:
		v, err := leformat.F64(raw, 0)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding double")
		}
		return Value{Kind: KindDouble, Double: v}, nil

	case TypeDateTime:
		v, err := leformat.U64(raw, 0)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding datetime")
		}
		return Value{Kind: KindDateTimeRaw, DateTimeRaw: v}, nil

	case TypeText:
		s, err := d.decodeText(raw)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding text")
		}
		return Value{Kind: KindString, String: s}, nil

	case TypeMemo:
		return d.decodeMemo(raw)

	default:
		return unknownValue(), nil
	}
}

func (d *Decoder) decodeText(raw []byte) (string, error) {
	if d.Version == leformat.JET3 {
		if d.JET3Encoding != nil {
			return unicodecodec.DecodeWith(d.JET3Encoding, raw)
		}
		return unicodecodec.DecodeLatin1(raw)
	}
	return unicodecodec.DecodeJET4Text(raw)
}

// decodeMemo implements the Memo (type 12) layout: a 24-bit length split
// across a u16 low part and a u8 high byte, a mask byte selecting inline vs
// out-of-line storage, and a u32 page/row pointer for the out-of-line case.
func (d *Decoder) decodeMemo(raw []byte) (Value, error) {
	lenLow, err := leformat.U16(raw, 0)
	if err != nil {
		return Value{}, errors.Wrap(err, "value: decoding memo length")
	}
	lenHigh, err := leformat.U8(raw, 2)
	if err != nil {
		return Value{}, errors.Wrap(err, "value: decoding memo length")
	}
	memoLen := uint32(lenLow) | uint32(lenHigh)<<16

	mask, err := leformat.U8(raw, 3)
	if err != nil {
		return Value{}, errors.Wrap(err, "value: decoding memo mask")
	}

	pointer, err := leformat.U32(raw, 4)
	if err != nil {
		return Value{}, errors.Wrap(err, "value: decoding memo pointer")
	}
	memoPage := pointer >> 8
	memoRow := uint8(pointer & 0xFF)

	switch mask {
	case 0x80:
		inline, err := leformat.Bytes(raw, 12, int(memoLen))
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding inline memo text")
		}
		s, err := d.decodeText(inline)
		if err != nil {
			return Value{}, errors.Wrap(err, "value: decoding inline memo text")
		}
		return Value{Kind: KindString, String: s}, nil

	case 0x40:
		return d.decodeLVALMemo(memoPage, memoRow)

	default:
		return unknownValue(), nil
	}
}

func (d *Decoder) decodeLVALMemo(memoPage uint32, memoRow uint8) (Value, error) {
	if d.FetchMem == nil {
		return Value{}, errors.New("value: out-of-line memo requires a page fetcher")
	}
	page, err := d.FetchMem(memoPage)
	if err != nil {
		return Value{}, errors.Wrapf(err, "value: fetching memo page %d", memoPage)
	}
	_, slots, err := rowslots.Decode(d.Version, page)
	if err != nil {
		return Value{}, errors.Wrapf(err, "value: decoding memo page %d slot table", memoPage)
	}
	if int(memoRow) >= len(slots) {
		return Value{}, fmt.Errorf("value: memo row %d out of range on page %d (%d slots)", memoRow, memoPage, len(slots))
	}
	slot := slots[memoRow]
	raw, err := leformat.Bytes(page, slot.Offset, slot.Next-slot.Offset)
	if err != nil {
		return Value{}, errors.Wrap(err, "value: reading out-of-line memo bytes")
	}
	s, err := d.decodeText(raw)
	if err != nil {
		return Value{}, errors.Wrap(err, "value: decoding out-of-line memo text")
	}
	return Value{Kind: KindString, String: s}, nil
}
