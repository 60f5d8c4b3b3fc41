package mdb

import (
	"github.com/wilhasse/go-mdb/internal/pager"
	"github.com/wilhasse/go-mdb/internal/rowslots"
	"github.com/wilhasse/go-mdb/internal/tdef"
	"github.com/wilhasse/go-mdb/internal/value"
)

// ColumnValue is one decoded column value, tagged by Kind.
type ColumnValue = value.Value

// Kind tags which field of a ColumnValue is populated.
type Kind = value.Kind

// Kind values, re-exported for callers inspecting ColumnValue.Kind.
const (
	KindNull        = value.KindNull
	KindBool        = value.KindBool
	KindByte        = value.KindByte
	KindInt         = value.KindInt
	KindLongInt     = value.KindLongInt
	KindDouble      = value.KindDouble
	KindDateTimeRaw = value.KindDateTimeRaw
	KindString      = value.KindString
	KindUnknown     = value.KindUnknown
)

// Unsupported is the sentinel string a ColumnValue carries in its String
// field when Kind is KindUnknown.
const Unsupported = value.Unsupported

// Re-export the decode-failure error types so callers can errors.As against
// them without importing internal packages.
type (
	UnknownVersionError    = pager.UnknownVersionError
	MalformedTdefError     = tdef.MalformedTdefError
	MalformedDataPageError = rowslots.MalformedPageError
)
