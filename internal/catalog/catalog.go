// Package catalog reads the system catalog — the table definition always
// resident at tdef page 2 — and filters it down to user-defined tables.
package catalog

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/pager"
	"github.com/wilhasse/go-mdb/internal/table"
	"github.com/wilhasse/go-mdb/internal/value"
)

// SystemCatalogPage is the fixed tdef page every JET database stores its
// table directory at.
const SystemCatalogPage = 2

// requiredColumns a conforming system catalog must expose.
var requiredColumns = []string{"Name", "Id", "Type", "Flags"}

// MissingColumnError reports that the system catalog table definition is
// missing a column this decoder depends on.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("catalog: system catalog is missing required column %q", e.Column)
}

// Entry is one user table discovered in the system catalog.
type Entry struct {
	TableName string
	TdefPage  uint32
}

// List reads the system catalog and returns every row recognised as a user
// table: (Type & 0x00FFFFFF) == 1 and (Flags & 0x80000002) == 0.
func List(version leformat.Version, fetch pager.PageFetcher) ([]Entry, error) {
	sys, err := table.Open(version, SystemCatalogPage, fetch)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: opening system catalog")
	}

	cols := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		idx := sys.Def.ColumnByName(name)
		if idx < 0 {
			return nil, &MissingColumnError{Column: name}
		}
		cols[name] = idx
	}

	rows, err := sys.Rows(version, fetch, value.New(version, fetch))
	if err != nil {
		return nil, errors.Wrap(err, "catalog: reading system catalog rows")
	}

	var entries []Entry
	for _, row := range rows {
		t, ok := asInt64(row.Values[cols["Type"]])
		if !ok {
			continue
		}
		f, ok := asInt64(row.Values[cols["Flags"]])
		if !ok {
			continue
		}
		if (t & 0x00FFFFFF) != 1 || (f & 0x80000002) != 0 {
			continue
		}
		id, ok := asInt64(row.Values[cols["Id"]])
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			TableName: row.Values[cols["Name"]].String,
			TdefPage:  uint32(id),
		})
	}
	return entries, nil
}

func asInt64(v value.Value) (int64, bool) {
	switch v.Kind {
	case value.KindByte:
		return int64(v.Byte), true
	case value.KindInt:
		return int64(v.Int), true
	case value.KindLongInt:
		return int64(v.LongInt), true
	case value.KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
