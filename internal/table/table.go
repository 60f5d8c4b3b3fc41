// Package table composes tdef, usedpages, datapage, and value to resolve
// one table's schema and rows given only its tdef page index. Both the
// system catalog and ordinary user tables share this resolution sequence;
// Catalog uses it to read the system catalog itself, and the facade uses it
// for every user table.
package table

import (
	"github.com/pkg/errors"

	"github.com/wilhasse/go-mdb/internal/datapage"
	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/pager"
	"github.com/wilhasse/go-mdb/internal/tdef"
	"github.com/wilhasse/go-mdb/internal/usedpages"
	"github.com/wilhasse/go-mdb/internal/value"
)

// Table is a resolved table: its definition plus the data pages it owns.
type Table struct {
	Def       *tdef.Tdef
	DataPages []uint32
}

// Open resolves the tdef at tdefPage and its used-pages map into a Table.
func Open(version leformat.Version, tdefPage uint32, fetch pager.PageFetcher) (*Table, error) {
	tdefRaw, err := fetch(tdefPage)
	if err != nil {
		return nil, errors.Wrapf(err, "table: fetching tdef page %d", tdefPage)
	}
	def, err := tdef.Decode(version, tdefRaw, fetch)
	if err != nil {
		return nil, errors.Wrapf(err, "table: decoding tdef page %d", tdefPage)
	}

	mapPage, err := fetch(def.UsedPagesMapPage)
	if err != nil {
		return nil, errors.Wrapf(err, "table: fetching used-pages map page %d", def.UsedPagesMapPage)
	}
	dataPages, err := usedpages.Decode(version, mapPage, fetch)
	if err != nil {
		return nil, errors.Wrapf(err, "table: decoding used-pages map for tdef page %d", tdefPage)
	}

	return &Table{Def: def, DataPages: dataPages}, nil
}

// Rows decodes every non-deleted row across all of the table's data pages,
// in data-page discovery order, using vd to decode each column value.
func (t *Table) Rows(version leformat.Version, fetch pager.PageFetcher, vd *value.Decoder) ([]datapage.Row, error) {
	var rows []datapage.Row
	for _, pageIdx := range t.DataPages {
		page, err := fetch(pageIdx)
		if err != nil {
			return nil, errors.Wrapf(err, "table: fetching data page %d", pageIdx)
		}
		pageRows, err := datapage.Decode(version, page, t.Def, vd)
		if err != nil {
			return nil, errors.Wrapf(err, "table: decoding data page %d", pageIdx)
		}
		rows = append(rows, pageRows...)
	}
	return rows, nil
}
