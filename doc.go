// Package mdb is a read-only reader for the legacy Microsoft Access (JET)
// database file format, covering the version 3 and version 4 on-disk
// layouts used by .mdb files produced between 1997 and 2003.
//
// The package is organized leaves-first, the same grouping the on-disk
// format itself dictates:
//
// Paged storage:
//   - internal/leformat: little-endian field readers and the shared page
//     format constants (page codes, slot flags, per-version page size).
//   - internal/pager: version detection off the file header, and
//     random-access page reads.
//
// Structural decoders:
//   - internal/tdef: table-definition ("tdef") pages, with single-overflow
//     continuation.
//   - internal/usedpages: a table's used-pages map, in either on-disk
//     encoding.
//   - internal/rowslots: a data page's row-offset table, schema-free.
//   - internal/datapage: full per-row decode (fixed/variable columns, null
//     mask) built on top of rowslots.
//
// Value decoding:
//   - internal/unicodecodec: JET4's compressed UCS-2 text scheme.
//   - internal/value: per-column-type value extraction, including inline
//     and out-of-line ("LVAL") memo text.
//
// Discovery:
//   - internal/table: composes tdef+usedpages+datapage+value to resolve one
//     table's schema and rows from just its tdef page.
//   - internal/catalog: reads the system catalog (always at tdef page 2)
//     and filters it down to user-defined tables.
//
// Given a path to an .mdb file, Open exposes the list of user-defined
// tables, each table's column names, and its rows as typed values. The
// package never writes to the file and does not implement index traversal
// or query planning.
//
// Basic usage:
//
//	h, err := mdb.Open("northwind.mdb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	for _, name := range h.Tables() {
//	    rows, err := h.Rows(name)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, row := range rows {
//	        _ = row.Values
//	    }
//	}
package mdb
