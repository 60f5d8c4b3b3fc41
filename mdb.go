package mdb

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"

	"github.com/wilhasse/go-mdb/internal/catalog"
	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/pager"
	"github.com/wilhasse/go-mdb/internal/table"
	"github.com/wilhasse/go-mdb/internal/value"
)

// UnknownTableError reports that a caller asked for a table name not
// present in the database's system catalog as a user table.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return "mdb: unknown table " + e.Table
}

// RejectedJET3Error is returned by Open when RejectJET3 was given and the
// database header identifies it as a JET3 (.mdb v3, pre-2000) file.
type RejectedJET3Error struct{}

func (e *RejectedJET3Error) Error() string {
	return "mdb: database is JET3 and the caller rejected that version"
}

// options holds the resolved configuration built up by Option values.
type options struct {
	rejectJET3   bool
	jet3Encoding encoding.Encoding
	logger       *slog.Logger
}

// Option configures Open.
type Option func(*options)

// RejectJET3 makes Open fail with a RejectedJET3Error when the database is
// the older JET3 (pre-Access 2000) format, for callers that only support v4.
func RejectJET3() Option {
	return func(o *options) { o.rejectJET3 = true }
}

// WithTextEncoding overrides the codepage used to decode JET3 Text and Memo
// values. The default approximates cp1252 via
// golang.org/x/text/encoding/charmap.Windows1252; JET3 column names are
// always decoded with that default. JET4 databases always use UTF-16LE and
// are unaffected by this option.
func WithTextEncoding(enc encoding.Encoding) Option {
	return func(o *options) { o.jet3Encoding = enc }
}

// WithLogger wires a structured logger for decode tracing. The default is
// silent. Pass a *slog.Logger backed by github.com/phsym/console-slog (or
// any other slog.Handler) to see page-level decode activity.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Handle is an open JET database. It owns the underlying file for its
// lifetime; callers must call Close when done. A Handle is not safe for
// concurrent use — serialize calls, or open separate Handles per goroutine.
type Handle struct {
	file    *os.File
	reader  *pager.Reader
	version leformat.Version
	log     *slog.Logger
	opts    options

	tables map[string]uint32 // table name -> tdef page
	order  []string          // discovery order, for stable Tables()

	closed bool
}

// Open opens the JET database at path, detects its version from the file
// header, and reads its system catalog to discover user tables.
func Open(path string, opts ...Option) (*Handle, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = discardLogger()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "mdb: opening database file")
	}

	header, err := pager.ReadHeader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mdb: reading database header")
	}
	version, err := pager.DetectVersion(header)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mdb: detecting database version")
	}
	log.Debug("opened database", "path", path, "version", version.String(), "pageSize", version.PageSize())

	if o.rejectJET3 && version == leformat.JET3 {
		f.Close()
		return nil, &RejectedJET3Error{}
	}

	reader := pager.New(f, version.PageSize())

	entries, err := catalog.List(version, reader.ReadPage)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mdb: reading system catalog")
	}

	h := &Handle{
		file:    f,
		reader:  reader,
		version: version,
		log:     log,
		opts:    o,
		tables:  make(map[string]uint32, len(entries)),
	}
	for _, e := range entries {
		if _, exists := h.tables[e.TableName]; !exists {
			h.order = append(h.order, e.TableName)
		}
		h.tables[e.TableName] = e.TdefPage
	}
	log.Debug("discovered user tables", "count", len(h.order))

	return h, nil
}

// Close releases the database file. Close is idempotent.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.file.Close()
}

// Tables returns the user table names in system-catalog discovery order.
func (h *Handle) Tables() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Columns returns the column names of table, in declaration order.
func (h *Handle) Columns(tableName string) ([]string, error) {
	tdefPage, ok := h.tables[tableName]
	if !ok {
		return nil, &UnknownTableError{Table: tableName}
	}
	tbl, err := table.Open(h.version, tdefPage, h.reader.ReadPage)
	if err != nil {
		return nil, errors.Wrapf(err, "mdb: opening table %q", tableName)
	}
	out := make([]string, len(tbl.Def.ColNames))
	copy(out, tbl.Def.ColNames)
	return out, nil
}

// Row is one decoded table row: column values in the table's declared
// column order, matching Columns(table).
type Row struct {
	Values []ColumnValue
}

// Rows reads and decodes every non-deleted row of table.
func (h *Handle) Rows(tableName string) ([]Row, error) {
	tdefPage, ok := h.tables[tableName]
	if !ok {
		return nil, &UnknownTableError{Table: tableName}
	}
	tbl, err := table.Open(h.version, tdefPage, h.reader.ReadPage)
	if err != nil {
		return nil, errors.Wrapf(err, "mdb: opening table %q", tableName)
	}

	vd := value.New(h.version, h.reader.ReadPage)
	vd.JET3Encoding = h.opts.jet3Encoding

	h.log.Debug("reading table rows", "table", tableName, "dataPages", len(tbl.DataPages))
	decoded, err := tbl.Rows(h.version, h.reader.ReadPage, vd)
	if err != nil {
		return nil, errors.Wrapf(err, "mdb: reading rows of table %q", tableName)
	}

	rows := make([]Row, len(decoded))
	for i, r := range decoded {
		rows[i] = Row{Values: r.Values}
	}
	return rows, nil
}
