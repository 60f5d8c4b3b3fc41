package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/phsym/console-slog"

	"github.com/wilhasse/go-mdb"
)

func main() {
	var (
		file    = flag.String("file", "", "Path to a .mdb database file (required)")
		table   = flag.String("table", "", "Table to print rows for (default: list tables)")
		format  = flag.String("format", "text", "Output format: text or json")
		columns = flag.Bool("columns", false, "Print the table's column names instead of rows")
		verbose = flag.Bool("v", false, "Verbose decode logging")
		reject3 = flag.Bool("reject-jet3", false, "Fail if the database is the older JET3 format")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "JET (Access) database reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -file northwind.mdb\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -file northwind.mdb -table Orders\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -file northwind.mdb -table Orders -format json\n", os.Args[0])
	}

	flag.Parse()

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Error: -file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	var opts []mdb.Option
	if *reject3 {
		opts = append(opts, mdb.RejectJET3())
	}
	if *verbose {
		logger := slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, mdb.WithLogger(logger))
	}

	h, err := mdb.Open(*file, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	if *table == "" {
		printTables(h, *format)
		return
	}

	if *columns {
		printColumns(h, *table, *format)
		return
	}

	printRows(h, *table, *format)
}

func printTables(h *mdb.Handle, format string) {
	tables := h.Tables()
	if format == "json" {
		emitJSON(tables)
		return
	}
	for _, name := range tables {
		fmt.Println(name)
	}
}

func printColumns(h *mdb.Handle, table, format string) {
	cols, err := h.Columns(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading columns: %v\n", err)
		os.Exit(1)
	}
	if format == "json" {
		emitJSON(cols)
		return
	}
	for _, c := range cols {
		fmt.Println(c)
	}
}

func printRows(h *mdb.Handle, table, format string) {
	cols, err := h.Columns(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading columns: %v\n", err)
		os.Exit(1)
	}
	rows, err := h.Rows(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading rows: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		type jsonRow map[string]interface{}
		out := make([]jsonRow, len(rows))
		for i, row := range rows {
			r := make(jsonRow, len(cols))
			for j, c := range cols {
				if j < len(row.Values) {
					r[c] = columnValueToAny(row.Values[j])
				}
			}
			out[i] = r
		}
		emitJSON(out)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, joinTab(cols))
	for _, row := range rows {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = formatColumnValue(v)
		}
		fmt.Fprintln(w, joinTab(cells))
	}
	w.Flush()
}

func joinTab(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += "\t"
		}
		out += f
	}
	return out
}

func columnValueToAny(v mdb.ColumnValue) interface{} {
	switch v.Kind {
	case mdb.KindNull:
		return nil
	case mdb.KindBool:
		return v.Bool
	case mdb.KindByte:
		return v.Byte
	case mdb.KindInt:
		return v.Int
	case mdb.KindLongInt:
		return v.LongInt
	case mdb.KindDouble:
		return v.Double
	case mdb.KindDateTimeRaw:
		return v.DateTimeRaw
	case mdb.KindString:
		return v.String
	default:
		return mdb.Unsupported
	}
}

func formatColumnValue(v mdb.ColumnValue) string {
	if v.Kind == mdb.KindNull {
		return "<null>"
	}
	return fmt.Sprintf("%v", columnValueToAny(v))
}

func emitJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
