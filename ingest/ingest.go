// Package ingest reads certificate holders from CSV files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/klever-hub/kleverblockchain-certificates/canonical"
)

const (
	// IDColumn names the column, and the schema field, holding the
	// record identifier.
	IDColumn = "nft_id"
	// AddressColumn names the optional column holding the holder's
	// ledger address. It is carried along, and hashed only when the
	// schema has a field of that name.
	AddressColumn = "address"
)

var (
	// ErrNoHeader indicates an input without a header row.
	ErrNoHeader = errors.New("[ingest] Missing header row")
	// ErrUnknownColumn indicates a header that names neither a schema
	// field nor a known extra column.
	ErrUnknownColumn = errors.New("[ingest] Unknown column")
	// ErrDuplicateColumn indicates a header naming the same column twice.
	ErrDuplicateColumn = errors.New("[ingest] Duplicate column")
	// ErrDuplicateID indicates two rows with the same identifier.
	ErrDuplicateID = errors.New("[ingest] Duplicate record identifier")
)

// A Row is one certificate to issue.
type Row struct {
	ID      string
	Address string
	// Values holds a value for every field of the schema.
	Values map[string]string
	// Line is the line of the row in the input.
	Line int
}

// ReadCSV reads rows from r. The header row names the columns; names
// are matched to schema fields ignoring case and surrounding spaces.
// Fields without a column, or with an empty cell, take their value
// from defaults. Rows without an identifier get a random UUID, which
// is also committed as the nft_id field when the schema has one.
func ReadCSV(r io.Reader, schema *canonical.Schema, defaults map[string]string) ([]Row, error) {
	for name := range defaults {
		if !schema.Has(name) {
			return nil, fmt.Errorf("%w: default for %q", ErrUnknownColumn, name)
		}
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("[ingest] Read header: %w", err)
	}
	columns, err := mapColumns(header, schema)
	if err != nil {
		return nil, err
	}

	var rows []Row
	seen := make(map[string]int)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[ingest] %w", err)
		}
		line, _ := cr.FieldPos(0)
		row := Row{Values: make(map[string]string, schema.Len()), Line: line}
		for _, name := range schema.Names() {
			row.Values[name] = defaults[name]
		}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			switch col := columns[i]; col {
			case AddressColumn:
				row.Address = cell
				if schema.Has(AddressColumn) && cell != "" {
					row.Values[AddressColumn] = cell
				}
			case IDColumn:
				row.ID = cell
				if schema.Has(IDColumn) {
					row.Values[IDColumn] = cell
				}
			default:
				if cell != "" {
					row.Values[col] = cell
				}
			}
		}
		if row.ID == "" {
			row.ID = uuid.New().String()
			if schema.Has(IDColumn) {
				row.Values[IDColumn] = row.ID
			}
		}
		if prev, ok := seen[row.ID]; ok {
			return nil, fmt.Errorf("%w: %q on lines %d and %d", ErrDuplicateID, row.ID, prev, line)
		}
		seen[row.ID] = line
		rows = append(rows, row)
	}
	return rows, nil
}

// mapColumns returns, for each header cell, the schema field or extra
// column it names.
func mapColumns(header []string, schema *canonical.Schema) ([]string, error) {
	byFold := make(map[string]string, schema.Len()+2)
	for _, name := range schema.Names() {
		byFold[strings.ToLower(name)] = name
	}
	for _, extra := range []string{IDColumn, AddressColumn} {
		if _, ok := byFold[extra]; !ok {
			byFold[extra] = extra
		}
	}

	columns := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		// a UTF-8 byte order mark may precede the first header
		h = strings.TrimPrefix(h, "\ufeff")
		name, ok := byFold[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, h)
		}
		if used[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, h)
		}
		used[name] = true
		columns[i] = name
	}
	return columns, nil
}
