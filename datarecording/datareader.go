package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// QueryParams selects the rows of a table.
type QueryParams struct {
	// Where is the condition without the WHERE keyword, for example
	// "RunID = ? AND Round >= ?".
	Where string

	// Args fill the placeholders of Where.
	Args []any

	// OrderBy lists the sort columns without the ORDER BY keywords. Rows come
	// in insertion order if it is empty.
	OrderBy string

	// Limit caps the number of rows. Zero means no cap.
	Limit int
}

// DataReader reads back the tables written by a DataRecorder.
type DataReader interface {
	// Tables returns the names of the tables in the recording.
	Tables(ctx context.Context) ([]string, error)

	// Count returns the number of rows of a table that match the condition.
	// Order and limit are ignored.
	Count(ctx context.Context, table string, params QueryParams) (int, error)

	// Scan reads the matching rows of a table into new values of the sample's
	// struct type and returns pointers to them. Columns are matched to fields
	// by name. Columns without a field are skipped.
	Scan(
		ctx context.Context,
		table string,
		sample any,
		params QueryParams,
	) ([]any, error)

	// Close closes the recording.
	Close() error
}

// Read reads the matching rows of a table as values of T.
func Read[T any](
	ctx context.Context,
	r DataReader,
	table string,
	params QueryParams,
) ([]T, error) {
	var sample T

	rows, err := r.Scan(ctx, table, sample, params)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = *row.(*T)
	}

	return out, nil
}

type sqliteReader struct {
	db *sql.DB
}

// NewReader opens a recording for reading. The file must exist and is never
// written to.
func NewReader(filename string) (DataReader, error) {
	_, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening recording %s: %w", filename, err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening recording %s: %w", filename, err)
	}

	return &sqliteReader{db: db}, nil
}

func (r *sqliteReader) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string

		err = rows.Scan(&name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func (r *sqliteReader) Count(
	ctx context.Context,
	table string,
	params QueryParams,
) (int, error) {
	query := "SELECT COUNT(*) FROM " + quote(table) + where(params)

	var count int

	err := r.db.QueryRowContext(ctx, query, params.Args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting rows of %s: %w", table, err)
	}

	return count, nil
}

func (r *sqliteReader) Scan(
	ctx context.Context,
	table string,
	sample any,
	params QueryParams,
) ([]any, error) {
	rowType := reflect.TypeOf(sample)
	if rowType == nil || rowType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("rows of %s must be read into a struct, not %T",
			table, sample)
	}

	query := "SELECT * FROM " + quote(table) + where(params)

	orderBy := params.OrderBy
	if orderBy == "" {
		orderBy = "rowid"
	}

	query += " ORDER BY " + orderBy

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	return scanRows(rows, rowType)
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func where(params QueryParams) string {
	if params.Where == "" {
		return ""
	}

	return " WHERE " + params.Where
}

func scanRows(rows *sql.Rows, rowType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fields := make([]int, len(columns))
	for i, column := range columns {
		fields[i] = -1

		field, ok := rowType.FieldByName(column)
		if ok && len(field.Index) == 1 && field.IsExported() {
			fields[i] = field.Index[0]
		}
	}

	var results []any

	for rows.Next() {
		row := reflect.New(rowType)
		targets := make([]any, len(columns))

		for i, field := range fields {
			if field < 0 {
				targets[i] = new(any)
				continue
			}

			targets[i] = row.Elem().Field(field).Addr().Interface()
		}

		err = rows.Scan(targets...)
		if err != nil {
			return nil, err
		}

		results = append(results, row.Interface())
	}

	return results, rows.Err()
}
