package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/textscan/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	sqlTypeText    = "TEXT"
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
)

// SQLType returns the SQLite column type used for t.
// Dates are stored as TEXT in ISO8601 format.
func SQLType(t model.FieldType) string {
	switch t {
	case model.FieldTypeInteger, model.FieldTypeBoolean:
		return sqlTypeInteger
	case model.FieldTypeNumber:
		return sqlTypeReal
	default:
		return sqlTypeText
	}
}

// TableName returns name reduced to letters, digits and underscores,
// never empty and never starting with a digit
func TableName(name string) string {
	result := strings.TrimSpace(name)
	result = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(result)

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sanitized.WriteRune(r)
		}
	}

	final := sanitized.String()
	if final != "" && final[0] >= '0' && final[0] <= '9' {
		final = "table_" + final
	}
	if final == "" {
		final = "table"
	}
	return final
}

// quoteIdent quotes a column name for the bracket syntax
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "_") + "]"
}

// sqliteSink inserts rows into one table inside a single transaction
type sqliteSink struct {
	db      *sql.DB
	ownDB   bool
	tx      *sql.Tx
	stmt    *sql.Stmt
	table   string
	columns []model.Column
	args    []any
	closed  bool
}

// OpenSQLite opens (or creates) the database file at path and writes rows
// into table, creating it when missing
func OpenSQLite(path, table string, columns []model.Column) (Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s, err := newSQLite(context.Background(), db, table, columns)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownDB = true
	return s, nil
}

// NewSQLite writes rows into table of an already open database.
// Close commits but leaves db open.
func NewSQLite(ctx context.Context, db *sql.DB, table string, columns []model.Column) (Writer, error) {
	return newSQLite(ctx, db, table, columns)
}

func newSQLite(ctx context.Context, db *sql.DB, table string, columns []model.Column) (*sqliteSink, error) {
	if err := validateColumnNames(columns); err != nil {
		return nil, err
	}
	s := &sqliteSink{db: db, table: TableName(table), columns: columns, args: make([]any, len(columns))}

	if _, err := db.ExecContext(ctx, s.buildCreateTableQuery()); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.buildInsertQuery())
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	s.tx = tx
	s.stmt = stmt
	return s, nil
}

// buildCreateTableQuery builds the CREATE TABLE statement with typed columns
func (s *sqliteSink) buildCreateTableQuery() string {
	defs := make([]string, len(s.columns))
	for i, c := range s.columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), SQLType(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS [%s] (%s)", s.table, strings.Join(defs, ", "))
}

// buildInsertQuery builds the INSERT statement with one placeholder per column
func (s *sqliteSink) buildInsertQuery() string {
	placeholders := make([]string, len(s.columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO [%s] VALUES (%s)", s.table, strings.Join(placeholders, ", "))
}

// Write inserts one row
func (s *sqliteSink) Write(row *model.ParsedRow) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkWidth(row, s.columns); err != nil {
		return err
	}
	for i, v := range row.Values {
		s.args[i] = sqlValue(v)
	}
	if _, err := s.stmt.Exec(s.args...); err != nil {
		return fmt.Errorf("failed to insert row %d: %w", row.Line, err)
	}
	return nil
}

// Close commits the transaction and closes the database when it was opened here
func (s *sqliteSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.stmt.Close()
	if err == nil {
		err = s.tx.Commit()
	} else {
		_ = s.tx.Rollback()
	}
	if s.ownDB {
		if closeErr := s.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func sqlValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}
