package importer

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource streams rows of a table with an id TEXT column and an
// embedding BLOB column of little-endian float32 values, in rowid order.
type SQLiteSource struct {
	db   *sql.DB
	rows *sql.Rows
}

// OpenSQLiteSource opens the database at path and starts reading table.
func OpenSQLiteSource(ctx context.Context, path, table string) (*SQLiteSource, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("importer: invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	//nolint:gosec // G201: table is validated against identRe
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT id, embedding FROM "%s" ORDER BY rowid`, table))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	return &SQLiteSource{db: db, rows: rows}, nil
}

// Next implements Source.
func (s *SQLiteSource) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, io.EOF
	}

	var (
		rec Record
		emb []byte
	)
	if err := s.rows.Scan(&rec.ID, &emb); err != nil {
		return Record{}, err
	}
	if len(emb)%4 != 0 {
		return Record{}, fmt.Errorf("embedding of %q: %d bytes is not a float32 array", rec.ID, len(emb))
	}
	rec.Vector = decodeFloat32Slice(emb)
	return rec, nil
}

// Close implements Source.
func (s *SQLiteSource) Close() error {
	return errors.Join(s.rows.Close(), s.db.Close())
}

// EncodeFloat32Slice converts v to the little-endian blob layout read by SQLiteSource.
func EncodeFloat32Slice(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeFloat32Slice(b []byte) []float32 {
	f := make([]float32, len(b)/4)
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return f
}
