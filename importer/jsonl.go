package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// JSONLSource reads newline-delimited {"id": ..., "vector": [...]} objects.
type JSONLSource struct {
	dec    *json.Decoder
	closer io.Closer
	line   int
}

// NewJSONLSource reads records from r. If r is an io.Closer, Close closes it.
func NewJSONLSource(r io.Reader) *JSONLSource {
	s := &JSONLSource{dec: json.NewDecoder(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next implements Source.
func (s *JSONLSource) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	var rec Record
	if err := s.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("jsonl record %d: %w", s.line+1, err)
	}
	s.line++

	if rec.ID == "" {
		return Record{}, fmt.Errorf("jsonl record %d: missing id", s.line)
	}
	return rec, nil
}

// Close implements Source.
func (s *JSONLSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
