package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// FormatVersion is the on-disk format written by this package.
const FormatVersion = 1

const (
	metaFile   = "meta.json"
	idFile     = "id.col"
	vectorFile = "vector.col"
	normFile   = "norm.col"
)

// Meta is the corpus manifest. Its committed lengths bound every column.
type Meta struct {
	Format      int         `json:"format"`
	CorpusID    string      `json:"corpus_id"`
	Dim         int         `json:"dim"`
	Rows        int         `json:"rows"`
	IDBytes     int64       `json:"id_bytes"`
	HasNorm     bool        `json:"has_norm"`
	Compression Compression `json:"compression"`
	BlockSize   int         `json:"block_size"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// MetaFile is the manifest file name inside a corpus directory.
const MetaFile = metaFile

// Column is a column file of a corpus and its committed length in bytes.
type Column struct {
	Name string
	Size int64
}

// Columns lists the column files of the corpus with their committed lengths.
func (m *Meta) Columns() []Column {
	cols := []Column{
		{Name: idFile, Size: m.IDBytes},
		{Name: vectorFile, Size: m.vectorBytes()},
	}
	if m.HasNorm {
		cols = append(cols, Column{Name: normFile, Size: m.normBytes()})
	}
	return cols
}

func (m *Meta) vectorBytes() int64 { return int64(m.Rows) * int64(m.Dim) * 4 }

func (m *Meta) normBytes() int64 {
	if !m.HasNorm {
		return 0
	}
	return int64(m.Rows) * 4
}

func (m *Meta) validate() error {
	if m.Format > FormatVersion || m.Format <= 0 {
		return fmt.Errorf("%w: %d (supported %d)", ErrUnsupportedFormat, m.Format, FormatVersion)
	}
	if m.Dim <= 0 || m.Rows < 0 || m.IDBytes < 0 {
		return fmt.Errorf("%w: invalid manifest (dim=%d rows=%d id_bytes=%d)", ErrCorrupted, m.Dim, m.Rows, m.IDBytes)
	}
	return nil
}

// ReadMeta loads the manifest of the corpus at dir.
func ReadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, metaFile)) //nolint:gosec // G304: corpus paths are caller supplied
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, err
	}

	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: meta.json: %v", ErrCorrupted, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// writeMeta atomically replaces the manifest. The rename is the commit point.
func writeMeta(dir string, m *Meta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, metaFile+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(dir, metaFile)); err != nil {
		return err
	}
	tmpName = ""

	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir) //nolint:gosec // G304: corpus paths are caller supplied
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
