package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/neighborhood/importer"
)

const buildLongDesc string = `Build a corpus from JSON lines or a SQLite table.

JSON lines input holds one {"id": ..., "vector": [...]} object per line; use
"-" to read standard input. SQLite input reads "id" and "embedding" (packed
little-endian float32) columns from --table in rowid order.

Examples:
  neighbors build ./items --jsonl items.jsonl
  cat items.jsonl | neighbors build ./items --jsonl -
  neighbors build ./items --sqlite vectors.db --table embeddings --compression zstd`

type buildCommander struct {
	jsonl  string
	sqlite string
	table  string
}

func newBuildCmd(a *app) *cobra.Command {
	cmder := &buildCommander{}
	defaults := NewDefaultConfig()

	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Build a corpus from JSON lines or SQLite",
		Long:  buildLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.jsonl, "jsonl", "", "JSON lines input file (- for stdin)")
	cmd.Flags().StringVar(&cmder.sqlite, "sqlite", "", "SQLite database input")
	cmd.Flags().StringVar(&cmder.table, "table", "vectors", "SQLite table holding id and embedding columns")
	cmd.Flags().String(flagCompression, defaults.Corpus.Compression, "Identifier column compression (none, lz4, zstd)")
	cmd.Flags().Int(flagBlockSize, defaults.Corpus.BlockSize, "Identifiers per compressed frame")
	cmd.Flags().Bool(flagNorms, defaults.Corpus.Norms, "Store a norm column")
	cmd.MarkFlagsMutuallyExclusive("jsonl", "sqlite")
	cmd.MarkFlagsOneRequired("jsonl", "sqlite")

	return cmd
}

func (c *buildCommander) run(cmd *cobra.Command, a *app, dir string) error {
	ctx := cmd.Context()

	opt, err := a.cfg.Corpus.options()
	if err != nil {
		return err
	}

	src, err := c.source(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	n, err := importer.Import(ctx, src, dir, opt)
	if err != nil {
		if errors.Is(err, importer.ErrEmptySource) {
			return fmt.Errorf("nothing to build: %w", err)
		}
		return err
	}

	a.logger.InfoContext(ctx, "corpus built", "path", dir, "rows", n)
	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"path": dir, "rows": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s built %s with %d rows\n", successMark, idStyle.Render(dir), n)
	return nil
}

func (c *buildCommander) source(cmd *cobra.Command) (importer.Source, error) {
	if c.sqlite != "" {
		return importer.OpenSQLiteSource(cmd.Context(), c.sqlite, c.table)
	}

	if c.jsonl == "-" {
		return importer.NewJSONLSource(cmd.InOrStdin()), nil
	}
	f, err := os.Open(c.jsonl)
	if err != nil {
		return nil, err
	}
	return importer.NewJSONLSource(f), nil
}
