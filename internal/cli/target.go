package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/neighborhood"
	"github.com/hupe1980/neighborhood/corpus"
)

func newTargetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage target corpora",
	}
	cmd.AddCommand(newTargetInitCmd(a))
	return cmd
}

const targetInitLongDesc string = `Create an empty target corpus for a source corpus.

The target takes its dimension from the source. Identifiers given with --seed
are appended from the source right away.

Examples:
  neighbors target init ./users ./items
  neighbors target init ./users ./items --seed alice --seed bob`

type targetInitCommander struct {
	seeds []string
}

func newTargetInitCmd(a *app) *cobra.Command {
	cmder := &targetInitCommander{}
	defaults := NewDefaultConfig()

	cmd := &cobra.Command{
		Use:   "init <source> <target>",
		Short: "Create an empty target corpus for a source corpus",
		Long:  targetInitLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args[0], args[1])
		},
	}

	cmd.Flags().StringArrayVar(&cmder.seeds, "seed", nil, "Source identifier to append (repeatable)")
	cmd.Flags().String(flagCompression, defaults.Corpus.Compression, "Identifier column compression (none, lz4, zstd)")
	cmd.Flags().Bool(flagNorms, defaults.Corpus.Norms, "Store a norm column")
	cmd.Flags().String(flagDuplicatePolicy, defaults.Query.DuplicatePolicy, "Repeated identifiers resolve as last-wins, first-wins or reject")

	return cmd
}

func (c *targetInitCommander) run(cmd *cobra.Command, a *app, source, target string) error {
	ctx := cmd.Context()

	meta, err := corpus.ReadMeta(source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	opt, err := a.cfg.Corpus.options()
	if err != nil {
		return err
	}
	tbl, err := corpus.Create(target, meta.Dim, opt)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	created := tbl.Meta()
	if err := tbl.Close(); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "target created", "path", target, "dim", created.Dim, "corpus_id", created.CorpusID)

	if len(c.seeds) == 0 {
		if a.jsonOut {
			return writeJSON(cmd.OutOrStdout(), created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s created %s (dim %d)\n", successMark, idStyle.Render(target), created.Dim)
		return nil
	}

	opts, err := a.openOptions()
	if err != nil {
		return err
	}
	nb, err := neighborhood.OpenCross(ctx, source, target, opts...)
	if err != nil {
		return err
	}
	defer nb.Close()

	results, err := addTargets(ctx, nb, c.seeds)
	if err != nil {
		return err
	}
	if !a.jsonOut {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s created %s (dim %d)\n", successMark, idStyle.Render(target), created.Dim)
	}
	return renderAdded(cmd, a, results)
}
