package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/neighborhood"
	"github.com/hupe1980/neighborhood/metric"
)

// corpusFlags selects cross mode (--source and --target) or self mode (--corpus).
type corpusFlags struct {
	source string
	target string
	corpus string
}

func (f *corpusFlags) register(cmd *cobra.Command, self bool) {
	cmd.Flags().StringVar(&f.source, "source", "", "Source corpus directory")
	cmd.Flags().StringVar(&f.target, "target", "", "Target corpus directory")
	cmd.MarkFlagsRequiredTogether("source", "target")
	if self {
		cmd.Flags().StringVar(&f.corpus, "corpus", "", "Corpus directory for self ranking")
		cmd.MarkFlagsMutuallyExclusive("corpus", "source")
		cmd.MarkFlagsOneRequired("corpus", "source")
	} else {
		_ = cmd.MarkFlagRequired("source")
	}
	cmd.Flags().Int(flagParallelism, 0, "Scoring goroutines per query (0 = GOMAXPROCS)")
	cmd.Flags().String(flagDuplicatePolicy, NewDefaultConfig().Query.DuplicatePolicy, "Repeated identifiers resolve as last-wins, first-wins or reject")
}

func (f *corpusFlags) openCross(ctx context.Context, a *app) (*neighborhood.Cross, error) {
	opts, err := a.openOptions()
	if err != nil {
		return nil, err
	}
	return neighborhood.OpenCross(ctx, f.source, f.target, opts...)
}

func (f *corpusFlags) openSelf(ctx context.Context, a *app) (*neighborhood.Self, error) {
	opts, err := a.openOptions()
	if err != nil {
		return nil, err
	}
	return neighborhood.OpenSelf(ctx, f.corpus, opts...)
}

const neighborsLongDesc string = `Rank the neighbors of an identifier.

Cross mode (--source and --target) ranks every target row by its dot product
with the source row. Self mode (--corpus) ranks the corpus against itself by
a normalized metric: cosine (default), jaccard, or generalized with --p.

An unknown identifier yields no neighbors.

Examples:
  neighbors neighbors alice --source ./users --target ./items -n 10
  neighbors neighbors doc-42 --corpus ./docs --metric jaccard
  neighbors neighbors doc-42 --corpus ./docs --metric generalized --p 1.5`

type neighborsCommander struct {
	corpusFlags
	metric string
	p      float64
}

func newNeighborsCmd(a *app) *cobra.Command {
	cmder := &neighborsCommander{}

	cmd := &cobra.Command{
		Use:     "neighbors <id>",
		Aliases: []string{"nn"},
		Short:   "Rank the neighbors of an identifier",
		Long:    neighborsLongDesc,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args[0])
		},
	}

	cmder.register(cmd, true)
	cmd.Flags().IntP(flagN, "n", neighborhood.DefaultN, "Number of neighbors")
	cmd.Flags().StringVar(&cmder.metric, "metric", "cosine", "Self mode metric (cosine, jaccard, generalized)")
	cmd.Flags().Float64Var(&cmder.p, "p", 0, "Exponent of the generalized metric")
	cmd.MarkFlagsMutuallyExclusive("metric", "source")

	return cmd
}

func (c *neighborsCommander) run(cmd *cobra.Command, a *app, id string) error {
	ctx := cmd.Context()
	n := a.cfg.Query.N

	var (
		hits []neighborhood.Neighbor
		err  error
	)
	if c.corpus != "" {
		var p *float64
		if cmd.Flags().Changed("p") {
			p = &c.p
		}
		m, perr := metric.Parse(c.metric, p)
		if perr != nil {
			return perr
		}

		nb, oerr := c.openSelf(ctx, a)
		if oerr != nil {
			return oerr
		}
		defer nb.Close()
		hits, err = nb.Neighbors(ctx, id, n, m)
	} else {
		nb, oerr := c.openCross(ctx, a)
		if oerr != nil {
			return oerr
		}
		defer nb.Close()
		hits, err = nb.Neighbors(ctx, id, n)
	}
	if err != nil {
		return err
	}

	if a.jsonOut {
		if hits == nil {
			hits = []neighborhood.Neighbor{}
		}
		return writeJSON(cmd.OutOrStdout(), hits)
	}
	renderNeighbors(cmd.OutOrStdout(), id, hits)
	return nil
}

const locationLongDesc string = `Print the stored vector of an identifier.

Cross mode reads the source corpus; self mode reads --corpus.

Examples:
  neighbors location alice --source ./users --target ./items
  neighbors location doc-42 --corpus ./docs --json`

type locationCommander struct {
	corpusFlags
}

func newLocationCmd(a *app) *cobra.Command {
	cmder := &locationCommander{}

	cmd := &cobra.Command{
		Use:   "location <id>",
		Short: "Print the stored vector of an identifier",
		Long:  locationLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args[0])
		},
	}
	cmder.register(cmd, true)

	return cmd
}

func (c *locationCommander) run(cmd *cobra.Command, a *app, id string) error {
	ctx := cmd.Context()

	var (
		vec []float32
		err error
	)
	if c.corpus != "" {
		nb, oerr := c.openSelf(ctx, a)
		if oerr != nil {
			return oerr
		}
		defer nb.Close()
		vec, err = nb.Location(ctx, id)
	} else {
		nb, oerr := c.openCross(ctx, a)
		if oerr != nil {
			return oerr
		}
		defer nb.Close()
		vec, err = nb.Location(ctx, id)
	}
	if err != nil {
		return err
	}

	if a.jsonOut {
		if vec == nil {
			vec = []float32{}
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "vector": vec})
	}
	if vec == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s not found\n", dimStyle.Render("●"), idStyle.Render(id))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", idStyle.Render(id), vec)
	return nil
}

const addTargetLongDesc string = `Append source rows to the target corpus.

Each identifier must exist in the source and must not already be a target
member; otherwise it is skipped. Appends are durable before the command
reports them.

Examples:
  neighbors add-target bob carol --source ./users --target ./items`

type addTargetCommander struct {
	corpusFlags
}

// addResult is the outcome of one AddTarget call.
type addResult struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Added bool   `json:"added"`
}

func newAddTargetCmd(a *app) *cobra.Command {
	cmder := &addTargetCommander{}

	cmd := &cobra.Command{
		Use:   "add-target <id>...",
		Short: "Append source rows to the target corpus",
		Long:  addTargetLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args)
		},
	}
	cmder.register(cmd, false)

	return cmd
}

func (c *addTargetCommander) run(cmd *cobra.Command, a *app, ids []string) error {
	ctx := cmd.Context()

	nb, err := c.openCross(ctx, a)
	if err != nil {
		return err
	}
	defer nb.Close()

	results, err := addTargets(ctx, nb, ids)
	if err != nil {
		return err
	}
	return renderAdded(cmd, a, results)
}

func addTargets(ctx context.Context, nb *neighborhood.Cross, ids []string) ([]addResult, error) {
	results := make([]addResult, 0, len(ids))
	for _, id := range ids {
		idx, err := nb.AddTarget(ctx, id)
		if err != nil {
			return results, fmt.Errorf("add %q: %w", id, err)
		}
		results = append(results, addResult{ID: id, Index: idx, Added: idx >= 0})
	}
	return results, nil
}

func renderAdded(cmd *cobra.Command, a *app, results []addResult) error {
	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	for _, r := range results {
		if r.Added {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s at index %d\n", successMark, idStyle.Render(r.ID), r.Index)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s skipped (unknown or already a target)\n", skipMark, idStyle.Render(r.ID))
		}
	}
	return nil
}
