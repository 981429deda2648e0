package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/neighborhood/archive"
	"github.com/hupe1980/neighborhood/corpus"
)

const infoLongDesc string = `Show the manifest of a corpus or a backup archive.

Examples:
  neighbors info ./items
  neighbors info --archive items.tar.zst --store s3 --bucket backups`

type infoCommander struct {
	archive string
}

func newInfoCmd(a *app) *cobra.Command {
	cmder := &infoCommander{}

	cmd := &cobra.Command{
		Use:   "info [dir]",
		Short: "Show the manifest of a corpus or backup",
		Long:  infoLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args)
		},
	}

	cmd.Flags().StringVar(&cmder.archive, "archive", "", "Backup archive name in the blob store")
	registerStoreFlags(cmd)

	return cmd
}

func (c *infoCommander) run(cmd *cobra.Command, a *app, args []string) error {
	ctx := cmd.Context()

	var (
		meta  *corpus.Meta
		title string
		err   error
	)
	switch {
	case c.archive != "" && len(args) == 0:
		store, serr := openStore(ctx, a.cfg.Store)
		if serr != nil {
			return serr
		}
		meta, err = archive.Inspect(ctx, store, c.archive)
		title = "Archive " + c.archive
	case c.archive == "" && len(args) == 1:
		meta, err = corpus.ReadMeta(args[0])
		title = "Corpus " + args[0]
	default:
		return fmt.Errorf("give either a corpus directory or --archive")
	}
	if err != nil {
		return err
	}

	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), meta)
	}
	renderMeta(cmd.OutOrStdout(), title, *meta)
	return nil
}
