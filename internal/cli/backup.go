package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/neighborhood/archive"
)

const backupLongDesc string = `Back up a corpus to a blob store.

Only committed rows are archived, so a backup may run while rows are added
to the corpus.

Examples:
  neighbors backup ./items items.tar.zst --store-path /mnt/backups
  neighbors backup ./items items.tar.zst --store s3 --bucket backups --prefix neighbors/
  neighbors backup ./items items.tar.zst --store minio --endpoint localhost:9000 --bucket backups`

type backupCommander struct{}

func newBackupCmd(a *app) *cobra.Command {
	cmder := &backupCommander{}

	cmd := &cobra.Command{
		Use:   "backup <dir> <name>",
		Short: "Back up a corpus to a blob store",
		Long:  backupLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args[0], args[1])
		},
	}
	registerStoreFlags(cmd)

	return cmd
}

func (c *backupCommander) run(cmd *cobra.Command, a *app, dir, name string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx, a.cfg.Store)
	if err != nil {
		return err
	}

	info, err := archive.Backup(ctx, dir, store, name)
	if err != nil {
		a.logger.ErrorContext(ctx, "backup failed", "path", dir, "archive", name, "error", err)
		return err
	}
	a.logger.InfoContext(ctx, "backup written",
		"path", dir,
		"archive", name,
		"rows", info.Meta.Rows,
		"bytes", info.Bytes,
		"duration", info.Duration,
	)

	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), info)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s backed up %d rows to %s (%d bytes)\n",
		successMark, info.Meta.Rows, idStyle.Render(name), info.Bytes)
	return nil
}

const restoreLongDesc string = `Restore a corpus from a blob store.

The destination directory must be missing or empty.

Examples:
  neighbors restore items.tar.zst ./items --store-path /mnt/backups`

type restoreCommander struct{}

func newRestoreCmd(a *app) *cobra.Command {
	cmder := &restoreCommander{}

	cmd := &cobra.Command{
		Use:   "restore <name> <dir>",
		Short: "Restore a corpus from a blob store",
		Long:  restoreLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, a, args[0], args[1])
		},
	}
	registerStoreFlags(cmd)

	return cmd
}

func (c *restoreCommander) run(cmd *cobra.Command, a *app, name, dir string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx, a.cfg.Store)
	if err != nil {
		return err
	}

	info, err := archive.Restore(ctx, store, name, dir)
	if err != nil {
		a.logger.ErrorContext(ctx, "restore failed", "path", dir, "archive", name, "error", err)
		return err
	}
	a.logger.InfoContext(ctx, "corpus restored",
		"path", dir,
		"archive", name,
		"rows", info.Meta.Rows,
		"corpus_id", info.Meta.CorpusID,
	)

	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), info)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s restored %d rows into %s\n",
		successMark, info.Meta.Rows, idStyle.Render(dir))
	return nil
}
