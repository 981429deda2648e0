// Package cli implements the neighbors command line tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/neighborhood"
)

const rootLongDesc string = `Neighbors ranks vectors by exact similarity.

A corpus is a directory of identifier, vector and norm columns. Build corpora
from JSON lines or SQLite tables, rank a source corpus against a growable
target corpus, or rank one corpus against itself by cosine, Jaccard or
generalized similarity.

Configuration is read from $XDG_CONFIG_HOME/neighbors/config.yaml (or
--config) and NEIGHBORS_* environment variables. Flags take precedence.`

const rootShortDesc string = "Neighbors - exact vector neighbor ranking"

// app carries state shared by all subcommands.
type app struct {
	configFile string
	jsonOut    bool

	cfg    Config
	logger *neighborhood.Logger
}

// NewRootCmd returns the neighbors command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	defaults := NewDefaultConfig()

	cmd := &cobra.Command{
		Use:           "neighbors",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&a.configFile, flagConfig, "", "Config file (default $XDG_CONFIG_HOME/neighbors/config.yaml)")
	cmd.PersistentFlags().String(flagLogLevel, defaults.Log.Level, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(flagLogFormat, defaults.Log.Format, "Log format (text, json, logfmt)")
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Write results as JSON")

	// Add subcommands
	cmd.AddCommand(
		newBuildCmd(a),
		newTargetCmd(a),
		newNeighborsCmd(a),
		newLocationCmd(a),
		newAddTargetCmd(a),
		newInfoCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
	)

	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(cmd, a.configFile)
	if err != nil {
		return err
	}
	logger, err := NewLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) openOptions() ([]neighborhood.Option, error) {
	opts, err := a.cfg.Query.options()
	if err != nil {
		return nil, err
	}
	return append(opts, neighborhood.WithLogger(a.logger)), nil
}
