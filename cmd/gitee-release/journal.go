package main

import (
	"github.com/spf13/cobra"

	"github.com/yourorg/gitee-release/internal/app"
	"github.com/yourorg/gitee-release/internal/config"
)

func (c *cli) newJournalCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List releases recorded with --journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel, a, err := c.load(cmd, config.Notes)
			if err != nil {
				return err
			}
			defer cancel()

			releases, err := a.Journal(ctx, c.v.GetString(config.KeyOwner), c.v.GetString(config.KeyRepo))
			if err != nil {
				return err
			}
			return app.WriteJournal(cmd.OutOrStdout(), releases, format)
		},
	}
	fs := cmd.Flags()
	fs.String(config.KeyJournal, "", "Journal sqlite file")
	fs.String(config.KeyOwner, "", "Only list releases of this owner")
	fs.String(config.KeyRepo, "", "Only list releases of this repository")
	fs.StringVar(&format, "format", app.FormatText, "Output format (text, json, yaml)")
	return cmd
}
