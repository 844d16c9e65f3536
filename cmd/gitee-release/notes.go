package main

import (
	"github.com/spf13/cobra"

	"github.com/yourorg/gitee-release/internal/app"
	"github.com/yourorg/gitee-release/internal/config"
)

func (c *cli) newNotesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Print the release notes the next release would get, without publishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel, a, err := c.load(cmd, config.Notes)
			if err != nil {
				return err
			}
			defer cancel()

			res, err := a.Notes(ctx)
			if err != nil {
				return err
			}
			return app.WriteNotes(cmd.OutOrStdout(), res.Info, format)
		},
	}
	addAnalyzerFlags(cmd.Flags())
	cmd.Flags().StringVar(&format, "format", app.FormatMarkdown, "Output format (markdown, json, yaml)")
	return cmd
}
