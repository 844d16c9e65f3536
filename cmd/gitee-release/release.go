package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourorg/gitee-release/internal/config"
)

func (c *cli) newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Create a release and upload artifacts (same as the root command)",
		Args:  cobra.NoArgs,
		RunE:  c.runRelease,
	}
	addReleaseFlags(cmd.Flags())
	addAnalyzerFlags(cmd.Flags())
	return cmd
}

func (c *cli) runRelease(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	ctx, cancel, a, err := c.load(cmd, config.Release)
	if err != nil {
		return err
	}
	defer cancel()

	report, err := a.Release(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", report.Info.TagName, report.Outcome.Release.ID, report.Outcome.Release.HTMLURL)
	return nil
}
