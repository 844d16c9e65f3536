package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yourorg/gitee-release/internal/app"
	"github.com/yourorg/gitee-release/internal/config"
	"github.com/yourorg/gitee-release/internal/logging"
)

// cli carries state shared by the commands of one execution.
type cli struct {
	v      *viper.Viper
	logger *slog.Logger
	opts   []app.Option
}

func newRootCmd(opts ...app.Option) *cobra.Command {
	c := &cli{v: config.New(), opts: opts}

	root := &cobra.Command{
		Use:   "gitee-release",
		Short: "Create Gitee releases from Conventional Commits",
		Long: `Create a release on Gitee and upload its artifacts.

With --auto-gen-notes the tag, name and body are derived from the commits
since the previous v<semver> tag. Otherwise --tag-name, --name and --body
are used as given.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runRelease,
	}

	pf := root.PersistentFlags()
	pf.String(config.KeyConfig, "", "YAML config file")
	pf.String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	pf.String(config.KeyLogFormat, "", "Log format (text, json); json by default when ENV=production")
	pf.Duration(config.KeyTimeout, 0, "Bound the whole run, e.g. 5m (0 disables)")

	addReleaseFlags(root.Flags())
	addAnalyzerFlags(root.Flags())

	root.AddCommand(
		c.newReleaseCmd(),
		c.newNotesCmd(),
		c.newJournalCmd(),
		newVersionCmd(),
	)
	return root
}

func addReleaseFlags(fs *pflag.FlagSet) {
	fs.String(config.KeyOwner, "", "Repository owner")
	fs.String(config.KeyRepo, "", "Repository name")
	fs.String(config.KeyToken, "", "Gitee personal access token")
	fs.String(config.KeyName, "", "Release name")
	fs.String(config.KeyBody, "", "Release description")
	fs.Bool(config.KeyDraft, false, "Is draft release")
	fs.Bool(config.KeyPrerelease, false, "Is prerelease")
	fs.String(config.KeyLang, "zh-cn", "Language for messages (e.g., en-us, zh-cn)")
	fs.StringSlice(config.KeyArtifacts, nil, "Paths to asset files to upload, comma separated")
	fs.Bool(config.KeyAutoGenNotes, false, "Generate tag, name and body from Conventional Commits")
	fs.String(config.KeyAPIBaseURL, "https://gitee.com", "Gitee API host")
	fs.String(config.KeyJournal, "", "Record published releases in this sqlite file")
	fs.String(config.KeyTelegramToken, "", "Telegram bot token for release announcements")
	fs.String(config.KeyTelegramChat, "", "Telegram chat id or @channel for release announcements")
	fs.String(config.KeyTimeZone, "UTC", "Time zone of dates in announcements")
}

func addAnalyzerFlags(fs *pflag.FlagSet) {
	fs.String(config.KeyTagName, "", "Tag name (e.g., v1.0.0); overrides the computed version with --auto-gen-notes")
	fs.String(config.KeyTargetCommitish, "", "Target commit or branch (e.g., main)")
	fs.String(config.KeyRepoPath, ".", "Path to the local git repository")
	fs.String(config.KeyPreviousTag, "", "Tag to generate notes from; defaults to the latest v<semver> tag")
	fs.String(config.KeyRemote, "origin", "Remote to fetch tags from")
}

// setup binds the flags of the running command and configures logging.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if err := config.ReadFile(c.v); err != nil {
		return err
	}

	logger, err := logging.Setup(logging.Options{
		Level:  c.v.GetString(config.KeyLogLevel),
		Format: c.v.GetString(config.KeyLogFormat),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// load resolves the config and builds the App for one command.
func (c *cli) load(cmd *cobra.Command, mode config.Mode) (context.Context, context.CancelFunc, *app.App, error) {
	cfg, err := config.Load(c.v, mode)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx := cmd.Context()
	cancel := context.CancelFunc(func() {})
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	}
	return ctx, cancel, app.New(cfg, c.logger, c.opts...), nil
}
