// Package app wires the analyzer, the publisher and the optional journal and
// announcement into the commands of the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/gitee-release/internal/changelog"
	"github.com/yourorg/gitee-release/internal/config"
	"github.com/yourorg/gitee-release/internal/gitrepo"
	"github.com/yourorg/gitee-release/internal/ledger"
)

// App runs one invocation of the tool.
type App struct {
	cfg   *config.Config
	log   *slog.Logger
	runID string

	creds      gitrepo.CredentialProvider
	httpClient *http.Client
	tgEndpoint string
	tgBackoff  time.Duration
	now        func() time.Time
}

// Option customizes an App.
type Option func(*App)

// WithCredentials replaces the default SSH agent and credential helper lookup.
func WithCredentials(p gitrepo.CredentialProvider) Option {
	return func(a *App) { a.creds = p }
}

// WithHTTPClient sets the client for the release API and Telegram.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// WithTelegramEndpoint overrides the Bot API endpoint format.
func WithTelegramEndpoint(endpoint string, backoff time.Duration) Option {
	return func(a *App) {
		a.tgEndpoint = endpoint
		a.tgBackoff = backoff
	}
}

// WithClock sets the time source used for journal entries and announcements.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New creates an App with a fresh run id attached to every log line.
func New(cfg *config.Config, log *slog.Logger, opts ...Option) *App {
	if log == nil {
		log = slog.Default()
	}
	runID := uuid.NewString()
	a := &App{
		cfg:   cfg,
		log:   log.With("run_id", runID),
		runID: runID,
		creds: gitrepo.AgentOrHelperCredentials,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunID identifies this invocation in logs and the journal.
func (a *App) RunID() string { return a.runID }

// Notes computes the release from the local history: tags are fetched, the
// base is resolved, the range is walked and the engine renders the result.
// A non-empty tag name in the config overrides the computed version.
func (a *App) Notes(ctx context.Context) (changelog.Result, error) {
	cfg := a.cfg
	target := cfg.TargetCommitish
	if target == "" {
		target = "HEAD"
	}
	log := a.log.With("repo_path", cfg.RepoPath, "target", target)

	repo, err := gitrepo.Open(cfg.RepoPath, gitrepo.Options{
		Remote:      cfg.Remote,
		Credentials: a.creds,
		Logger:      log,
	})
	if err != nil {
		return changelog.Result{}, err
	}

	tags, err := ledger.Load(ctx, repo)
	if err != nil {
		return changelog.Result{}, err
	}

	base, baseTag, err := tags.ResolveBase(cfg.PreviousTag)
	if err != nil {
		return changelog.Result{}, err
	}
	log.Info("Resolved base version", "base", base.String(), "base_tag", baseTag, "tags", tags.Len())

	commits, err := repo.Walk(ctx, baseTag, target)
	if err != nil {
		return changelog.Result{}, err
	}

	remoteURL, err := repo.RemoteURL()
	if err != nil {
		return changelog.Result{}, err
	}

	in := make([]changelog.Commit, len(commits))
	for i, c := range commits {
		in[i] = changelog.Commit{SHA: c.SHA, Summary: c.Summary}
	}

	res, err := changelog.Generate(base, in, cfg.TagName, changelog.CommitURLBase(remoteURL))
	if err != nil {
		return changelog.Result{}, err
	}

	log.Info("Generated release notes",
		"commits", len(commits),
		"bump", res.Bump.String(),
		"version", res.Version.String(),
		"breaking", len(res.Groups.Breaking),
		"features", len(res.Groups.Features),
		"fixes", len(res.Groups.Fixes),
	)
	return res, nil
}

// releaseInfo returns the generated notes in auto mode and the configured
// fields otherwise. Empty manual fields are logged and left to the tag gate.
func (a *App) releaseInfo(ctx context.Context) (changelog.ReleaseInfo, error) {
	if a.cfg.AutoGenNotes {
		a.log.Info("Auto-generating release notes")
		res, err := a.Notes(ctx)
		if err != nil {
			return changelog.ReleaseInfo{}, err
		}
		return res.Info, nil
	}

	if missing := a.cfg.MissingManualFields(); len(missing) > 0 {
		a.log.Warn("Tag name, release name, and body cannot be empty", "missing", strings.Join(missing, ","))
	}
	return changelog.ReleaseInfo{
		TagName: a.cfg.TagName,
		Name:    a.cfg.Name,
		Body:    a.cfg.Body,
	}, nil
}

func (a *App) client() *http.Client {
	if a.httpClient != nil {
		return a.httpClient
	}
	return &http.Client{}
}

func repoFull(owner, repo string) string {
	return fmt.Sprintf("%s/%s", owner, repo)
}
