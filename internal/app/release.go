package app

import (
	"context"

	"github.com/yourorg/gitee-release/internal/changelog"
	"github.com/yourorg/gitee-release/internal/compose"
	"github.com/yourorg/gitee-release/internal/db"
	"github.com/yourorg/gitee-release/internal/gitee"
	"github.com/yourorg/gitee-release/internal/i18n"
	"github.com/yourorg/gitee-release/internal/publish"
	"github.com/yourorg/gitee-release/internal/telegram"
)

// Report summarizes a successful release run.
type Report struct {
	RunID      string
	Info       changelog.ReleaseInfo
	Outcome    *publish.Outcome
	JournalRow int64
	Announced  bool
}

// Release resolves the release description, publishes it and then, when
// configured, journals and announces it. Journal and announcement failures
// are logged and do not fail the run since the release already exists.
func (a *App) Release(ctx context.Context) (*Report, error) {
	cfg := a.cfg

	info, err := a.releaseInfo(ctx)
	if err != nil {
		return nil, err
	}

	api := gitee.New(cfg.Token, gitee.WithBaseURL(cfg.APIBaseURL), gitee.WithHTTPClient(a.client()))
	pub := publish.New(api, i18n.New(cfg.Lang), a.log)

	out, err := pub.Publish(ctx, publish.Request{
		Owner:           cfg.Owner,
		Repo:            cfg.Repo,
		Info:            info,
		TargetCommitish: cfg.TargetCommitish,
		Draft:           cfg.Draft,
		Prerelease:      cfg.Prerelease,
		Artifacts:       cfg.Artifacts,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: a.runID, Info: info, Outcome: out}
	uploaded, skipped, failed := publish.Counts(out.Artifacts)
	a.log.Info("Release finished",
		"release_id", out.Release.ID,
		"uploaded", uploaded,
		"skipped", skipped,
		"failed", failed,
	)

	if cfg.JournalPath != "" {
		row, err := a.record(ctx, info, out)
		if err != nil {
			a.log.Error("Failed to record release in journal", "journal", cfg.JournalPath, "error", err)
		} else {
			report.JournalRow = row
		}
	}

	if cfg.Notify() {
		if err := a.announce(ctx, info, out); err != nil {
			a.log.Error("Failed to announce release", "chat", cfg.TelegramChat, "error", err)
		} else {
			report.Announced = true
		}
	}

	return report, nil
}

func (a *App) record(ctx context.Context, info changelog.ReleaseInfo, out *publish.Outcome) (int64, error) {
	d, err := db.Open(a.cfg.JournalPath)
	if err != nil {
		return 0, err
	}
	defer d.Close()

	entry := db.Release{
		RunID:      a.runID,
		Owner:      a.cfg.Owner,
		Repo:       a.cfg.Repo,
		TagName:    info.TagName,
		Name:       info.Name,
		ReleaseID:  out.Release.ID,
		HTMLURL:    out.Release.HTMLURL,
		Draft:      a.cfg.Draft,
		Prerelease: a.cfg.Prerelease,
		CreatedAt:  a.now(),
	}
	for _, r := range out.Artifacts {
		entry.Artifacts = append(entry.Artifacts, db.Artifact{
			Path:     r.Path,
			Filename: r.Filename,
			Status:   r.Status.String(),
			Detail:   r.Detail(),
		})
	}

	row, err := db.NewStore(d).RecordRelease(ctx, entry)
	if err != nil {
		return 0, err
	}
	a.log.Debug("Recorded release", "journal", a.cfg.JournalPath, "row", row)
	return row, nil
}

func (a *App) announce(ctx context.Context, info changelog.ReleaseInfo, out *publish.Outcome) error {
	opts := []telegram.Option{telegram.WithHTTPClient(a.client())}
	if a.tgEndpoint != "" {
		opts = append(opts, telegram.WithEndpoint(a.tgEndpoint), telegram.WithBackoff(a.tgBackoff))
	}
	sender, err := telegram.NewSender(a.cfg.TelegramToken, opts...)
	if err != nil {
		return err
	}

	uploaded, skipped, failed := publish.Counts(out.Artifacts)
	msg := compose.BuildHTML(compose.Input{
		RepoFull:  repoFull(a.cfg.Owner, a.cfg.Repo),
		Tag:       info.TagName,
		URL:       out.Release.HTMLURL,
		BodyMD:    info.Body,
		Published: a.now(),
		Uploaded:  uploaded,
		Skipped:   skipped,
		Failed:    failed,
	}, compose.Options{MaxBullets: 8, MaxChars: 140, TimeZone: a.cfg.TimeZone})

	if err := sender.SendHTML(ctx, a.cfg.TelegramChat, msg); err != nil {
		return err
	}
	a.log.Info("Announced release", "chat", a.cfg.TelegramChat)
	return nil
}
