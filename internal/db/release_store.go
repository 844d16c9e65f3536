package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Release is one journal entry.
type Release struct {
	ID         int64      `json:"id" yaml:"id"`
	RunID      string     `json:"run_id" yaml:"run_id"`
	Owner      string     `json:"owner" yaml:"owner"`
	Repo       string     `json:"repo" yaml:"repo"`
	TagName    string     `json:"tag_name" yaml:"tag_name"`
	Name       string     `json:"name" yaml:"name"`
	ReleaseID  int64      `json:"release_id" yaml:"release_id"`
	HTMLURL    string     `json:"html_url,omitempty" yaml:"html_url,omitempty"`
	Draft      bool       `json:"draft" yaml:"draft"`
	Prerelease bool       `json:"prerelease" yaml:"prerelease"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	Artifacts  []Artifact `json:"artifacts" yaml:"artifacts"`
}

// Artifact is the recorded outcome of one artifact of a release.
type Artifact struct {
	Path     string `json:"path" yaml:"path"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Status   string `json:"status" yaml:"status"`
	Detail   string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Store provides database operations
type Store struct {
	db *DB
}

// NewStore creates a new store instance
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// RecordRelease stores r and its artifacts in one transaction and returns the row id.
func (s *Store) RecordRelease(ctx context.Context, r Release) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO releases (run_id, owner, repo, tag_name, name, release_id, html_url, draft, prerelease, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, query, r.RunID, r.Owner, r.Repo, r.TagName, r.Name, r.ReleaseID, r.HTMLURL,
		boolToInt(r.Draft), boolToInt(r.Prerelease), r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert release: %w", err)
	}
	row, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert release: %w", err)
	}

	for i, a := range r.Artifacts {
		query := `INSERT INTO artifacts (release_row, position, path, filename, status, detail) VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query, row, i, a.Path, a.Filename, a.Status, a.Detail); err != nil {
			return 0, fmt.Errorf("insert artifact %s: %w", a.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return row, nil
}

// ListReleases returns journal entries, newest first. Empty owner or repo
// matches any value.
func (s *Store) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	var where []string
	var args []any
	if owner != "" {
		where = append(where, "owner = ?")
		args = append(args, owner)
	}
	if repo != "" {
		where = append(where, "repo = ?")
		args = append(args, repo)
	}

	query := `SELECT id, run_id, owner, repo, tag_name, COALESCE(name, ''), release_id, COALESCE(html_url, ''), draft, prerelease, created_at FROM releases`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		var r Release
		var draft, prerelease int
		var created string
		if err := rows.Scan(&r.ID, &r.RunID, &r.Owner, &r.Repo, &r.TagName, &r.Name, &r.ReleaseID, &r.HTMLURL, &draft, &prerelease, &created); err != nil {
			return nil, err
		}
		r.Draft = draft == 1
		r.Prerelease = prerelease == 1
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		releases = append(releases, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range releases {
		arts, err := s.listArtifacts(ctx, releases[i].ID)
		if err != nil {
			return nil, err
		}
		releases[i].Artifacts = arts
	}
	return releases, nil
}

func (s *Store) listArtifacts(ctx context.Context, row int64) ([]Artifact, error) {
	query := `SELECT path, COALESCE(filename, ''), status, COALESCE(detail, '') FROM artifacts WHERE release_row = ? ORDER BY position`
	rows, err := s.db.conn.QueryContext(ctx, query, row)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var arts []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.Path, &a.Filename, &a.Status, &a.Detail); err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	return arts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
