package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/gitee-release/internal/changelog"
	"github.com/yourorg/gitee-release/internal/gitee"
	"github.com/yourorg/gitee-release/internal/i18n"
)

type fakeAPI struct {
	creates atomic.Int32
	uploads atomic.Int32
}

func newFakeAPI(t *testing.T, createStatus int, createBody string, uploadStatus int) (*httptest.Server, *fakeAPI) {
	t.Helper()
	counts := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/attach_files"):
			counts.uploads.Add(1)
			w.WriteHeader(uploadStatus)
			_, _ = io.WriteString(w, `{}`)
		case strings.HasSuffix(r.URL.Path, "/releases"):
			counts.creates.Add(1)
			w.WriteHeader(createStatus)
			_, _ = io.WriteString(w, createBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, counts
}

func newPublisher(srvURL, lang string, out io.Writer) *Publisher {
	if out == nil {
		out = io.Discard
	}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(gitee.New("secret", gitee.WithBaseURL(srvURL)), i18n.New(lang), log)
}

func request(tag string, artifacts ...string) Request {
	return Request{
		Owner:           "acme",
		Repo:            "widget",
		TargetCommitish: "master",
		Info:            changelog.ReleaseInfo{TagName: tag, Name: "Release " + strings.TrimPrefix(tag, "v"), Body: "notes"},
		Artifacts:       artifacts,
	}
}

func TestInvalidTagMakesNoRequest(t *testing.T) {
	srv, counts := newFakeAPI(t, http.StatusCreated, `{"id":1}`, http.StatusCreated)

	for _, lang := range []string{"en-us", "zh-cn"} {
		t.Run(lang, func(t *testing.T) {
			p := newPublisher(srv.URL, lang, nil)
			_, err := p.Publish(context.Background(), request("not-a-version"))

			var tagErr *InvalidTagError
			require.ErrorAs(t, err, &tagErr)
			assert.Equal(t, "not-a-version", tagErr.Tag)
			assert.Equal(t, i18n.New(lang).Text(i18n.InvalidTag)+": not-a-version", err.Error())
		})
	}
	assert.Zero(t, counts.creates.Load())
	assert.Zero(t, counts.uploads.Load())
}

func TestValidateTag(t *testing.T) {
	p := New(nil, i18n.New("en-us"), nil)
	tests := []struct {
		tag string
		ok  bool
	}{
		{"v1.2.3", true},
		{"1.2.3", true},
		{"v2.0.0-rc.1+build.5", true},
		{"", false},
		{"v1.2", false},
		{"release-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			err := p.ValidateTag(tt.tag)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPublishSkipsMissingArtifact(t *testing.T) {
	srv, counts := newFakeAPI(t, http.StatusCreated, `{"id":123}`, http.StatusCreated)

	dir := t.TempDir()
	present := filepath.Join(dir, "app.tar.gz")
	require.NoError(t, os.WriteFile(present, []byte("bits"), 0o644))
	missing := filepath.Join(dir, "missing.zip")

	var logs bytes.Buffer
	p := newPublisher(srv.URL, "en-us", &logs)
	out, err := p.Publish(context.Background(), request("v1.0.0", missing, present))
	require.NoError(t, err)

	assert.Equal(t, int64(123), out.Release.ID)
	assert.Empty(t, out.Release.HTMLURL)
	assert.EqualValues(t, 1, counts.creates.Load())
	assert.EqualValues(t, 1, counts.uploads.Load())

	require.Len(t, out.Artifacts, 2)
	assert.Equal(t, Skipped, out.Artifacts[0].Status)
	var skipErr *ArtifactSkippedError
	require.ErrorAs(t, out.Artifacts[0].Err, &skipErr)
	assert.Equal(t, missing, skipErr.Path)

	assert.Equal(t, Uploaded, out.Artifacts[1].Status)
	assert.Equal(t, "app.tar.gz", out.Artifacts[1].Filename)
	assert.NoError(t, out.Artifacts[1].Err)

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "Artifact path is not a file or does not exist, skipping")
}

func TestPublishUnauthorized(t *testing.T) {
	tests := []struct {
		lang   string
		prefix string
	}{
		{"en-us", "API request failed with status"},
		{"zh-cn", "API 请求失败，状态码"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			srv, counts := newFakeAPI(t, http.StatusUnauthorized, `{"message":"Unauthorized"}`, http.StatusCreated)

			artifact := filepath.Join(t.TempDir(), "a.bin")
			require.NoError(t, os.WriteFile(artifact, []byte("x"), 0o644))

			p := newPublisher(srv.URL, tt.lang, nil)
			_, err := p.Publish(context.Background(), request("v1.0.0", artifact))
			require.Error(t, err)

			assert.Equal(t, tt.prefix+`: 401 Unauthorized - {"message":"Unauthorized"}`, err.Error())
			var apiErr *gitee.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
			assert.EqualValues(t, 1, counts.creates.Load())
			assert.Zero(t, counts.uploads.Load())
		})
	}
}

func TestPublishDecodeFailure(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusCreated, `{"html_url":"x"}`, http.StatusCreated)

	_, err := newPublisher(srv.URL, "en-us", nil).Publish(context.Background(), request("v1.0.0"))
	var decErr *gitee.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to parse release creation response: "))
}

func TestPublishLogsURL(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusCreated, `{"id":9,"html_url":"https://gitee.com/acme/widget/releases/v1.0.0"}`, http.StatusCreated)

	var logs bytes.Buffer
	out, err := newPublisher(srv.URL, "en-us", &logs).Publish(context.Background(), request("v1.0.0"))
	require.NoError(t, err)
	assert.Equal(t, "https://gitee.com/acme/widget/releases/v1.0.0", out.Release.HTMLURL)
	assert.Empty(t, out.Artifacts)
	assert.Contains(t, logs.String(), "Release created successfully: https://gitee.com/acme/widget/releases/v1.0.0")
}

func TestUploadFailureIsNotFatal(t *testing.T) {
	srv, counts := newFakeAPI(t, http.StatusCreated, `{"id":5}`, http.StatusInternalServerError)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o644))

	out, err := newPublisher(srv.URL, "en-us", nil).Publish(context.Background(), request("v1.0.0", a, dir, b))
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts.uploads.Load())

	require.Len(t, out.Artifacts, 3)
	assert.Equal(t, Failed, out.Artifacts[0].Status)
	assert.Equal(t, Skipped, out.Artifacts[1].Status)
	assert.Equal(t, Failed, out.Artifacts[2].Status)

	var upErr *ArtifactUploadError
	require.ErrorAs(t, out.Artifacts[2].Err, &upErr)
	assert.Equal(t, "b.bin", upErr.Filename)

	uploaded, skipped, failed := Counts(out.Artifacts)
	assert.Equal(t, 0, uploaded)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 2, failed)
}

func TestUploadArtifactsSkipReasons(t *testing.T) {
	errDenied := errors.New("permission denied")

	tests := []struct {
		name     string
		lang     string
		path     func(dir string) string
		readFile func(string) ([]byte, error)
		reason   i18n.Key
		wantErr  error
	}{
		{
			name:   "directory",
			lang:   "en-us",
			path:   func(dir string) string { return dir },
			reason: i18n.ArtifactNotFile,
		},
		{
			name:   "directory zh",
			lang:   "zh-cn",
			path:   func(dir string) string { return dir },
			reason: i18n.ArtifactNotFile,
		},
		{
			name: "unreadable file",
			lang: "en-us",
			path: func(dir string) string {
				p := filepath.Join(dir, "locked.bin")
				require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
				return p
			},
			readFile: func(string) ([]byte, error) { return nil, errDenied },
			reason:   i18n.FileReadError,
			wantErr:  errDenied,
		},
		{
			name: "unreadable file zh",
			lang: "zh-cn",
			path: func(dir string) string {
				p := filepath.Join(dir, "locked.bin")
				require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
				return p
			},
			readFile: func(string) ([]byte, error) { return nil, errDenied },
			reason:   i18n.FileReadError,
			wantErr:  errDenied,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, counts := newFakeAPI(t, http.StatusCreated, `{"id":1}`, http.StatusCreated)

			dir := t.TempDir()
			bad := tt.path(dir)
			good := filepath.Join(t.TempDir(), "good.bin")
			require.NoError(t, os.WriteFile(good, []byte("good"), 0o644))

			var logs bytes.Buffer
			p := newPublisher(srv.URL, tt.lang, &logs)
			if tt.readFile != nil {
				p.readFile = func(path string) ([]byte, error) {
					if path == bad {
						return tt.readFile(path)
					}
					return os.ReadFile(path)
				}
			}

			results := p.UploadArtifacts(context.Background(), "acme", "widget", 1, []string{bad, good})
			require.Len(t, results, 2)
			assert.EqualValues(t, 1, counts.uploads.Load())

			assert.Equal(t, Skipped, results[0].Status)
			var skipErr *ArtifactSkippedError
			require.ErrorAs(t, results[0].Err, &skipErr)
			reason := i18n.New(tt.lang).Text(tt.reason)
			assert.Equal(t, bad, skipErr.Path)
			assert.Equal(t, reason, skipErr.Reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, results[0].Err, tt.wantErr)
			}
			assert.Contains(t, logs.String(), "level=WARN")
			assert.Contains(t, logs.String(), reason)

			assert.Equal(t, Uploaded, results[1].Status)
			assert.Equal(t, "good.bin", results[1].Filename)
		})
	}
}
