package gitee

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRelease(t *testing.T) {
	var got ReleaseRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v5/repos/acme/widget/releases", r.URL.Path)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":42,"html_url":"https://gitee.com/acme/widget/releases/v1.2.0"}`)
	}))
	defer srv.Close()

	c := New("secret", WithBaseURL(srv.URL+"/"))
	rel, err := c.CreateRelease(context.Background(), "acme", "widget", ReleaseRequest{
		TagName:         "v1.2.0",
		TargetCommitish: "master",
		Name:            "Release 1.2.0",
		Body:            "notes",
		Prerelease:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), rel.ID)
	assert.Equal(t, "https://gitee.com/acme/widget/releases/v1.2.0", rel.HTMLURL)
	assert.Equal(t, "v1.2.0", got.TagName)
	assert.Equal(t, "master", got.TargetCommitish)
	assert.True(t, got.Prerelease)
	assert.False(t, got.Draft)
}

func TestCreateReleaseErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"message":"Unauthorized"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, 401, apiErr.StatusCode)
				assert.Equal(t, `401 Unauthorized - {"message":"Unauthorized"}`, apiErr.Error())
			},
		},
		{
			name:   "missing id",
			status: http.StatusOK,
			body:   `{"html_url":"https://example.invalid"}`,
			check: func(t *testing.T, err error) {
				var decErr *DecodeError
				require.ErrorAs(t, err, &decErr)
			},
		},
		{
			name:   "not json",
			status: http.StatusCreated,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				var decErr *DecodeError
				require.ErrorAs(t, err, &decErr)
				assert.Equal(t, "<html>", decErr.Body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New("t", WithBaseURL(srv.URL)).CreateRelease(context.Background(), "o", "r", ReleaseRequest{TagName: "v1.0.0"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCreateReleaseTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New("t", WithBaseURL(url)).CreateRelease(context.Background(), "o", "r", ReleaseRequest{})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestAttachFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/repos/acme/widget/releases/7/attach_files", r.URL.Path)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "secret", r.FormValue("access_token"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "app.tar.gz", hdr.Filename)
		assert.Equal(t, "application/octet-stream", hdr.Header.Get("Content-Type"))
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1}`)
	}))
	defer srv.Close()

	err := New("secret", WithBaseURL(srv.URL)).AttachFile(context.Background(), "acme", "widget", 7, "app.tar.gz", []byte("payload"))
	require.NoError(t, err)
}

func TestAttachFileRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = io.WriteString(w, "too big")
	}))
	defer srv.Close()

	err := New("t", WithBaseURL(srv.URL)).AttachFile(context.Background(), "o", "r", 1, "a.bin", []byte("x"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
	assert.Equal(t, "too big", apiErr.Body)
}
