package changelog

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	headingBreaking = "## ⚠ BREAKING CHANGES"
	headingFeatures = "## ✨ Features"
	headingFixes    = "## 🐛 Bug Fixes"
)

// RenderBody renders the non-empty groups as Markdown sections in the order
// breaking, features, fixes. Each section ends with a blank line.
func RenderBody(g Groups, commitURLBase string) string {
	var b strings.Builder
	writeSection(&b, headingBreaking, g.Breaking, commitURLBase)
	writeSection(&b, headingFeatures, g.Features, commitURLBase)
	writeSection(&b, headingFixes, g.Fixes, commitURLBase)
	return b.String()
}

func writeSection(b *strings.Builder, heading string, commits []Commit, commitURLBase string) {
	if len(commits) == 0 {
		return
	}
	b.WriteString(heading)
	b.WriteString("\n")
	for _, c := range commits {
		fmt.Fprintf(b, "- %s ([%s](%s/commit/%s))\n", c.Summary, shortSHA(c.SHA), commitURLBase, c.SHA)
	}
	b.WriteString("\n")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// CommitURLBase turns a remote URL into the web URL commit links hang off.
// git@host:owner/repo.git becomes https://host/owner/repo, http(s) URLs lose
// any userinfo and a trailing .git, anything else is returned as is.
func CommitURLBase(remoteURL string) string {
	switch {
	case strings.HasPrefix(remoteURL, "git@"):
		host, path, ok := strings.Cut(strings.TrimPrefix(remoteURL, "git@"), ":")
		if !ok {
			return remoteURL
		}
		return "https://" + host + "/" + strings.TrimSuffix(path, ".git")
	case strings.HasPrefix(remoteURL, "http"):
		u, err := url.Parse(remoteURL)
		if err != nil {
			return strings.TrimSuffix(remoteURL, ".git")
		}
		u.User = nil
		return strings.TrimSuffix(u.String(), ".git")
	default:
		return remoteURL
	}
}
