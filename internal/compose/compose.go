// Package compose turns a published release into a short HTML announcement.
package compose

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

var (
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*•]\s+(.+)$`)
	commitLinkRe = regexp.MustCompile(`\s*\(\[[0-9a-f]{4,40}\]\([^)]*\)\)\s*$`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Options for composing messages
type Options struct {
	MaxBullets int
	MaxChars   int
	TimeZone   string
}

// Input data for composing a message
type Input struct {
	RepoFull  string
	Tag       string
	URL       string
	BodyMD    string
	Published time.Time
	Uploaded  int
	Skipped   int
	Failed    int
}

// BuildHTML creates an HTML-formatted message for Telegram
func BuildHTML(in Input, opt Options) string {
	loc, _ := time.LoadLocation(opt.TimeZone)
	if loc == nil {
		loc = time.UTC
	}

	date := in.Published.In(loc).Format("2006-01-02 15:04")
	bullets := TakeBullets(in.BodyMD, opt.MaxBullets, opt.MaxChars)

	var sb strings.Builder
	sb.WriteString("🚀 <b>")
	sb.WriteString(html.EscapeString(in.RepoFull))
	sb.WriteString("</b> ")
	if in.URL != "" {
		sb.WriteString(`<a href="` + html.EscapeString(in.URL) + `">` + html.EscapeString(in.Tag) + "</a>\n")
	} else {
		sb.WriteString(html.EscapeString(in.Tag) + "\n")
	}
	sb.WriteString("📅 " + date + "\n")

	if len(bullets) > 0 {
		shown := min(len(bullets), 4)
		for _, b := range bullets[:shown] {
			sb.WriteString("\n▪️ " + b)
		}
		if len(bullets) > shown {
			sb.WriteString(fmt.Sprintf("\n<i>... and %d more</i>", len(bullets)-shown))
		}
		sb.WriteString("\n")
	}

	if total := in.Uploaded + in.Skipped + in.Failed; total > 0 {
		sb.WriteString(fmt.Sprintf("\n📦 %d/%d artifacts uploaded", in.Uploaded, total))
		if in.Skipped > 0 {
			sb.WriteString(fmt.Sprintf(", %d skipped", in.Skipped))
		}
		if in.Failed > 0 {
			sb.WriteString(fmt.Sprintf(", %d failed", in.Failed))
		}
		sb.WriteString("\n")
	}

	if in.URL != "" {
		sb.WriteString("\n<a href=\"" + html.EscapeString(in.URL) + "\">📖 Full changelog</a>")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// TakeBullets extracts up to maxBullets list items from a release body. Items
// are stripped of their commit link and markdown, HTML-escaped and cut to
// maxChars runes.
func TakeBullets(md string, maxBullets, maxChars int) []string {
	var bullets []string
	for _, match := range bulletRe.FindAllStringSubmatch(md, -1) {
		if maxBullets > 0 && len(bullets) >= maxBullets {
			break
		}
		bullet := stripFormatting(match[1])
		if bullet == "" {
			continue
		}
		bullets = append(bullets, html.EscapeString(truncate(bullet, maxChars)))
	}
	return bullets
}

func stripFormatting(s string) string {
	s = commitLinkRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.ReplaceAll(s, "**", "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars]) + "…"
}
