// Package config resolves run settings from flags, GITEE_RELEASE_* variables,
// an optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. GITEE_RELEASE_TOKEN.
const EnvPrefix = "GITEE_RELEASE"

// Keys shared by flags, environment variables and the config file.
const (
	KeyConfig          = "config"
	KeyOwner           = "owner"
	KeyRepo            = "repo"
	KeyToken           = "token"
	KeyTagName         = "tag-name"
	KeyName            = "name"
	KeyBody            = "body"
	KeyTargetCommitish = "target-commitish"
	KeyDraft           = "draft"
	KeyPrerelease      = "prerelease"
	KeyLang            = "lang"
	KeyArtifacts       = "artifacts"
	KeyAutoGenNotes    = "auto-gen-notes"
	KeyRepoPath        = "repo-path"
	KeyPreviousTag     = "previous-tag"
	KeyRemote          = "remote"
	KeyAPIBaseURL      = "api-base-url"
	KeyTimeout         = "timeout"
	KeyJournal         = "journal"
	KeyTelegramToken   = "telegram-token"
	KeyTelegramChat    = "telegram-chat"
	KeyTimeZone        = "timezone"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
)

// Mode selects which settings are mandatory.
type Mode int

const (
	// Release publishes and needs the remote coordinates and a token.
	Release Mode = iota
	// Notes only renders release notes from the local repository.
	Notes
)

type Config struct {
	Owner           string
	Repo            string
	Token           string
	TagName         string
	Name            string
	Body            string
	TargetCommitish string
	Draft           bool
	Prerelease      bool
	Lang            string
	Artifacts       []string
	AutoGenNotes    bool
	RepoPath        string
	PreviousTag     string
	Remote          string
	APIBaseURL      string
	Timeout         time.Duration
	JournalPath     string
	TelegramToken   string
	TelegramChat    string
	TimeZone        string
	LogLevel        string
	LogFormat       string
}

// New returns a viper instance with defaults and environment binding in place.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLang, "zh-cn")
	v.SetDefault(KeyRepoPath, ".")
	v.SetDefault(KeyRemote, "origin")
	v.SetDefault(KeyAPIBaseURL, "https://gitee.com")
	v.SetDefault(KeyTimeZone, "UTC")
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// ReadFile merges the YAML file named by the config key, if any.
func ReadFile(v *viper.Viper) error {
	path := v.GetString(KeyConfig)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from v and checks the settings mode requires.
func Load(v *viper.Viper, mode Mode) (*Config, error) {
	if err := ReadFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Owner:           strings.TrimSpace(v.GetString(KeyOwner)),
		Repo:            strings.TrimSpace(v.GetString(KeyRepo)),
		Token:           v.GetString(KeyToken),
		TagName:         strings.TrimSpace(v.GetString(KeyTagName)),
		Name:            v.GetString(KeyName),
		Body:            v.GetString(KeyBody),
		TargetCommitish: strings.TrimSpace(v.GetString(KeyTargetCommitish)),
		Draft:           v.GetBool(KeyDraft),
		Prerelease:      v.GetBool(KeyPrerelease),
		Lang:            v.GetString(KeyLang),
		Artifacts:       splitList(v.Get(KeyArtifacts)),
		AutoGenNotes:    v.GetBool(KeyAutoGenNotes),
		RepoPath:        v.GetString(KeyRepoPath),
		PreviousTag:     strings.TrimSpace(v.GetString(KeyPreviousTag)),
		Remote:          v.GetString(KeyRemote),
		APIBaseURL:      v.GetString(KeyAPIBaseURL),
		Timeout:         v.GetDuration(KeyTimeout),
		JournalPath:     v.GetString(KeyJournal),
		TelegramToken:   v.GetString(KeyTelegramToken),
		TelegramChat:    strings.TrimSpace(v.GetString(KeyTelegramChat)),
		TimeZone:        v.GetString(KeyTimeZone),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
	}

	if err := cfg.validate(mode); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(mode Mode) error {
	var errs []error
	if mode == Release {
		for _, req := range []struct{ key, val string }{
			{KeyOwner, c.Owner},
			{KeyRepo, c.Repo},
			{KeyToken, c.Token},
			{KeyTargetCommitish, c.TargetCommitish},
		} {
			if req.val == "" {
				errs = append(errs, fmt.Errorf("--%s is required", req.key))
			}
		}
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("--%s must not be negative", KeyTimeout))
	}
	if (c.TelegramToken == "") != (c.TelegramChat == "") {
		errs = append(errs, fmt.Errorf("--%s and --%s must be set together", KeyTelegramToken, KeyTelegramChat))
	}
	return errors.Join(errs...)
}

// MissingManualFields names the release fields that are empty when notes are
// not generated.
func (c *Config) MissingManualFields() []string {
	if c.AutoGenNotes {
		return nil
	}
	var missing []string
	if c.TagName == "" {
		missing = append(missing, KeyTagName)
	}
	if c.Name == "" {
		missing = append(missing, KeyName)
	}
	if strings.TrimSpace(c.Body) == "" {
		missing = append(missing, KeyBody)
	}
	return missing
}

// Notify reports whether a Telegram announcement is configured.
func (c *Config) Notify() bool {
	return c.TelegramToken != "" && c.TelegramChat != ""
}

// splitList accepts a comma-delimited string or a YAML list.
func splitList(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(val, ",")
	case []string:
		for _, s := range val {
			items = append(items, strings.Split(s, ",")...)
		}
	case []any:
		for _, s := range val {
			items = append(items, strings.Split(fmt.Sprint(s), ",")...)
		}
	default:
		items = strings.Split(fmt.Sprint(val), ",")
	}

	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
