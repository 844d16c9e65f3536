// Package telegram posts release announcements to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender handles Telegram message sending
type Sender struct {
	bot     *tgbotapi.BotAPI
	backoff time.Duration
}

// Option customizes a Sender.
type Option func(*senderConfig)

type senderConfig struct {
	endpoint string
	client   tgbotapi.HTTPClient
	backoff  time.Duration
}

// WithEndpoint overrides the Bot API endpoint. The format takes the token and
// the method name, like tgbotapi.APIEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *senderConfig) { c.endpoint = endpoint }
}

// WithHTTPClient sets the client used for Bot API calls.
func WithHTTPClient(client tgbotapi.HTTPClient) Option {
	return func(c *senderConfig) { c.client = client }
}

// WithBackoff sets the base delay between send attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *senderConfig) { c.backoff = d }
}

// NewSender creates a new Telegram sender. The token is checked with getMe.
func NewSender(token string, opts ...Option) (*Sender, error) {
	cfg := senderConfig{
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		backoff:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, cfg.endpoint, cfg.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Sender{bot: bot, backoff: cfg.backoff}, nil
}

// SendHTML sends an HTML message to a chat, splitting if necessary. chat is a
// numeric chat id or a public @channel name.
func (s *Sender) SendHTML(ctx context.Context, chat string, html string) error {
	chunks := chunkHTML(html, 4000)

	for i, chunk := range chunks {
		msg, err := newMessage(chat, chunk)
		if err != nil {
			return err
		}
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		var lastErr error
		for attempt := 0; attempt < 3; attempt++ {
			_, err := s.bot.Send(msg)
			if err == nil {
				lastErr = nil
				break
			}

			lastErr = err

			if isPermanentError(err) {
				return fmt.Errorf("permanent telegram error: %w", err)
			}

			if attempt < 2 {
				if err := sleep(ctx, s.backoff*time.Duration(attempt+1)); err != nil {
					return err
				}
			}
		}

		if lastErr != nil {
			return fmt.Errorf("failed to send message after retries: %w", lastErr)
		}

		// Small delay between chunks to avoid rate limiting
		if i < len(chunks)-1 {
			if err := sleep(ctx, 100*time.Millisecond); err != nil {
				return err
			}
		}
	}

	return nil
}

func newMessage(chat, text string) (tgbotapi.MessageConfig, error) {
	chat = strings.TrimSpace(chat)
	if strings.HasPrefix(chat, "@") {
		return tgbotapi.NewMessageToChannel(chat, text), nil
	}
	id, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat %q: want a numeric id or @channel", chat)
	}
	return tgbotapi.NewMessage(id, text), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// chunkHTML splits HTML text into chunks that fit Telegram's message size limit
func chunkHTML(text string, maxSize int) []string {
	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	remaining := text

	for len(remaining) > maxSize {
		breakPoint := findBreakPoint(remaining, maxSize)
		if breakPoint == -1 {
			breakPoint = runeBoundary(remaining, maxSize)
		}

		chunks = append(chunks, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], "\n ")
	}

	if len(remaining) > 0 {
		chunks = append(chunks, remaining)
	}

	return chunks
}

// runeBoundary returns the largest index <= maxSize that starts a rune, or the
// end of the first rune when it alone is longer than maxSize.
func runeBoundary(text string, maxSize int) int {
	i := maxSize
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	if i == 0 {
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return i
}

// findBreakPoint returns the index after the last newline, or failing that the
// last space, in the second half of text[:maxSize]. It returns -1 if neither exists.
func findBreakPoint(text string, maxSize int) int {
	window := text[:maxSize]

	if i := strings.LastIndexByte(window, '\n'); i > maxSize/2 {
		return i + 1
	}
	if i := strings.LastIndexByte(window, ' '); i > maxSize/2 {
		return i + 1
	}
	return -1
}

// isPermanentError checks if a Telegram API error is permanent and shouldn't be retried
func isPermanentError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	permanentErrors := []string{
		"chat not found",
		"bot was blocked by the user",
		"bot was kicked",
		"not enough rights",
		"text must be encoded in utf-8",
		"message is too long",
		"can't parse entities",
		"forbidden",
		"unauthorized",
	}

	for _, permErr := range permanentErrors {
		if strings.Contains(errStr, permErr) {
			return true
		}
	}

	return false
}
