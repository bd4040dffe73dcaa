package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deusflow/clipping/internal/logger"
	"github.com/deusflow/clipping/internal/news"
	"github.com/deusflow/clipping/internal/retry"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	// MaxMessageRunes is Telegram's limit for one text message.
	MaxMessageRunes = 4096
)

type Client struct {
	Token   string
	ChatID  string
	BaseURL string
	HTTP    *http.Client
	Retry   retry.RetryConfig
}

func NewClient(token, chatID string, rc retry.RetryConfig) *Client {
	return &Client{
		Token:   token,
		ChatID:  chatID,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Retry:   rc,
	}
}

// SendMessage sends an HTML text message to the chat, retrying on failure.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	attempt := 0
	return retry.WithRetry(ctx, c.Retry, func() error {
		attempt++
		if err := c.sendMessageOnce(ctx, text); err != nil {
			logger.Warn("telegram send failed", "attempt", attempt, "error", err)
			return err
		}
		logger.Info("message sent to Telegram", "attempt", attempt, "runes", utf8.RuneCountInString(text))
		return nil
	})
}

// sendMessageOnce does one try to send message
func (c *Client) sendMessageOnce(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)

	payload := map[string]interface{}{
		"chat_id":                  c.ChatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}

// FormatDigest builds the HTML digest message. Items are grouped by the
// query that found them, groups in first-seen order, items in the given
// order. limit caps the number of items (0 = all); trailing items are
// dropped until the message fits Telegram's length limit.
func FormatDigest(items []news.Item, day time.Time, overview string, limit int) string {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	for n := len(items); n >= 0; n-- {
		msg := formatDigest(items[:n], day, overview, len(items)-n)
		if utf8.RuneCountInString(msg) <= MaxMessageRunes {
			return msg
		}
	}
	return ""
}

func formatDigest(items []news.Item, day time.Time, overview string, omitted int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📰 <b>Clipping — %s</b>\n", day.Format("02/01/2006")))
	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")

	if overview != "" {
		b.WriteString("<i>" + html.EscapeString(overview) + "</i>\n\n")
	}

	var order []string
	groups := map[string][]news.Item{}
	for _, it := range items {
		if _, ok := groups[it.Query]; !ok {
			order = append(order, it.Query)
		}
		groups[it.Query] = append(groups[it.Query], it)
	}

	number := 1
	for _, q := range order {
		heading := q
		if heading == "" {
			heading = "Outros"
		}
		b.WriteString("🔎 <b>" + html.EscapeString(heading) + "</b>\n")
		for _, it := range groups[q] {
			b.WriteString(formatSingleNews(it, number))
			number++
		}
		b.WriteString("\n")
	}

	if omitted > 0 {
		b.WriteString(fmt.Sprintf("… e mais %d notícias no arquivo completo.\n", omitted))
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━━━")
	return b.String()
}

// formatSingleNews formats one numbered entry with its link and source.
func formatSingleNews(it news.Item, number int) string {
	title := it.Title
	if title == "" {
		title = it.Link
	}
	line := fmt.Sprintf("%d. <a href=\"%s\">%s</a>", number, html.EscapeString(it.Link), html.EscapeString(title))
	if it.Source != "" {
		line += " — <i>" + html.EscapeString(it.Source) + "</i>"
	}
	return line + "\n"
}
