package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"
)

const telegramAPI = "https://api.telegram.org"

type Telegram struct {
	botToken string
	chatIDs  []string
	apiBase  string
	client   *http.Client
}

func NewTelegram(botToken string, chatIDs []string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatIDs:  chatIDs,
		apiBase:  telegramAPI,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	text := formatMessage(n)

	for _, chatID := range t.chatIDs {
		if err := t.send(ctx, chatID, text); err != nil {
			return fmt.Errorf("telegram chat %s: %w", chatID, err)
		}
	}

	return nil
}

func (t *Telegram) send(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	body, err := json.Marshal(map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %d", resp.StatusCode)
	}

	return nil
}

func formatMessage(n Notification) string {
	return fmt.Sprintf(`🔔 <b>%s</b>

<b>Campaign:</b> %s
<b>Author:</b> @%s
<b>Rule:</b> %s

<b>Comment:</b>
%s`,
		html.EscapeString(string(n.Result.Topic)),
		html.EscapeString(n.Result.Campaign),
		html.EscapeString(n.Comment.Username),
		html.EscapeString(n.Result.Rule),
		html.EscapeString(n.Comment.Content),
	)
}
