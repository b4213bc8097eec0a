package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"
)

const telegramAPIURL = "https://api.telegram.org"

// TelegramSender posts admin alerts to a Telegram chat through the Bot API.
// Only the kinds it was created with are forwarded; others are ignored.
type TelegramSender struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	kinds    map[Kind]bool
}

func NewTelegramSender(botToken, chatID string, kinds ...Kind) *TelegramSender {
	accepted := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		accepted[k] = true
	}
	return &TelegramSender{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPIURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		kinds:    accepted,
	}
}

// WithBaseURL points the sender at another Bot API host
func (s *TelegramSender) WithBaseURL(baseURL string) *TelegramSender {
	s.baseURL = baseURL
	return s
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (s *TelegramSender) Send(ctx context.Context, n Notification) error {
	if len(s.kinds) > 0 && !s.kinds[n.Kind] {
		return nil
	}

	text := fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(n.Subject), html.EscapeString(n.Summary))
	body, err := json.Marshal(telegramMessage{ChatID: s.chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", n.Kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}
