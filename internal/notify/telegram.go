package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/types"
)

const DefaultTelegramURL = "https://api.telegram.org"

// TelegramSink posts notifications to a Telegram chat through the Bot API.
// The token and chat id are read from the current settings on every send.
type TelegramSink struct {
	settings func() types.Settings
	client   *http.Client
	baseURL  string
	logger   *logging.Logger
}

func NewTelegramSink(settings func() types.Settings, timeout time.Duration, logger *logging.Logger) *TelegramSink {
	return &TelegramSink{
		settings: settings,
		client:   &http.Client{Timeout: timeout},
		baseURL:  DefaultTelegramURL,
		logger:   logger,
	}
}

// WithBaseURL points the sink at another Bot API host.
func (t *TelegramSink) WithBaseURL(u string) *TelegramSink {
	t.baseURL = u
	return t
}

func (t *TelegramSink) Send(ctx context.Context, n Notification) bool {
	log := t.logger.Source("notify").WithField("kind", n.Kind)
	s := t.settings()
	if !s.HasTelegram() {
		log.Warn("telegram message not sent: bot token or chat id missing")
		return false
	}

	body, err := json.Marshal(map[string]string{
		"chat_id": s.TgChatID,
		"text":    n.Text,
	})
	if err != nil {
		log.WithError(err).Error("could not encode telegram payload")
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, s.TgToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Error("could not build telegram request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		log.WithError(err).Error("telegram request failed")
		return false
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		log.WithField("status_code", resp.StatusCode).Errorf("telegram rejected the message: %s", raw)
		return false
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.WithError(err).Error("could not parse telegram response")
		return false
	}
	if !parsed.OK {
		log.Errorf("telegram reported failure: %s", raw)
		return false
	}
	log.Info("telegram message sent")
	return true
}
