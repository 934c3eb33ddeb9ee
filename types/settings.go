package types

import (
	"fmt"
	"strings"
)

const (
	DefaultEndpoint = "ovh-eu"
	DefaultZone     = "IE"
)

// Settings is the operator-editable runtime configuration: provider
// credentials, the subsidiary carts are opened in, and the Telegram target.
type Settings struct {
	AppKey      string `json:"appKey"`
	AppSecret   string `json:"appSecret"`
	ConsumerKey string `json:"consumerKey"`
	Endpoint    string `json:"endpoint"`
	TgToken     string `json:"tgToken"`
	TgChatID    string `json:"tgChatId"`
	IAM         string `json:"iam"`
	Zone        string `json:"zone"`
}

// WithDefaults fills the optional fields the same way a fresh install does.
func (s Settings) WithDefaults() Settings {
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	if s.Zone == "" {
		s.Zone = DefaultZone
	}
	if s.IAM == "" {
		s.IAM = fmt.Sprintf("go-ovh-%s", strings.ToLower(s.Zone))
	}
	return s
}

func (s Settings) HasCredentials() bool {
	return s.AppKey != "" && s.AppSecret != "" && s.ConsumerKey != ""
}

func (s Settings) HasTelegram() bool {
	return s.TgToken != "" && s.TgChatID != ""
}

// TelegramChanged reports whether the Telegram target differs from prev.
func (s Settings) TelegramChanged(prev Settings) bool {
	return s.TgToken != prev.TgToken || s.TgChatID != prev.TgChatID
}
