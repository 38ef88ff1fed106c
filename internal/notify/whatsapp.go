package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrSendFailed wraps every delivery failure so callers can tell "the order
// was saved but the notification did not go out" apart from storage errors.
var ErrSendFailed = errors.New("notification send failed")

// Sender delivers a fully formatted text message to the business over an
// external messaging channel.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// TwilioConfig configures the WhatsApp sender. From and To are WhatsApp
// numbers in E.164 form without the "whatsapp:" prefix. BaseURL is
// overridable for tests; empty means the public Twilio API.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
	BaseURL    string
}

// TwilioSender sends WhatsApp messages through Twilio's REST API.
type TwilioSender struct {
	cfg    TwilioConfig
	client *http.Client
}

// NewTwilioSender creates a sender with a bounded-timeout HTTP client.
func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	return &TwilioSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts the message to the Twilio Messages endpoint. An empty message,
// a transport error, or a non-2xx response all come back as ErrSendFailed.
func (s *TwilioSender) Send(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: message is empty", ErrSendFailed)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.cfg.BaseURL, s.cfg.AccountSID)
	form := url.Values{
		"Body": {message},
		"From": {"whatsapp:" + s.cfg.From},
		"To":   {"whatsapp:" + s.cfg.To},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: twilio responded %d: %s", ErrSendFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
