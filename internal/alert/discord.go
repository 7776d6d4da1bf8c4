package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// DiscordNotifier posts messages to a Discord channel webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscord creates a Discord webhook notifier.
func NewDiscord(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordNotifier) Name() string { return "discord" }

func (d *DiscordNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return eris.Wrap(err, "discord: marshal message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "discord: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "discord: send")
	}
	defer resp.Body.Close()

	// Discord returns 204 on success; 200 with wait=true.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return eris.Errorf("discord: status %d", resp.StatusCode)
	}
	return nil
}
