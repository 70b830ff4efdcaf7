package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// payload is the webhook body.
type payload struct {
	Channel string `json:"channel,omitempty"`
	ChatID  string `json:"chat_id,omitempty"`
	Message string `json:"message"`
}

// SendNotification posts a message to the configured webhook.
// Fire-and-forget: never blocks the pipeline, silent on failure.
// No-op when webhook is empty.
func SendNotification(webhook, channel, chatID, message string) {
	if webhook == "" {
		return
	}

	// 10-second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body, err := json.Marshal(payload{Channel: channel, ChatID: chatID, Message: message})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	// Fire and forget - ignore errors
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}
