package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type Notifier interface {
	Send(ctx context.Context, to, message string) error
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (c *Client) Send(ctx context.Context, to, message string) error {
	body, err := json.Marshal(sendRequest{To: to, Message: message})
	if err != nil {
		return fmt.Errorf("encode sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway returned status: %d", resp.StatusCode)
	}
	return nil
}

// Nop discards messages. It is used when no SMS key is configured.
type Nop struct{}

func (Nop) Send(context.Context, string, string) error { return nil }

// StatusMessage is the text sent to a customer when their order changes status.
func StatusMessage(o models.Order) string {
	msg := fmt.Sprintf("Your order #%d is now %s.", o.ID, o.Status.Label())
	if o.TrackingCode != nil && *o.TrackingCode != "" {
		msg += " Tracking code: " + *o.TrackingCode
	}
	return msg
}
