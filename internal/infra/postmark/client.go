package postmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.postmarkapp.com"

// PostmarkのHTTPクライアント
// トークンか送信元が未設定なら何もしない
type Client struct {
	baseURL     string
	serverToken string
	fromEmail   string
	http        *http.Client
}

// DI
func NewClient(baseURL string, serverToken string, fromEmail string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		serverToken: serverToken,
		fromEmail:   fromEmail,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

type emailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

func (c *Client) SendEmail(ctx context.Context, to string, subject string, textBody string) error {
	if c.serverToken == "" || c.fromEmail == "" {
		return nil
	}

	body, err := json.Marshal(emailRequest{
		From:     c.fromEmail,
		To:       to,
		Subject:  subject,
		TextBody: textBody,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	rsp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("postmark: unexpected status %d", rsp.StatusCode)
	}
	return nil
}
