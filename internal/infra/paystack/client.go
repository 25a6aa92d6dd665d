package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"app/internal/payment"
)

const DefaultBaseURL = "https://api.paystack.co"

// Paystack互換APIのHTTPクライアント
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// DI
func NewClient(baseURL string, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Amount   int64            `json:"amount"`
	Email    string           `json:"email"`
	Channels []string         `json:"channels"`
	Metadata payment.Metadata `json:"metadata"`
}

type initializeResponse struct {
	Status  bool                     `json:"status"`
	Message string                   `json:"message"`
	Data    payment.InitializeResult `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string           `json:"status"`
		Channel   string           `json:"channel"`
		Amount    int64            `json:"amount"`
		Reference string           `json:"reference"`
		PaidAt    string           `json:"paid_at"`
		Metadata  payment.Metadata `json:"metadata"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// 決済セッションを開始する
// 金額は主要通貨単位で受け取り、API向けの最小単位換算はここで行う
func (c *Client) InitializePayment(ctx context.Context, in payment.InitializeInput) (payment.InitializeResult, error) {
	body, err := json.Marshal(initializeRequest{
		Amount:   in.Amount * 100,
		Email:    in.Email,
		Channels: []string{in.Channel},
		Metadata: in.Metadata,
	})
	if err != nil {
		return payment.InitializeResult{}, err
	}

	var rsp initializeResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &rsp); err != nil {
		return payment.InitializeResult{}, err
	}
	if !rsp.Status {
		return payment.InitializeResult{}, fmt.Errorf("paystack initialize: %s", rsp.Message)
	}

	return rsp.Data, nil
}

// refで取引を照会する
func (c *Client) VerifyPayment(ctx context.Context, paymentRef string) (payment.VerifyResult, error) {
	var rsp verifyResponse
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+paymentRef, nil, &rsp); err != nil {
		return payment.VerifyResult{}, err
	}
	if !rsp.Status {
		return payment.VerifyResult{}, fmt.Errorf("paystack verify: %s", rsp.Message)
	}

	out := payment.VerifyResult{
		Status:        payment.Status(rsp.Data.Status),
		Channel:       rsp.Data.Channel,
		Amount:        rsp.Data.Amount,
		Reference:     rsp.Data.Reference,
		Metadata:      rsp.Data.Metadata,
		CustomerEmail: rsp.Data.Customer.Email,
	}

	if rsp.Data.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, rsp.Data.PaidAt); err == nil {
			out.PaidAt = &t
		}
	}

	return out, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("paystack: unexpected status %d", rsp.StatusCode)
	}

	return json.NewDecoder(rsp.Body).Decode(out)
}
