package postmark_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/infra/postmark"

	"github.com/stretchr/testify/assert"
)

func TestClient_SendEmail_NoopWhenUnconfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	//トークン未設定なら送信せず成功扱い
	c := postmark.NewClient(srv.URL, "", "")
	err := c.SendEmail(context.Background(), "jo@example.com", "Order confirmed", "hello")
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestClient_SendEmail_PostsToAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email", r.URL.Path)
		assert.Equal(t, "token_123", r.Header.Get("X-Postmark-Server-Token"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "store@example.com", body["From"])
		assert.Equal(t, "jo@example.com", body["To"])
		assert.Equal(t, "Order confirmed", body["Subject"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := postmark.NewClient(srv.URL, "token_123", "store@example.com")
	err := c.SendEmail(context.Background(), "jo@example.com", "Order confirmed", "hello")
	assert.NoError(t, err)
}

func TestClient_SendEmail_ErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := postmark.NewClient(srv.URL, "token_123", "store@example.com")
	err := c.SendEmail(context.Background(), "jo@example.com", "Order confirmed", "hello")
	assert.Error(t, err)
}
