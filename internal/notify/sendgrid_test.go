package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeshot/internal/interfaces"
)

func TestSendGridPayload(t *testing.T) {
	var got sgMail
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGrid(SendGridParams{Endpoint: srv.URL, APIKey: "SG.key", From: "bot@example.com", To: "me@example.com"})
	code, err := s.Send(context.Background(), interfaces.Message{Subject: "Trade Alert: NQ1! - PROFIT", Text: "t", HTML: "<p>h</p>"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "Bearer SG.key", auth)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "me@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "bot@example.com", got.From.Email)
	assert.Equal(t, "Trade Alert: NQ1! - PROFIT", got.Subject)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "<p>h</p>", got.Content[1].Value)
}

func TestSendGridRejected(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSendGrid(SendGridParams{Endpoint: srv.URL, APIKey: "bad", From: "bot@example.com", To: "me@example.com"})
	code, err := s.Send(context.Background(), interfaces.Message{Subject: "x"})

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestSendGridNotConfigured(t *testing.T) {
	s := NewSendGrid(SendGridParams{To: "me@example.com"})
	code, err := s.Send(context.Background(), interfaces.Message{})
	assert.Error(t, err)
	assert.Zero(t, code)
}

func TestSendGridServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	s := NewSendGrid(SendGridParams{Endpoint: srv.URL, APIKey: "SG.key", From: "bot@example.com", To: "me@example.com"})
	code, err := s.Send(context.Background(), interfaces.Message{Subject: "x"})

	require.Error(t, err)
	assert.Equal(t, http.StatusGatewayTimeout, code)
	assert.Equal(t, int32(1), calls.Load(), "the mail may already be queued")
}

func TestSendGridRateLimitIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGrid(SendGridParams{Endpoint: srv.URL, APIKey: "SG.key", From: "bot@example.com", To: "me@example.com"})
	code, err := s.Send(context.Background(), interfaces.Message{Subject: "x"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, int32(2), calls.Load())
}
