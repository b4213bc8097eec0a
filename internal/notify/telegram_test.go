package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSenderPostsToAdminChat(t *testing.T) {
	var got telegramMessage
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewTelegramSender("bot-token", "42", KindLowStock).WithBaseURL(server.URL)
	err := sender.Send(context.Background(), Notification{
		Kind:    KindLowStock,
		Subject: "Low stock: Mozzarella",
		Summary: "Mozzarella: 5 left (threshold 10)",
	})

	require.NoError(t, err)
	assert.Equal(t, "/botbot-token/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "Mozzarella: 5 left")
}

func TestTelegramSenderSkipsOtherKinds(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	sender := NewTelegramSender("t", "1", KindLowStock).WithBaseURL(server.URL)
	require.NoError(t, sender.Send(context.Background(), Notification{Kind: KindPasswordReset}))
	assert.False(t, called)
}

func TestTelegramSenderReportsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewTelegramSender("t", "1").WithBaseURL(server.URL)
	err := sender.Send(context.Background(), Notification{Kind: KindOrderConfirmation})
	assert.ErrorContains(t, err, "status 400")
}
