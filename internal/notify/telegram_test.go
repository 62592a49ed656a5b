package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewTelegram("bot-token", "chat-42", WithTelegramBaseURL(server.URL))
	n.Send(context.Background(), KindBuy, "bought 0.01 SOL of MEME")

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "chat-42", gotBody["chat_id"])
	assert.Equal(t, "[buy] bought 0.01 SOL of MEME", gotBody["text"])
}

func TestTelegramSendFailureIsLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	var buf strings.Builder
	logger := log.New(&buf, "", 0)

	n := NewTelegram("bot-token", "chat-42",
		WithTelegramBaseURL(server.URL),
		WithTelegramLogger(logger),
	)

	// Must not panic or block; the failure only shows up in the log.
	n.Send(context.Background(), KindError, "sell failed")
	assert.Contains(t, buf.String(), "403")
}

func TestLogNotifier(t *testing.T) {
	var buf strings.Builder
	n := NewLogNotifier(log.New(&buf, "", 0))

	n.Send(context.Background(), KindSell, "sold MEME at +22%")
	assert.Contains(t, buf.String(), "[notify] sell: sold MEME at +22%")
}
