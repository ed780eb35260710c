package chat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/chat"
)

type recordedRequest struct {
	Auth string
	Body struct {
		Model       string         `json:"model"`
		Messages    []chat.Message `json:"messages"`
		Temperature float64        `json:"temperature"`
		MaxTokens   int            `json:"max_tokens"`
	}
}

// fakeEndpoint answers every request with reply and records what it got.
func fakeEndpoint(t *testing.T, status int, reply string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var got []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rec recordedRequest
		rec.Auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec.Body))
		mu.Lock()
		got = append(got, rec)
		mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestClient_Complete(t *testing.T) {
	srv, got := fakeEndpoint(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}]}`)
	client := chat.NewClient(chat.Config{Endpoint: srv.URL, APIKey: "secret"})

	reply, err := client.Complete(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, "Bearer secret", req.Auth)
	assert.Equal(t, "Qwen/Qwen2.5-7B-Instruct", req.Body.Model)
	assert.Equal(t, 0.7, req.Body.Temperature)
	assert.Equal(t, 2000, req.Body.MaxTokens)
	assert.Equal(t, []chat.Message{{Role: "user", Content: "hello"}}, req.Body.Messages)
}

func TestClient_CompleteFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"unauthorized", http.StatusUnauthorized, ``},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"malformed", http.StatusOK, `not json`},
		{"api error", http.StatusOK, `{"error":{"message":"quota","type":"limit"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeEndpoint(t, tt.status, tt.body)
			client := chat.NewClient(chat.Config{Endpoint: srv.URL})

			_, err := client.Complete(context.Background(), nil)
			assert.Error(t, err)
			assert.Equal(t, chat.DefaultFallbackReply, client.Reply(context.Background(), nil))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := chat.NewClient(chat.Config{Endpoint: srv.URL, Timeout: 20 * time.Millisecond, FallbackReply: "later"})
	assert.Equal(t, "later", client.Reply(context.Background(), nil))
}

func TestWithContext(t *testing.T) {
	msgs := []chat.Message{{Role: chat.RoleUser, Content: "q"}}
	assert.Equal(t, msgs, chat.WithContext("", msgs))

	got := chat.WithContext("note body", msgs)
	require.Len(t, got, 2)
	assert.Equal(t, chat.Message{Role: chat.RoleSystem, Content: "Context: note body"}, got[0])
	assert.Equal(t, msgs[0], got[1])
}
