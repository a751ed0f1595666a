package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// chatServer fakes the OpenAI-compatible chat completions endpoint.
type chatServer struct {
	*httptest.Server
	reply    string
	status   int
	lastBody map[string]interface{}
}

func newChatServer(t *testing.T, reply string, status int) *chatServer {
	t.Helper()
	cs := &chatServer{reply: reply, status: status}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&cs.lastBody)
		if cs.status != http.StatusOK {
			w.WriteHeader(cs.status)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "qwen-plus",
			"choices": []map[string]interface{}{{"index": 0, "message": map[string]string{"role": "assistant", "content": cs.reply}, "finish_reason": "stop"}},
			"usage":   map[string]int{"prompt_tokens": 42, "completion_tokens": 17, "total_tokens": 59},
		})
	}))
	t.Cleanup(cs.Close)
	return cs
}

func newTestQwen(t *testing.T, baseURL string) *QwenAdapter {
	t.Helper()
	logger := zerolog.Nop()
	g, err := NewQwenAdapter("test-key", baseURL, "qwen-plus", &logger)
	if err != nil {
		t.Fatalf("NewQwenAdapter failed: %v", err)
	}
	return g
}

func TestQwenGenerate(t *testing.T) {
	srv := newChatServer(t, "请介绍一下你最近的项目。", http.StatusOK)
	g := newTestQwen(t, srv.URL)

	reply, err := g.Generate(context.Background(), "我是一名后端工程师。")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply != "请介绍一下你最近的项目。" {
		t.Fatalf("unexpected reply %q", reply)
	}

	msgs, ok := srv.lastBody["messages"].([]interface{})
	if !ok || len(msgs) != 2 {
		t.Fatalf("expected persona + user message, got %v", srv.lastBody["messages"])
	}
	first := msgs[0].(map[string]interface{})
	if first["role"] != "system" {
		t.Fatalf("first message must be the persona, got role %v", first["role"])
	}
}

func TestQwenGenerateRemoteError(t *testing.T) {
	srv := newChatServer(t, "", http.StatusTooManyRequests)
	g := newTestQwen(t, srv.URL)

	if _, err := g.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from rejected completion")
	}
}

func TestQwenRequiresAPIKey(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := NewQwenAdapter("", "http://localhost", "qwen-plus", &logger); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestClampPromptTruncatesLongTranscript(t *testing.T) {
	srv := newChatServer(t, "ok", http.StatusOK)
	g := newTestQwen(t, srv.URL)

	long := strings.Repeat("the quick brown fox jumps over the lazy dog ", 2000)
	clamped := g.clampPrompt(long)
	if len(clamped) >= len(long) {
		t.Fatal("oversized transcript must be truncated")
	}
	if got := len(g.encoder.Encode(clamped, nil, nil)); got > maxPromptTokens {
		t.Fatalf("clamped transcript still %d tokens", got)
	}

	short := "短文本"
	if g.clampPrompt(short) != short {
		t.Fatal("short transcript must pass through unchanged")
	}
}
