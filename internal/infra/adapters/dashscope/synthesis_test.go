package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
)

func newTestSynthesizer(t *testing.T, baseURL string) *Synthesizer {
	t.Helper()
	c, err := NewClient("sk-test", WithBaseURL(baseURL))
	if err != nil {
		t.Fatal(err)
	}
	logger := zerolog.Nop()
	return NewSynthesizer(c, "cosyvoice-v1", "loongbella", &logger)
}

func TestSynthesizeReturnsRawBytes(t *testing.T) {
	want := []byte{0xA1, 0xB2}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != synthesisPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req synthesisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if req.Model != "cosyvoice-v1" || req.Parameters.Voice != "loongbella" {
			t.Errorf("model/voice = %s/%s", req.Model, req.Parameters.Voice)
		}
		if req.Input.Text != "hi there" {
			t.Errorf("text = %q", req.Input.Text)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(want)
	}))
	defer srv.Close()

	s := newTestSynthesizer(t, srv.URL)
	audio, err := s.Synthesize(context.Background(), "hi there")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.Equal(audio, want) {
		t.Errorf("audio = %x, want %x", audio, want)
	}
}

func TestSynthesizeRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":"RateLimitExceeded","message":"slow down"}`))
	}))
	defer srv.Close()

	s := newTestSynthesizer(t, srv.URL)
	_, err := s.Synthesize(context.Background(), "hi")
	if !errors.Is(err, domain.ErrSynthesisFailed) {
		t.Fatalf("err = %v, want ErrSynthesisFailed", err)
	}
}

func TestSynthesizeEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := newTestSynthesizer(t, srv.URL)
	_, err := s.Synthesize(context.Background(), "hi")
	if !errors.Is(err, domain.ErrSynthesisFailed) {
		t.Fatalf("err = %v, want ErrSynthesisFailed", err)
	}
}
