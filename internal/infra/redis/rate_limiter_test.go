package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClient struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	incrErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{counts: make(map[string]int64), ttls: make(map[string]time.Duration)}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.ttls[key] = expiration
	return nil
}

func (f *fakeClient) Close() error { return nil }

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	fc := newFakeClient()
	rl := NewRateLimiter(fc)
	key := UploadKey("10.0.0.1")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(context.Background(), key, 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := rl.Allow(context.Background(), key, 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if ok {
		t.Fatal("fourth request should be throttled")
	}
}

func TestRateLimiterSetsWindowOnFirstHit(t *testing.T) {
	fc := newFakeClient()
	rl := NewRateLimiter(fc)
	key := UploadKey("10.0.0.2")

	if _, err := rl.Allow(context.Background(), key, 5, 30*time.Second); err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if fc.ttls[key] != 30*time.Second {
		t.Fatalf("expected 30s TTL on first hit, got %v", fc.ttls[key])
	}

	// Subsequent hits must not reset the window.
	fc.ttls[key] = time.Second
	if _, err := rl.Allow(context.Background(), key, 5, 30*time.Second); err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if fc.ttls[key] != time.Second {
		t.Fatal("window TTL should not be reset after the first hit")
	}
}

func TestRateLimiterSurfacesBackendError(t *testing.T) {
	fc := newFakeClient()
	fc.incrErr = errors.New("connection refused")
	rl := NewRateLimiter(fc)

	if _, err := rl.Allow(context.Background(), UploadKey("10.0.0.3"), 5, time.Minute); err == nil {
		t.Fatal("expected backend error to surface")
	}
}

func TestUploadKeyIsPerClient(t *testing.T) {
	if UploadKey("1.2.3.4") == UploadKey("5.6.7.8") {
		t.Fatal("distinct clients must get distinct keys")
	}
}
