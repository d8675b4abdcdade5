package streams

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	if _, err := NewRedisStore("not-a-url://"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestKey(t *testing.T) {
	if got := key("abc"); got != "stream:abc" {
		t.Fatalf("key = %q", got)
	}
}

// Runs against a real server when REDIS_TEST_URL is set.
func TestRedisReplayAndComplete(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	s, err := NewRedisStore(url)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := uuid.NewString()
	for _, p := range []string{"one", "two"} {
		if err := s.Publish(ctx, id, []byte(p)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	ch, err := s.Subscribe(ctx, id)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := s.Publish(ctx, id, []byte("three")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := s.Complete(ctx, id); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	var got []string
	for p := range ch {
		got = append(got, string(p))
	}
	if len(got) != 3 || got[0] != "one" || got[2] != "three" {
		t.Fatalf("replay = %v", got)
	}

	missing, err := s.Subscribe(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("Subscribe missing: %v", err)
	}
	if _, open := <-missing; open {
		t.Fatalf("expected closed channel for unknown stream")
	}
}
