package cache

import (
	"os"
	"testing"
	"time"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"bad-scheme", "http://localhost:6379", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

// TestAcquire runs against a live cache named by LEARN_TEST_CACHE_URL.
func TestAcquire(t *testing.T) {
	url := os.Getenv("LEARN_TEST_CACHE_URL")
	if url == "" {
		t.Skip("LEARN_TEST_CACHE_URL not set")
	}

	ctx := t.Context()
	c, err := New(ctx, url)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	key := "curriculum:test-lock:" + t.Name()
	release, ok, err := c.Acquire(ctx, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first Acquire() = %v, %v; want ok", ok, err)
	}

	if _, ok, err := c.Acquire(ctx, key, time.Minute); err != nil || ok {
		t.Fatalf("second Acquire() = %v, %v; want held", ok, err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release() error = %v", err)
	}

	release, ok, err = c.Acquire(ctx, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("Acquire() after release = %v, %v; want ok", ok, err)
	}
	_ = release(ctx)
}
