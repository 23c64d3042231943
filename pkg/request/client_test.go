package request

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"deckcast/pkg/cache"
	"deckcast/pkg/config"
	"deckcast/pkg/db"
	"deckcast/pkg/store"
	"deckcast/pkg/tracker"
)

func testConfig() config.RequestConfig {
	return config.RequestConfig{
		Retries: 3,
		Timeout: config.Duration(5 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(100 * time.Millisecond),
		},
	}
}

func TestGet_Sequential(t *testing.T) {
	// Handler sleeps to prove sequential execution per provider
	var conc int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt32(&conc, 1)
		defer atomic.AddInt32(&conc, -1)

		if current > 1 {
			t.Errorf("Concurrency detected! Expected sequential.")
		}
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(200)
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := New(testConfig(), cache.Null{}, tracker.New())

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Get(context.Background(), svr.URL, ""); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestGet_Retry(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(429) // Too Many Requests
			return
		}
		w.WriteHeader(200)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := New(testConfig(), cache.Null{}, tracker.New())

	body, err := client.Get(context.Background(), svr.URL, "")
	if err != nil {
		t.Fatalf("Expected success after retry, got error: %v", err)
	}
	if string(body) != "success" {
		t.Errorf("Expected 'success', got '%s'", string(body))
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestGet_CacheHit(t *testing.T) {
	hits := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(200)
		if _, err := w.Write([]byte("fresh")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	d, err := db.Init(filepath.Join(t.TempDir(), "client_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	client := New(testConfig(), store.NewSQLiteStore(d), tracker.New())

	// First call populates the cache
	body, err := client.Get(context.Background(), svr.URL, "key1")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "fresh" {
		t.Errorf("got %q", body)
	}

	// Second call must be served from cache
	body, err = client.Get(context.Background(), svr.URL, "key1")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "fresh" {
		t.Errorf("got %q", body)
	}
	if hits != 1 {
		t.Errorf("Expected 1 upstream hit, got %d", hits)
	}
}

func TestPost_RetryResendsBody(t *testing.T) {
	payload := []byte(`{"inputs":[{"text":"hello"}]}`)

	attempts := 0
	var lastBody []byte
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body failed: %v", err)
		}
		lastBody = body
		if attempts < 3 {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
		if _, err := w.Write([]byte("stored")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := New(testConfig(), cache.Null{}, tracker.New())

	resp, err := client.Post(context.Background(), svr.URL, payload, "application/json")
	if err != nil {
		t.Fatalf("Expected success after retries, got error: %v", err)
	}
	if string(resp) != "stored" {
		t.Errorf("got %q", resp)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	// The retried attempts must carry the full body, not a drained reader
	if string(lastBody) != string(payload) {
		t.Errorf("final attempt body = %q, want %q", lastBody, payload)
	}
}

func TestGet_ClientError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer svr.Close()

	client := New(testConfig(), cache.Null{}, tracker.New())

	if _, err := client.Get(context.Background(), svr.URL, ""); err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"api.unsplash.com", "unsplash"},
		{"images.unsplash.com", "unsplash"},
		{"abc.supabase.co", "supabase"},
		{"api.elevenlabs.io", "elevenlabs"},
		{"generativelanguage.googleapis.com", "gemini"},
		{"example.org", "example.org"},
	}
	for _, tt := range tests {
		if got := normalizeProvider(tt.host); got != tt.want {
			t.Errorf("normalizeProvider(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
