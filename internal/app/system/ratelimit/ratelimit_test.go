package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"
)

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "k"); !ok {
			t.Fatalf("attempt %d denied", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Error("fourth attempt allowed")
	}
	if ok, _ := l.Allow(ctx, "other"); !ok {
		t.Error("independent key denied")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	now := time.Now()
	l.now = func() time.Time { return now }
	l.Allow(ctx, "k")
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("second attempt in window allowed")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after window expiry denied")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	l.Allow(ctx, "k")
	l.Allow(ctx, "k")
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("third attempt in window allowed")
	}
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after reset denied")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(50, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(ctx, "k"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"remote addr", "", "", "10.0.0.1:1234", "10.0.0.1"},
		{"remote addr without port", "", "", "10.0.0.1", "10.0.0.1"},
		{"x-real-ip", "", "203.0.113.9", "10.0.0.1:1234", "203.0.113.9"},
		{"x-forwarded-for first hop", "198.51.100.7, 10.0.0.2", "203.0.113.9", "10.0.0.1:1234", "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	ip := New(10, time.Minute)
	mobile := New(2, time.Minute)
	defer ip.Stop()
	defer mobile.Stop()
	ll := NewLoginLimiter(ip, mobile)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	for i := 0; i < 2; i++ {
		if ok, reason, err := ll.Check(req, "9000000001"); !ok || err != nil {
			t.Fatalf("attempt %d: ok=%v reason=%q err=%v", i+1, ok, reason, err)
		}
	}
	ok, reason, _ := ll.Check(req, "9000000001")
	if ok || reason == "" {
		t.Fatalf("third attempt for same mobile: ok=%v reason=%q", ok, reason)
	}

	if err := ll.ResetMobile(context.Background(), "9000000001"); err != nil {
		t.Fatalf("ResetMobile: %v", err)
	}
	if ok, _, _ := ll.Check(req, "9000000001"); !ok {
		t.Error("attempt after reset denied")
	}
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("HEALTHCREDIT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HEALTHCREDIT_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := DialRedis(ctx, url)
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	defer client.Close()

	l := NewRedis(client, "hc_test:"+t.Name()+":", 2, time.Minute)
	defer l.Reset(ctx, "k")

	for i := 0; i < 2; i++ {
		if ok, err := l.Allow(ctx, "k"); !ok || err != nil {
			t.Fatalf("attempt %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Error("third attempt allowed")
	}
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after reset denied")
	}
}
