package dataflows

import (
	"testing"
	"time"
)

type cachedPayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestCache_RoundTrip(t *testing.T) {
	c := NewCache(t.TempDir(), time.Hour, true)
	params := map[string]string{"symbol": "SPY"}

	if err := c.Set("test", "quote", params, cachedPayload{Name: "SPY", Value: 512.3}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got cachedPayload
	if !c.Get("test", "quote", params, &got) {
		t.Fatal("expected a cache hit")
	}
	if got.Name != "SPY" || got.Value != 512.3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestCache_MissOnDifferentParams(t *testing.T) {
	c := NewCache(t.TempDir(), time.Hour, true)
	c.Set("test", "quote", map[string]string{"symbol": "SPY"}, cachedPayload{Name: "SPY"})

	var got cachedPayload
	if c.Get("test", "quote", map[string]string{"symbol": "QQQ"}, &got) {
		t.Fatal("expected a miss for different params")
	}
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	c := NewCache(t.TempDir(), -time.Second, true)
	c.Set("test", "quote", "k", cachedPayload{Name: "stale"})

	var got cachedPayload
	if c.Get("test", "quote", "k", &got) {
		t.Fatal("expected an expired entry to miss")
	}
}

func TestCache_DisabledNeverHits(t *testing.T) {
	c := NewCache(t.TempDir(), time.Hour, false)
	if err := c.Set("test", "quote", "k", cachedPayload{Name: "x"}); err != nil {
		t.Fatalf("disabled set must be a no-op, got %v", err)
	}

	var got cachedPayload
	if c.Get("test", "quote", "k", &got) {
		t.Fatal("expected no hit with caching disabled")
	}
}
