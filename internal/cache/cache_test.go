package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New("redis://"+mr.Addr(), discardLogger())
	t.Cleanup(c.Close)
	return c, mr
}

func TestSetGet(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	if ok := c.Set(ctx, "k", []byte("v"), time.Minute); !ok {
		t.Fatal("set failed")
	}
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, ok)
	}
}

func TestGet_MissingKey(t *testing.T) {
	c, _ := testCache(t)

	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Error("expected miss for missing key")
	}
}

func TestTTLExpiry(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 5*time.Minute)
	mr.FastForward(6 * time.Minute)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestServerDown_SilentDegradation(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New("redis://"+mr.Addr(), discardLogger())
	defer c.Close()
	mr.Close()

	ctx := context.Background()
	if ok := c.Set(ctx, "k", []byte("v"), time.Minute); ok {
		t.Error("set against a dead server must report failure, not panic")
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("get against a dead server must read as a miss")
	}
}

func TestInvalidURL_PermanentlyDegraded(t *testing.T) {
	c := New("not a url", discardLogger())
	defer c.Close()

	ctx := context.Background()
	if ok := c.Set(ctx, "k", []byte("v"), time.Minute); ok {
		t.Error("degraded cache must refuse writes")
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("degraded cache must read as a miss")
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("degraded cache must fail ping")
	}
}
