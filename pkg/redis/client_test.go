package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/redis/redistest"
)

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	fake := redistest.New()
	client := pkgredis.NewWithCmdable(fake)

	for i := 1; i <= 3; i++ {
		count, err := client.IncrWithTTL(ctx, "sf:rate_limit:login", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != int64(i) {
			t.Fatalf("expected count %d got %d", i, count)
		}
	}
	if fake.ExpireCalls != 1 {
		t.Fatalf("expected one expire call, got %d", fake.ExpireCalls)
	}
}

func TestLockLifecycle(t *testing.T) {
	ctx := context.Background()
	fake := redistest.New()
	client := pkgredis.NewWithCmdable(fake)
	key := client.GuestCartLockKey("guest-1")

	ok, err := client.AcquireLock(ctx, key, "owner-a", time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = client.AcquireLock(ctx, key, "owner-b", time.Second)
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, ok=%v err=%v", ok, err)
	}

	if err := client.ReleaseLock(ctx, key, "owner-b"); err != nil {
		t.Fatalf("release with wrong owner: %v", err)
	}
	if _, held := fake.Value(key); !held {
		t.Fatalf("lock must survive release by non-owner")
	}

	if err := client.ReleaseLock(ctx, key, "owner-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held := fake.Value(key); held {
		t.Fatalf("expected lock to be released")
	}
}

func TestExtendLockRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	fake := redistest.New()
	client := pkgredis.NewWithCmdable(fake)
	key := client.GuestCartLockKey("guest-2")

	if ok, err := client.AcquireLock(ctx, key, "owner-a", time.Second); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	ok, err := client.ExtendLock(ctx, key, "owner-a", 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected owner to extend, ok=%v err=%v", ok, err)
	}
	if ttl := fake.TTL(key); ttl != 5*time.Second {
		t.Fatalf("expected ttl 5s, got %v", ttl)
	}

	ok, err = client.ExtendLock(ctx, key, "owner-b", 5*time.Second)
	if err != nil || ok {
		t.Fatalf("expected non-owner extend to fail, ok=%v err=%v", ok, err)
	}

	if err := client.ReleaseLock(ctx, key, "owner-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := client.ExtendLock(ctx, key, "owner-a", time.Second); ok {
		t.Fatalf("expected extend of a released lock to fail")
	}
}

func TestGetMissingReturnsErrNil(t *testing.T) {
	client := pkgredis.NewWithCmdable(redistest.New())
	if _, err := client.Get(context.Background(), "missing"); !errors.Is(err, pkgredis.ErrNil) {
		t.Fatalf("expected ErrNil, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &pkgredis.Client{}
	cases := map[string]string{
		client.IdempotencyKey("scope", "id"):  "sf:idempotency:scope:id",
		client.RateLimitKey("scope"):          "sf:rate_limit:scope",
		client.GuestCartKey("tok"):            "sf:guest_cart:tok",
		client.GuestCartLockKey("tok"):        "sf:lock:guest_cart:tok",
		client.IdempotencyKey("scope", ""):    "sf:idempotency:scope",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s got %s", want, got)
		}
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &pkgredis.Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op: %v", err)
	}
}
