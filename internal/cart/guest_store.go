package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/state"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const lockRetryInterval = 25 * time.Millisecond

var errGuestLockLost = errors.New("guest cart lock lost")

type guestRedis interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
	ExtendLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	GuestCartKey(token string) string
	GuestCartLockKey(token string) string
}

// RedisGuestStore keeps guest carts as JSON documents with a sliding TTL.
type RedisGuestStore struct {
	client  guestRedis
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisGuestStore builds a guest store. ttl applies to every write; lockTTL bounds how long a
// crashed writer can block the cart.
func NewRedisGuestStore(client guestRedis, ttl, lockTTL time.Duration) (*RedisGuestStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &RedisGuestStore{client: client, ttl: ttl, lockTTL: lockTTL}, nil
}

// Load returns the stored guest cart, or an empty cart when none exists.
func (s *RedisGuestStore) Load(ctx context.Context, token string) (state.CartState, error) {
	raw, err := s.client.Get(ctx, s.client.GuestCartKey(token))
	if errors.Is(err, redis.ErrNil) {
		return state.CartState{Lines: []state.CartLine{}}, nil
	}
	if err != nil {
		return state.CartState{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
	}
	var decoded state.CartState
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return state.CartState{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode guest cart")
	}
	if decoded.Lines == nil {
		decoded.Lines = []state.CartLine{}
	}
	return decoded, nil
}

// Save writes the guest cart and refreshes its TTL.
func (s *RedisGuestStore) Save(ctx context.Context, token string, next state.CartState) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode guest cart")
	}
	if err := s.client.Set(ctx, s.client.GuestCartKey(token), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save guest cart")
	}
	return nil
}

// Delete drops the guest cart.
func (s *RedisGuestStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.client.GuestCartKey(token)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete guest cart")
	}
	return nil
}

// WithLock runs fn while holding the guest cart lock, renewing it until fn returns. Acquisition
// waits at most two lock TTLs.
func (s *RedisGuestStore) WithLock(ctx context.Context, token string, fn func(ctx context.Context) error) error {
	key := s.client.GuestCartLockKey(token)
	owner := uuid.NewString()
	giveUp := time.Now().Add(2 * s.lockTTL)

	for {
		ok, err := s.client.AcquireLock(ctx, key, owner, s.lockTTL)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire guest cart lock")
		}
		if ok {
			break
		}
		if time.Now().After(giveUp) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "guest cart is busy")
		}
		select {
		case <-ctx.Done():
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ctx.Err(), "guest cart is busy")
		case <-time.After(lockRetryInterval):
		}
	}

	lockCtx, cancel := context.WithCancelCause(ctx)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.renewLock(lockCtx, key, owner, stop, cancel)
	}()
	defer func() {
		close(stop)
		wg.Wait()
		cancel(nil)
		_ = s.client.ReleaseLock(context.WithoutCancel(ctx), key, owner)
	}()

	err := fn(lockCtx)
	if errors.Is(context.Cause(lockCtx), errGuestLockLost) {
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, errGuestLockLost, "guest cart was modified concurrently")
	}
	return err
}

// renewLock extends the lock every half TTL until stop closes. Losing the lock cancels the
// holder's context.
func (s *RedisGuestStore) renewLock(ctx context.Context, key, owner string, stop <-chan struct{}, cancel context.CancelCauseFunc) {
	interval := s.lockTTL / 2
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := s.client.ExtendLock(context.WithoutCancel(ctx), key, owner, s.lockTTL)
			if err != nil {
				continue
			}
			if !ok {
				cancel(errGuestLockLost)
				return
			}
		}
	}
}
