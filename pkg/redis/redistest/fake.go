// Package redistest provides an in-memory stand-in for the redis command surface used by
// pkg/redis, so packages can exercise cache and lock paths without a server.
package redistest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Fake struct {
	mu          sync.Mutex
	data        map[string]string
	incr        map[string]int64
	ttls        map[string]time.Duration
	ExpireCalls int
	ExtendCalls int
	// FailGet makes every Get return the provided error.
	FailGet error
}

func New() *Fake {
	return &Fake{
		data: make(map[string]string),
		incr: make(map[string]int64),
		ttls: make(map[string]time.Duration),
	}
}

// Value returns the raw stored value for assertions.
func (f *Fake) Value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

// TTL returns the expiration recorded for key.
func (f *Fake) TTL(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

func (f *Fake) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *Fake) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = stringify(value)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *Fake) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailGet != nil {
		return redis.NewStringResult("", f.FailGet)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *Fake) SetNX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = stringify(value)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *Fake) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incr[key]++
	return redis.NewIntResult(f.incr[key], nil)
}

func (f *Fake) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExpireCalls++
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *Fake) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			removed++
		}
		delete(f.data, key)
		delete(f.ttls, key)
	}
	return redis.NewIntResult(removed, nil)
}

// Eval only understands the compare-and-delete release script and the compare-and-pexpire
// extend script, told apart by their argument count.
func (f *Fake) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(keys) != 1 || len(args) < 1 || len(args) > 2 {
		return redis.NewCmdResult(nil, fmt.Errorf("unsupported eval"))
	}
	current, ok := f.data[keys[0]]
	if !ok || current != stringify(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	if len(args) == 2 {
		ms, isInt := args[1].(int64)
		if !isInt {
			return redis.NewCmdResult(nil, fmt.Errorf("unsupported eval ttl %T", args[1]))
		}
		f.ExtendCalls++
		f.ttls[keys[0]] = time.Duration(ms) * time.Millisecond
		return redis.NewCmdResult(int64(1), nil)
	}
	delete(f.data, keys[0])
	delete(f.ttls, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
