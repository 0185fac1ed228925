package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/redis/redistest"
)

const batchPath = "/api/v1/cart/items/batch"

type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = w.Write([]byte(`{"data":{"added":1}}`))
}

func batchRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, batchPath, strings.NewReader(body))
	req = req.WithContext(WithGuestToken(req.Context(), "guest-1"))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := pkgredis.NewWithCmdable(redistest.New())
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(store, nil)(next)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, batchRequest("k1", `{"items":[]}`))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, batchRequest("k1", `{"items":[]}`))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, next.calls)
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := pkgredis.NewWithCmdable(redistest.New())
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(store, nil)(next)

	handler.ServeHTTP(httptest.NewRecorder(), batchRequest("k1", `{"items":[1]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, batchRequest("k1", `{"items":[2]}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, next.calls)
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	fake := redistest.New()
	store := pkgredis.NewWithCmdable(fake)
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(store, nil)(next)

	req := batchRequest("k1", `{}`)
	claimed, err := claimKey(context.Background(), store, store.IdempotencyKey(buildScope(req), "k1"), hashBody([]byte(`{}`)))
	require.NoError(t, err)
	require.True(t, claimed)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "still being processed")
	assert.Zero(t, next.calls)
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := pkgredis.NewWithCmdable(redistest.New())
	next := &countingHandler{status: http.StatusServiceUnavailable}
	handler := Idempotency(store, nil)(next)

	handler.ServeHTTP(httptest.NewRecorder(), batchRequest("k1", `{}`))
	next.status = http.StatusOK
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, batchRequest("k1", `{}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(IdempotencyReplayHeader))
	assert.Equal(t, 2, next.calls)
}

func TestIdempotencyRequiresKeyOnlyOnListedRoutes(t *testing.T) {
	store := pkgredis.NewWithCmdable(redistest.New())
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(store, nil)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, batchRequest("", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	other := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, next.calls)
}
