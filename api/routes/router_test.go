package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/bundle"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/invoice"
	"github.com/angelmondragon/storefront-backend/internal/state"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/redis/redistest"
)

type stubAuthService struct {
	calls int
}

func (s *stubAuthService) LoginPassword(_ context.Context, req auth.PasswordLoginRequest) (*auth.LoginResponse, error) {
	s.calls++
	if req.Password != "secret" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")
	}
	return &auth.LoginResponse{Auth: state.AuthState{Authenticated: true, UserID: uuid.New()}, MergeOutcome: req.GuestToken}, nil
}

func (s *stubAuthService) LoginOTP(_ context.Context, req auth.OTPLoginRequest) (*auth.LoginResponse, error) {
	s.calls++
	return &auth.LoginResponse{Auth: state.AuthState{Authenticated: true, UserID: uuid.New()}}, nil
}

func (s *stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.RegisterResponse, error) {
	s.calls++
	return &auth.RegisterResponse{Registered: true}, nil
}

type testServer struct {
	handler http.Handler
	cfg     *config.Config
	conn    *db.Client
	auth    *stubAuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "storefront-auth", ExpirationMinutes: 30},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:  time.Minute,
			LoginIPLimit: 3,
			LoginIDLimit: 3,
		},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	conn := dbtest.NewSQLite(t)
	redisClient := redis.NewWithCmdable(redistest.New())
	registry := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(registry)

	catalogRepo := catalog.NewRepository(conn.DB())
	catalogSvc, err := catalog.NewService(catalogRepo)
	require.NoError(t, err)

	guests, err := cart.NewRedisGuestStore(redisClient, time.Hour, time.Second)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.NewRepository(conn.DB()), conn, guests, catalogRepo, cart.Options{}, logg, m)
	require.NoError(t, err)

	bundleSvc, err := bundle.NewService(catalogSvc, cartSvc, logg, m)
	require.NoError(t, err)

	invoiceSvc, err := invoice.NewService(invoice.NewRepository(conn.DB()))
	require.NoError(t, err)

	authSvc := &stubAuthService{}
	handler := NewRouter(cfg, logg, conn, redisClient, registry, authSvc, catalogSvc, bundleSvc, cartSvc, invoiceSvc)
	return &testServer{handler: handler, cfg: cfg, conn: conn, auth: authSvc}
}

func (s *testServer) seedProduct(t *testing.T, name, price string, available int, extras ...uuid.UUID) uuid.UUID {
	t.Helper()
	p := models.Product{
		Name:                 name,
		Category:             "shoes",
		UnitPrice:            decimal.RequireFromString(price),
		AvailableQuantity:    available,
		AdditionalProductIDs: extras,
		IsActive:             true,
	}
	require.NoError(t, s.conn.DB().Create(&p).Error)
	return p.ID
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func guest(token string) map[string]string {
	return map[string]string{"X-Guest-Token": token}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))

	rec = s.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"up"`)
}

func TestProductListing(t *testing.T) {
	s := newTestServer(t)
	s.seedProduct(t, "Runner", "80", 5)
	s.seedProduct(t, "Walker", "60", 5)

	rec := s.do(t, http.MethodGet, "/api/v1/products?category=shoes&sort=price_asc&page_size=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
		TotalProducts int64 `json:"totalProducts"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.EqualValues(t, 2, result.TotalProducts)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Walker", result.Products[0].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/products?sort=cheapest", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/products/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuestCartFlow(t *testing.T) {
	s := newTestServer(t)
	productID := s.seedProduct(t, "Runner", "80", 5)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", cart.CartSave{Item: productID, Quantity: 2, Size: "42"}, guest("guest-a"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/cart", nil, guest("guest-a"))
	require.Equal(t, http.StatusOK, rec.Code)
	var view cart.View
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.True(t, view.Totals.SubTotal.Equal(decimal.NewFromInt(160)))

	rec = s.do(t, http.MethodPatch, "/api/v1/cart/items/"+productID.String(), map[string]any{"quantity": 9, "size": "42"}, guest("guest-a"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "You cannot add more than 5 items to cart", decode(t, rec).Error.Message)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/items/"+productID.String()+"?size=42", nil, guest("guest-a"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	assert.Empty(t, view.Items)

	rec = s.do(t, http.MethodGet, "/api/v1/cart/totals?apply_reward=true", nil, guest("guest-a"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRequiresOwner(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", nil, map[string]string{"Authorization": "Bearer garbage", "X-Guest-Token": "g"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", nil, guest(strings.Repeat("t", 129)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTotalsWithoutRewardParamKeepsAppliedReward(t *testing.T) {
	s := newTestServer(t)
	productID := s.seedProduct(t, "Runner", "80", 5)
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(s.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID})
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + token}
	require.NoError(t, s.conn.DB().Create(&models.RewardAccount{UserID: userID, Balance: decimal.NewFromInt(15)}).Error)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", cart.CartSave{Item: productID, Quantity: 1}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodGet, "/api/v1/cart/totals?apply_reward=true", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/cart/totals", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view cart.View
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	assert.True(t, view.RewardApplied)
	assert.True(t, view.Totals.GrandTotal.Equal(decimal.NewFromInt(65)))

	rec = s.do(t, http.MethodGet, "/api/v1/cart/totals?apply_reward=false", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	assert.False(t, view.RewardApplied)
}

func TestAddItemRejectsOversizedQuantity(t *testing.T) {
	s := newTestServer(t)
	productID := s.seedProduct(t, "Runner", "80", 5)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"item": productID, "quantity": int64(1) << 62}, guest("guest-q"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestAccountCartWithBearer(t *testing.T) {
	s := newTestServer(t)
	productID := s.seedProduct(t, "Runner", "80", 5)
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(s.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID})
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + token}

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", cart.CartSave{Item: productID, Quantity: 1}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, s.conn.DB().Create(&models.RewardAccount{UserID: userID, Balance: decimal.NewFromInt(15)}).Error)
	rec = s.do(t, http.MethodGet, "/api/v1/cart/totals?apply_reward=true", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view cart.View
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	assert.True(t, view.Totals.GrandTotal.Equal(decimal.NewFromInt(65)))
}

func TestBundleAddIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	extra := s.seedProduct(t, "Socks", "10", 5)
	main := s.seedProduct(t, "Runner", "80", 5, extra)

	body := map[string]any{"productId": main}
	rec := s.do(t, http.MethodPost, "/api/v1/bundles/add", body, guest("guest-b"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing Idempotency-Key must be rejected")

	headers := guest("guest-b")
	headers["Idempotency-Key"] = "bundle-1"
	first := s.do(t, http.MethodPost, "/api/v1/bundles/add", body, headers)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := s.do(t, http.MethodPost, "/api/v1/bundles/add", body, headers)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/cart", nil, guest("guest-b"))
	var view cart.View
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	require.Len(t, view.Items, 2)
	for _, item := range view.Items {
		assert.Equal(t, 1, item.Quantity)
	}

	body["toggles"] = []uuid.UUID{main}
	headers["Idempotency-Key"] = "bundle-2"
	rec = s.do(t, http.MethodPost, "/api/v1/bundles/quote", body, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"selecting"`)

	headers["Idempotency-Key"] = "bundle-1"
	rec = s.do(t, http.MethodPost, "/api/v1/bundles/add", body, headers)
	assert.Equal(t, http.StatusConflict, rec.Code, "reused key with a different body")
}

func TestInvoiceRequiresBearer(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	require.NoError(t, s.conn.DB().Create(&models.InvoiceHeader{
		DocNo:         "INV-9",
		Kind:          enums.DocumentKindInvoice,
		UserID:        userID,
		CustomerName:  "Ada",
		Currency:      "USD",
		IssuedAt:      time.Now().UTC(),
		SubTotal:      decimal.NewFromInt(10),
		DiscountTotal: decimal.Zero,
		TaxTotal:      decimal.Zero,
		GrandTotal:    decimal.NewFromInt(10),
	}).Error)

	rec := s.do(t, http.MethodGet, "/api/v1/invoices/INV-9", nil, guest("g"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := pkgAuth.MintAccessToken(s.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID})
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/v1/invoices/INV-9?preset=letter", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"letter"`)

	rec = s.do(t, http.MethodGet, "/api/v1/proformas/INV-9", nil, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginForwardsGuestTokenAndRateLimits(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"authenticationId": "ada@example.com", "password": "secret"}

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", body, guest("guest-c"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"mergeOutcome":"guest-c"`)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"authenticationId": "ada@example.com", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"authenticationId": "ada@example.com", "password": "x", "otp": "1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "password and otp together are rejected")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, s.auth.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	productID := s.seedProduct(t, "Runner", "80", 5)
	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", cart.CartSave{Item: productID, Quantity: 1}, guest("guest-m"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "storefront_cart_mutations_total"))
}
