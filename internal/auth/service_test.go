package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/authclient"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/redis/redistest"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "storefront-auth", ExpirationMinutes: 30}

type fakeGateway struct {
	userID uuid.UUID
	err    error
	calls  int
}

func (g *fakeGateway) token() (*authclient.TokenResponse, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: g.userID})
	if err != nil {
		return nil, err
	}
	return &authclient.TokenResponse{Token: token, StatusCode: 200}, nil
}

func (g *fakeGateway) LoginPassword(context.Context, authclient.PasswordLogin) (*authclient.TokenResponse, error) {
	return g.token()
}

func (g *fakeGateway) LoginOTP(context.Context, authclient.OTPLogin) (*authclient.TokenResponse, error) {
	return g.token()
}

func (g *fakeGateway) Register(context.Context, authclient.Registration) (*authclient.TokenResponse, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &authclient.TokenResponse{StatusCode: 201}, nil
}

type catalogStub map[uuid.UUID]models.Product

func (c catalogStub) FindActiveByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if p, ok := c[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type loginHarness struct {
	svc     Service
	carts   cart.Service
	gateway *fakeGateway
	fake    *redistest.Fake
	redis   *redis.Client
	product uuid.UUID
}

func newLoginHarness(t *testing.T) *loginHarness {
	t.Helper()

	conn := dbtest.NewSQLite(t)
	fake := redistest.New()
	rc := redis.NewWithCmdable(fake)
	guests, err := cart.NewRedisGuestStore(rc, time.Hour, time.Second)
	require.NoError(t, err)

	productID := uuid.New()
	products := catalogStub{productID: {
		ID:                productID,
		Name:              "Runner",
		UnitPrice:         decimal.NewFromInt(50),
		AvailableQuantity: 10,
		IsActive:          true,
	}}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	carts, err := cart.NewService(cart.NewRepository(conn.DB()), conn, guests, products, cart.Options{}, logg, nil)
	require.NoError(t, err)

	gateway := &fakeGateway{userID: uuid.New()}
	svc, err := NewService(ServiceParams{Gateway: gateway, Carts: carts, JWTConfig: testJWT, Logger: logg})
	require.NoError(t, err)

	return &loginHarness{svc: svc, carts: carts, gateway: gateway, fake: fake, redis: rc, product: productID}
}

func TestLoginPushesLocalCartToEmptyAccount(t *testing.T) {
	h := newLoginHarness(t)
	ctx := context.Background()

	_, err := h.carts.AddItem(ctx, cart.GuestOwner("guest-1"), cart.CartSave{Item: h.product, Quantity: 2, Size: "42"})
	require.NoError(t, err)

	resp, err := h.svc.LoginPassword(ctx, PasswordLoginRequest{AuthenticationID: "ada@example.com", Password: "secret", GuestToken: "guest-1"})
	require.NoError(t, err)

	assert.True(t, resp.Auth.Authenticated)
	assert.Equal(t, h.gateway.userID, resp.Auth.UserID)
	assert.Equal(t, enums.MergeOutcomePushedLocal.String(), resp.MergeOutcome)
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 2, resp.Cart.Items[0].Quantity)

	account, err := h.carts.Get(ctx, cart.UserOwner(h.gateway.userID))
	require.NoError(t, err)
	require.Len(t, account.Items, 1)
	assert.Equal(t, "42", account.Items[0].Size)

	_, ok := h.fake.Value(h.redis.GuestCartKey("guest-1"))
	assert.False(t, ok, "guest cache must be deleted after login")
}

func TestLoginKeepsServerCartAndDiscardsLocal(t *testing.T) {
	h := newLoginHarness(t)
	ctx := context.Background()

	_, err := h.carts.AddItem(ctx, cart.UserOwner(h.gateway.userID), cart.CartSave{Item: h.product, Quantity: 1})
	require.NoError(t, err)
	_, err = h.carts.AddItem(ctx, cart.GuestOwner("guest-2"), cart.CartSave{Item: h.product, Quantity: 5, Size: "40"})
	require.NoError(t, err)

	resp, err := h.svc.LoginOTP(ctx, OTPLoginRequest{AuthenticationID: "ada@example.com", OTP: "123456", GuestToken: "guest-2"})
	require.NoError(t, err)

	assert.Equal(t, enums.MergeOutcomeKeptServer.String(), resp.MergeOutcome)
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 1, resp.Cart.Items[0].Quantity)
	assert.Equal(t, "", resp.Cart.Items[0].Size)

	_, ok := h.fake.Value(h.redis.GuestCartKey("guest-2"))
	assert.False(t, ok, "guest cache must be discarded")
}

func TestLoginWithoutGuestToken(t *testing.T) {
	h := newLoginHarness(t)

	resp, err := h.svc.LoginPassword(context.Background(), PasswordLoginRequest{AuthenticationID: "ada@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, enums.MergeOutcomeEmpty.String(), resp.MergeOutcome)
	assert.Empty(t, resp.Cart.Items)
}

func TestLoginInvalidCredentialsKeepsGuestCart(t *testing.T) {
	h := newLoginHarness(t)
	ctx := context.Background()
	h.gateway.err = pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")

	_, err := h.carts.AddItem(ctx, cart.GuestOwner("guest-3"), cart.CartSave{Item: h.product, Quantity: 1})
	require.NoError(t, err)

	_, err = h.svc.LoginPassword(ctx, PasswordLoginRequest{AuthenticationID: "ada@example.com", Password: "wrong", GuestToken: "guest-3"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, ok := h.fake.Value(h.redis.GuestCartKey("guest-3"))
	assert.True(t, ok, "guest cache must survive a failed login")
}

func TestLoginRejectsForeignToken(t *testing.T) {
	h := newLoginHarness(t)
	otherCfg := testJWT
	otherCfg.Secret = "someone-else"
	token, err := pkgAuth.MintAccessToken(otherCfg, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	svc := h.svc.(*service)
	_, err = svc.complete(context.Background(), token, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestRegisterWithoutToken(t *testing.T) {
	h := newLoginHarness(t)
	resp, err := h.svc.Register(context.Background(), RegisterRequest{AuthenticationID: "ada@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.True(t, resp.Registered)
	assert.Nil(t, resp.Auth)

	h.gateway.err = pkgerrors.New(pkgerrors.CodeConflict, "User already registered")
	_, err = h.svc.Register(context.Background(), RegisterRequest{AuthenticationID: "ada@example.com", Password: "longenough"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}
