package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// GuestTokenHeader carries the pre-login cart identifier.
const GuestTokenHeader = "X-Guest-Token"

// Auth validates a bearer token and seeds the request context with the user id.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := validators.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			ctx, err := authenticate(r.Context(), cfg, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartOwner accepts either a bearer token or an X-Guest-Token header. A bearer token that fails
// verification is rejected rather than downgraded to the guest cart.
func CartOwner(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guest, err := validators.GuestToken(r.Header.Get(GuestTokenHeader))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := r.Context()
			if guest != "" {
				ctx = WithGuestToken(ctx, guest)
				if logg != nil {
					ctx = logg.WithGuestToken(ctx, guest)
				}
			}

			if token := validators.BearerToken(r.Header.Get("Authorization")); token != "" {
				authed, err := authenticate(ctx, cfg, logg, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				next.ServeHTTP(w, r.WithContext(authed))
				return
			}

			if guest == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token or guest token required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalGuest records the X-Guest-Token header when present. Login uses it to find the cart
// to reconcile.
func OptionalGuest(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guest, err := validators.GuestToken(r.Header.Get(GuestTokenHeader))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if guest == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithGuestToken(r.Context(), guest)
			if logg != nil {
				ctx = logg.WithGuestToken(ctx, guest)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, logg *logger.Logger, token string) (context.Context, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return ctx, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	userID, _ := claims.Owner()

	ctx = context.WithValue(ctx, ctxUserID, userID.String())
	ctx = context.WithValue(ctx, ctxToken, token)
	if logg != nil {
		ctx = logg.WithUserID(ctx, userID.String())
	}
	return ctx, nil
}
