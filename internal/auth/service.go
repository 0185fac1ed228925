package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/state"
	"github.com/angelmondragon/storefront-backend/pkg/authclient"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Service logs shoppers in through the external auth service and reconciles their carts.
type Service interface {
	LoginPassword(ctx context.Context, req PasswordLoginRequest) (*LoginResponse, error)
	LoginOTP(ctx context.Context, req OTPLoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type authGateway interface {
	LoginPassword(ctx context.Context, req authclient.PasswordLogin) (*authclient.TokenResponse, error)
	LoginOTP(ctx context.Context, req authclient.OTPLogin) (*authclient.TokenResponse, error)
	Register(ctx context.Context, req authclient.Registration) (*authclient.TokenResponse, error)
}

type service struct {
	gateway authGateway
	carts   cart.Service
	jwtCfg  config.JWTConfig
	logg    *logger.Logger
}

// ServiceParams bundles the dependencies required to build the login service.
type ServiceParams struct {
	Gateway   authGateway
	Carts     cart.Service
	JWTConfig config.JWTConfig
	Logger    *logger.Logger
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("auth gateway is required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		gateway: params.Gateway,
		carts:   params.Carts,
		jwtCfg:  params.JWTConfig,
		logg:    params.Logger,
	}, nil
}

func (s *service) LoginPassword(ctx context.Context, req PasswordLoginRequest) (*LoginResponse, error) {
	resp, err := s.gateway.LoginPassword(ctx, authclient.PasswordLogin{
		AuthenticationID: strings.TrimSpace(req.AuthenticationID),
		Password:         req.Password,
	})
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, resp.Token, req.GuestToken)
}

func (s *service) LoginOTP(ctx context.Context, req OTPLoginRequest) (*LoginResponse, error) {
	resp, err := s.gateway.LoginOTP(ctx, authclient.OTPLogin{
		AuthenticationID: strings.TrimSpace(req.AuthenticationID),
		OTP:              strings.TrimSpace(req.OTP),
	})
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, resp.Token, req.GuestToken)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := s.gateway.Register(ctx, authclient.Registration{
		AuthenticationID: strings.TrimSpace(req.AuthenticationID),
		Password:         req.Password,
		Name:             strings.TrimSpace(req.Name),
	})
	if err != nil {
		return nil, err
	}
	out := &RegisterResponse{Registered: true}
	if resp.Token == "" {
		return out, nil
	}
	authState, err := s.session(resp.Token)
	if err != nil {
		return nil, err
	}
	out.Auth = &authState
	return out, nil
}

// complete turns an issued token into a session and folds the guest cart into the account cart.
func (s *service) complete(ctx context.Context, token, guestToken string) (*LoginResponse, error) {
	authState, err := s.session(token)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, authState.UserID.String())

	merge, err := s.carts.ReconcileLogin(ctx, authState.UserID, strings.TrimSpace(guestToken))
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "merge_outcome", merge.Outcome.String()), "login completed")

	return &LoginResponse{
		Auth:         authState,
		MergeOutcome: merge.Outcome.String(),
		Cart:         merge.Cart,
	}, nil
}

func (s *service) session(token string) (state.AuthState, error) {
	if strings.TrimSpace(token) == "" {
		return state.AuthState{}, pkgerrors.New(pkgerrors.CodeDependency, "auth service returned no token")
	}
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, token)
	if err != nil {
		return state.AuthState{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auth service issued an unverifiable token")
	}
	userID, _ := claims.Owner()
	return state.ReduceAuth(state.AuthState{}, state.AuthAction{
		Type:   state.AuthLoginSucceeded,
		UserID: userID,
		Token:  token,
	})
}
