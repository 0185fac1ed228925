package auth

import (
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/state"
)

// PasswordLoginRequest is the credential login payload. GuestToken is optional.
type PasswordLoginRequest struct {
	AuthenticationID string `json:"authenticationId" validate:"required,max=254"`
	Password         string `json:"password" validate:"required"`
	GuestToken       string `json:"-"`
}

// OTPLoginRequest is the one-time-password login payload. GuestToken is optional.
type OTPLoginRequest struct {
	AuthenticationID string `json:"authenticationId" validate:"required,max=254"`
	OTP              string `json:"otp" validate:"required,max=12"`
	GuestToken       string `json:"-"`
}

// LoginRequest is the body of the login endpoint: a password or an OTP, never both.
type LoginRequest struct {
	AuthenticationID string `json:"authenticationId" validate:"required,max=254"`
	Password         string `json:"password,omitempty" validate:"required_without=OTP,excluded_with=OTP"`
	OTP              string `json:"otp,omitempty" validate:"omitempty,max=12"`
}

// RegisterRequest is the sign-up payload forwarded to the auth service.
type RegisterRequest struct {
	AuthenticationID string `json:"authenticationId" validate:"required,max=254"`
	Password         string `json:"password" validate:"required,min=8"`
	Name             string `json:"name,omitempty" validate:"max=120"`
}

// LoginResponse is the session plus the account cart after reconciliation.
type LoginResponse struct {
	Auth         state.AuthState `json:"auth"`
	MergeOutcome string          `json:"mergeOutcome"`
	Cart         *cart.View      `json:"cart"`
}

// RegisterResponse reports whether the auth service issued a token on sign-up.
type RegisterResponse struct {
	Registered bool             `json:"registered"`
	Auth       *state.AuthState `json:"auth,omitempty"`
}
