package state

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// AuthState is the session slice of application state.
type AuthState struct {
	Authenticated bool      `json:"authenticated"`
	UserID        uuid.UUID `json:"userId"`
	Token         string    `json:"token,omitempty"`
}

type AuthActionType string

const (
	AuthLoginSucceeded AuthActionType = "login_succeeded"
	AuthLoggedOut      AuthActionType = "logged_out"
)

type AuthAction struct {
	Type   AuthActionType `json:"type"`
	UserID uuid.UUID      `json:"userId"`
	Token  string         `json:"token"`
}

// ReduceAuth applies a session transition.
func ReduceAuth(s AuthState, action AuthAction) (AuthState, error) {
	switch action.Type {
	case AuthLoginSucceeded:
		if action.UserID == uuid.Nil || action.Token == "" {
			return s, pkgerrors.New(pkgerrors.CodeValidation, "login requires a user id and token")
		}
		return AuthState{Authenticated: true, UserID: action.UserID, Token: action.Token}, nil
	case AuthLoggedOut:
		return AuthState{}, nil
	default:
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown auth action %q", action.Type))
	}
}
