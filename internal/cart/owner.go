package cart

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Owner identifies whose cart a request operates on.
type Owner struct {
	Kind       enums.CartOwnerKind
	UserID     uuid.UUID
	GuestToken string
}

// UserOwner addresses the account cart of userID.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{Kind: enums.CartOwnerUser, UserID: userID}
}

// GuestOwner addresses the pre-login cart identified by token.
func GuestOwner(token string) Owner {
	return Owner{Kind: enums.CartOwnerGuest, GuestToken: strings.TrimSpace(token)}
}

// Validate ensures the owner carries the identifier its kind requires.
func (o Owner) Validate() error {
	switch o.Kind {
	case enums.CartOwnerUser:
		if o.UserID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
		}
	case enums.CartOwnerGuest:
		if o.GuestToken == "" {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "guest token is required")
		}
		if len(o.GuestToken) > 128 {
			return pkgerrors.New(pkgerrors.CodeValidation, "guest token is too long")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "cart owner is required")
	}
	return nil
}

// IsGuest reports whether the owner is a pre-login cart.
func (o Owner) IsGuest() bool {
	return o.Kind == enums.CartOwnerGuest
}

// String renders a log-safe owner label.
func (o Owner) String() string {
	if o.Kind == enums.CartOwnerUser {
		return "user:" + o.UserID.String()
	}
	return "guest"
}
