package cart

import (
	"github.com/angelmondragon/storefront-backend/internal/state"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// MergeResult is the account cart chosen at login.
type MergeResult struct {
	Outcome enums.MergeOutcome `json:"outcome"`
	Lines   []state.CartLine   `json:"lines"`
}

// Reconcile decides which cart survives a login. The server cart always wins when it has lines;
// otherwise the guest lines are pushed to the account.
func Reconcile(local, server []state.CartLine) MergeResult {
	switch {
	case len(server) > 0:
		return MergeResult{Outcome: enums.MergeOutcomeKeptServer, Lines: append([]state.CartLine(nil), server...)}
	case len(local) > 0:
		return MergeResult{Outcome: enums.MergeOutcomePushedLocal, Lines: append([]state.CartLine(nil), local...)}
	default:
		return MergeResult{Outcome: enums.MergeOutcomeEmpty, Lines: []state.CartLine{}}
	}
}
