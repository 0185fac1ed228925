package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/state"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestReconcile(t *testing.T) {
	local := []state.CartLine{{ProductID: uuid.New(), Quantity: 2}}
	server := []state.CartLine{{ProductID: uuid.New(), Quantity: 1}}

	cases := []struct {
		name    string
		local   []state.CartLine
		server  []state.CartLine
		outcome enums.MergeOutcome
		want    []state.CartLine
	}{
		{name: "push local into empty account", local: local, outcome: enums.MergeOutcomePushedLocal, want: local},
		{name: "server wins when non-empty", local: local, server: server, outcome: enums.MergeOutcomeKeptServer, want: server},
		{name: "server kept without local", server: server, outcome: enums.MergeOutcomeKeptServer, want: server},
		{name: "both empty", outcome: enums.MergeOutcomeEmpty},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reconcile(tc.local, tc.server)
			if got.Outcome != tc.outcome {
				t.Fatalf("expected outcome %s, got %s", tc.outcome, got.Outcome)
			}
			if len(got.Lines) != len(tc.want) {
				t.Fatalf("expected %d lines, got %d", len(tc.want), len(got.Lines))
			}
			for i := range tc.want {
				if got.Lines[i] != tc.want[i] {
					t.Fatalf("line %d mismatch: %+v vs %+v", i, got.Lines[i], tc.want[i])
				}
			}
		})
	}
}
