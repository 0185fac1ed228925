package bundle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func candidate(price string, included bool) Candidate {
	return Candidate{
		ProductID:       uuid.New(),
		UnitPrice:       decimal.RequireFromString(price),
		DefaultIncluded: included,
	}
}

func TestSelectorDefaultsIncludeEverything(t *testing.T) {
	a, b := candidate("10", true), candidate("15.50", true)
	s, err := NewSelector([]Candidate{a, b})
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	if s.State() != enums.BundleStateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}
	if !s.Total().Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("unexpected total %s", s.Total())
	}
	if s.Empty() {
		t.Fatalf("expected non-empty selection")
	}
}

func TestSelectorToggleRecomputesTotal(t *testing.T) {
	a, b, c := candidate("10", true), candidate("20", true), candidate("5", false)
	s, err := NewSelector([]Candidate{a, b, c})
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}

	if err := s.Toggle(b.ProductID); err != nil {
		t.Fatalf("toggle b: %v", err)
	}
	if err := s.Toggle(c.ProductID); err != nil {
		t.Fatalf("toggle c: %v", err)
	}
	if s.State() != enums.BundleStateSelecting {
		t.Fatalf("expected selecting, got %s", s.State())
	}
	if !s.Total().Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15, got %s", s.Total())
	}

	if err := s.Toggle(b.ProductID); err != nil {
		t.Fatalf("toggle b back: %v", err)
	}
	if !s.Total().Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected 35, got %s", s.Total())
	}
}

func TestSelectorEmptyRefusesDispatch(t *testing.T) {
	a := candidate("10", true)
	s, err := NewSelector([]Candidate{a})
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	if err := s.Toggle(a.ProductID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !s.Empty() || !s.Total().IsZero() {
		t.Fatalf("expected empty selection with zero total")
	}

	_, err = s.Dispatch()
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.State() == enums.BundleStateDone {
		t.Fatalf("empty dispatch must not close the selection")
	}
}

func TestSelectorRejectsTogglesAfterDone(t *testing.T) {
	a, b := candidate("10", true), candidate("20", false)
	s, err := NewSelector([]Candidate{a, b})
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	included, err := s.Dispatch()
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(included) != 1 || included[0].ProductID != a.ProductID {
		t.Fatalf("unexpected dispatch set %+v", included)
	}
	if s.State() != enums.BundleStateDone {
		t.Fatalf("expected done, got %s", s.State())
	}

	if err := s.Toggle(b.ProductID); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if _, err := s.Dispatch(); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on second dispatch, got %v", err)
	}
}

func TestSelectorRejectsUnknownAndDuplicate(t *testing.T) {
	a := candidate("10", true)
	if _, err := NewSelector([]Candidate{a, a}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	s, err := NewSelector([]Candidate{a})
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	if err := s.Toggle(uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if s.State() != enums.BundleStateIdle {
		t.Fatalf("failed toggle must not change state")
	}
}

func TestSelectorDeselectAndReselectRestoresTotal(t *testing.T) {
	a, b, c := candidate("100", true), candidate("200", true), candidate("300", true)
	s, err := NewSelector([]Candidate{a, b, c})
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	steps := []struct {
		toggle uuid.UUID
		want   int64
	}{
		{toggle: uuid.Nil, want: 600},
		{toggle: b.ProductID, want: 400},
		{toggle: b.ProductID, want: 600},
	}
	for i, step := range steps {
		if step.toggle != uuid.Nil {
			if err := s.Toggle(step.toggle); err != nil {
				t.Fatalf("step %d toggle: %v", i, err)
			}
		}
		if !s.Total().Equal(decimal.NewFromInt(step.want)) {
			t.Fatalf("step %d: expected %d, got %s", i, step.want, s.Total())
		}
	}
}
