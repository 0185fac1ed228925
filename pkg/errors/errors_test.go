package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/multierr"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("FORBIDDEN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("load: %w", New(CodeNotFound, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestBusinessRuleMetadata(t *testing.T) {
	meta := MetadataFor(CodeBusinessRule)
	if meta.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatalf("business rule rejections should expose details")
	}
}

func TestPublicMessage(t *testing.T) {
	rule := New(CodeBusinessRule, "You cannot add more than 5 items to cart")
	if got := PublicMessage(rule); got != "You cannot add more than 5 items to cart" {
		t.Fatalf("unexpected message %q", got)
	}

	internal := Wrap(CodeInternal, stdErrors.New("db exploded"), "load cart")
	if got := PublicMessage(internal); got != "internal server error" {
		t.Fatalf("internal errors must not leak, got %q", got)
	}

	if got := PublicMessage(stdErrors.New("raw")); got != "internal server error" {
		t.Fatalf("untyped errors should use fallback, got %q", got)
	}
	if !IsCode(rule, CodeBusinessRule) || IsCode(rule, CodeValidation) {
		t.Fatalf("IsCode mismatch")
	}
}

func TestDumpCollectsBatchCausesAndPostgresDetail(t *testing.T) {
	combined := multierr.Combine(
		New(CodeBusinessRule, "You cannot add more than 2 items to cart"),
		New(CodeNotFound, "product not found"),
	)
	dump := Dump(Wrap(CodeBusinessRule, combined, "batch add"))
	if dump.Code != CodeBusinessRule || dump.Retryable {
		t.Fatalf("unexpected code/retryable: %+v", dump)
	}
	if len(dump.Causes) != 2 {
		t.Fatalf("expected two causes, got %v", dump.Causes)
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "cart_items_owner_product_size_key", TableName: "cart_items"}
	dump = Dump(Wrap(CodeConflict, pgErr, "save cart"))
	if dump.PGCode != "23505" || dump.PGTable != "cart_items" {
		t.Fatalf("expected pg diagnostics, got %+v", dump)
	}
	if len(dump.Causes) != 0 {
		t.Fatalf("single errors have no causes, got %v", dump.Causes)
	}

	if empty := Dump(nil); empty.TopMessage != "" || empty.Chain != nil {
		t.Fatalf("nil error should dump empty, got %+v", empty)
	}
}
