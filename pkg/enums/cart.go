package enums

import "fmt"

// CartOwnerKind distinguishes account carts from pre-login guest carts.
type CartOwnerKind string

const (
	CartOwnerUser  CartOwnerKind = "user"
	CartOwnerGuest CartOwnerKind = "guest"
)

// String implements fmt.Stringer.
func (c CartOwnerKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartOwnerKind.
func (c CartOwnerKind) IsValid() bool {
	return c == CartOwnerUser || c == CartOwnerGuest
}

// MergeOutcome records how a guest cart was reconciled at login.
type MergeOutcome string

const (
	MergeOutcomePushedLocal MergeOutcome = "pushed_local"
	MergeOutcomeKeptServer  MergeOutcome = "kept_server"
	MergeOutcomeEmpty       MergeOutcome = "empty"
)

// String implements fmt.Stringer.
func (m MergeOutcome) String() string {
	return string(m)
}

// ItemOutcome reports the result of one line in a batch cart insertion.
type ItemOutcome string

const (
	ItemOutcomeAdded    ItemOutcome = "added"
	ItemOutcomeRejected ItemOutcome = "rejected"
)

// String implements fmt.Stringer.
func (i ItemOutcome) String() string {
	return string(i)
}

// BundleState is the lifecycle of an additional-products selection.
type BundleState string

const (
	BundleStateIdle      BundleState = "idle"
	BundleStateSelecting BundleState = "selecting"
	BundleStateDone      BundleState = "done"
)

// String implements fmt.Stringer.
func (b BundleState) String() string {
	return string(b)
}

// DocumentKind distinguishes invoices from proformas sharing the same document number space.
type DocumentKind string

const (
	DocumentKindInvoice  DocumentKind = "invoice"
	DocumentKindProforma DocumentKind = "proforma"
)

var validDocumentKinds = []DocumentKind{DocumentKindInvoice, DocumentKindProforma}

// String implements fmt.Stringer.
func (d DocumentKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentKind.
func (d DocumentKind) IsValid() bool {
	for _, candidate := range validDocumentKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentKind converts raw input into a DocumentKind.
func ParseDocumentKind(value string) (DocumentKind, error) {
	for _, candidate := range validDocumentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document kind %q", value)
}

// CartStatus tracks whether an account cart record is live or has been replaced by a merge.
type CartStatus string

const (
	CartStatusActive   CartStatus = "active"
	CartStatusArchived CartStatus = "archived"
)

// IsValid reports whether the value is a known CartStatus.
func (c CartStatus) IsValid() bool {
	return c == CartStatusActive || c == CartStatusArchived
}

// ParseCartStatus converts raw input into a CartStatus.
func ParseCartStatus(value string) (CartStatus, error) {
	status := CartStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid cart status %q", value)
	}
	return status, nil
}
