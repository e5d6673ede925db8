// Package domain defines the core entities of the PennyBank dashboard.
// These models are independent of the sources that produce them and of the
// screens that render them.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Profile
// ============================================================

// UserProfile is the current user's display identity.
type UserProfile struct {
	DisplayName     string `json:"display_name"`
	AccountTypeName string `json:"account_type_name"`
}

// ============================================================
// Transactions
// ============================================================

// Direction tells whether money entered or left the account.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Transaction is a single movement on the account. Amount is always a
// non-negative magnitude; the sign lives in Direction.
type Transaction struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Timestamp time.Time   `json:"timestamp"`
	Category  string      `json:"category"`
	Direction Direction   `json:"direction"`
	Amount    MoneyAmount `json:"amount"`
}

// Validate checks the transaction invariants.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return &ErrValidation{Field: "id", Message: "must not be empty"}
	}
	if !t.Direction.Valid() {
		return &ErrValidation{Field: "direction", Message: "must be incoming or outgoing, got " + string(t.Direction)}
	}
	if t.Amount.IsNegative() {
		return &ErrValidation{Field: "amount", Message: "must be a non-negative magnitude"}
	}
	return nil
}

// Signed returns the amount with the sign implied by the direction.
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionOutgoing {
		return t.Amount.Value.Neg()
	}
	return t.Amount.Value
}

// Equal compares every field; timestamps are compared as instants.
func (t Transaction) Equal(other Transaction) bool {
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.Timestamp.Equal(other.Timestamp) &&
		t.Category == other.Category &&
		t.Direction == other.Direction &&
		t.Amount.Equal(other.Amount)
}

// ============================================================
// Dashboard
// ============================================================

// Dashboard is the joined result of one aggregation. It is recomputed on
// demand and has no identity of its own.
type Dashboard struct {
	UserProfile        UserProfile   `json:"user_profile"`
	TotalBalance       MoneyAmount   `json:"total_balance"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}

// Equal reports structural equality, preserving transaction order.
func (d *Dashboard) Equal(other *Dashboard) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.UserProfile != other.UserProfile || !d.TotalBalance.Equal(other.TotalBalance) {
		return false
	}
	if len(d.RecentTransactions) != len(other.RecentTransactions) {
		return false
	}
	for i := range d.RecentTransactions {
		if !d.RecentTransactions[i].Equal(other.RecentTransactions[i]) {
			return false
		}
	}
	return true
}
