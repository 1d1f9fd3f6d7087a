package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityKind names one of the five account notification channels.
type ActivityKind string

const (
	ActivityMoneyAdded         ActivityKind = "money_added"
	ActivityMoneySpent         ActivityKind = "money_spent"
	ActivityCreditStarted      ActivityKind = "credit_started"
	ActivityCreditLimitReached ActivityKind = "credit_limit_reached"
	ActivityPinChanged         ActivityKind = "pin_changed"
)

// ActivityEntry is one journaled notification together with the account
// state observed when it was delivered.
type ActivityEntry struct {
	ID           uuid.UUID        `json:"id"`
	Kind         ActivityKind     `json:"kind"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	BalanceAfter decimal.Decimal  `json:"balance_after"`
	CreditInUse  bool             `json:"credit_in_use"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ActivityPage is a newest-first slice of the journal.
type ActivityPage struct {
	Entries []ActivityEntry `json:"entries"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// EventRecord is a notification as seen by the caller of a single operation.
type EventRecord struct {
	Kind   ActivityKind     `json:"kind"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// OperationResponse is returned by every mutating account operation. Events
// lists the notifications the operation emitted, in delivery order.
type OperationResponse struct {
	Account AccountResponse `json:"account"`
	Events  []EventRecord   `json:"events"`
}
