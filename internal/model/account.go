package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountResponse is the public view of the card account. The PIN is never
// included.
type AccountResponse struct {
	CardNumber  string          `json:"card_number"`
	Holder      string          `json:"holder"`
	Expiration  string          `json:"expiration"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Balance     decimal.Decimal `json:"balance"`
	Available   decimal.Decimal `json:"available"`
	CreditInUse bool            `json:"credit_in_use"`
	Version     uint64          `json:"version"`
}

// AmountRequest is the body of a deposit or spend. Amount accepts either a
// JSON string ("100.50") or a JSON number. Its sign is not checked.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (r *AmountRequest) UnmarshalJSON(data []byte) error {
	var temp struct {
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	amount, err := parseDecimalField("amount", temp.Amount)
	if err != nil {
		return err
	}
	r.Amount = amount
	return nil
}

func (r *AmountRequest) Validate() error {
	if r.Amount == nil {
		return &ValidationError{
			Field:   "amount",
			Message: "amount is required",
		}
	}
	return nil
}

// ChangePinRequest replaces the card PIN. Any string, including an empty one,
// is accepted as long as the field is present.
type ChangePinRequest struct {
	Pin *string `json:"pin"`
}

func (r *ChangePinRequest) Validate() error {
	if r.Pin == nil {
		return &ValidationError{
			Field:   "pin",
			Message: "pin is required",
		}
	}
	return nil
}

// CreditLimitRequest replaces the credit limit.
type CreditLimitRequest struct {
	CreditLimit *decimal.Decimal `json:"credit_limit"`
}

func (r *CreditLimitRequest) UnmarshalJSON(data []byte) error {
	var temp struct {
		CreditLimit json.RawMessage `json:"credit_limit"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	limit, err := parseDecimalField("credit_limit", temp.CreditLimit)
	if err != nil {
		return err
	}
	r.CreditLimit = limit
	return nil
}

func (r *CreditLimitRequest) Validate() error {
	if r.CreditLimit == nil {
		return &ValidationError{
			Field:   "credit_limit",
			Message: "credit limit is required",
		}
	}
	return nil
}

// parseDecimalField returns nil for a missing or null field.
func parseDecimalField(field string, raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var value decimal.Decimal
	if err := value.UnmarshalJSON(raw); err != nil {
		return nil, &ValidationError{
			Field:   field,
			Message: field + " must be a decimal number",
		}
	}
	return &value, nil
}

// CardSuffix returns the last four digits of a card number, ignoring spaces.
func CardSuffix(cardNumber string) string {
	digits := strings.ReplaceAll(cardNumber, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}
