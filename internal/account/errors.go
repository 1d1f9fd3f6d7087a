package account

import "errors"

// ErrInsufficientFunds is returned by Spend when the amount exceeds the
// balance plus the credit limit.
var ErrInsufficientFunds = errors.New("insufficient funds")
