// Package account models a single credit-card account: its balance, credit
// line and PIN, and the notifications it raises when any of them change.
//
// An Account is not safe for concurrent use. Callers that share one across
// goroutines must serialize Deposit, Spend, SetPin and SetCreditLimit
// themselves.
package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents one credit card's financial state.
type Account struct {
	cardNumber  string
	holder      string
	expiration  time.Time
	pin         string
	creditLimit decimal.Decimal
	balance     decimal.Decimal
	creditInUse bool

	lastListenerID     ListenerID
	moneyAdded         registry[AmountListener]
	moneySpent         registry[AmountListener]
	creditStarted      registry[Listener]
	creditLimitReached registry[Listener]
	pinChanged         registry[Listener]
}

// New creates an account that has not yet drawn on credit. Negative credit
// limits and balances are accepted as given.
func New(cardNumber, holder string, expiration time.Time, pin string, creditLimit, balance decimal.Decimal) *Account {
	return &Account{
		cardNumber:  cardNumber,
		holder:      holder,
		expiration:  expiration,
		pin:         pin,
		creditLimit: creditLimit,
		balance:     balance,
	}
}

func (a *Account) CardNumber() string { return a.cardNumber }
func (a *Account) Holder() string { return a.holder }
func (a *Account) Expiration() time.Time { return a.expiration }
func (a *Account) Pin() string { return a.pin }
func (a *Account) CreditLimit() decimal.Decimal { return a.creditLimit }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) CreditInUse() bool { return a.creditInUse }

// Available returns the largest amount Spend will currently accept.
func (a *Account) Available() decimal.Decimal {
	return a.balance.Add(a.creditLimit)
}

// SetPin replaces the PIN and emits PinChanged, even when the new PIN equals
// the old one.
func (a *Account) SetPin(pin string) {
	a.pin = pin
	a.emitPinChanged()
}

// SetCreditLimit replaces the credit limit. No notification is emitted.
func (a *Account) SetCreditLimit(limit decimal.Decimal) {
	a.creditLimit = limit
}

// Deposit adds amount to the balance and emits MoneyAdded. The amount is not
// range checked.
func (a *Account) Deposit(amount decimal.Decimal) {
	a.balance = a.balance.Add(amount)
	a.emitMoneyAdded(amount)
}

// Spend withdraws amount, drawing on the credit line when the balance does not
// cover it. When credit is drawn the balance is cleared rather than tracked as
// a debt.
//
// A successful credit draw emits, in order: CreditStarted (first draw only),
// MoneySpent, and CreditLimitReached whenever the cleared balance is below the
// credit limit. The last check compares the zero balance with the limit, not
// the credit consumed, so it fires on every draw against a positive limit.
func (a *Account) Spend(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Available()) {
		return ErrInsufficientFunds
	}

	if a.balance.GreaterThanOrEqual(amount) {
		a.balance = a.balance.Sub(amount)
		a.emitMoneySpent(amount)
		return nil
	}

	a.balance = decimal.Zero
	if !a.creditInUse {
		a.creditInUse = true
		a.emitCreditStarted()
	}
	a.emitMoneySpent(amount)
	if a.balance.LessThan(a.creditLimit) {
		a.emitCreditLimitReached()
	}
	return nil
}
