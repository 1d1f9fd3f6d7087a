package account

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures every notification in the order it was delivered.
type recorder struct {
	events []string
}

func (r *recorder) attach(a *Account) {
	a.OnMoneyAdded(func(amount decimal.Decimal) {
		r.events = append(r.events, "MoneyAdded("+amount.String()+")")
	})
	a.OnMoneySpent(func(amount decimal.Decimal) {
		r.events = append(r.events, "MoneySpent("+amount.String()+")")
	})
	a.OnCreditStarted(func() { r.events = append(r.events, "CreditStarted") })
	a.OnCreditLimitReached(func() { r.events = append(r.events, "CreditLimitReached") })
	a.OnPinChanged(func() { r.events = append(r.events, "PinChanged") })
}

func newTestAccount(creditLimit, balance string) *Account {
	return New(
		"1234 5678 9012 3456",
		"John Doe",
		time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		"1234",
		dec(creditLimit),
		dec(balance),
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew(t *testing.T) {
	a := newTestAccount("5000", "800")

	assert.Equal(t, "1234 5678 9012 3456", a.CardNumber())
	assert.Equal(t, "John Doe", a.Holder())
	assert.Equal(t, 2025, a.Expiration().Year())
	assert.Equal(t, "1234", a.Pin())
	assert.True(t, dec("5000").Equal(a.CreditLimit()))
	assert.True(t, dec("800").Equal(a.Balance()))
	assert.True(t, dec("5800").Equal(a.Available()))
	assert.False(t, a.CreditInUse())
	assert.Zero(t, a.ListenerCount())
}

func TestNew_AcceptsNegativeValues(t *testing.T) {
	a := newTestAccount("-10", "-5")

	assert.True(t, dec("-10").Equal(a.CreditLimit()))
	assert.True(t, dec("-5").Equal(a.Balance()))
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		amount      string
		wantBalance string
	}{
		{name: "positive amount", balance: "800", amount: "200", wantBalance: "1000"},
		{name: "fractional amount", balance: "0", amount: "10.25", wantBalance: "10.25"},
		{name: "zero amount", balance: "800", amount: "0", wantBalance: "800"},
		{name: "negative amount is accepted", balance: "800", amount: "-300", wantBalance: "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccount("5000", tt.balance)
			rec := &recorder{}
			rec.attach(a)

			a.Deposit(dec(tt.amount))

			assert.True(t, dec(tt.wantBalance).Equal(a.Balance()), "balance = %s", a.Balance())
			assert.Equal(t, []string{"MoneyAdded(" + dec(tt.amount).String() + ")"}, rec.events)
			assert.False(t, a.CreditInUse())
		})
	}
}

func TestSpend_WithinBalance(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		amount      string
		wantBalance string
	}{
		{name: "part of balance", balance: "800", amount: "500", wantBalance: "300"},
		{name: "whole balance", balance: "800", amount: "800", wantBalance: "0"},
		{name: "zero amount", balance: "800", amount: "0", wantBalance: "800"},
		{name: "zero amount on empty account", balance: "0", amount: "0", wantBalance: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccount("5000", tt.balance)
			rec := &recorder{}
			rec.attach(a)

			require.NoError(t, a.Spend(dec(tt.amount)))

			assert.True(t, dec(tt.wantBalance).Equal(a.Balance()), "balance = %s", a.Balance())
			assert.Equal(t, []string{"MoneySpent(" + dec(tt.amount).String() + ")"}, rec.events)
			assert.False(t, a.CreditInUse())
		})
	}
}

func TestSpend_DrawsOnCredit(t *testing.T) {
	a := newTestAccount("5000", "300")
	rec := &recorder{}
	rec.attach(a)

	require.NoError(t, a.Spend(dec("1000")))

	assert.True(t, a.Balance().IsZero())
	assert.True(t, a.CreditInUse())
	assert.Equal(t, []string{"CreditStarted", "MoneySpent(1000)", "CreditLimitReached"}, rec.events)
}

func TestSpend_CreditStartedOnlyOnFirstDraw(t *testing.T) {
	a := newTestAccount("5000", "300")
	require.NoError(t, a.Spend(dec("1000")))

	rec := &recorder{}
	rec.attach(a)
	a.Deposit(dec("100"))
	require.NoError(t, a.Spend(dec("200")))

	assert.True(t, a.CreditInUse())
	assert.True(t, a.Balance().IsZero())
	assert.Equal(t, []string{"MoneyAdded(100)", "MoneySpent(200)", "CreditLimitReached"}, rec.events)
}

func TestSpend_CreditInUseIsSticky(t *testing.T) {
	a := newTestAccount("5000", "300")
	require.NoError(t, a.Spend(dec("1000")))

	a.Deposit(dec("10000"))
	require.NoError(t, a.Spend(dec("1")))

	assert.True(t, a.CreditInUse())
	assert.True(t, dec("9999").Equal(a.Balance()))
}

func TestSpend_ExactlyAvailable(t *testing.T) {
	a := newTestAccount("5000", "300")
	rec := &recorder{}
	rec.attach(a)

	require.NoError(t, a.Spend(dec("5300")))

	assert.True(t, a.Balance().IsZero())
	assert.Equal(t, []string{"CreditStarted", "MoneySpent(5300)", "CreditLimitReached"}, rec.events)
}

func TestSpend_NegativeAmountStaysOnBalance(t *testing.T) {
	a := newTestAccount("0", "-50")
	rec := &recorder{}
	rec.attach(a)

	require.NoError(t, a.Spend(dec("-60")))

	assert.True(t, dec("10").Equal(a.Balance()))
	assert.False(t, a.CreditInUse())
	assert.Equal(t, []string{"MoneySpent(-60)"}, rec.events)
}

func TestSpend_InsufficientFunds(t *testing.T) {
	tests := []struct {
		name        string
		creditLimit string
		balance     string
		amount      string
	}{
		{name: "beyond balance and credit", creditLimit: "5000", balance: "300", amount: "10000"},
		{name: "one cent beyond", creditLimit: "5000", balance: "300", amount: "5300.01"},
		{name: "empty account without credit", creditLimit: "0", balance: "0", amount: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccount(tt.creditLimit, tt.balance)
			rec := &recorder{}
			rec.attach(a)

			err := a.Spend(dec(tt.amount))

			require.ErrorIs(t, err, ErrInsufficientFunds)
			assert.True(t, dec(tt.balance).Equal(a.Balance()))
			assert.True(t, dec(tt.creditLimit).Equal(a.CreditLimit()))
			assert.False(t, a.CreditInUse())
			assert.Empty(t, rec.events)
		})
	}
}

func TestScenario(t *testing.T) {
	a := newTestAccount("5000", "800")
	rec := &recorder{}
	rec.attach(a)

	require.NoError(t, a.Spend(dec("500")))
	assert.True(t, dec("300").Equal(a.Balance()))
	assert.Equal(t, []string{"MoneySpent(500)"}, rec.events)

	rec.events = nil
	require.NoError(t, a.Spend(dec("1000")))
	assert.True(t, a.Balance().IsZero())
	assert.True(t, a.CreditInUse())
	assert.Equal(t, []string{"CreditStarted", "MoneySpent(1000)", "CreditLimitReached"}, rec.events)

	rec.events = nil
	assert.ErrorIs(t, a.Spend(dec("10000")), ErrInsufficientFunds)
	assert.True(t, a.Balance().IsZero())
	assert.Empty(t, rec.events)
}

func TestSetPin(t *testing.T) {
	a := newTestAccount("5000", "800")
	rec := &recorder{}
	rec.attach(a)

	a.SetPin("4321")
	assert.Equal(t, "4321", a.Pin())
	assert.Equal(t, []string{"PinChanged"}, rec.events)

	a.SetPin("4321")
	assert.Equal(t, []string{"PinChanged", "PinChanged"}, rec.events)

	a.SetPin("")
	assert.Equal(t, "", a.Pin())
	assert.Len(t, rec.events, 3)
}

func TestSetCreditLimit(t *testing.T) {
	a := newTestAccount("5000", "0")
	rec := &recorder{}
	rec.attach(a)

	a.SetCreditLimit(dec("100"))

	assert.True(t, dec("100").Equal(a.CreditLimit()))
	assert.Empty(t, rec.events)
	assert.ErrorIs(t, a.Spend(dec("101")), ErrInsufficientFunds)
	assert.NoError(t, a.Spend(dec("100")))
}

func TestListeners_RegistrationOrder(t *testing.T) {
	a := newTestAccount("5000", "800")
	var order []string
	for i := 1; i <= 3; i++ {
		n := i
		a.OnMoneyAdded(func(decimal.Decimal) { order = append(order, fmt.Sprintf("listener-%d", n)) })
	}

	a.Deposit(dec("1"))

	assert.Equal(t, []string{"listener-1", "listener-2", "listener-3"}, order)
}

func TestListeners_NoListeners(t *testing.T) {
	a := newTestAccount("5000", "300")

	assert.NotPanics(t, func() {
		a.Deposit(dec("1"))
		_ = a.Spend(dec("1000"))
		a.SetPin("0000")
	})
}

func TestListeners_Remove(t *testing.T) {
	a := newTestAccount("5000", "800")
	var calls []string
	first := a.OnMoneySpent(func(decimal.Decimal) { calls = append(calls, "first") })
	a.OnMoneySpent(func(decimal.Decimal) { calls = append(calls, "second") })
	pin := a.OnPinChanged(func() { calls = append(calls, "pin") })
	require.Equal(t, 3, a.ListenerCount())

	assert.True(t, a.RemoveListener(first))
	assert.False(t, a.RemoveListener(first), "second removal of the same id")
	assert.False(t, a.RemoveListener(ListenerID(999)))
	assert.True(t, a.RemoveListener(pin))
	assert.Equal(t, 1, a.ListenerCount())

	require.NoError(t, a.Spend(dec("1")))
	a.SetPin("9999")

	assert.Equal(t, []string{"second"}, calls)
}

func TestListeners_RemoveDuringDispatch(t *testing.T) {
	a := newTestAccount("5000", "800")
	var calls []string
	var self ListenerID
	self = a.OnMoneyAdded(func(decimal.Decimal) {
		calls = append(calls, "once")
		a.RemoveListener(self)
	})
	a.OnMoneyAdded(func(decimal.Decimal) { calls = append(calls, "always") })

	a.Deposit(dec("1"))
	a.Deposit(dec("1"))

	assert.Equal(t, []string{"once", "always", "always"}, calls)
}

func TestListeners_IDsAreUnique(t *testing.T) {
	a := newTestAccount("5000", "800")
	ids := []ListenerID{
		a.OnMoneyAdded(func(decimal.Decimal) {}),
		a.OnMoneySpent(func(decimal.Decimal) {}),
		a.OnCreditStarted(func() {}),
		a.OnCreditLimitReached(func() {}),
		a.OnPinChanged(func() {}),
	}

	seen := make(map[ListenerID]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Equal(t, 5, a.ListenerCount())
}
