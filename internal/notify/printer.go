// Package notify renders account notifications as human-readable lines.
package notify

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"credit-card-account/internal/account"
)

// Printer writes one line per notification to its writer.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Attach subscribes the printer to all five channels of acc and returns the
// listener IDs so they can be passed to Detach.
func (p *Printer) Attach(acc *account.Account) []account.ListenerID {
	return []account.ListenerID{
		acc.OnMoneyAdded(p.MoneyAdded),
		acc.OnMoneySpent(p.MoneySpent),
		acc.OnCreditStarted(p.CreditStarted),
		acc.OnCreditLimitReached(p.CreditLimitReached),
		acc.OnPinChanged(p.PinChanged),
	}
}

// Detach removes listeners previously returned by Attach.
func (p *Printer) Detach(acc *account.Account, ids []account.ListenerID) {
	for _, id := range ids {
		acc.RemoveListener(id)
	}
}

func (p *Printer) MoneyAdded(amount decimal.Decimal) {
	p.printf("Added %s to your account.\n", amount)
}

func (p *Printer) MoneySpent(amount decimal.Decimal) {
	p.printf("Spent %s from your account.\n", amount)
}

func (p *Printer) CreditStarted() {
	p.printf("Started using credit.\n")
}

func (p *Printer) CreditLimitReached() {
	p.printf("Credit limit reached.\n")
}

func (p *Printer) PinChanged() {
	p.printf("PIN changed.\n")
}

// printf ignores write errors.
func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}
