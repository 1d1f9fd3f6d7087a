// Package console drives a card account from an interactive text menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"credit-card-account/internal/account"
)

const (
	choiceAdd   = "1"
	choiceSpend = "2"
	choicePin   = "3"
	choiceExit  = "4"
)

// Menu reads choices line by line from in and writes prompts to out.
// Notifications are not printed by the menu itself; attach a listener such
// as notify.Printer to the account for that.
type Menu struct {
	acc *account.Account
	in  *bufio.Scanner
	out io.Writer
	log *zap.Logger
}

func NewMenu(acc *account.Account, in io.Reader, out io.Writer, log *zap.Logger) *Menu {
	return &Menu{
		acc: acc,
		in:  bufio.NewScanner(in),
		out: out,
		log: log,
	}
}

// Run loops until the user exits, input ends, or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	m.println("Welcome to your credit card!")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printStatus()
		m.printMenu()

		choice, ok := m.readLine()
		if !ok {
			return m.in.Err()
		}

		switch choice {
		case choiceAdd:
			if !m.deposit() {
				return m.in.Err()
			}
		case choiceSpend:
			if !m.spend() {
				return m.in.Err()
			}
		case choicePin:
			m.println("Enter new PIN:")
			pin, ok := m.readLine()
			if !ok {
				return m.in.Err()
			}
			m.acc.SetPin(pin)
			m.log.Info("pin changed")
		case choiceExit:
			m.println("Goodbye!")
			return nil
		default:
			m.println("Invalid choice. Please try again.")
		}
	}
}

// deposit reports false when input ended before an amount was read.
func (m *Menu) deposit() bool {
	m.println("Enter amount to add:")
	amount, ok, more := m.readAmount()
	if !more {
		return false
	}
	if ok {
		m.acc.Deposit(amount)
		m.log.Info("money added", zap.String("amount", amount.String()))
	}
	return true
}

func (m *Menu) spend() bool {
	m.println("Enter amount to spend:")
	amount, ok, more := m.readAmount()
	if !more {
		return false
	}
	if !ok {
		return true
	}

	if err := m.acc.Spend(amount); err != nil {
		if errors.Is(err, account.ErrInsufficientFunds) {
			m.println("Insufficient funds.")
		} else {
			m.println(err.Error())
		}
		m.log.Warn("spend rejected", zap.String("amount", amount.String()), zap.Error(err))
		return true
	}
	m.log.Info("money spent", zap.String("amount", amount.String()))
	return true
}

// readAmount returns the parsed amount, whether it parsed, and whether a
// line was available at all.
func (m *Menu) readAmount() (decimal.Decimal, bool, bool) {
	line, ok := m.readLine()
	if !ok {
		return decimal.Zero, false, false
	}

	amount, err := decimal.NewFromString(line)
	if err != nil {
		m.println("Invalid amount.")
		return decimal.Zero, false, true
	}
	return amount, true, true
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) printStatus() {
	m.println("")
	m.printf(" Balance: %s\n", m.acc.Balance())
	m.printf(" Credit limit: %s\n", m.acc.CreditLimit())
	m.printf(" Credit in use: %t\n", m.acc.CreditInUse())
}

func (m *Menu) printMenu() {
	m.println("\nChoose an action:")
	m.println(" 1. Add money")
	m.println(" 2. Spend money")
	m.println(" 3. Change PIN")
	m.println(" 4. Exit")
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}
