package account

import "github.com/shopspring/decimal"

// AmountListener receives the amount of a MoneyAdded or MoneySpent notification.
type AmountListener func(amount decimal.Decimal)

// Listener receives a notification that carries no payload.
type Listener func()

// ListenerID identifies a registered listener so it can be removed later.
// IDs are unique per account and never reused.
type ListenerID uint64

type listenerEntry[F any] struct {
	id ListenerID
	fn F
}

// registry is an ordered list of callbacks for one notification channel.
type registry[F any] struct {
	entries []listenerEntry[F]
}

func (r *registry[F]) add(id ListenerID, fn F) {
	r.entries = append(r.entries, listenerEntry[F]{id: id, fn: fn})
}

func (r *registry[F]) remove(id ListenerID) bool {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot copies the current callbacks so a listener that removes itself
// during dispatch does not disturb the iteration.
func (r *registry[F]) snapshot() []F {
	if len(r.entries) == 0 {
		return nil
	}
	fns := make([]F, len(r.entries))
	for i, e := range r.entries {
		fns[i] = e.fn
	}
	return fns
}

func (r *registry[F]) count() int {
	return len(r.entries)
}

// OnMoneyAdded registers fn for the MoneyAdded channel.
func (a *Account) OnMoneyAdded(fn AmountListener) ListenerID {
	id := a.nextListenerID()
	a.moneyAdded.add(id, fn)
	return id
}

// OnMoneySpent registers fn for the MoneySpent channel.
func (a *Account) OnMoneySpent(fn AmountListener) ListenerID {
	id := a.nextListenerID()
	a.moneySpent.add(id, fn)
	return id
}

// OnCreditStarted registers fn for the CreditStarted channel.
func (a *Account) OnCreditStarted(fn Listener) ListenerID {
	id := a.nextListenerID()
	a.creditStarted.add(id, fn)
	return id
}

// OnCreditLimitReached registers fn for the CreditLimitReached channel.
func (a *Account) OnCreditLimitReached(fn Listener) ListenerID {
	id := a.nextListenerID()
	a.creditLimitReached.add(id, fn)
	return id
}

// OnPinChanged registers fn for the PinChanged channel.
func (a *Account) OnPinChanged(fn Listener) ListenerID {
	id := a.nextListenerID()
	a.pinChanged.add(id, fn)
	return id
}

// RemoveListener detaches the listener registered under id, whichever
// channel it belongs to. It reports whether a listener was removed.
func (a *Account) RemoveListener(id ListenerID) bool {
	return a.moneyAdded.remove(id) ||
		a.moneySpent.remove(id) ||
		a.creditStarted.remove(id) ||
		a.creditLimitReached.remove(id) ||
		a.pinChanged.remove(id)
}

// ListenerCount returns the number of listeners attached across all channels.
func (a *Account) ListenerCount() int {
	return a.moneyAdded.count() +
		a.moneySpent.count() +
		a.creditStarted.count() +
		a.creditLimitReached.count() +
		a.pinChanged.count()
}

func (a *Account) nextListenerID() ListenerID {
	a.lastListenerID++
	return a.lastListenerID
}

func (a *Account) emitMoneyAdded(amount decimal.Decimal) {
	for _, fn := range a.moneyAdded.snapshot() {
		fn(amount)
	}
}

func (a *Account) emitMoneySpent(amount decimal.Decimal) {
	for _, fn := range a.moneySpent.snapshot() {
		fn(amount)
	}
}

func (a *Account) emitCreditStarted() {
	for _, fn := range a.creditStarted.snapshot() {
		fn()
	}
}

func (a *Account) emitCreditLimitReached() {
	for _, fn := range a.creditLimitReached.snapshot() {
		fn()
	}
}

func (a *Account) emitPinChanged() {
	for _, fn := range a.pinChanged.snapshot() {
		fn()
	}
}
