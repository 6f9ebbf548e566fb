// Package wallet holds a session's balance and the journal of every
// movement made against it.
package wallet

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexbotov/casino/internal/domain"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// journalLimit caps the in-memory transaction history.
const journalLimit = 1000

// Wallet is a single player's balance. It is safe for concurrent use, but
// the engine serialises rounds per session anyway.
type Wallet struct {
	mu      sync.Mutex
	balance domain.Money
	journal []domain.Transaction
}

// New opens a wallet with the given starting balance.
func New(opening domain.Money) *Wallet {
	return &Wallet{balance: opening}
}

// Balance returns the current balance.
func (w *Wallet) Balance() domain.Money {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Debit charges amount. It fails with ErrInsufficientFunds, leaving the
// balance untouched, when the balance is below amount.
func (w *Wallet) Debit(amount domain.Money) error {
	_, err := w.PlaceWager(amount, "")
	return err
}

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount domain.Money) error {
	_, err := w.CreditWin(amount, "")
	return err
}

// PlaceWager debits a stake and journals it against reference.
func (w *Wallet) PlaceWager(amount domain.Money, reference string) (*domain.Transaction, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	if amount.IsZero() {
		return nil, nil
	}
	return w.record(domain.TxTypeWager, amount.Times(-1), reference, "Wager"), nil
}

// CreditWin pays out a round. Zero wins are not journaled.
func (w *Wallet) CreditWin(amount domain.Money, reference string) (*domain.Transaction, error) {
	return w.credit(domain.TxTypeWin, amount, reference, "Win")
}

// CreditBonus pays a milestone or promotional bonus.
func (w *Wallet) CreditBonus(amount domain.Money, description string) (*domain.Transaction, error) {
	return w.credit(domain.TxTypeBonus, amount, "", description)
}

// Refund returns a stake, e.g. a craps don't-pass push.
func (w *Wallet) Refund(amount domain.Money, reference string) (*domain.Transaction, error) {
	return w.credit(domain.TxTypeRefund, amount, reference, "Refund")
}

func (w *Wallet) credit(txType domain.TransactionType, amount domain.Money, reference, description string) (*domain.Transaction, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if amount.IsZero() {
		return nil, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record(txType, amount, reference, description), nil
}

// record applies a signed delta. Callers hold w.mu.
func (w *Wallet) record(txType domain.TransactionType, delta domain.Money, reference, description string) *domain.Transaction {
	before := w.balance
	w.balance = w.balance.Add(delta)

	tx := domain.Transaction{
		ID:            uuid.New().String(),
		Type:          txType,
		Amount:        delta,
		BalanceBefore: before,
		BalanceAfter:  w.balance,
		Reference:     reference,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}

	w.journal = append(w.journal, tx)
	if len(w.journal) > journalLimit {
		w.journal = append([]domain.Transaction(nil), w.journal[len(w.journal)-journalLimit:]...)
	}
	return &tx
}

// Transactions returns up to limit journal entries, newest first. A limit
// of zero or less returns everything retained.
func (w *Wallet) Transactions(limit int) []domain.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.journal)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.Transaction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, w.journal[i])
	}
	return out
}
