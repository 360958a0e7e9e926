package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// The asset service is external to the core; Ledger is the in-process stand-in
// used for local runs and tests. It keeps per-(asset, account) balances and
// rejects transfers that would overdraw, which is exactly the failure surface
// the escrow and power modules must handle.

var (
	ErrInsufficientBalance = errors.New("insufficient asset balance")
	ErrInvalidTransfer     = errors.New("invalid transfer request")
)

type Ledger struct {
	mu       sync.RWMutex
	balances map[string]uint64

	// failNext forces the next transfer to fail, for abort-path tests.
	failNext bool
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]uint64)}
}

func key(asset, account string) string {
	return fmt.Sprintf("%s/%s", asset, account)
}

func (l *Ledger) SetBalance(asset, account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[key(asset, account)] = amount
}

// FailNextTransfer arms a one-shot transfer failure.
func (l *Ledger) FailNextTransfer() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = true
}

func (l *Ledger) Transfer(_ context.Context, asset, from, to string, amount uint64) error {
	if from == "" || to == "" || amount == 0 {
		return ErrInvalidTransfer
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext {
		l.failNext = false
		return errors.New("asset service rejected transfer")
	}
	fromKey := key(asset, from)
	if l.balances[fromKey] < amount {
		return ErrInsufficientBalance
	}
	l.balances[fromKey] -= amount
	l.balances[key(asset, to)] += amount
	return nil
}

func (l *Ledger) BalanceOf(_ context.Context, asset, account string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[key(asset, account)], nil
}
