// Package mempool maintains the mempool of transactions waiting to be
// included in a block.
package mempool

import (
	"fmt"
	"sync"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
	"github.com/qoranet/qoranet/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of transactions organized by transaction hash
// with a per-signer index.
type Mempool struct {
	mu       sync.RWMutex
	pool     map[string]database.SignedTx
	bySigner map[database.AccountID][]string
	selectFn selector.Func
}

// New constructs a new mempool using the default priority sort strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyPriority)
}

// NewWithStrategy constructs a new mempool with the specified sort strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]database.SignedTx),
		bySigner: make(map[database.AccountID][]string),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// CountBySigner returns the number of pending transactions for the signer.
func (mp *Mempool) CountBySigner(accountID database.AccountID) int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.bySigner[accountID])
}

// Upsert adds a new transaction to the mempool. A transaction that is
// already pending is rejected.
func (mp *Mempool) Upsert(tx database.SignedTx) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	hash := tx.HashString()
	if _, exists := mp.pool[hash]; exists {
		return len(mp.pool), fmt.Errorf("transaction %s already pending", hash)
	}

	mp.pool[hash] = tx
	mp.bySigner[tx.FromID] = append(mp.bySigner[tx.FromID], hash)

	return len(mp.pool), nil
}

// Remove deletes the specified transaction from the mempool.
func (mp *Mempool) Remove(tx database.SignedTx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	hash := tx.HashString()
	if _, exists := mp.pool[hash]; !exists {
		return
	}

	delete(mp.pool, hash)

	hashes := mp.bySigner[tx.FromID]
	for i, h := range hashes {
		if h == hash {
			mp.bySigner[tx.FromID] = append(hashes[:i], hashes[i+1:]...)
			break
		}
	}
	if len(mp.bySigner[tx.FromID]) == 0 {
		delete(mp.bySigner, tx.FromID)
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.SignedTx)
	mp.bySigner = make(map[database.AccountID][]string)
}

// PickBest uses the configured sort strategy to return the best
// transactions for the next block. Passing a value <= 0 returns the full
// selection.
func (mp *Mempool) PickBest(howMany int) []database.SignedTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	m := make(map[database.AccountID][]database.SignedTx, len(mp.bySigner))
	for accountID, hashes := range mp.bySigner {
		for _, hash := range hashes {
			m[accountID] = append(m[accountID], mp.pool[hash])
		}
	}

	if howMany <= 0 {
		howMany = len(mp.pool)
	}

	return mp.selectFn(m, howMany)
}

// Copy returns a list of the current transactions in the pool.
func (mp *Mempool) Copy() []database.SignedTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.SignedTx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx)
	}

	return txs
}
