// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"sort"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool/selector"
	"github.com/ethereum/go-ethereum/common"
)

// ErrDuplicateTransaction is returned when a transaction with the same id is
// already pending.
var ErrDuplicateTransaction = errors.New("transaction already pending")

// entry tracks the order a transaction was submitted in.
type entry struct {
	seq uint64
	tx  database.Tx
}

// Mempool represents a cache of pending transactions keyed by transaction id.
type Mempool struct {
	mu       sync.RWMutex
	pool     map[common.Hash]entry
	seq      uint64
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() *Mempool {
	mp, _ := NewWithStrategy(selector.StrategyArrival)
	return mp
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[common.Hash]entry),
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

// Submit adds a transaction to the pool.
func (mp *Mempool) Submit(tx database.Tx) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	id := tx.ID()
	if _, exists := mp.pool[id]; exists {
		return len(mp.pool), ErrDuplicateTransaction
	}

	mp.seq++
	mp.pool[id] = entry{seq: mp.seq, tx: tx}

	return len(mp.pool), nil
}

// Remove deletes a transaction from the pool. The bool is false when the
// transaction was not pending.
func (mp *Mempool) Remove(txID common.Hash) (database.Tx, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	e, exists := mp.pool[txID]
	if !exists {
		return database.Tx{}, false
	}
	delete(mp.pool, txID)

	return e.tx, true
}

// Get returns the pending transaction with the specified id.
func (mp *Mempool) Get(txID common.Hash) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	e, exists := mp.pool[txID]
	return e.tx, exists
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[common.Hash]entry)
}

// Copy returns every pending transaction in the order they were submitted.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.ordered()
}

// Drain uses the configured select strategy to return up to howMany pending
// transactions for the next block. Pass -1 for all the transactions. The
// transactions stay in the pool until they are removed.
func (mp *Mempool) Drain(howMany int) []database.Tx {
	mp.mu.RLock()
	trans := mp.ordered()
	mp.mu.RUnlock()

	return mp.selectFn(trans, howMany)
}

// =============================================================================

// ordered returns the pending transactions by submission order. The caller
// must hold the lock.
func (mp *Mempool) ordered() []database.Tx {
	entries := make([]entry, 0, len(mp.pool))
	for _, e := range mp.pool {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	trans := make([]database.Tx, len(entries))
	for i, e := range entries {
		trans[i] = e.tx
	}

	return trans
}
