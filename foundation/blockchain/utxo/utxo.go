// Package utxo maintains the index of unspent transaction outputs. Every
// spendable unit of value in the ledger lives here until an input consumes it.
package utxo

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UTXO represents an output that has not been spent yet.
type UTXO struct {
	TxID  common.Hash   `json:"txid"`
	Index uint32        `json:"index"`
	Value uint64        `json:"value"`
	Lock  hexutil.Bytes `json:"lock"`
}

// New constructs the UTXO for the output at the specified position of the
// transaction.
func New(txID common.Hash, index uint32, out database.TxOutput) UTXO {
	return UTXO{
		TxID:  txID,
		Index: index,
		Value: out.Value,
		Lock:  bytes.Clone(out.Lock),
	}
}

// Outpoint returns the key identifying this output.
func (u UTXO) Outpoint() database.Outpoint {
	return database.Outpoint{TxID: u.TxID, Index: u.Index}
}

// =============================================================================

// Index is the set of unspent outputs keyed by outpoint. It is safe for
// concurrent use, but a caller applying a block must serialize the whole
// application itself.
type Index struct {
	mu      sync.RWMutex
	entries map[database.Outpoint]UTXO
}

// NewIndex constructs an empty index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[database.Outpoint]UTXO),
	}
}

// Insert adds the unspent output. Replacing a live entry would destroy value
// so an existing outpoint is a programming error and panics.
func (idx *Index) Insert(u UTXO) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	op := u.Outpoint()
	if _, exists := idx.entries[op]; exists {
		panic(fmt.Sprintf("utxo: insert over live outpoint %s", op))
	}

	idx.entries[op] = u
}

// Remove deletes and returns the unspent output. The bool is false when the
// output was already spent or never existed.
func (idx *Index) Remove(txID common.Hash, index uint32) (UTXO, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	op := database.Outpoint{TxID: txID, Index: index}

	u, exists := idx.entries[op]
	if !exists {
		return UTXO{}, false
	}
	delete(idx.entries, op)

	return u, true
}

// Get returns the unspent output without removing it.
func (idx *Index) Get(txID common.Hash, index uint32) (UTXO, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	u, exists := idx.entries[database.Outpoint{TxID: txID, Index: index}]
	return u, exists
}

// BalanceFor sums the value of every unspent output with the specified lock.
func (idx *Index) BalanceFor(lock []byte) uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var balance uint64
	for _, u := range idx.entries {
		if bytes.Equal(u.Lock, lock) {
			balance += u.Value
		}
	}

	return balance
}

// UnspentFor returns every unspent output with the specified lock, ordered
// by outpoint.
func (idx *Index) UnspentFor(lock []byte) []UTXO {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var list []UTXO
	for _, u := range idx.entries {
		if bytes.Equal(u.Lock, lock) {
			list = append(list, u)
		}
	}

	sortByOutpoint(list)

	return list
}

// Total sums the value of every unspent output.
func (idx *Index) Total() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var total uint64
	for _, u := range idx.entries {
		total += u.Value
	}

	return total
}

// Count returns the number of unspent outputs.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.entries)
}

// Copy returns every unspent output, ordered by outpoint.
func (idx *Index) Copy() []UTXO {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	list := make([]UTXO, 0, len(idx.entries))
	for _, u := range idx.entries {
		list = append(list, u)
	}

	sortByOutpoint(list)

	return list
}

// Reset removes every entry.
func (idx *Index) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = make(map[database.Outpoint]UTXO)
}

// =============================================================================

func sortByOutpoint(list []UTXO) {
	sort.Slice(list, func(i, j int) bool {
		if c := bytes.Compare(list[i].TxID[:], list[j].TxID[:]); c != 0 {
			return c < 0
		}
		return list[i].Index < list[j].Index
	})
}
