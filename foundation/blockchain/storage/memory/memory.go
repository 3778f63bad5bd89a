// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Memory represents the storage implementation for reading and storing
// encoded blocks in memory using a slice. This implements the
// database.Storage interface.
type Memory struct {
	mu     sync.RWMutex
	blocks [][]byte
}

// New constructs an Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified encoded block and appends it to the chain.
func (m *Memory) Write(data []byte) error {
	if len(data) == 0 {
		return errors.New("block has no data")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = append(m.blocks, bytes.Clone(data))

	return nil
}

// GetBlock locates and returns the encoding of the specified block by number.
func (m *Memory) GetBlock(num uint64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num >= uint64(len(m.blocks)) {
		return nil, fmt.Errorf("%w: %d", database.ErrNotFound, num)
	}

	return m.blocks[num], nil
}

// Count returns the number of blocks being stored.
func (m *Memory) Count() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint64(len(m.blocks))
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the blockchain.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory. The iterator is marked done by
// the call that runs off the end of the chain.
func (mi *memoryIterator) Next() ([]byte, error) {
	if mi.eoc {
		return nil, errors.New("end of chain")
	}

	data, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		mi.eoc = true
	}

	mi.current++

	return data, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
