// Package database handles all the lower level support for maintaining the
// blockchain: the transaction and block model, the canonical encoding, the
// proof of work and the ordered chain of blocks in storage.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a block number is not in the chain.
var ErrNotFound = errors.New("block not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain. Blocks are
// handed over in their canonical encoding and numbered from zero.
type Storage interface {
	Write(data []byte) error
	GetBlock(num uint64) ([]byte, error)
	ForEach() Iterator
	Count() uint64
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() ([]byte, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator decodes the blocks handed out by the storage iterator.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	data, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return DecodeBlock(data)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages the ordered, append only chain of blocks. Block zero is the
// genesis block.
type Database struct {
	mu          sync.RWMutex
	genesis     Block
	latestBlock Block
	storage     Storage
}

// New constructs a database over the storage and writes the genesis block.
// Storage that already holds blocks is reset first since the chain doesn't
// persist across restarts.
func New(genesis Block, storage Storage) (*Database, error) {
	db := Database{
		storage: storage,
	}

	if err := db.reset(genesis); err != nil {
		return nil, err
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Reset re-initializes the chain back to the specified genesis block.
func (db *Database) Reset(genesis Block) error {
	return db.reset(genesis)
}

func (db *Database) reset(genesis Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}

	if err := db.storage.Write(EncodeBlock(genesis)); err != nil {
		return fmt.Errorf("write genesis: %w", err)
	}

	db.genesis = genesis
	db.latestBlock = genesis

	return nil
}

// Genesis returns block zero.
func (db *Database) Genesis() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.genesis
}

// LatestBlock returns the tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Count returns the number of blocks in the chain, genesis included.
func (db *Database) Count() uint64 {
	return db.storage.Count()
}

// Write appends a block to the chain and makes it the new tip. Linkage is
// checked by the caller.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Write(EncodeBlock(block)); err != nil {
		return err
	}

	db.latestBlock = block

	return nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.storage.ForEach()}
}

// GetBlock locates and returns the contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	data, err := db.storage.GetBlock(num)
	if err != nil {
		return Block{}, err
	}

	return DecodeBlock(data)
}
