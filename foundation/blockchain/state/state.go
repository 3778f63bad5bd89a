// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
	"github.com/ethereum/go-ethereum/common"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Verifier checks an unlocking proof was produced over the digest by the
// owner of the lock. The signature package's Verify function satisfies this.
type Verifier func(digest common.Hash, proof []byte, lock []byte) error

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis        genesis.Genesis
	Storage        database.Storage // Defaults to memory storage.
	SelectStrategy string           // Defaults to arrival order.
	Verifier       Verifier         // Nil turns off proof verification.
	AutoMine       bool             // Signal the worker on every accepted transaction.
	EvHandler      EventHandler
}

// State manages the blockchain database.
//
// CORE NOTE: One lock covers the chain, the UTXO index and the mempool. Every
// mutation holds it for the entire logical operation so a partially applied
// block can never be observed. Queries share the read side of the lock.
type State struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	evHandler EventHandler
	verifier  Verifier
	autoMine  bool

	db      *database.Database
	utxos   *utxo.Index
	mempool *mempool.Mempool

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyArrival
	}

	// Construct a mempool with the specified select strategy.
	mempool, err := mempool.NewWithStrategy(strategy)
	if err != nil {
		return nil, err
	}

	storage := cfg.Storage
	if storage == nil {
		storage = memory.New()
	}

	// The genesis block holds the single transaction that creates the
	// entire supply of the chain.
	genesisBlock, err := database.NewGenesisBlock(cfg.Genesis.Reward, []byte(cfg.Genesis.Lock), uint64(cfg.Genesis.Date.Unix()))
	if err != nil {
		return nil, err
	}

	db, err := database.New(genesisBlock, storage)
	if err != nil {
		return nil, err
	}

	state := State{
		genesis:   cfg.Genesis,
		evHandler: ev,
		verifier:  cfg.Verifier,
		autoMine:  cfg.AutoMine,
		db:        db,
		utxos:     utxo.NewIndex(),
		mempool:   mempool,
	}

	state.applyBlock(genesisBlock)

	ev("state: New: genesis: blk[%s]: reward[%d]: lock[%s]", genesisBlock.Hash(), cfg.Genesis.Reward, cfg.Genesis.Lock)

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the storage is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
