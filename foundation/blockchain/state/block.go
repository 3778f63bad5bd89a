package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
)

// Set of error variables for validating blocks.
var (
	ErrInvalidBlock     = errors.New("invalid block")
	ErrBrokenChainLink  = errors.New("previous block hash does not match the tip")
	ErrDuplicateOutputs = errors.New("block creates an output that already exists")
)

// =============================================================================

// ValidateNewBlock checks the block can be appended to the current tip.
//
// CORE NOTE: Only the chain link and the structure of the block are checked.
// The difficulty, the timestamp and the transactions themselves are not
// validated again when a block is accepted.
func (s *State) ValidateNewBlock(block database.Block) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.validateNewBlock(block)
}

// AddBlock validates the block and, if that passes, appends it to the chain,
// applies it to the UTXO index and removes its transactions from the
// mempool. A rejected block changes nothing and the error matches both
// ErrInvalidBlock and the cause.
func (s *State) AddBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: AddBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PrevBlockHash, block.Hash(), len(block.Values()))
	defer s.evHandler("state: AddBlock: completed: newBlk[%s]", block.Hash())

	if err := s.validateNewBlock(block); err != nil {
		s.evHandler("state: AddBlock: REJECTED: %s", err)
		return fmt.Errorf("%w: %w", ErrInvalidBlock, err)
	}

	s.evHandler("state: AddBlock: write to chain")

	if err := s.db.Write(block); err != nil {
		return err
	}

	s.evHandler("state: AddBlock: apply to utxo index and remove from mempool")

	s.applyBlock(block)

	for _, tx := range block.Values() {
		if _, removed := s.mempool.Remove(tx.ID()); removed {
			s.evHandler("state: AddBlock: tx[%s]: removed from mempool", tx.ID())
		}
	}

	// Send an event about this new block.
	s.blockEvent(block)

	return nil
}

// ProcessProposedBlock takes a block from outside of this node, stops any
// mining in progress and adds the block to the chain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: newBlk[%s]", block.Hash())
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%s]", block.Hash())

	// If a mining operation is being executed it needs to stop immediately.
	// The G executing the mining operation will not start over until done is
	// called. That allows this function to complete its state changes before
	// a new mining operation takes place.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer func() {
			s.evHandler("state: ProcessProposedBlock: signal mining operation to continue")
			done()
		}()
	}

	return s.AddBlock(block)
}

// =============================================================================

// validateNewBlock performs the checks for ValidateNewBlock. The caller must
// hold the lock.
func (s *State) validateNewBlock(block database.Block) error {
	tip := s.db.LatestBlock()

	if block.Header.PrevBlockHash != tip.Hash() {
		return fmt.Errorf("%w: got %s, exp %s", ErrBrokenChainLink, block.Header.PrevBlockHash, tip.Hash())
	}

	if err := block.ValidateMerkleRoot(); err != nil {
		return err
	}

	// Applying the block must never overwrite a live output.
	removed := make(map[database.Outpoint]struct{})
	created := make(map[database.Outpoint]struct{})
	for _, tx := range block.Values() {
		for _, in := range tx.Inputs {
			removed[in.Outpoint()] = struct{}{}
		}

		id := tx.ID()
		for i := range tx.Outputs {
			op := database.Outpoint{TxID: id, Index: uint32(i)}

			_, live := s.utxos.Get(op.TxID, op.Index)
			_, spent := removed[op]
			_, dup := created[op]
			if (live && !spent) || dup {
				return fmt.Errorf("%w: %s", ErrDuplicateOutputs, op)
			}
			created[op] = struct{}{}
		}
	}

	return nil
}

// applyBlock removes the outputs spent by each transaction and inserts the
// outputs it creates, one transaction at a time in block order. Inputs are
// not checked again. The caller must hold the lock.
func (s *State) applyBlock(block database.Block) {
	for _, tx := range block.Values() {
		for _, in := range tx.Inputs {
			s.utxos.Remove(in.TxID, in.Index)
		}

		id := tx.ID()
		for i, out := range tx.Outputs {
			s.utxos.Insert(utxo.New(id, uint32(i), out))
		}
	}
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockTransJSON, err := json.Marshal(block.Values())
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"header":%s,"trans":%s}`, block.Hash(), string(blockHeaderJSON), string(blockTransJSON))
}
