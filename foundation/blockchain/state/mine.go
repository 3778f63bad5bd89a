package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. The caller is expected to hand the
// block to AddBlock.
//
// CORE NOTE: The lock is held for the entire search so the tip and the UTXO
// index the candidate was built against can't change underneath it. A block
// arriving from outside cancels the search through the worker.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: select transactions: mempool[%d]", s.mempool.Count())

	trans := s.selectTransactions()
	if len(trans) == 0 {
		return database.Block{}, database.ErrEmptyTransactionSet
	}

	difficulty := s.adjustDifficulty()
	tip := s.db.LatestBlock()

	s.evHandler("state: MineNewBlock: MINING: perform POW: numTrans[%d]: difficulty[%d]", len(trans), difficulty)

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		PrevBlockHash: tip.Hash(),
		Trans:         trans,
		Difficulty:    difficulty,
		EvHandler:     s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: remove mined transactions from mempool")

	for _, tx := range trans {
		s.mempool.Remove(tx.ID())
	}

	return block, nil
}

// =============================================================================

// selectTransactions drains a batch of transactions from the mempool and
// keeps the ones that are still valid together. A transaction whose inputs
// were spent by a block accepted after it was submitted, that spends an
// output also spent by a transaction ahead of it in the batch, or that would
// create an output that already exists is evicted from the mempool. The
// caller must hold the lock.
func (s *State) selectTransactions() []database.Tx {
	candidates := s.mempool.Drain(int(s.genesis.TransPerBlock))

	claimed := make(map[database.Outpoint]struct{})
	created := make(map[database.Outpoint]struct{})
	trans := make([]database.Tx, 0, len(candidates))

	for _, tx := range candidates {
		err := s.validateTransaction(tx, claimed)
		if err == nil {
			err = s.checkOutputs(tx, claimed, created)
		}

		if err != nil {
			s.mempool.Remove(tx.ID())
			s.evHandler("state: MineNewBlock: MINING: tx[%s]: evicted: %s", tx.ID(), err)
			continue
		}

		for _, in := range tx.Inputs {
			claimed[in.Outpoint()] = struct{}{}
		}

		id := tx.ID()
		for i := range tx.Outputs {
			created[database.Outpoint{TxID: id, Index: uint32(i)}] = struct{}{}
		}

		trans = append(trans, tx)
	}

	return trans
}

// checkOutputs fails when an output of the transaction is still live and not
// spent ahead of it in the batch, or was already created by the batch. The
// caller must hold the lock.
func (s *State) checkOutputs(tx database.Tx, claimed map[database.Outpoint]struct{}, created map[database.Outpoint]struct{}) error {
	id := tx.ID()

	for i := range tx.Outputs {
		op := database.Outpoint{TxID: id, Index: uint32(i)}

		_, live := s.utxos.Get(op.TxID, op.Index)
		_, spent := claimed[op]
		_, dup := created[op]
		if (live && !spent) || dup {
			return fmt.Errorf("%w: %s", ErrDuplicateOutputs, op)
		}
	}

	return nil
}

// =============================================================================

// AdjustDifficulty returns the difficulty the next block must be mined at.
func (s *State) AdjustDifficulty() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.adjustDifficulty()
}

// adjustDifficulty retargets the difficulty once every window of blocks.
//
// Until the first full window has been mined the initial difficulty is used.
// When the tip closes a window, the time it took to mine the window is
// compared with the target time for the window. Finishing in less than half
// the target raises the difficulty by one and taking more than double lowers
// it by one. Between windows the tip's difficulty carries over. The genesis
// timestamp is fixed by the genesis file so the first window is measured
// from block 1 and covers one interval less. The caller must hold the lock.
func (s *State) adjustDifficulty() uint32 {
	window := uint64(s.genesis.RetargetWindow)
	mined := s.db.Count() - 1
	tip := s.db.LatestBlock()

	if mined < window {
		return s.genesis.InitialDifficulty
	}

	if mined%window != 0 {
		return tip.Header.Difficulty
	}

	from, intervals := mined-window, window
	if from == 0 {
		from, intervals = 1, window-1
	}

	if intervals == 0 {
		return tip.Header.Difficulty
	}

	start, err := s.db.GetBlock(from)
	if err != nil {
		s.evHandler("state: adjustDifficulty: ERROR: %s", err)
		return tip.Header.Difficulty
	}

	var actual uint64
	if tip.Header.TimeStamp > start.Header.TimeStamp {
		actual = tip.Header.TimeStamp - start.Header.TimeStamp
	}
	expected := uint64(s.genesis.TargetBlockTime) * intervals

	difficulty := tip.Header.Difficulty
	switch {
	case actual < expected/2:
		if difficulty < database.MaxDifficulty {
			difficulty++
		}
	case actual > expected*2:
		if difficulty > 1 {
			difficulty--
		}
	}

	s.evHandler("state: adjustDifficulty: window[%d]: actual[%ds]: expected[%ds]: %s", mined/window, actual, expected, difficultyChange(tip.Header.Difficulty, difficulty))

	return difficulty
}

func difficultyChange(from uint32, to uint32) string {
	if from == to {
		return fmt.Sprintf("difficulty[%d]: unchanged", to)
	}

	return fmt.Sprintf("difficulty[%d -> %d]", from, to)
}
