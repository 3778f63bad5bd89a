package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common"
)

// Set of error variables for validating transactions.
var (
	ErrNoInputs               = errors.New("transaction has no inputs")
	ErrUnknownOrSpentInput    = errors.New("input references an unknown or spent output")
	ErrInsufficientInputValue = errors.New("input value is less than output value")
	ErrUnauthorizedInput      = errors.New("input proof does not unlock the output")
)

// =============================================================================

// ValidateTransaction checks the transaction against the current UTXO index.
func (s *State) ValidateTransaction(tx database.Tx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.validateTransaction(tx, nil)
}

// SubmitTransaction accepts a transaction for inclusion in a future block.
// Nothing changes when the transaction is rejected.
func (s *State) SubmitTransaction(tx database.Tx) error {
	if err := s.submitTransaction(tx); err != nil {
		return err
	}

	if s.autoMine && s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}

// ResubmitTransactions offers the transactions of a block that couldn't be
// added back to the mempool. Each one is validated again and the ones that
// no longer apply are dropped. The number accepted is returned.
func (s *State) ResubmitTransactions(block database.Block) int {
	var accepted int
	for _, tx := range block.Values() {
		if err := s.submitTransaction(tx); err != nil {
			s.evHandler("state: ResubmitTransactions: tx[%s]: dropped: %s", tx.ID(), err)
			continue
		}
		accepted++
	}

	return accepted
}

// =============================================================================

func (s *State) submitTransaction(tx database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateTransaction(tx, nil); err != nil {
		return err
	}

	n, err := s.mempool.Submit(tx)
	if err != nil {
		return err
	}

	s.evHandler("state: SubmitTransaction: tx[%s]: accepted: mempool[%d]", tx.ID(), n)

	return nil
}

// validateTransaction checks the transaction has inputs, every input resolves
// to a live UTXO that isn't in the claimed set and the inputs cover the
// outputs. Only the genesis transaction may have no inputs. The claimed set
// holds outputs already spent by transactions placed ahead of this one in
// the same candidate block. The caller must hold the lock.
func (s *State) validateTransaction(tx database.Tx, claimed map[database.Outpoint]struct{}) error {
	if len(tx.Inputs) == 0 {
		return ErrNoInputs
	}

	outSum, err := tx.OutputValue()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInsufficientInputValue, err)
	}

	// The signing digest is the same for every input.
	var sigHash common.Hash
	if s.verifier != nil {
		sigHash = tx.SigningHash()
	}

	// Track the outputs spent by this transaction so the same output can't
	// be counted twice.
	spent := make(map[database.Outpoint]struct{}, len(tx.Inputs))

	var inSum uint64
	for _, in := range tx.Inputs {
		op := in.Outpoint()

		if _, exists := claimed[op]; exists {
			return fmt.Errorf("%w: %s: claimed by another transaction", ErrUnknownOrSpentInput, op)
		}

		if _, exists := spent[op]; exists {
			return fmt.Errorf("%w: %s: spent twice", ErrUnknownOrSpentInput, op)
		}
		spent[op] = struct{}{}

		u, exists := s.utxos.Get(in.TxID, in.Index)
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownOrSpentInput, op)
		}

		if s.verifier != nil {
			if err := s.verifier(sigHash, in.Proof, u.Lock); err != nil {
				return fmt.Errorf("%w: %s: %s", ErrUnauthorizedInput, op, err)
			}
		}

		inSum += u.Value
	}

	if inSum < outSum {
		return fmt.Errorf("%w: in[%d] out[%d]", ErrInsufficientInputValue, inSum, outSum)
	}

	return nil
}
