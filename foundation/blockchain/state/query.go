package state

import (
	"errors"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// ErrTxNotFound is returned when a transaction is not in any block.
var ErrTxNotFound = errors.New("transaction not found in chain")

// TxProof is the merkle inclusion proof for a transaction in a block.
type TxProof struct {
	TxID        common.Hash     `json:"txid"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   common.Hash     `json:"block_hash"`
	MerkleRoot  common.Hash     `json:"merkle_root"`
	Proof       []hexutil.Bytes `json:"proof"`
	Order       []int64         `json:"order"`
}

// =============================================================================

// QueryBalance returns the sum of the unspent outputs with the specified lock.
func (s *State) QueryBalance(lock []byte) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.utxos.BalanceFor(lock)
}

// QueryUnspent returns the unspent outputs with the specified lock.
func (s *State) QueryUnspent(lock []byte) []utxo.UTXO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.utxos.UnspentFor(lock)
}

// QueryTotalValue returns the value held by every unspent output. Since no
// block creates new value, this is always the genesis reward less the fees
// paid by transactions.
func (s *State) QueryTotalValue() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.utxos.Total()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the number of blocks in the chain, genesis included.
func (s *State) QueryChainLength() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
// The genesis block is number zero.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := s.db.Count() - 1

	if from == QueryLatest {
		from = latest
		to = from
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			s.evHandler("state: getblock: ERROR: %s", err)
			return nil
		}
		out = append(out, block)
	}

	return out
}

// QueryTxProof locates the block holding the transaction and returns the
// merkle proof of its inclusion.
func (s *State) QueryTxProof(txID common.Hash) (TxProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var num uint64
	iter := s.db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return TxProof{}, err
		}

		for _, tx := range block.Values() {
			if tx.ID() != txID {
				continue
			}

			proof, order, err := block.Trans.Proof(tx)
			if err != nil {
				return TxProof{}, err
			}

			txProof := TxProof{
				TxID:        txID,
				BlockNumber: num,
				BlockHash:   block.Hash(),
				MerkleRoot:  block.Header.MerkleRoot,
				Proof:       make([]hexutil.Bytes, len(proof)),
				Order:       order,
			}
			for i, p := range proof {
				txProof.Proof[i] = p
			}

			return txProof, nil
		}

		num++
	}

	return TxProof{}, ErrTxNotFound
}
