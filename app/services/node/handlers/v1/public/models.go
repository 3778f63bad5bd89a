package public

import (
	"fmt"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type identity struct {
	Name    string           `json:"name"`
	Address database.Address `json:"address"`
	Balance uint64           `json:"balance"`
}

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

type unspent struct {
	TxID  common.Hash `json:"txid"`
	Index uint32      `json:"index"`
	Value uint64      `json:"value"`
	Lock  string      `json:"lock"`
}

func toUnspent(u utxo.UTXO) unspent {
	return unspent{
		TxID:  u.TxID,
		Index: u.Index,
		Value: u.Value,
		Lock:  string(u.Lock),
	}
}

// =============================================================================

type txInput struct {
	TxID  string `json:"txid" validate:"required,hexbytes,len=66"`
	Index uint32 `json:"index"`
	Proof string `json:"proof" validate:"omitempty,hexbytes"`
}

type txOutput struct {
	Value uint64 `json:"value" validate:"gt=0"`
	Lock  string `json:"lock" validate:"required"`
}

// newTx is the payload for submitting a transaction. Locks are carried as
// plain strings, the address form the ledger locks outputs with.
type newTx struct {
	Inputs  []txInput  `json:"inputs" validate:"required,min=1,dive"`
	Outputs []txOutput `json:"outputs" validate:"required,min=1,dive"`
}

// Validate checks the data in the model is considered clean.
func (ntx newTx) Validate() error {
	if err := validate.Check(ntx); err != nil {
		return err
	}
	return nil
}

func (ntx newTx) toDatabase() (database.Tx, error) {
	inputs := make([]database.TxInput, len(ntx.Inputs))
	for i, in := range ntx.Inputs {
		proof := hexutil.Bytes{}
		if in.Proof != "" {
			var err error
			if proof, err = hexutil.Decode(in.Proof); err != nil {
				return database.Tx{}, fmt.Errorf("input %d: proof: %w", i, err)
			}
		}

		inputs[i] = database.TxInput{
			TxID:  common.HexToHash(in.TxID),
			Index: in.Index,
			Proof: proof,
		}
	}

	outputs := make([]database.TxOutput, len(ntx.Outputs))
	for i, out := range ntx.Outputs {
		outputs[i] = database.TxOutput{
			Value: out.Value,
			Lock:  []byte(normalizeLock(out.Lock)),
		}
	}

	return database.NewTx(inputs, outputs), nil
}

// normalizeLock puts an address in its checksummed form.
func normalizeLock(lock string) string {
	if address, err := database.ToAddress(lock); err == nil {
		return string(address)
	}
	return lock
}

// =============================================================================

type txOutputInfo struct {
	Value uint64 `json:"value"`
	Lock  string `json:"lock"`
	Name  string `json:"name,omitempty"`
}

type tx struct {
	TxID    common.Hash        `json:"txid"`
	Inputs  []database.TxInput `json:"inputs"`
	Outputs []txOutputInfo     `json:"outputs"`
}

type block struct {
	Number       uint64      `json:"number"`
	Hash         common.Hash `json:"hash"`
	PrevHash     common.Hash `json:"prev_block_hash"`
	MerkleRoot   common.Hash `json:"merkle_root"`
	TimeStamp    uint64      `json:"timestamp"`
	Difficulty   uint32      `json:"difficulty"`
	Nonce        uint32      `json:"nonce"`
	Transactions []tx        `json:"txs,omitempty"`
	TxCount      int         `json:"tx_count"`
}

type chain struct {
	Height         uint64      `json:"height"`
	LatestBlock    common.Hash `json:"latest_block"`
	NextDifficulty uint32      `json:"next_difficulty"`
	TotalValue     uint64      `json:"total_value"`
	Mempool        int         `json:"mempool"`
	Blocks         []block     `json:"blocks"`
}

type submitted struct {
	Status string      `json:"status"`
	TxID   common.Hash `json:"txid"`
}
