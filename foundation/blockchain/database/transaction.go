package database

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Outpoint identifies a transaction output by the id of the transaction that
// created it and the position of the output in that transaction.
type Outpoint struct {
	TxID  common.Hash `json:"txid"`
	Index uint32      `json:"index"`
}

// String implements the Stringer interface for logging.
func (op Outpoint) String() string {
	return fmt.Sprintf("%s:%d", op.TxID.Hex(), op.Index)
}

// =============================================================================

// TxInput references a prior output being spent along with the proof that
// unlocks it.
type TxInput struct {
	TxID  common.Hash   `json:"txid"`  // Bitcoin: Id of the transaction holding the output.
	Index uint32        `json:"index"` // Bitcoin: Position of the output in that transaction (vout).
	Proof hexutil.Bytes `json:"proof"` // Bitcoin: Unlocking proof (scriptSig), opaque to the ledger.
}

// Outpoint returns the output this input is spending.
func (in TxInput) Outpoint() Outpoint {
	return Outpoint{TxID: in.TxID, Index: in.Index}
}

// TxOutput represents value paid to a locking condition.
type TxOutput struct {
	Value uint64        `json:"value"` // Bitcoin: Value in the smallest currency unit.
	Lock  hexutil.Bytes `json:"lock"`  // Bitcoin: Locking condition (scriptPubKey), identifies the recipient.
}

// Tx is a value transfer consuming prior outputs and creating new ones.
type Tx struct {
	Inputs  []TxInput  `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
}

// NewTx constructs a new transaction. Empty input and output sets are kept
// as empty slices so a decoded transaction compares equal to the original.
func NewTx(inputs []TxInput, outputs []TxOutput) Tx {
	if inputs == nil {
		inputs = []TxInput{}
	}
	if outputs == nil {
		outputs = []TxOutput{}
	}

	return Tx{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// NewGenesisTx constructs the synthetic transaction that creates the initial
// supply. It has no inputs and a single output.
func NewGenesisTx(value uint64, lock []byte) Tx {
	return NewTx(nil, []TxOutput{{Value: value, Lock: lock}})
}

// ID returns the transaction id, the digest of the canonical encoding.
func (tx Tx) ID() common.Hash {
	return signature.Hash(EncodeTx(tx))
}

// Hash implements the merkle Hashable interface. A transaction's leaf in the
// block's merkle tree is its id.
func (tx Tx) Hash() ([]byte, error) {
	id := tx.ID()
	return id.Bytes(), nil
}

// Equals implements the merkle Hashable interface.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.ID() == otherTx.ID()
}

// OutputValue sums the value of every output.
func (tx Tx) OutputValue() (uint64, error) {
	var sum uint64
	for _, out := range tx.Outputs {
		if sum+out.Value < sum {
			return 0, fmt.Errorf("output value overflow")
		}
		sum += out.Value
	}

	return sum, nil
}

// SigningHash returns the digest every input signs. It is the digest of the
// transaction encoding with all unlocking proofs blanked, since a proof can't
// cover itself.
func (tx Tx) SigningHash() common.Hash {
	blank := Tx{
		Inputs:  make([]TxInput, len(tx.Inputs)),
		Outputs: tx.Outputs,
	}
	for i, in := range tx.Inputs {
		blank.Inputs[i] = TxInput{TxID: in.TxID, Index: in.Index, Proof: hexutil.Bytes{}}
	}

	return signature.Hash(EncodeTx(blank))
}

// Sign uses the specified private key to set the unlocking proof on every
// input. The same key is assumed to own every output being spent.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	proof, err := signature.Sign(tx.SigningHash(), privateKey)
	if err != nil {
		return Tx{}, err
	}

	signed := Tx{
		Inputs:  make([]TxInput, len(tx.Inputs)),
		Outputs: tx.Outputs,
	}
	for i, in := range tx.Inputs {
		signed.Inputs[i] = TxInput{TxID: in.TxID, Index: in.Index, Proof: proof}
	}

	return signed, nil
}

// String implements the Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:in[%d]:out[%d]", tx.ID().Hex(), len(tx.Inputs), len(tx.Outputs))
}
