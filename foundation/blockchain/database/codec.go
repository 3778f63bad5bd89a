package database

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// ErrMalformedEncoding is returned when bytes being decoded don't match the
// expected structure of a transaction or block.
var ErrMalformedEncoding = errors.New("malformed encoding")

// =============================================================================

// CORE NOTE: Hashes, and therefore the chain linkage and the proof of work,
// are only meaningful if the encoding is byte stable across processes. RLP
// encodes struct fields in declaration order with no maps involved, so
// identical values always produce identical bytes.

// EncodeTx returns the canonical encoding of the transaction.
func EncodeTx(tx Tx) []byte {
	return mustEncode(tx)
}

// DecodeTx decodes the canonical encoding of a transaction.
func DecodeTx(data []byte) (Tx, error) {
	var tx Tx
	if err := rlp.DecodeBytes(data, &tx); err != nil {
		return Tx{}, fmt.Errorf("%w: tx: %s", ErrMalformedEncoding, err)
	}

	return tx, nil
}

// EncodeBlock returns the canonical encoding of the block header and body.
func EncodeBlock(block Block) []byte {
	return mustEncode(NewBlockData(block))
}

// DecodeBlock decodes the canonical encoding of a block.
func DecodeBlock(data []byte) (Block, error) {
	var blockData BlockData
	if err := rlp.DecodeBytes(data, &blockData); err != nil {
		return Block{}, fmt.Errorf("%w: block: %s", ErrMalformedEncoding, err)
	}

	block, err := ToBlock(blockData)
	if err != nil {
		return Block{}, fmt.Errorf("%w: block: %w", ErrMalformedEncoding, err)
	}

	return block, nil
}

// =============================================================================

// mustEncode encodes values whose types only hold unsigned integers, byte
// arrays, byte slices and slices of such structs. RLP only fails for
// unsupported types, so an error here is a programming error.
func mustEncode(value any) []byte {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		panic(fmt.Sprintf("canonical encoding failed: %s", err))
	}

	return data
}
