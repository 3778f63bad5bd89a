package database

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
)

// Set of error variables for constructing and mining blocks.
var (
	ErrEmptyTransactionSet  = merkle.ErrEmptySet
	ErrProofOfWorkExhausted = errors.New("nonce space exhausted without meeting the target")
	ErrDifficultyOutOfRange = errors.New("difficulty out of range")
)

// BlockVersion is the header version written on every block.
const BlockVersion = 1

// MaxDifficulty is the largest shift count the target function accepts.
const MaxDifficulty = 31

// powBatch is the number of nonces tried between cancellation checks.
const powBatch = 10_000

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Version       uint32      `json:"version"`         // Bitcoin: Block version.
	PrevBlockHash common.Hash `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain.
	MerkleRoot    common.Hash `json:"merkle_root"`     // Bitcoin: Merkle root over the ids of the transactions in this block.
	TimeStamp     uint64      `json:"timestamp"`       // Bitcoin: Time the block was constructed.
	Difficulty    uint32      `json:"difficulty"`      // Bitcoin: Shift count that sets the target for the hash solution.
	Nonce         uint32      `json:"nonce"`           // Bitcoin: Value identified to solve the hash solution.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  *merkle.Tree[Tx]
}

// NewBlock constructs a candidate block with a nonce of zero. A timestamp of
// zero means now.
func NewBlock(prevBlockHash common.Hash, trans []Tx, difficulty uint32, timeStamp uint64) (Block, error) {
	if len(trans) == 0 {
		return Block{}, ErrEmptyTransactionSet
	}

	if difficulty > MaxDifficulty {
		return Block{}, fmt.Errorf("%w: %d", ErrDifficultyOutOfRange, difficulty)
	}

	// Construct a merkle tree from the transactions for this block. The root
	// of this tree will be part of the block to be mined.
	tree, err := merkle.NewTree(trans)
	if err != nil {
		return Block{}, err
	}

	if timeStamp == 0 {
		timeStamp = uint64(time.Now().UTC().Unix())
	}

	nb := Block{
		Header: BlockHeader{
			Version:       BlockVersion,
			PrevBlockHash: prevBlockHash,
			MerkleRoot:    common.BytesToHash(tree.MerkleRoot),
			TimeStamp:     timeStamp,
			Difficulty:    difficulty,
			Nonce:         0, // Will be identified by the POW algorithm.
		},
		Trans: tree,
	}

	return nb, nil
}

// NewGenesisBlock constructs block zero holding the single transaction that
// creates the initial supply. It is never mined.
func NewGenesisBlock(reward uint64, lock []byte, timeStamp uint64) (Block, error) {
	return NewBlock(signature.ZeroHash, []Tx{NewGenesisTx(reward, lock)}, 0, timeStamp)
}

// Hash returns the unique hash for the Block.
//
// CORE NOTE: The digest covers the canonical encoding of the header and the
// body, not the header alone.
func (b Block) Hash() common.Hash {
	return signature.Hash(EncodeBlock(b))
}

// Values returns the transactions in block order.
func (b Block) Values() []Tx {
	if b.Trans == nil {
		return nil
	}

	return b.Trans.Values()
}

// ValidateMerkleRoot checks the header commits to the block's transactions.
func (b Block) ValidateMerkleRoot() error {
	if b.Trans == nil {
		return ErrEmptyTransactionSet
	}

	root := common.BytesToHash(b.Trans.MerkleRoot)
	if b.Header.MerkleRoot != root {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", root, b.Header.MerkleRoot)
	}

	return nil
}

// =============================================================================

// Target returns the numeric target the first 4 bytes of a block hash must
// fall below for the specified difficulty.
func Target(difficulty uint32) (uint32, error) {
	if difficulty > MaxDifficulty {
		return 0, fmt.Errorf("%w: %d", ErrDifficultyOutOfRange, difficulty)
	}

	return math.MaxUint32 >> difficulty, nil
}

// MeetsDifficulty checks the hash complies with the POW rules. The first 4
// bytes of the hash, read big endian, must be less than the target. A
// difficulty outside the supported range is never met.
func MeetsDifficulty(hash common.Hash, difficulty uint32) bool {
	target, err := Target(difficulty)
	if err != nil {
		return false
	}

	return binary.BigEndian.Uint32(hash[:4]) < target
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlockHash common.Hash
	Trans         []Tx
	Difficulty    uint32
	TimeStamp     uint64 // Zero means now.
	NonceLimit    uint64 // Zero means the entire nonce space.
	EvHandler     func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	nb, err := NewBlock(args.PrevBlockHash, args.Trans, args.Difficulty, args.TimeStamp)
	if err != nil {
		return Block{}, err
	}

	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	limit := args.NonceLimit
	if limit == 0 || limit > math.MaxUint32+1 {
		limit = math.MaxUint32 + 1
	}

	// Perform the proof of work mining operation.
	if err := nb.performPOW(ctx, limit, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, limit uint64, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: difficulty[%d]", b.Header.Difficulty)
	defer ev("database: PerformPOW: MINING: completed")

	// Log the transactions that are a part of this potential block.
	for _, tx := range b.Trans.Values() {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	// Only the nonce changes between attempts. The whole block, body
	// included, is encoded again for every attempt.
	blockData := NewBlockData(*b)

	start := time.Now()

	for attempts := uint64(0); attempts < limit; attempts++ {
		if attempts%powBatch == 0 && ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED: attempts[%d]", attempts)
			return ctx.Err()
		}

		b.Header.Nonce = uint32(attempts)
		blockData.Header = b.Header

		hash := signature.Hash(mustEncode(blockData))
		if !MeetsDifficulty(hash, b.Header.Difficulty) {
			continue
		}

		// Did we get cancelled while solving the problem.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED: attempts[%d]", attempts+1)
			return ctx.Err()
		}

		dur := time.Since(start)
		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.Header.PrevBlockHash, hash, b.Header.Nonce)
		ev("database: PerformPOW: MINING: attempts[%d]: duration[%s]: hashrate[%.2f H/s]", attempts+1, dur, hashRate(attempts+1, dur))

		return nil
	}

	ev("database: PerformPOW: MINING: EXHAUSTED: attempts[%d]", limit)

	return ErrProofOfWorkExhausted
}

// hashRate returns the number of hashes calculated per second.
func hashRate(attempts uint64, dur time.Duration) float64 {
	secs := dur.Seconds()
	if secs == 0 {
		return 0
	}

	return float64(attempts) / secs
}

// =============================================================================

// BlockData represents what is encoded and stored for each block.
type BlockData struct {
	Hash   common.Hash `json:"hash" rlp:"-"`
	Header BlockHeader `json:"header"`
	Trans  []Tx        `json:"trans"`
}

// NewBlockData constructs the value to encode.
func NewBlockData(block Block) BlockData {
	blockData := BlockData{
		Header: block.Header,
		Trans:  block.Values(),
	}
	blockData.Hash = signature.Hash(mustEncode(blockData))

	return blockData
}

// ToBlock converts a BlockData into a Block. The merkle root in the header is
// not checked here, see ValidateMerkleRoot.
func ToBlock(blockData BlockData) (Block, error) {
	if len(blockData.Trans) == 0 {
		return Block{}, ErrEmptyTransactionSet
	}

	tree, err := merkle.NewTree(blockData.Trans)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: blockData.Header,
		Trans:  tree,
	}

	return nb, nil
}
