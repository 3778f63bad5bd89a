// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros. It is the previous block hash
// carried by the genesis block.
var ZeroHash common.Hash

// ErrInvalidSignature is returned when a proof does not verify against the
// provided digest and locking condition.
var ErrInvalidSignature = errors.New("invalid signature")

// utxoStamp is mixed into every digest that gets signed. This will make it
// clear the signature was produced for this blockchain and can't be replayed
// as an Ethereum message.
var utxoStamp = []byte("\x19UTXO Signed Message:\n32")

// =============================================================================

// Hash returns the SHA-256 digest of the specified bytes. The bytes are
// expected to be a canonical encoding so the digest is stable.
func Hash(data []byte) common.Hash {
	return common.Hash(sha256.Sum256(data))
}

// Sign uses the specified private key to produce an unlocking proof for the
// digest. The proof is the 65 byte [R|S|V] signature.
func Sign(digest common.Hash, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	data := stamp(digest)

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, ErrInvalidSignature
	}

	return sig, nil
}

// Verify checks the proof was produced over the digest by the owner of the
// locking condition. The lock is the hex address of the owner.
func Verify(digest common.Hash, proof []byte, lock []byte) error {
	address, err := FromAddress(digest, proof)
	if err != nil {
		return err
	}

	if !bytes.EqualFold([]byte(address), lock) {
		return fmt.Errorf("%w: signed by %s", ErrInvalidSignature, address)
	}

	return nil
}

// FromAddress extracts the address for the account that signed the digest.
func FromAddress(digest common.Hash, proof []byte) (string, error) {
	if len(proof) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: proof length %d", ErrInvalidSignature, len(proof))
	}

	// Check the recovery id is either 0 or 1.
	if v := proof[crypto.RecoveryIDOffset]; v != 0 && v != 1 {
		return "", fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, v)
	}

	publicKey, err := crypto.SigToPub(stamp(digest), proof)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the digest with the
// blockchain stamp embedded into the final hash.
func stamp(digest common.Hash) []byte {
	return crypto.Keccak256(utxoStamp, digest.Bytes())
}
