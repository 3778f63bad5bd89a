package signature_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	digest := signature.Hash([]byte("Bill"))

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	proof, err := signature.Sign(digest, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if len(proof) != crypto.SignatureLength {
		t.Fatalf("Should get back a %d byte proof, got %d", crypto.SignatureLength, len(proof))
	}

	addr, err := signature.FromAddress(digest, proof)
	if err != nil {
		t.Fatalf("Should be able to generate from address: %s", err)
	}

	if from != addr {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}

	if err := signature.Verify(digest, proof, []byte(from)); err != nil {
		t.Fatalf("Should be able to verify the proof: %s", err)
	}
}

func Test_VerifyWrongOwner(t *testing.T) {
	digest := signature.Hash([]byte("Bill"))

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	proof, err := signature.Sign(digest, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	err = signature.Verify(digest, proof, []byte("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"))
	if !errors.Is(err, signature.ErrInvalidSignature) {
		t.Fatalf("Should not verify for a different owner: %v", err)
	}

	err = signature.Verify(signature.Hash([]byte("Jill")), proof, []byte(from))
	if !errors.Is(err, signature.ErrInvalidSignature) {
		t.Fatalf("Should not verify for a different digest: %v", err)
	}

	err = signature.Verify(digest, proof[:10], []byte(from))
	if !errors.Is(err, signature.ErrInvalidSignature) {
		t.Fatalf("Should not verify a truncated proof: %v", err)
	}
}

func Test_Hash(t *testing.T) {
	hash := "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	h := signature.Hash([]byte("abc"))
	if h.Hex() != hash {
		t.Logf("got: %s", h.Hex())
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h.Hex()[:6])
	}

	h = signature.Hash([]byte("abc"))
	if h.Hex() != hash {
		t.Logf("got: %s", h.Hex())
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}

	if signature.ZeroHash.Hex() != "0x0000000000000000000000000000000000000000000000000000000000000000" {
		t.Fatalf("Should have a zero hash of all zeros: %s", signature.ZeroHash.Hex())
	}
}

func Test_SignConsistency(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	digest1 := signature.Hash([]byte("Bill"))
	proof1, err := signature.Sign(digest1, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr1, err := signature.FromAddress(digest1, proof1)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	digest2 := signature.Hash([]byte("Jill"))
	proof2, err := signature.Sign(digest2, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr2, err := signature.FromAddress(digest2, proof2)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	if addr1 != addr2 {
		t.Errorf("Got: %s", addr1)
		t.Errorf("Got: %s", addr2)
		t.Fatalf("Should have the same address.")
	}
}
