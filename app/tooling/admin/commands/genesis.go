// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Genesis loads the genesis file and prints the genesis block it produces
// along with its canonical encoding.
func Genesis(w io.Writer, path string) error {
	gen, err := genesis.Load(path)
	if err != nil {
		return err
	}

	block, err := database.NewGenesisBlock(gen.Reward, []byte(gen.Lock), uint64(gen.Date.Unix()))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Hash:        %s\n", block.Hash())
	fmt.Fprintf(w, "Merkle Root: %s\n", block.Header.MerkleRoot)
	fmt.Fprintf(w, "TimeStamp:   %d\n", block.Header.TimeStamp)
	fmt.Fprintf(w, "Genesis Tx:  %s\n", block.Values()[0].ID())
	fmt.Fprintf(w, "Reward:      %d -> %s\n", gen.Reward, gen.Lock)
	fmt.Fprintf(w, "Encoding:    %s\n", hexutil.Encode(database.EncodeBlock(block)))

	return nil
}
