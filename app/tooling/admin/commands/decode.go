package commands

import (
	"encoding/json"
	"io"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Decode decodes a block in its canonical hex encoding and prints it as JSON.
func Decode(w io.Writer, hexBlock string) error {
	data, err := hexutil.Decode(hexBlock)
	if err != nil {
		return err
	}

	block, err := database.DecodeBlock(data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(database.NewBlockData(block))
}
