package cmd

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the state of the chain",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) {
	var ch struct {
		Height         uint64 `json:"height"`
		LatestBlock    string `json:"latest_block"`
		NextDifficulty uint32 `json:"next_difficulty"`
		TotalValue     uint64 `json:"total_value"`
		Mempool        int    `json:"mempool"`
		Blocks         []struct {
			Number     uint64 `json:"number"`
			Hash       string `json:"hash"`
			PrevHash   string `json:"prev_block_hash"`
			MerkleRoot string `json:"merkle_root"`
			Difficulty uint32 `json:"difficulty"`
			Nonce      uint32 `json:"nonce"`
			TxCount    int    `json:"tx_count"`
		} `json:"blocks"`
	}
	if err := getJSON(url+"/v1/chain", &ch); err != nil {
		fatal(err)
	}

	pterm.Info.Printfln("height %d, total value %d, mempool %d, next difficulty %d",
		ch.Height, ch.TotalValue, ch.Mempool, ch.NextDifficulty)

	data := pterm.TableData{{"Number", "Hash", "Prev", "Merkle Root", "Difficulty", "Nonce", "Txs"}}
	for _, b := range ch.Blocks {
		data = append(data, []string{
			strconv.FormatUint(b.Number, 10),
			short(b.Hash),
			short(b.PrevHash),
			short(b.MerkleRoot),
			strconv.FormatUint(uint64(b.Difficulty), 10),
			strconv.FormatUint(uint64(b.Nonce), 10),
			strconv.Itoa(b.TxCount),
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		fatal(err)
	}
}

// short abbreviates a hex hash for display.
func short(hash string) string {
	if len(hash) <= 14 {
		return hash
	}
	return hash[:8] + ".." + hash[len(hash)-4:]
}
