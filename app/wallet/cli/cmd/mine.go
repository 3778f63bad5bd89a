package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var privateURL string

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a block from the pending transactions",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&privateURL, "private-url", "r", "http://localhost:9080", "Url of the node's private api.")
}

func mineRun(cmd *cobra.Command, args []string) {
	var blk struct {
		Hash       string `json:"hash"`
		Number     uint64 `json:"number"`
		Difficulty uint32 `json:"difficulty"`
		Nonce      uint32 `json:"nonce"`
		TxCount    int    `json:"tx_count"`
	}

	spinner, _ := pterm.DefaultSpinner.Start("mining")
	err := postJSON(privateURL+"/v1/mining/mine", nil, &blk)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		fatal(err)
	}

	body := fmt.Sprintf("Number:     %d\nHash:       %s\nDifficulty: %d\nNonce:      %d\nTxs:        %d",
		blk.Number, blk.Hash, blk.Difficulty, blk.Nonce, blk.TxCount)
	pterm.DefaultBox.WithTitle("Block Mined").Println(body)
}
