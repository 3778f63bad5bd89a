package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	_, address := loadAccount()

	var bal struct {
		Address string `json:"address"`
		Balance uint64 `json:"balance"`
	}
	if err := getJSON(url+"/v1/balance/"+string(address), &bal); err != nil {
		fatal(err)
	}

	pterm.Info.Printfln("%s: %d", bal.Address, bal.Balance)
}
