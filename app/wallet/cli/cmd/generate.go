package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new identity for the account name",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	address, err := loadNameService().Create(accountName)
	if err != nil {
		fatal(err)
	}

	pterm.Success.Printfln("created %s: %s", accountName, address)
}
