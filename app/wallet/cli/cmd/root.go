// Package cmd contains the wallet commands.
package cmd

import (
	"crypto/ecdsa"
	"os"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "kennedy", "Name of the identity to use.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple utxo wallet",
}

// Execute runs the wallet.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// fatal reports the error and terminates the wallet.
func fatal(err error) {
	pterm.Error.Println(err)
	os.Exit(1)
}

func loadNameService() *nameservice.NameService {
	ns, err := nameservice.New(accountPath)
	if err != nil {
		fatal(err)
	}
	return ns
}

func loadAccount() (*ecdsa.PrivateKey, database.Address) {
	privateKey, err := loadNameService().PrivateKey(accountName)
	if err != nil {
		fatal(err)
	}

	return privateKey, database.PublicKeyToAddress(privateKey.PublicKey)
}
