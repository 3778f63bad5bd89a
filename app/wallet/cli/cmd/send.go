package cmd

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ErrInsufficientFunds is returned when the unspent outputs of the account
// can't cover the value being sent.
var ErrInsufficientFunds = errors.New("insufficient funds")

var (
	to    string
	value uint64
	fee   uint64
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value to an address or identity name",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address or identity name to send to.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.Flags().Uint64VarP(&fee, "fee", "f", 0, "Value left unclaimed for the miner.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("value")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, from := loadAccount()

	recipient := database.Address(to)
	switch address, exists := loadNameService().Address(to); {
	case exists:
		recipient = address
	case recipient.IsAddress():
		recipient, _ = database.ToAddress(to)
	}

	var utxos []unspent
	if err := getJSON(url+"/v1/utxos/"+string(from), &utxos); err != nil {
		fatal(err)
	}

	tx, err := buildTx(utxos, from, recipient, value, fee)
	if err != nil {
		fatal(err)
	}

	tx, err = tx.Sign(privateKey)
	if err != nil {
		fatal(err)
	}

	var resp struct {
		Status string      `json:"status"`
		TxID   common.Hash `json:"txid"`
	}
	if err := postJSON(url+"/v1/tx/submit", toPayload(tx), &resp); err != nil {
		fatal(err)
	}

	pterm.Success.Printfln("%s: %s", resp.Status, resp.TxID)
}

// =============================================================================

type unspent struct {
	TxID  common.Hash `json:"txid"`
	Index uint32      `json:"index"`
	Value uint64      `json:"value"`
}

type txInput struct {
	TxID  string `json:"txid"`
	Index uint32 `json:"index"`
	Proof string `json:"proof"`
}

type txOutput struct {
	Value uint64 `json:"value"`
	Lock  string `json:"lock"`
}

type payload struct {
	Inputs  []txInput  `json:"inputs"`
	Outputs []txOutput `json:"outputs"`
}

// buildTx spends unspent outputs in the order provided until the value and
// fee are covered. Any value left over is paid back to the sender.
func buildTx(utxos []unspent, from database.Address, recipient database.Address, value uint64, fee uint64) (database.Tx, error) {
	if value == 0 {
		return database.Tx{}, errors.New("value must be greater than zero")
	}

	need := value + fee
	if need < value {
		return database.Tx{}, errors.New("value plus fee overflows")
	}

	var inputs []database.TxInput
	var total uint64
	for _, u := range utxos {
		if total >= need {
			break
		}
		inputs = append(inputs, database.TxInput{TxID: u.TxID, Index: u.Index})
		total += u.Value
	}

	if total < need {
		return database.Tx{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, need)
	}

	outputs := []database.TxOutput{{Value: value, Lock: recipient.Lock()}}
	if change := total - need; change > 0 {
		outputs = append(outputs, database.TxOutput{Value: change, Lock: from.Lock()})
	}

	return database.NewTx(inputs, outputs), nil
}

func toPayload(tx database.Tx) payload {
	p := payload{
		Inputs:  make([]txInput, len(tx.Inputs)),
		Outputs: make([]txOutput, len(tx.Outputs)),
	}

	for i, in := range tx.Inputs {
		p.Inputs[i] = txInput{
			TxID:  in.TxID.Hex(),
			Index: in.Index,
			Proof: hexutil.Encode(in.Proof),
		}
	}

	for i, out := range tx.Outputs {
		p.Outputs[i] = txOutput{
			Value: out.Value,
			Lock:  string(out.Lock),
		}
	}

	return p
}
