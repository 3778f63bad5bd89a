package cmd

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the identities known to the node",
	Run:   listRun,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listRun(cmd *cobra.Command, args []string) {
	var ids []struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Balance uint64 `json:"balance"`
	}
	if err := getJSON(url+"/v1/identities", &ids); err != nil {
		fatal(err)
	}

	data := pterm.TableData{{"Name", "Address", "Balance"}}
	for _, id := range ids {
		data = append(data, []string{id.Name, id.Address, strconv.FormatUint(id.Balance, 10)})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		fatal(err)
	}
}
