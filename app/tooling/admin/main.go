// This program performs administrative tasks for the ledger.
package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/utxochain/app/tooling/admin/commands"
	"github.com/ardanlabs/utxochain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	log.Infow("starting admin", "version", build)

	return processCommands(os.Args, os.Stdout)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, out *os.File) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: admin genesis [path] | admin decode <hex>")
	}

	switch args[1] {
	case "genesis":
		path := "zblock/genesis.json"
		if len(args) > 2 {
			path = args[2]
		}
		if err := commands.Genesis(out, path); err != nil {
			return fmt.Errorf("building genesis block: %w", err)
		}

	case "decode":
		if len(args) < 3 {
			return fmt.Errorf("decode requires a hex encoded block")
		}
		if err := commands.Decode(out, args[2]); err != nil {
			return fmt.Errorf("decoding block: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
