// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyArrival = "arrival"
	StrategyRandom  = "random"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyArrival: arrivalSelect,
	StrategyRandom:  randomSelect,
}

// Func defines a function that takes the pending transactions in the order
// they were submitted and selects howMany of them in an order based on the
// function's strategy. Receiving -1 for howMany must return all the
// transactions in the strategy's ordering. The input slice must not be
// modified.
type Func func(transactions []database.Tx, howMany int) []database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// limit normalizes howMany against the number of available transactions.
func limit(available int, howMany int) int {
	if howMany < 0 || howMany > available {
		return available
	}
	return howMany
}
