package selector

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// arrivalSelect returns the transactions in the order they were submitted.
var arrivalSelect = func(transactions []database.Tx, howMany int) []database.Tx {
	n := limit(len(transactions), howMany)

	final := make([]database.Tx, n)
	copy(final, transactions[:n])

	return final
}
