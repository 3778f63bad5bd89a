package selector

import (
	"math/rand/v2"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// randomSelect returns a random sample of the pending transactions.
var randomSelect = func(transactions []database.Tx, howMany int) []database.Tx {
	n := limit(len(transactions), howMany)

	shuffled := make([]database.Tx, len(transactions))
	copy(shuffled, transactions)

	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n]
}
