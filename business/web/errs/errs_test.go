package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FromLedger(t *testing.T) {
	tt := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate", mempool.ErrDuplicateTransaction, http.StatusConflict},
		{"noinputs", state.ErrNoInputs, http.StatusBadRequest},
		{"spent", fmt.Errorf("input 0: %w", state.ErrUnknownOrSpentInput), http.StatusBadRequest},
		{"value", state.ErrInsufficientInputValue, http.StatusBadRequest},
		{"proof", state.ErrUnauthorizedInput, http.StatusBadRequest},
		{"malformed", database.ErrMalformedEncoding, http.StatusBadRequest},
		{"block", fmt.Errorf("%w: %w", state.ErrInvalidBlock, state.ErrBrokenChainLink), http.StatusBadRequest},
		{"missing", state.ErrTxNotFound, http.StatusNotFound},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			err := errs.FromLedger(tst.err)
			require.True(t, errs.IsTrusted(err))
			assert.Equal(t, tst.status, errs.GetTrusted(err).Status)
			assert.True(t, errors.Is(err, tst.err))
		})
	}

	unknown := errors.New("disk on fire")
	assert.False(t, errs.IsTrusted(errs.FromLedger(unknown)))
	assert.NoError(t, errs.FromLedger(nil))
}
