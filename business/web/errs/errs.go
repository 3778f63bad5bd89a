// Package errs provides the error types the web layer returns to clients
// and the mapping from ledger failures to HTTP status codes.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context. The message of a trusted error
// is returned to the client as is.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap gives errors.Is access to the ledger error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// FromLedger classifies an error returned by the ledger. Rejections the
// client caused become trusted errors, anything else is returned unchanged
// and reported as an internal error.
func FromLedger(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, mempool.ErrDuplicateTransaction):
		return NewTrusted(err, http.StatusConflict)

	case errors.Is(err, state.ErrTxNotFound),
		errors.Is(err, database.ErrNotFound):
		return NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, database.ErrMalformedEncoding),
		errors.Is(err, database.ErrEmptyTransactionSet),
		errors.Is(err, state.ErrNoInputs),
		errors.Is(err, state.ErrUnknownOrSpentInput),
		errors.Is(err, state.ErrInsufficientInputValue),
		errors.Is(err, state.ErrUnauthorizedInput),
		errors.Is(err, state.ErrInvalidBlock):
		return NewTrusted(err, http.StatusBadRequest)
	}

	return err
}
