// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// rawBlock is the payload for proposing a block in its canonical encoding.
type rawBlock struct {
	Block string `json:"block" validate:"required,hexbytes"`
}

// Validate checks the data in the model is considered clean.
func (rb rawBlock) Validate() error {
	return validate.Check(rb)
}

type mined struct {
	Hash       common.Hash `json:"hash"`
	Number     uint64      `json:"number"`
	Difficulty uint32      `json:"difficulty"`
	Nonce      uint32      `json:"nonce"`
	TxCount    int         `json:"tx_count"`
}

// =============================================================================

// MineBlock mines a block from the mempool and adds it to the chain. The
// request context bounds the proof of work search.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrEmptyTransactionSet):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, database.ErrProofOfWorkExhausted), ctx.Err() != nil:
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return err
	}

	if err := h.State.AddBlock(block); err != nil {
		n := h.State.ResubmitTransactions(block)
		h.Log.Infow("mine block", "traceid", v.TraceID, "status", "block rejected", "resubmitted", n, "ERROR", err)
		return errs.NewTrusted(err, http.StatusConflict)
	}

	resp := mined{
		Hash:       block.Hash(),
		Number:     h.State.QueryChainLength() - 1,
		Difficulty: block.Header.Difficulty,
		Nonce:      block.Header.Nonce,
		TxCount:    len(block.Values()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining asks the background worker to start a mining operation.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("no mining worker running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// AddBlock takes a block in its canonical encoding, validates it and
// if that passes, adds the block to the chain.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rb rawBlock
	if err := web.Decode(r, &rb); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	data, err := hexutil.Decode(rb.Block)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	block, err := database.DecodeBlock(data)
	if err != nil {
		return errs.FromLedger(err)
	}

	if err := h.State.ProcessProposedBlock(block); err != nil {
		return errs.FromLedger(err)
	}

	resp := struct {
		Status string      `json:"status"`
		Hash   common.Hash `json:"hash"`
	}{
		Status: "block accepted",
		Hash:   block.Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
