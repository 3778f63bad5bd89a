// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Identities returns the identities known to this node with their balance.
func (h Handlers) Identities(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ids := h.NS.Identities()

	list := make([]identity, len(ids))
	for i, id := range ids {
		list[i] = identity{
			Name:    id.Name,
			Address: id.Address,
			Balance: h.State.QueryBalance(id.Address.Lock()),
		}
	}

	return web.Respond(ctx, w, list, http.StatusOK)
}

// Balance returns the balance of an address. A known identity name can be
// used in place of the address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := h.resolve(web.Param(r, "address"))

	bal := balance{
		Address: address,
		Name:    h.NS.Lookup(database.Address(address)),
		Balance: h.State.QueryBalance([]byte(address)),
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// Unspent returns the unspent outputs locked to an address.
func (h Handlers) Unspent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := h.resolve(web.Param(r, "address"))

	utxos := h.State.QueryUnspent([]byte(address))

	list := make([]unspent, len(utxos))
	for i, u := range utxos {
		list[i] = toUnspent(u)
	}

	return web.Respond(ctx, w, list, http.StatusOK)
}

// SubmitTransaction validates a transaction and adds it to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbTx, err := ntx.toDatabase()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "txid", dbTx.ID(), "inputs", len(dbTx.Inputs), "outputs", len(dbTx.Outputs))

	if err := h.State.SubmitTransaction(dbTx); err != nil {
		return errs.FromLedger(err)
	}

	resp := submitted{
		Status: "transaction added to mempool",
		TxID:   dbTx.ID(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = h.toTx(tran)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// TxProof returns the merkle proof that a transaction is part of a block.
func (h Handlers) TxProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	raw, err := hexutil.Decode(web.Param(r, "txid"))
	if err != nil || len(raw) != common.HashLength {
		return errs.NewTrusted(errors.New("txid must be a 0x prefixed 32 byte hex string"), http.StatusBadRequest)
	}

	proof, err := h.State.QueryTxProof(common.BytesToHash(raw))
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, proof, http.StatusOK)
}

// BlocksByNumber returns the blocks in the specified range with their
// transactions.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	if fromStr == "latest" || fromStr == "" {
		fromStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	toStr := web.Param(r, "to")
	if toStr == "latest" || toStr == "" {
		toStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	from, err := strconv.ParseUint(fromStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := strconv.ParseUint(toStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	dbBlocks := h.State.QueryBlocksByNumber(from, to)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	number := from
	if from == state.QueryLatest {
		number = h.State.QueryChainLength() - 1
	}

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = h.toBlock(number+uint64(i), dbBlock, true)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Chain reports the state of the chain with a summary of every block.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.QueryBlocksByNumber(0, state.QueryLatest)

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = h.toBlock(uint64(i), dbBlock, false)
	}

	latest := h.State.RetrieveLatestBlock()

	ch := chain{
		Height:         uint64(len(dbBlocks)),
		LatestBlock:    latest.Hash(),
		NextDifficulty: h.State.AdjustDifficulty(),
		TotalValue:     h.State.QueryTotalValue(),
		Mempool:        h.State.QueryMempoolLength(),
		Blocks:         blocks,
	}

	return web.Respond(ctx, w, ch, http.StatusOK)
}

// =============================================================================

// resolve maps a known identity name to its address. Addresses are put in
// their checksummed form, anything else is used as the lock as is.
func (h Handlers) resolve(nameOrAddress string) string {
	if address, exists := h.NS.Address(nameOrAddress); exists {
		return string(address)
	}
	return normalizeLock(nameOrAddress)
}

func (h Handlers) toTx(tran database.Tx) tx {
	outputs := make([]txOutputInfo, len(tran.Outputs))
	for i, out := range tran.Outputs {
		lock := string(out.Lock)
		name := h.NS.Lookup(database.Address(lock))
		if name == lock {
			name = ""
		}

		outputs[i] = txOutputInfo{
			Value: out.Value,
			Lock:  lock,
			Name:  name,
		}
	}

	return tx{
		TxID:    tran.ID(),
		Inputs:  tran.Inputs,
		Outputs: outputs,
	}
}

func (h Handlers) toBlock(number uint64, dbBlock database.Block, withTrans bool) block {
	values := dbBlock.Values()

	b := block{
		Number:     number,
		Hash:       dbBlock.Hash(),
		PrevHash:   dbBlock.Header.PrevBlockHash,
		MerkleRoot: dbBlock.Header.MerkleRoot,
		TimeStamp:  dbBlock.Header.TimeStamp,
		Difficulty: dbBlock.Header.Difficulty,
		Nonce:      dbBlock.Header.Nonce,
		TxCount:    len(values),
	}

	if withTrans {
		b.Transactions = make([]tx, len(values))
		for i, tran := range values {
			b.Transactions[i] = h.toTx(tran)
		}
	}

	return b
}
