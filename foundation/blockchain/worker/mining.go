package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation takes a batch of transactions from the mempool, mines
// a new block and adds it to the chain.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Make sure there are transactions in the mempool.
	length := w.state.QueryMempoolLength()
	if length == 0 {
		w.evHandler("worker: runMiningOperation: MINING: no transactions to mine: Txs[%d]", length)
		return
	}

	// After running a mining operation, check if a new operation should
	// be signaled again.
	defer func() {
		length := w.state.QueryMempoolLength()
		w.recorder.ChainUpdated(w.state.QueryChainLength(), length)

		if length > 0 && !w.isShutdown() {
			w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
			w.SignalStartMining()
		}
	}()

	// If mining is signalled to be cancelled by a block arriving from
	// outside, this G can't terminate until it is told it can.
	var wait chan struct{}
	defer func() {
		if wait != nil {
			w.evHandler("worker: runMiningOperation: MINING: termination signal: waiting")
			<-wait
			w.evHandler("worker: runMiningOperation: MINING: termination signal: received")
		}
	}()

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case wait = <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		block, err := w.state.MineNewBlock(ctx)
		duration := time.Since(t)

		w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

		if err != nil {
			switch {
			case errors.Is(err, database.ErrEmptyTransactionSet):
				w.evHandler("worker: runMiningOperation: MINING: WARNING: no valid transactions in mempool")
				w.recorder.MiningFailed("empty")
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
				w.recorder.MiningFailed("cancelled")
			case errors.Is(err, database.ErrProofOfWorkExhausted):
				w.evHandler("worker: runMiningOperation: MINING: WARNING: %s", err)
				w.recorder.MiningFailed("exhausted")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
				w.recorder.MiningFailed("error")
			}
			return
		}

		// WOW, we mined a block. Add it to the chain. If another block took
		// the tip first, the transactions go back to the mempool for the
		// next attempt.
		if err := w.state.AddBlock(block); err != nil {
			w.evHandler("worker: runMiningOperation: MINING: AddBlock: WARNING: %s", err)
			w.recorder.MiningFailed("rejected")

			n := w.state.ResubmitTransactions(block)
			w.evHandler("worker: runMiningOperation: MINING: resubmitted: Txs[%d]", n)
			return
		}

		w.recorder.BlockMined(block, duration)
	}()

	// Wait for both G's to terminate.
	wg.Wait()
}
