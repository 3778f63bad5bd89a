package worker_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type recorder struct {
	mu     sync.Mutex
	mined  int
	failed []string
}

func (r *recorder) BlockMined(database.Block, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mined++
}

func (r *recorder) MiningFailed(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, reason)
}

func (r *recorder) ChainUpdated(uint64, int) {}

func (r *recorder) blocks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mined
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// =============================================================================

func Test_MineOnSignal(t *testing.T) {
	t.Log("Given the need to mine in the background.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen transactions are submitted with auto mining.", testID)
		{
			g := genesis.Default()
			g.Lock = "G"

			st, err := state.New(state.Config{Genesis: g, AutoMine: true})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the state: %v", failed, testID, err)
			}

			rec := recorder{}
			worker.Run(st, func(v string, args ...any) {}, worker.WithRecorder(&rec))
			defer st.Shutdown()
			t.Logf("\t%s\tTest %d:\tShould be able to start the worker.", success, testID)

			gen := st.RetrieveGenesisBlock().Values()[0].ID()
			tx := database.NewTx(
				[]database.TxInput{{TxID: gen, Index: 0}},
				[]database.TxOutput{{Value: 25_000_000_000, Lock: []byte("A")}},
			)

			if err := st.SubmitTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit the transaction: %v", failed, testID, err)
			}

			if !waitFor(func() bool { return st.QueryChainLength() == 2 }) {
				t.Fatalf("\t%s\tTest %d:\tShould mine the transaction into a block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould mine the transaction into a block.", success, testID)

			if !waitFor(func() bool { return rec.blocks() == 1 }) {
				t.Fatalf("\t%s\tTest %d:\tShould record the mined block.", failed, testID)
			}
			if bal := st.QueryBalance([]byte("A")); bal != 25_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould pay A: %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould record the mined block and pay A.", success, testID)
		}
	}
}

func Test_Shutdown(t *testing.T) {
	t.Log("Given the need to stop the worker.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen nothing is being mined.", testID)
		{
			st, err := state.New(state.Config{Genesis: genesis.Default()})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the state: %v", failed, testID, err)
			}

			w := worker.Run(st, func(v string, args ...any) {})
			w.SignalStartMining()

			done := make(chan struct{})
			go func() {
				st.Shutdown()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatalf("\t%s\tTest %d:\tShould shut down.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould shut down.", success, testID)

			if st.QueryChainLength() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not mine an empty block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not mine an empty block.", success, testID)
		}
	}
}
