package state_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	addrG = "G"
	addrA = "A"
	addrB = "B"
)

const ownerKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func ifErrFailNow(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T, g genesis.Genesis, verifier state.Verifier) *state.State {
	t.Helper()

	ev := func(v string, args ...any) {
		t.Logf("\t\t"+v, args...)
	}

	s, err := state.New(state.Config{
		Genesis:   g,
		Verifier:  verifier,
		EvHandler: ev,
	})
	ifErrFailNow(t, err)

	return s
}

func testGenesis(lock string) genesis.Genesis {
	g := genesis.Default()
	g.Lock = lock
	return g
}

func mineAndAdd(t *testing.T, s *state.State) database.Block {
	t.Helper()

	block, err := s.MineNewBlock(context.Background())
	ifErrFailNow(t, err)

	ifErrFailNow(t, s.AddBlock(block))

	return block
}

func spend(txID common.Hash, index uint32, outputs ...database.TxOutput) database.Tx {
	return database.NewTx([]database.TxInput{{TxID: txID, Index: index}}, outputs)
}

func pay(value uint64, lock string) database.TxOutput {
	return database.TxOutput{Value: value, Lock: []byte(lock)}
}

func genesisTxID(s *state.State) common.Hash {
	return s.RetrieveGenesisBlock().Values()[0].ID()
}

// =============================================================================

func Test_EndToEnd(t *testing.T) {
	t.Log("Given the need to move value from the genesis output.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen spending the genesis output and then the change.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)

			if bal := s.QueryBalance([]byte(addrG)); bal != 50_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould start with the genesis reward: %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould start with the genesis reward.", success, testID)

			tx1 := spend(genesisTxID(s), 0, pay(25_000_000_000, addrA))
			if err := s.SubmitTransaction(tx1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit the first transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to submit the first transaction.", success, testID)

			block := mineAndAdd(t, s)
			if len(block.Values()) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould mine a block holding one transaction: %d", failed, testID, len(block.Values()))
			}
			t.Logf("\t%s\tTest %d:\tShould mine and add a block holding one transaction.", success, testID)

			if bal := s.QueryBalance([]byte(addrA)); bal != 25_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould have 25,000,000,000 for A: %d", failed, testID, bal)
			}
			if bal := s.QueryBalance([]byte(addrG)); bal != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have 0 for G: %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould have the right balances after the first block.", success, testID)

			unspent := s.QueryUnspent([]byte(addrA))
			if len(unspent) != 1 || unspent[0].TxID != tx1.ID() || unspent[0].Index != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have one live output from the first transaction: %v", failed, testID, unspent)
			}
			if total := s.QueryTotalValue(); total != 25_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould have 25,000,000,000 live value: %d", failed, testID, total)
			}
			t.Logf("\t%s\tTest %d:\tShould have exactly one live output.", success, testID)

			tx2 := spend(tx1.ID(), 0, pay(10_000_000_000, addrB), pay(14_999_000_000, addrA))
			if err := s.SubmitTransaction(tx2); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit the second transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to submit the second transaction.", success, testID)

			mineAndAdd(t, s)

			if bal := s.QueryBalance([]byte(addrB)); bal != 10_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould have 10,000,000,000 for B: %d", failed, testID, bal)
			}
			if bal := s.QueryBalance([]byte(addrA)); bal != 14_999_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould have 14,999,000,000 for A: %d", failed, testID, bal)
			}
			if total := s.QueryTotalValue(); total != 24_999_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould have 24,999,000,000 live value: %d", failed, testID, total)
			}
			t.Logf("\t%s\tTest %d:\tShould have the right balances after the second block.", success, testID)

			if s.QueryChainLength() != 3 || s.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have 3 blocks and an empty mempool: %d %d", failed, testID, s.QueryChainLength(), s.QueryMempoolLength())
			}
			t.Logf("\t%s\tTest %d:\tShould have 3 blocks and an empty mempool.", success, testID)
		}
	}
}

func Test_ValidateTransaction(t *testing.T) {
	t.Log("Given the need to reject invalid transactions.")
	{
		s := newState(t, testGenesis(addrG), nil)
		gen := genesisTxID(s)

		type table struct {
			name string
			tx   database.Tx
			err  error
		}

		tt := []table{
			{name: "noinputs", tx: database.NewTx(nil, []database.TxOutput{pay(0, addrA)}), err: state.ErrNoInputs},
			{name: "unknown", tx: spend(common.HexToHash("0x01"), 0, pay(1, addrA)), err: state.ErrUnknownOrSpentInput},
			{name: "wrongindex", tx: spend(gen, 1, pay(1, addrA)), err: state.ErrUnknownOrSpentInput},
			{name: "overspend", tx: spend(gen, 0, pay(50_000_000_001, addrA)), err: state.ErrInsufficientInputValue},
			{name: "spendtwice", tx: database.NewTx([]database.TxInput{{TxID: gen}, {TxID: gen}}, []database.TxOutput{pay(60_000_000_000, addrA)}), err: state.ErrUnknownOrSpentInput},
			{name: "exact", tx: spend(gen, 0, pay(50_000_000_000, addrA))},
			{name: "fee", tx: spend(gen, 0, pay(1, addrA))},
		}

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
			{
				f := func(t *testing.T) {
					err := s.ValidateTransaction(tst.tx)
					if tst.err == nil {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould accept the transaction: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould accept the transaction.", success, testID)
						return
					}

					if !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould reject with %q: %v", failed, testID, tst.err, err)
					}
					t.Logf("\t%s\tTest %d:\tShould reject with %q.", success, testID, tst.err)

					if err := s.SubmitTransaction(tst.tx); !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould not submit the transaction: %v", failed, testID, err)
					}
					if s.QueryMempoolLength() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould leave the mempool empty.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not submit the transaction.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_DoubleSpend(t *testing.T) {
	t.Log("Given the need to stop an output from being spent twice.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the second spend arrives after the first is mined.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)
			gen := genesisTxID(s)

			ifErrFailNow(t, s.SubmitTransaction(spend(gen, 0, pay(25_000_000_000, addrA))))
			mineAndAdd(t, s)

			err := s.SubmitTransaction(spend(gen, 0, pay(25_000_000_000, addrB)))
			if !errors.Is(err, state.ErrUnknownOrSpentInput) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the second spend: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the second spend.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen both spends are pending at the same time.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)
			gen := genesisTxID(s)

			first := spend(gen, 0, pay(25_000_000_000, addrA))
			second := spend(gen, 0, pay(25_000_000_000, addrB))

			ifErrFailNow(t, s.SubmitTransaction(first))
			ifErrFailNow(t, s.SubmitTransaction(second))
			t.Logf("\t%s\tTest %d:\tShould accept both spends into the mempool.", success, testID)

			block := mineAndAdd(t, s)

			trans := block.Values()
			if len(trans) != 1 || trans[0].ID() != first.ID() {
				t.Fatalf("\t%s\tTest %d:\tShould only mine the first spend: %d", failed, testID, len(trans))
			}
			t.Logf("\t%s\tTest %d:\tShould only mine the first spend.", success, testID)

			if s.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould evict the conflicting spend: %d", failed, testID, s.QueryMempoolLength())
			}
			if bal := s.QueryBalance([]byte(addrB)); bal != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not pay B: %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould evict the conflicting spend.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the same transaction is submitted twice.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)
			tx := spend(genesisTxID(s), 0, pay(1, addrA))

			ifErrFailNow(t, s.SubmitTransaction(tx))
			if err := s.SubmitTransaction(tx); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a duplicate transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a duplicate transaction.", success, testID)
		}
	}
}

func Test_ChainLinkage(t *testing.T) {
	t.Log("Given the need to only extend the tip of the chain.")
	{
		s := newState(t, testGenesis(addrG), nil)
		gen := genesisTxID(s)
		tx := spend(gen, 0, pay(25_000_000_000, addrA))

		testID := 0
		t.Logf("\tTest %d:\tWhen a block does not link to the tip.", testID)
		{
			block, err := database.NewBlock(common.HexToHash("0xbad"), []database.Tx{tx}, 1, 0)
			ifErrFailNow(t, err)

			err = s.AddBlock(block)
			if !errors.Is(err, state.ErrInvalidBlock) || !errors.Is(err, state.ErrBrokenChainLink) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)

			if s.QueryChainLength() != 1 || s.QueryBalance([]byte(addrG)) != 50_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain and the index unchanged.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain and the index unchanged.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a block links to the tip.", testID)
		{
			tip := s.RetrieveLatestBlock()

			block, err := database.NewBlock(tip.Hash(), []database.Tx{tx}, 1, 0)
			ifErrFailNow(t, err)

			if err := s.ValidateNewBlock(block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould validate the block: %v", failed, testID, err)
			}

			if err := s.ProcessProposedBlock(block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould add the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould add the block.", success, testID)

			if s.RetrieveLatestBlock().Hash() != block.Hash() || s.QueryChainLength() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould extend the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould extend the chain.", success, testID)

			if err := s.AddBlock(block); !errors.Is(err, state.ErrBrokenChainLink) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the same block twice: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the same block twice.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a block would replay an applied transaction.", testID)
		{
			tip := s.RetrieveLatestBlock()

			block, err := database.NewBlock(tip.Hash(), []database.Tx{tx}, 1, 0)
			ifErrFailNow(t, err)

			err = s.AddBlock(block)
			if !errors.Is(err, state.ErrInvalidBlock) || !errors.Is(err, state.ErrDuplicateOutputs) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block: %v", failed, testID, err)
			}
			if s.QueryTotalValue() != 25_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the index unchanged: %d", failed, testID, s.QueryTotalValue())
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block and leave the index unchanged.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a block header does not commit to its transactions.", testID)
		{
			tip := s.RetrieveLatestBlock()

			block, err := database.NewBlock(tip.Hash(), []database.Tx{spend(tx.ID(), 0, pay(1, addrB))}, 1, 0)
			ifErrFailNow(t, err)
			block.Header.MerkleRoot = signature.Hash([]byte("other"))

			if err := s.AddBlock(block); !errors.Is(err, state.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)
		}
	}
}

func Test_Mining(t *testing.T) {
	t.Log("Given the need to mine blocks from the mempool.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the mempool is empty.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)

			if _, err := s.MineNewBlock(context.Background()); !errors.Is(err, database.ErrEmptyTransactionSet) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to mine: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to mine.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen there are more transactions than fit in a block.", testID)
		{
			g := testGenesis(addrG)
			g.TransPerBlock = 2
			s := newState(t, g, nil)

			// Split the genesis output so there are several outputs to spend.
			outputs := make([]database.TxOutput, 3)
			for i := range outputs {
				outputs[i] = pay(1_000, addrA)
			}
			split := spend(genesisTxID(s), 0, outputs...)
			ifErrFailNow(t, s.SubmitTransaction(split))
			mineAndAdd(t, s)

			for i := range outputs {
				ifErrFailNow(t, s.SubmitTransaction(spend(split.ID(), uint32(i), pay(1_000, addrB))))
			}

			block := mineAndAdd(t, s)
			if len(block.Values()) != 2 || s.QueryMempoolLength() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould mine a batch of 2 and leave 1 pending: %d %d", failed, testID, len(block.Values()), s.QueryMempoolLength())
			}
			t.Logf("\t%s\tTest %d:\tShould mine a batch of 2 and leave 1 pending.", success, testID)

			if !database.MeetsDifficulty(block.Hash(), block.Header.Difficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould meet the difficulty.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould meet the difficulty.", success, testID)

			block = mineAndAdd(t, s)
			if len(block.Values()) != 1 || s.QueryBalance([]byte(addrB)) != 3_000 {
				t.Fatalf("\t%s\tTest %d:\tShould mine the remaining transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould mine the remaining transaction.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining is cancelled.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)
			ifErrFailNow(t, s.SubmitTransaction(spend(genesisTxID(s), 0, pay(1, addrA))))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := s.MineNewBlock(ctx); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop mining: %v", failed, testID, err)
			}
			if s.QueryMempoolLength() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the transaction pending.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould stop mining and leave the transaction pending.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a mined block loses the race for the tip.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)
			gen := genesisTxID(s)

			ifErrFailNow(t, s.SubmitTransaction(spend(gen, 0, pay(1, addrA))))
			mined, err := s.MineNewBlock(context.Background())
			ifErrFailNow(t, err)

			other, err := database.NewBlock(s.RetrieveLatestBlock().Hash(), []database.Tx{spend(gen, 0, pay(2, addrB))}, 1, 0)
			ifErrFailNow(t, err)
			ifErrFailNow(t, s.ProcessProposedBlock(other))

			if err := s.AddBlock(mined); !errors.Is(err, state.ErrBrokenChainLink) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the stale block: %v", failed, testID, err)
			}

			if n := s.ResubmitTransactions(mined); n != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould drop transactions that no longer apply: %d", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the stale block and drop its transactions.", success, testID)
		}
	}
}

func Test_NoInputs(t *testing.T) {
	t.Log("Given the need to keep transactions without inputs off the chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a zero value transaction with no inputs is submitted.", testID)
		{
			s := newState(t, testGenesis(addrG), nil)

			empty := database.NewTx(nil, []database.TxOutput{pay(0, addrA)})
			for i := 0; i < 2; i++ {
				if err := s.SubmitTransaction(empty); !errors.Is(err, state.ErrNoInputs) {
					t.Fatalf("\t%s\tTest %d:\tShould reject the transaction on attempt %d: %v", failed, testID, i, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transaction every time.", success, testID)

			if s.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the mempool empty: %d", failed, testID, s.QueryMempoolLength())
			}
			t.Logf("\t%s\tTest %d:\tShould leave the mempool empty.", success, testID)

			ifErrFailNow(t, s.SubmitTransaction(spend(genesisTxID(s), 0, pay(50_000_000_000, addrB))))

			block := mineAndAdd(t, s)
			if len(block.Values()) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould mine only the valid transaction: %d", failed, testID, len(block.Values()))
			}
			if bal := s.QueryBalance([]byte(addrB)); bal != 50_000_000_000 {
				t.Fatalf("\t%s\tTest %d:\tShould pay B: %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould commit the valid transaction and pay B.", success, testID)

			if _, err := s.MineNewBlock(context.Background()); !errors.Is(err, database.ErrEmptyTransactionSet) {
				t.Fatalf("\t%s\tTest %d:\tShould have nothing left to mine: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have nothing left to mine.", success, testID)
		}
	}
}

func Test_Retarget(t *testing.T) {
	t.Log("Given the need to adjust the difficulty over windows of blocks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen blocks arrive faster and then slower than the target.", testID)
		{
			g := testGenesis(addrG)
			g.RetargetWindow = 2
			g.TargetBlockTime = 10
			g.Date = time.Unix(1_700_000_000, 0)
			s := newState(t, g, nil)

			base := uint64(g.Date.Unix())
			prev := genesisTxID(s)

			addAt := func(ts uint64) database.Block {
				tx := spend(prev, 0, pay(1_000, addrA))
				prev = tx.ID()

				block, err := database.POW(context.Background(), database.POWArgs{
					PrevBlockHash: s.RetrieveLatestBlock().Hash(),
					Trans:         []database.Tx{tx},
					Difficulty:    s.AdjustDifficulty(),
					TimeStamp:     ts,
				})
				ifErrFailNow(t, err)
				ifErrFailNow(t, s.AddBlock(block))

				return block
			}

			exp := []struct {
				ts         uint64
				difficulty uint32
			}{
				{ts: base + 1, difficulty: 1},   // before the first full window
				{ts: base + 2, difficulty: 1},   // closes window 1 in 1s of 10s
				{ts: base + 3, difficulty: 2},   // raised
				{ts: base + 200, difficulty: 2}, // closes window 2 in 198s of 20s
				{ts: base + 210, difficulty: 1}, // lowered
				{ts: base + 230, difficulty: 1}, // closes window 3 in 30s of 20s
				{ts: base + 240, difficulty: 1}, // unchanged
			}

			for i, e := range exp {
				block := addAt(e.ts)
				if block.Header.Difficulty != e.difficulty {
					t.Fatalf("\t%s\tTest %d:\tShould mine block %d at difficulty %d, got %d.", failed, testID, i+1, e.difficulty, block.Header.Difficulty)
				}
				t.Logf("\t%s\tTest %d:\tShould mine block %d at difficulty %d.", success, testID, i+1, e.difficulty)
			}

			if got := s.AdjustDifficulty(); got != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould carry the tip's difficulty between windows: %d", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould carry the tip's difficulty between windows.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen the first window is mined quickly long after the genesis date.", testID)
		{
			g := testGenesis(addrG)
			g.RetargetWindow = 2
			g.TargetBlockTime = 10
			s := newState(t, g, nil)

			now := uint64(time.Now().Unix())
			prev := genesisTxID(s)

			for i, ts := range []uint64{now, now + 1} {
				tx := spend(prev, 0, pay(1_000, addrA))
				prev = tx.ID()

				block, err := database.POW(context.Background(), database.POWArgs{
					PrevBlockHash: s.RetrieveLatestBlock().Hash(),
					Trans:         []database.Tx{tx},
					Difficulty:    s.AdjustDifficulty(),
					TimeStamp:     ts,
				})
				ifErrFailNow(t, err)
				ifErrFailNow(t, s.AddBlock(block))
				t.Logf("\t%s\tTest %d:\tShould add block %d.", success, testID, i+1)
			}

			exp := g.InitialDifficulty + 1
			if got := s.AdjustDifficulty(); got != exp {
				t.Fatalf("\t%s\tTest %d:\tShould raise the difficulty to %d, got %d.", failed, testID, exp, got)
			}
			t.Logf("\t%s\tTest %d:\tShould raise the difficulty to %d.", success, testID, exp)
		}
	}
}

func Test_SignatureVerification(t *testing.T) {
	t.Log("Given the need to verify the owner of spent outputs.")
	{
		pk, err := crypto.HexToECDSA(ownerKey)
		ifErrFailNow(t, err)
		owner := database.PublicKeyToAddress(pk.PublicKey)

		other, err := crypto.GenerateKey()
		ifErrFailNow(t, err)

		s := newState(t, testGenesis(string(owner)), signature.Verify)
		unsigned := spend(genesisTxID(s), 0, pay(1_000, addrA))

		testID := 0
		t.Logf("\tTest %d:\tWhen the input carries no proof.", testID)
		{
			if err := s.SubmitTransaction(unsigned); !errors.Is(err, state.ErrUnauthorizedInput) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transaction.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the input is signed by someone else.", testID)
		{
			signed, err := unsigned.Sign(other)
			ifErrFailNow(t, err)

			if err := s.SubmitTransaction(signed); !errors.Is(err, state.ErrUnauthorizedInput) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transaction.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the input is signed by the owner.", testID)
		{
			signed, err := unsigned.Sign(pk)
			ifErrFailNow(t, err)

			if err := s.SubmitTransaction(signed); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept the transaction: %v", failed, testID, err)
			}
			mineAndAdd(t, s)

			if bal := s.QueryBalance([]byte(addrA)); bal != 1_000 {
				t.Fatalf("\t%s\tTest %d:\tShould pay A: %d", failed, testID, bal)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the transaction and pay A.", success, testID)
		}
	}
}

func Test_TxProof(t *testing.T) {
	t.Log("Given the need to prove a transaction is in the chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the transaction was mined.", testID)
		{
			g := testGenesis(addrG)
			s := newState(t, g, nil)

			split := spend(genesisTxID(s), 0, pay(10, addrA), pay(10, addrA), pay(10, addrA))
			ifErrFailNow(t, s.SubmitTransaction(split))
			mineAndAdd(t, s)

			var txs []database.Tx
			for i := range uint32(3) {
				tx := spend(split.ID(), i, pay(5, addrB))
				ifErrFailNow(t, s.SubmitTransaction(tx))
				txs = append(txs, tx)
			}
			mineAndAdd(t, s)

			proof, err := s.QueryTxProof(txs[2].ID())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould find the transaction: %v", failed, testID, err)
			}
			if proof.BlockNumber != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould find it in block 2: %d", failed, testID, proof.BlockNumber)
			}
			t.Logf("\t%s\tTest %d:\tShould find the transaction in block 2.", success, testID)

			path := make([][]byte, len(proof.Proof))
			for i, p := range proof.Proof {
				path[i] = p
			}

			if !merkle.VerifyProof(txs[2].ID().Bytes(), path, proof.Order, proof.MerkleRoot.Bytes(), sha256.New) {
				t.Fatalf("\t%s\tTest %d:\tShould verify the proof against the merkle root.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould verify the proof against the merkle root.", success, testID)

			if _, err := s.QueryTxProof(common.HexToHash("0x01")); !errors.Is(err, state.ErrTxNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould not find an unknown transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not find an unknown transaction.", success, testID)
		}
	}
}
