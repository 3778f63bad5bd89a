package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Default(t *testing.T) {
	g := genesis.Default()

	require.NoError(t, g.Validate())
	assert.Equal(t, uint64(50_000_000_000), g.Reward)
	assert.Equal(t, "Genesis Address", g.Lock)
	assert.Equal(t, uint16(10), g.TransPerBlock)
	assert.Equal(t, uint16(10), g.RetargetWindow)
	assert.Equal(t, uint32(10), g.TargetBlockTime)
	assert.Equal(t, uint32(1), g.InitialDifficulty)
}

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	content := `{"reward": 1000, "lock": "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", "retarget_window": 5}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	g, err := genesis.Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), g.Reward)
	assert.Equal(t, "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", g.Lock)
	assert.Equal(t, uint16(5), g.RetargetWindow)
	assert.Equal(t, uint16(genesis.DefaultTransPerBlock), g.TransPerBlock)
	assert.Equal(t, uint32(genesis.DefaultTargetBlockTime), g.TargetBlockTime)
}

func Test_LoadFailures(t *testing.T) {
	_, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"initial_difficulty": 40}`), 0600))

	_, err = genesis.Load(path)
	assert.Error(t, err)
}
