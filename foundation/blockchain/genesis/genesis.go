// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Default values used when the genesis file doesn't provide them.
const (
	DefaultReward            = 50_000_000_000
	DefaultLock              = "Genesis Address"
	DefaultTransPerBlock     = 10
	DefaultRetargetWindow    = 10
	DefaultTargetBlockTime   = 10
	DefaultInitialDifficulty = 1
)

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time `json:"date"`
	Reward            uint64    `json:"reward"`             // Value of the single output created by the genesis block.
	Lock              string    `json:"lock"`               // Locking condition of the genesis output.
	TransPerBlock     uint16    `json:"trans_per_block"`    // The maximum number of transactions that can be in a block.
	RetargetWindow    uint16    `json:"retarget_window"`    // Number of blocks between difficulty adjustments.
	TargetBlockTime   uint32    `json:"target_block_time"`  // Expected seconds between blocks.
	InitialDifficulty uint32    `json:"initial_difficulty"` // Difficulty used until the first full window.
}

// Default returns the genesis used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:              time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Reward:            DefaultReward,
		Lock:              DefaultLock,
		TransPerBlock:     DefaultTransPerBlock,
		RetargetWindow:    DefaultRetargetWindow,
		TargetBlockTime:   DefaultTargetBlockTime,
		InitialDifficulty: DefaultInitialDifficulty,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Fields left out of the file take
// their default value.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	genesis = genesis.withDefaults()

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values can drive a chain.
func (g Genesis) Validate() error {
	switch {
	case g.Reward == 0:
		return errors.New("genesis reward must be greater than zero")
	case g.Lock == "":
		return errors.New("genesis lock must be provided")
	case g.TransPerBlock == 0:
		return errors.New("transactions per block must be greater than zero")
	case g.RetargetWindow == 0:
		return errors.New("retarget window must be greater than zero")
	case g.TargetBlockTime == 0:
		return errors.New("target block time must be greater than zero")
	case g.InitialDifficulty > 31:
		return fmt.Errorf("initial difficulty %d out of range", g.InitialDifficulty)
	}

	return nil
}

func (g Genesis) withDefaults() Genesis {
	def := Default()

	if g.Date.IsZero() {
		g.Date = def.Date
	}
	if g.Reward == 0 {
		g.Reward = def.Reward
	}
	if g.Lock == "" {
		g.Lock = def.Lock
	}
	if g.TransPerBlock == 0 {
		g.TransPerBlock = def.TransPerBlock
	}
	if g.RetargetWindow == 0 {
		g.RetargetWindow = def.RetargetWindow
	}
	if g.TargetBlockTime == 0 {
		g.TargetBlockTime = def.TargetBlockTime
	}
	if g.InitialDifficulty == 0 {
		g.InitialDifficulty = def.InitialDifficulty
	}

	return g
}
