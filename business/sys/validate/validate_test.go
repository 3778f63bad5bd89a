package validate_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payment struct {
	To    string `json:"to" validate:"required"`
	Value uint64 `json:"value" validate:"gt=0"`
	Proof string `json:"proof" validate:"omitempty,hexbytes"`
}

func Test_Check(t *testing.T) {
	err := validate.Check(payment{To: "A", Value: 10, Proof: "0x01"})
	require.NoError(t, err)

	err = validate.Check(payment{Proof: "zz"})
	require.Error(t, err)
	require.True(t, validate.IsFieldErrors(err))

	fields := validate.GetFieldErrors(err).Fields()
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "to")
	assert.Contains(t, fields, "value")
	assert.Equal(t, "proof must be a 0x prefixed hex string", fields["proof"])
}
