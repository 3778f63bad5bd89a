package events_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SubscribeSend(t *testing.T) {
	evts := events.New()

	a := evts.Subscribe("a")
	b := evts.Subscribe("b")
	assert.Equal(t, a, evts.Subscribe("a"))
	assert.Equal(t, 2, evts.Subscribers())

	evts.Send("viewer: block")

	assert.Equal(t, "viewer: block", <-a)
	assert.Equal(t, "viewer: block", <-b)

	require.NoError(t, evts.Unsubscribe("a"))
	_, open := <-a
	assert.False(t, open)
	assert.Error(t, evts.Unsubscribe("a"))

	evts.Shutdown()
	_, open = <-b
	assert.False(t, open)
	assert.Equal(t, 0, evts.Subscribers())
}

func Test_SendDoesNotBlock(t *testing.T) {
	evts := events.New()
	ch := evts.Subscribe("slow")

	for range 250 {
		evts.Send("event")
	}

	assert.Len(t, ch, cap(ch))
}
