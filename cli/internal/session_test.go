package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleContext(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		ctx, cancel := settleContext(context.Background(), 10*time.Second)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(11*time.Second), deadline, time.Second)
	})

	t.Run("zero waits for parent", func(t *testing.T) {
		parent, stop := context.WithCancel(context.Background())
		ctx, cancel := settleContext(parent, 0)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok, "no deadline when the check is unbounded")
		assert.NoError(t, ctx.Err())

		stop()
		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
