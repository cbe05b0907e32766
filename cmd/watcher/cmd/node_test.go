package cmd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/utils/unittest"
)

type startRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *startRecorder) component(name string) namedComponent {
	cm := component.NewComponentManagerBuilder().
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			r.mu.Lock()
			r.order = append(r.order, name)
			r.mu.Unlock()
			ready()
			<-ctx.Done()
		}).
		Build()
	return namedComponent{name, cm}
}

func TestNode_StartsInOrder(t *testing.T) {
	recorder := &startRecorder{}
	node := newNode(unittest.Logger(),
		recorder.component("engine"),
		recorder.component("subsystem"),
		recorder.component("rest"),
	)

	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	node.Start(ctx)
	unittest.RequireCloseBefore(t, node.Ready(), time.Second, "node did not start")
	assert.Equal(t, []string{"engine", "subsystem", "rest"}, recorder.order)

	cancel()
	unittest.RequireCloseBefore(t, node.Done(), time.Second, "node did not stop")
}

func TestParseBalance(t *testing.T) {
	addr, coin, err := parseBalance("cosmos1xyz:uatom:100")
	require.NoError(t, err)
	assert.Equal(t, "cosmos1xyz", addr)
	assert.Equal(t, icq.Coin{Denom: "uatom", Amount: "100"}, coin)

	for _, invalid := range []string{"", "cosmos1xyz:uatom", ":uatom:1", "cosmos1xyz::1", "cosmos1xyz:uatom:-1", "cosmos1xyz:uatom:ten"} {
		_, _, err := parseBalance(invalid)
		assert.Error(t, err, invalid)
	}
}
