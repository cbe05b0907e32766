package component_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/icq-watcher/module"
	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/utils/unittest"
)

func blockingWorker(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	<-ctx.Done()
}

func TestRun_Cancelled(t *testing.T) {
	cm := component.NewComponentManagerBuilder().
		AddWorker(blockingWorker).
		AddWorker(blockingWorker).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- component.Run(ctx, cm)
	}()

	unittest.RequireCloseBefore(t, cm.Ready(), time.Second, "workers did not start")
	cancel()
	unittest.RequireCloseBefore(t, cm.Done(), time.Second, "workers did not stop")
	unittest.RequireCloseBefore(t, cm.ShutdownSignal(), time.Second, "shutdown was not signalled")
	assert.ErrorIs(t, <-errChan, context.Canceled)
}

func TestRun_ThrownError(t *testing.T) {
	failure := errors.New("corrupted store")
	cm := component.NewComponentManagerBuilder().
		AddWorker(blockingWorker).
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			ctx.Throw(failure)
		}).
		Build()

	var err error
	unittest.RequireReturnsBefore(t, func() {
		err = component.Run(context.Background(), cm)
	}, time.Second, "thrown error did not stop the component")
	require.ErrorIs(t, err, failure)
	unittest.RequireCloseBefore(t, cm.Done(), time.Second, "component did not stop")
}

func TestComponentManager_StartTwice(t *testing.T) {
	cm := component.NewComponentManagerBuilder().AddWorker(blockingWorker).Build()

	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	defer cancel()
	cm.Start(ctx)
	assert.PanicsWithValue(t, module.ErrMultipleStartup, func() {
		cm.Start(ctx)
	})
}
