package cmd

import (
	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/irrecoverable"
)

type namedComponent struct {
	name string
	component.Component
}

// newNode composes the given components into one. Each component is started
// once its predecessor is ready. All of them stop when the node is shut down.
func newNode(log zerolog.Logger, components ...namedComponent) *component.ComponentManager {
	builder := component.NewComponentManagerBuilder()

	predecessorReady := make(chan struct{})
	close(predecessorReady)
	for _, c := range components {
		c := c
		wait := predecessorReady
		started := make(chan struct{})
		builder.AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			select {
			case <-ctx.Done():
				return
			case <-wait:
			}

			c.Start(ctx)
			select {
			case <-ctx.Done():
				<-c.Done()
				return
			case <-c.Ready():
			}
			log.Info().Str("component", c.name).Msg("component ready")
			close(started)
			ready()

			<-c.Done()
			log.Info().Str("component", c.name).Msg("component stopped")
		})
		predecessorReady = started
	}

	return builder.Build()
}
