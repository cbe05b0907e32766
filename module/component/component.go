package component

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"

	"github.com/onflow/icq-watcher/module"
	"github.com/onflow/icq-watcher/module/irrecoverable"
)

// ErrComponentShutdown is returned when a request reaches a component which is
// shutting down.
var ErrComponentShutdown = errors.New("component has already shut down")

// Component is started once with a SignalerContext and stopped by cancelling
// that context. Done closes eventually after Start, whether the component
// stopped gracefully or threw an irrecoverable error.
type Component interface {
	module.Startable
	module.ReadyDoneAware
}

// Run starts c and blocks until it is done. It returns the error c threw, or
// the context error if ctx was cancelled first.
func Run(ctx context.Context, c Component) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignaler(runCtx)

	go c.Start(signalerCtx)

	done := c.Done()
	err := firstError(errChan, done)
	cancel()
	<-done
	if err != nil {
		return err
	}
	return ctx.Err()
}

// firstError waits until errChan yields an error or done closes. An error
// that arrived together with done still wins.
func firstError(errChan <-chan error, done <-chan struct{}) error {
	select {
	case err := <-errChan:
		return err
	case <-done:
	}
	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

// ReadyFunc marks the calling worker as ready.
type ReadyFunc func()

// ComponentWorker is a long running routine of a ComponentManager. It must call
// ready once it serves, and return when ctx is cancelled.
type ComponentWorker func(ctx irrecoverable.SignalerContext, ready ReadyFunc)

type ComponentManagerBuilder interface {
	AddWorker(ComponentWorker) ComponentManagerBuilder
	Build() *ComponentManager
}

type componentManagerBuilder struct {
	workers []ComponentWorker
}

func NewComponentManagerBuilder() ComponentManagerBuilder {
	return &componentManagerBuilder{}
}

// AddWorker registers a worker. Not safe for concurrent use.
func (b *componentManagerBuilder) AddWorker(worker ComponentWorker) ComponentManagerBuilder {
	b.workers = append(b.workers, worker)
	return b
}

func (b *componentManagerBuilder) Build() *ComponentManager {
	return &ComponentManager{
		started:  atomic.NewBool(false),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		shutdown: make(chan struct{}),
		workers:  b.workers,
	}
}

var _ Component = (*ComponentManager)(nil)

// ComponentManager runs a fixed set of workers as one Component. It is ready
// once every worker called its ReadyFunc and done once every worker returned.
// The first error thrown by a worker cancels the others and is rethrown to the
// context Start was called with.
type ComponentManager struct {
	started  *atomic.Bool
	ready    chan struct{}
	done     chan struct{}
	shutdown chan struct{}

	workers []ComponentWorker
}

// Start launches the workers. It panics when called twice.
func (c *ComponentManager) Start(parent irrecoverable.SignalerContext) {
	if !c.started.CompareAndSwap(false, true) {
		panic(module.ErrMultipleStartup)
	}

	ctx, cancel := context.WithCancel(parent)
	workerCtx, errChan := irrecoverable.WithSignaler(ctx)

	var readyWG, doneWG sync.WaitGroup
	readyWG.Add(len(c.workers))
	doneWG.Add(len(c.workers))
	for _, worker := range c.workers {
		worker := worker
		go func() {
			defer doneWG.Done()
			var once sync.Once
			worker(workerCtx, func() { once.Do(readyWG.Done) })
		}()
	}

	workersDone := make(chan struct{})
	go func() {
		doneWG.Wait()
		close(workersDone)
	}()
	go func() {
		readyWG.Wait()
		close(c.ready)
	}()
	go func() {
		<-ctx.Done()
		close(c.shutdown)
	}()
	go func() {
		err := firstError(errChan, workersDone)
		cancel()
		<-workersDone
		if err != nil {
			// done closes only after the error was handed to the parent
			defer close(c.done)
			parent.Throw(err)
			return
		}
		close(c.done)
	}()
}

// Ready closes once all workers are ready. It never closes if a worker returns
// without calling its ReadyFunc.
func (c *ComponentManager) Ready() <-chan struct{} {
	return c.ready
}

func (c *ComponentManager) Done() <-chan struct{} {
	return c.done
}

// ShutdownSignal closes as soon as shutdown commenced.
func (c *ComponentManager) ShutdownSignal() <-chan struct{} {
	return c.shutdown
}
