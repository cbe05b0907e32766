package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/engine/common/fifoqueue"
	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module"
	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/module/metrics"
	"github.com/onflow/icq-watcher/module/subsystem"
	state "github.com/onflow/icq-watcher/state/watcher"
	"github.com/onflow/icq-watcher/storage"
)

// DefaultInboundQueueCapacity is the maximum number of invocations waiting for the worker.
const DefaultInboundQueueCapacity = 10_000

var validate = validator.New()

// Config holds the engine parameters.
type Config struct {
	InboundQueueCapacity int
}

func DefaultConfig() Config {
	return Config{InboundQueueCapacity: DefaultInboundQueueCapacity}
}

// invocation is one handler call. It runs inside exactly one storage
// transaction; done receives the outcome once the transaction committed or
// was discarded.
type invocation struct {
	handler  string
	run      func(rw storage.ReaderWriter) (*icq.Response, error)
	onCommit func()
	done     chan result
}

type result struct {
	resp *icq.Response
	err  error
}

func (inv *invocation) finish(resp *icq.Response, err error) {
	if inv.done != nil {
		inv.done <- result{resp: resp, err: err}
	}
}

// Engine serializes all state changing invocations of the balance watcher.
// Invocations are queued and processed by a single worker, one storage
// transaction each. Sub-messages returned by a handler are dispatched to the
// query subsystem only after its transaction committed. Reads bypass the
// queue and observe committed state.
type Engine struct {
	log       zerolog.Logger
	metrics   module.WatcherMetrics
	db        storage.DB
	watcher   *state.Watcher
	subsystem subsystem.Subsystem

	inbound         *fifoqueue.FifoQueue[*invocation]
	inboundNotifier module.Notifier

	cm *component.ComponentManager
	component.Component
}

var _ subsystem.Callbacks = (*Engine)(nil)

func New(
	log zerolog.Logger,
	collector module.WatcherMetrics,
	db storage.DB,
	watcher *state.Watcher,
	sub subsystem.Subsystem,
	config Config,
) (*Engine, error) {
	inbound, err := fifoqueue.NewFifoQueue[*invocation](
		fifoqueue.WithCapacity(config.InboundQueueCapacity),
		fifoqueue.WithLengthObserver(func(len int) { collector.InboundQueueSize(uint(len)) }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create inbound queue: %w", err)
	}

	e := &Engine{
		log:             log.With().Str("engine", "watcher").Logger(),
		metrics:         collector,
		db:              db,
		watcher:         watcher,
		subsystem:       sub,
		inbound:         inbound,
		inboundNotifier: module.NewNotifier(),
	}

	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.processInvocationsLoop).
		Build()
	e.Component = e.cm

	return e, nil
}

// Instantiate initializes the watcher state with the given configuration.
// Expected errors during normal operations:
//   - InvalidRequestError if msg fails validation
//   - state.ErrAlreadyInitialized if the watcher was instantiated before
//   - ErrInboundQueueFull if the engine is saturated
func (e *Engine) Instantiate(ctx context.Context, sender string, msg icq.InstantiateMsg) error {
	if err := validate.Struct(msg); err != nil {
		return NewInvalidRequestError(err)
	}
	_, err := e.submit(ctx, &invocation{
		handler: metrics.HandlerInstantiate,
		run: func(rw storage.ReaderWriter) (*icq.Response, error) {
			return nil, e.watcher.Instantiate(rw, sender, msg)
		},
		done: make(chan result, 1),
	})
	return err
}

// Execute runs a state changing request and dispatches the sub-messages it
// emitted. The returned response lists those sub-messages.
// Expected errors during normal operations:
//   - InvalidRequestError if msg fails validation
//   - state.ErrConfigurationMissing if the watcher was never instantiated
//   - ErrDispatchFailed if the request committed but its sub-messages could not be dispatched
//   - ErrInboundQueueFull if the engine is saturated
func (e *Engine) Execute(ctx context.Context, sender string, msg icq.ExecuteMsg) (*icq.Response, error) {
	if err := validate.Struct(msg); err != nil {
		return nil, NewInvalidRequestError(err)
	}
	return e.submit(ctx, &invocation{
		handler: metrics.HandlerExecute,
		run: func(rw storage.ReaderWriter) (*icq.Response, error) {
			return e.watcher.Execute(rw, sender, msg)
		},
		done: make(chan result, 1),
	})
}

// ProcessReply handles the outcome of a sub-message and waits for the result.
func (e *Engine) ProcessReply(ctx context.Context, reply icq.Reply) error {
	_, err := e.submit(ctx, e.replyInvocation(reply, make(chan result, 1)))
	return err
}

// ProcessSudo handles a subsystem notification and waits for the result.
func (e *Engine) ProcessSudo(ctx context.Context, msg icq.SudoMsg) error {
	_, err := e.submit(ctx, e.sudoInvocation(msg, make(chan result, 1)))
	return err
}

// Reply queues the outcome of a sub-message. Failures are logged.
func (e *Engine) Reply(reply icq.Reply) {
	e.enqueue(e.replyInvocation(reply, nil))
}

// Sudo queues a subsystem notification. Failures are logged.
func (e *Engine) Sudo(msg icq.SudoMsg) {
	e.enqueue(e.sudoInvocation(msg, nil))
}

func (e *Engine) replyInvocation(reply icq.Reply, done chan result) *invocation {
	return &invocation{
		handler: metrics.HandlerReply,
		run: func(rw storage.ReaderWriter) (*icq.Response, error) {
			return nil, e.watcher.Reply(rw, reply)
		},
		onCommit: e.metrics.QueryRegistered,
		done:     done,
	}
}

func (e *Engine) sudoInvocation(msg icq.SudoMsg, done chan result) *invocation {
	inv := &invocation{
		handler: metrics.HandlerSudo,
		run: func(rw storage.ReaderWriter) (*icq.Response, error) {
			return nil, e.watcher.Sudo(rw, msg)
		},
		done: done,
	}
	if _, ok := msg.(icq.SudoKVQueryResult); ok {
		inv.onCommit = e.metrics.NotificationCounted
	}
	return inv
}

// Query serves a read-only projection from committed state.
// Expected errors during normal operations:
//   - state.ErrConfigurationMissing if the watcher was never instantiated
//   - state.ErrNotFound if the requested query id is unknown
func (e *Engine) Query(ctx context.Context, msg icq.QueryMsg) ([]byte, error) {
	var data []byte
	err := e.db.View(func(r storage.Reader) error {
		var err error
		data, err = e.watcher.Query(ctx, r, msg)
		return err
	})
	return data, err
}

func (e *Engine) enqueue(inv *invocation) bool {
	if !e.inbound.Push(inv) {
		e.metrics.InboundDropped(inv.handler)
		e.log.Warn().Str("handler", inv.handler).Msg("inbound queue full, dropping invocation")
		return false
	}
	e.inboundNotifier.Notify()
	return true
}

// submit queues inv and waits for its outcome. If ctx expires first, the
// invocation still runs but its outcome is discarded.
func (e *Engine) submit(ctx context.Context, inv *invocation) (*icq.Response, error) {
	if !e.enqueue(inv) {
		return nil, ErrInboundQueueFull
	}
	select {
	case res := <-inv.done:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.cm.ShutdownSignal():
		return nil, component.ErrComponentShutdown
	}
}

func (e *Engine) processInvocationsLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()

	doneSignal := ctx.Done()
	newInvocationSignal := e.inboundNotifier.Channel()
	for {
		select {
		case <-doneSignal:
			return
		case <-newInvocationSignal:
			err := e.processQueuedInvocations(ctx)
			if err != nil {
				ctx.Throw(err)
			}
		}
	}
}

// processQueuedInvocations processes invocations until the queue is empty or
// the engine shuts down.
// No errors are expected during normal operation. All returned exceptions are
// symptoms of corrupted storage and should be fatal.
func (e *Engine) processQueuedInvocations(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		inv, ok := e.inbound.Pop()
		if !ok {
			return nil
		}
		err := e.process(ctx, inv)
		if err != nil {
			return err
		}
	}
}

func (e *Engine) process(ctx context.Context, inv *invocation) error {
	log := e.log.With().Str("handler", inv.handler).Logger()

	start := time.Now()
	var resp *icq.Response
	err := e.db.Update(func(rw storage.ReaderWriter) error {
		var err error
		resp, err = inv.run(rw)
		return err
	})
	e.metrics.InvocationHandled(inv.handler, time.Since(start), err)
	if err != nil {
		if irrecoverable.IsException(err) {
			inv.finish(nil, err)
			return fmt.Errorf("unexpected exception in %s handler: %w", inv.handler, err)
		}
		log.Warn().Err(err).Msg("invocation failed, state unchanged")
		inv.finish(nil, err)
		return nil
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("invocation committed")
	if inv.onCommit != nil {
		inv.onCommit()
	}

	err = e.dispatch(ctx, resp)
	if err != nil {
		log.Error().Err(err).Msg("committed sub-messages were not dispatched")
	}
	inv.finish(resp, err)
	return nil
}

// dispatch hands every sub-message of a committed response to the query subsystem.
func (e *Engine) dispatch(ctx context.Context, resp *icq.Response) error {
	if resp == nil {
		return nil
	}
	var errs *multierror.Error
	for _, msg := range resp.Messages {
		err := e.subsystem.Submit(ctx, msg)
		e.metrics.SubMessageDispatched(err)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("sub-message %d: %w", msg.ID, err))
			continue
		}
		e.log.Debug().
			Uint64("reply_id", msg.ID).
			Str("addr", msg.Msg.Addr).
			Msg("sub-message dispatched")
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %s", ErrDispatchFailed, err.Error())
	}
	return nil
}
