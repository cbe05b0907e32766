// Package sim provides an in-process interchain query subsystem. It accepts
// balance registrations, acknowledges them asynchronously with sequentially
// assigned query ids, and proves the seeded balances of every registered
// query once per update period.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module/component"
	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/module/subsystem"
	"github.com/onflow/icq-watcher/module/subsystem/kv"
)

// ErrNotBound is returned by Submit when no callbacks receive the replies.
var ErrNotBound = errors.New("simulator has no callbacks bound")

// Config defines the simulated chain.
type Config struct {
	// BlockInterval is the time between two simulated blocks.
	BlockInterval time.Duration
	// DeliveryWorkers is the number of workers delivering callbacks. With more
	// than one worker, callbacks may arrive out of order.
	DeliveryWorkers int
}

func DefaultConfig() Config {
	return Config{
		BlockInterval:   time.Second,
		DeliveryWorkers: 1,
	}
}

type registeredQuery struct {
	msg          icq.RegisterBalanceQuery
	key          []byte
	registeredAt uint64
	result       *queryResult
}

type queryResult struct {
	values []kv.StorageValue
	height uint64
}

// Simulator implements subsystem.Subsystem.
type Simulator struct {
	component.Component

	log           zerolog.Logger
	blockInterval time.Duration
	pool          *workerpool.WorkerPool

	mu          sync.Mutex
	callbacks   subsystem.Callbacks
	stopped     bool
	height      uint64
	lastQueryID uint64
	queries     map[uint64]*registeredQuery
	balances    map[string]map[string]string // address -> denom -> amount
}

var _ subsystem.Subsystem = (*Simulator)(nil)

func New(log zerolog.Logger, config Config) *Simulator {
	workers := config.DeliveryWorkers
	if workers < 1 {
		workers = 1
	}
	s := &Simulator{
		log:           log.With().Str("component", "icq_simulator").Logger(),
		blockInterval: config.BlockInterval,
		pool:          workerpool.New(workers),
		queries:       make(map[uint64]*registeredQuery),
		balances:      make(map[string]map[string]string),
	}
	s.Component = component.NewComponentManagerBuilder().
		AddWorker(s.produceBlocks).
		Build()
	return s
}

// Bind sets the receiver of replies and notifications. It must be called
// before the first registration is submitted.
func (s *Simulator) Bind(callbacks subsystem.Callbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = callbacks
}

// Seed sets the remote balances of addr. Coins not listed keep their amount.
func (s *Simulator) Seed(addr string, coins ...icq.Coin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	held, ok := s.balances[addr]
	if !ok {
		held = make(map[string]string)
		s.balances[addr] = held
	}
	for _, c := range coins {
		held[c.Denom] = c.Amount
	}
}

// Submit registers the balance query carried by msg. The registration is
// acknowledged asynchronously under msg.ID, according to msg.ReplyOn.
func (s *Simulator) Submit(_ context.Context, msg icq.SubMsg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.callbacks == nil {
		return ErrNotBound
	}
	if msg.Msg.UpdatePeriod == 0 {
		s.replyErr(msg, "update period must be positive")
		return nil
	}
	key, err := kv.BalanceKey(msg.Msg.Addr, msg.Msg.Denom)
	if err != nil {
		s.replyErr(msg, err.Error())
		return nil
	}

	s.lastQueryID++
	queryID := s.lastQueryID
	s.queries[queryID] = &registeredQuery{
		msg:          msg.Msg,
		key:          key,
		registeredAt: s.height,
	}

	data, err := icq.EncodeRegisterResponse(queryID)
	if err != nil {
		return fmt.Errorf("could not encode register response: %w", err)
	}
	s.log.Debug().
		Uint64("reply_id", msg.ID).
		Uint64("query_id", queryID).
		Str("addr", msg.Msg.Addr).
		Msg("balance query registered")

	if msg.ReplyOn == icq.ReplyAlways || msg.ReplyOn == icq.ReplyOnSuccess {
		s.deliver(func(cb subsystem.Callbacks) { cb.Reply(icq.ReplyOK(msg.ID, data)) })
	}
	return nil
}

func (s *Simulator) replyErr(msg icq.SubMsg, reason string) {
	s.log.Debug().Uint64("reply_id", msg.ID).Str("reason", reason).Msg("balance query rejected")
	if msg.ReplyOn == icq.ReplyAlways || msg.ReplyOn == icq.ReplyOnError {
		s.deliver(func(cb subsystem.Callbacks) { cb.Reply(icq.ReplyErr(msg.ID, reason)) })
	}
}

// deliver hands f to the delivery workers. The caller must hold the lock.
func (s *Simulator) deliver(f func(subsystem.Callbacks)) {
	if s.stopped {
		return
	}
	cb := s.callbacks
	s.pool.Submit(func() { f(cb) })
}

// QueryBalance returns the balances proven by the last result of the query.
func (s *Simulator) QueryBalance(_ context.Context, queryID uint64) (*icq.BalanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queries[queryID]
	if !ok {
		return nil, fmt.Errorf("query %d: %w", queryID, subsystem.ErrUnknownQuery)
	}
	if q.result == nil {
		return nil, fmt.Errorf("query %d: %w", queryID, subsystem.ErrResultNotFound)
	}
	balances, err := kv.BalancesFromValues(q.result.values)
	if err != nil {
		return nil, fmt.Errorf("could not decode result of query %d: %w", queryID, err)
	}
	return &icq.BalanceResponse{
		Balances:                 balances,
		LastSubmittedLocalHeight: q.result.height,
	}, nil
}

// Tick produces one block. Every query whose update period elapsed gets a
// fresh result and a KV query result notification.
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.height++
	ids := make([]uint64, 0, len(s.queries))
	for id, q := range s.queries {
		if (s.height-q.registeredAt)%q.msg.UpdatePeriod == 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		q := s.queries[id]
		var value []byte
		if amount, ok := s.balances[q.msg.Addr][q.msg.Denom]; ok {
			value = kv.EncodeCoin(icq.Coin{Denom: q.msg.Denom, Amount: amount})
		}
		q.result = &queryResult{
			values: []kv.StorageValue{{StoragePrefix: kv.BankStoreKey, Key: q.key, Value: value}},
			height: s.height,
		}
		queryID := id
		s.deliver(func(cb subsystem.Callbacks) { cb.Sudo(icq.SudoKVQueryResult{QueryID: queryID}) })
	}
	if len(ids) > 0 {
		s.log.Debug().Uint64("height", s.height).Int("results", len(ids)).Msg("query results submitted")
	}
}

func (s *Simulator) produceBlocks(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ticker := time.NewTicker(s.blockInterval)
	defer ticker.Stop()
	defer s.stop()
	ready()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// stop waits for the pending callbacks. Later callbacks are dropped.
func (s *Simulator) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.pool.StopWait()
}
