package watcher

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module/subsystem"
	"github.com/onflow/icq-watcher/storage"
	"github.com/onflow/icq-watcher/storage/operation"
)

// Watcher implements the balance watcher state machine. Each handler runs
// against the store handle it is given, which the caller scopes to exactly one
// transaction. Handlers never commit themselves: if a handler returns an
// error, the caller must discard the transaction.
type Watcher struct {
	log      zerolog.Logger
	balances subsystem.BalanceQuerier
	mode     icq.CorrelationMode
}

// New creates a watcher which binds acknowledgments according to mode and
// reads balance snapshots through balances.
func New(log zerolog.Logger, balances subsystem.BalanceQuerier, mode icq.CorrelationMode) *Watcher {
	return &Watcher{
		log:      log.With().Str("component", "watcher").Str("correlation", mode.String()).Logger(),
		balances: balances,
		mode:     mode,
	}
}

// Instantiate stores the configuration built from msg and the sender, a zero
// notification counter and an empty registry.
// Expected errors during normal operations:
//   - ErrAlreadyInitialized if the watcher state was initialized before
func (w *Watcher) Instantiate(rw storage.ReaderWriter, sender string, msg icq.InstantiateMsg) error {
	cfg := icq.Config{
		Owner:        sender,
		AssetDenom:   msg.AssetDenom,
		Frequency:    msg.Frequency,
		ConnectionID: msg.ConnectionID,
	}
	err := operation.InsertWatcherConfig(rw, &cfg)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return ErrAlreadyInitialized
		}
		return fmt.Errorf("could not store config: %w", err)
	}

	err = operation.UpsertNotificationCount(rw, 0)
	if err != nil {
		return fmt.Errorf("could not initialize counter: %w", err)
	}
	err = operation.UpsertRegisteredQueries(rw, []uint64{})
	if err != nil {
		return fmt.Errorf("could not initialize registry: %w", err)
	}

	w.log.Info().
		Str("owner", cfg.Owner).
		Str("asset_denom", cfg.AssetDenom).
		Uint64("frequency", cfg.Frequency).
		Str("connection_id", cfg.ConnectionID).
		Msg("watcher instantiated")
	return nil
}

// Execute handles a state changing request and returns the sub-messages to
// dispatch once the transaction committed.
// Expected errors during normal operations:
//   - ErrConfigurationMissing if the watcher was never instantiated
func (w *Watcher) Execute(rw storage.ReaderWriter, sender string, msg icq.ExecuteMsg) (*icq.Response, error) {
	switch m := msg.(type) {
	case icq.RegisterAddr:
		return w.registerAddr(rw, m.Addr)
	case *icq.RegisterAddr:
		return w.registerAddr(rw, m.Addr)
	default:
		return nil, fmt.Errorf("unsupported execute message %T", msg)
	}
}

// registerAddr records addr as pending and builds the balance registration for it.
func (w *Watcher) registerAddr(rw storage.ReaderWriter, addr string) (*icq.Response, error) {
	// the reply handler binds the legacy correlation tag to whatever subject was registered last
	err := operation.UpsertLastRegistered(rw, addr)
	if err != nil {
		return nil, fmt.Errorf("could not store last registered subject: %w", err)
	}

	cfg, err := w.Config(rw)
	if err != nil {
		return nil, err
	}

	replyID := icq.RegisterBalancesReplyID
	if w.mode == icq.CorrelationPerRequest {
		replyID, err = allocateCorrelationID(rw)
		if err != nil {
			return nil, err
		}
		err = operation.InsertPendingRegistration(rw, replyID, addr)
		if err != nil {
			return nil, fmt.Errorf("could not store pending registration %d: %w", replyID, err)
		}
	}

	w.log.Debug().
		Str("subject", addr).
		Uint64("reply_id", replyID).
		Msg("balance registration requested")

	resp := &icq.Response{}
	return resp.AddSubMessage(icq.SubMsg{
		ID: replyID,
		Msg: icq.RegisterBalanceQuery{
			ConnectionID: cfg.ConnectionID,
			Addr:         addr,
			Denom:        cfg.AssetDenom,
			UpdatePeriod: cfg.Frequency,
		},
		ReplyOn: icq.ReplyOnSuccess,
	}), nil
}

// allocateCorrelationID advances the durable correlation sequence and returns
// the per-request tag for the new sequence number.
func allocateCorrelationID(rw storage.ReaderWriter) (uint64, error) {
	var seq uint64
	err := operation.RetrieveCorrelationCounter(rw, &seq)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("could not retrieve correlation counter: %w", err)
	}
	seq++
	if icq.IsRequestCorrelationID(seq) {
		return 0, fmt.Errorf("correlation sequence exhausted")
	}
	err = operation.UpsertCorrelationCounter(rw, seq)
	if err != nil {
		return 0, fmt.Errorf("could not store correlation counter: %w", err)
	}
	return icq.RequestCorrelationID(seq), nil
}

// Reply binds the query id assigned by the subsystem to the subject the
// acknowledged registration was made for, and appends it to the registry.
// Expected errors during normal operations:
//   - ErrUnsupportedCallback if the correlation tag is unknown
//   - ErrSubsystemRejected if the reply reports a failure
//   - ErrDecode if the payload is absent or malformed
//   - ErrNoPendingRegistration if no subject is correlated with the tag
//   - ErrConfigurationMissing if the registry was never initialized
func (w *Watcher) Reply(rw storage.ReaderWriter, reply icq.Reply) error {
	var subjectOf func() (string, error)
	switch {
	case reply.ID == icq.RegisterBalancesReplyID:
		subjectOf = func() (string, error) {
			return lastRegistered(rw)
		}
	case icq.IsRequestCorrelationID(reply.ID):
		subjectOf = func() (string, error) {
			return takePending(rw, reply.ID)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedCallback, reply.ID)
	}

	result, err := reply.Result.Unwrap()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSubsystemRejected, err.Error())
	}
	if len(result.Data) == 0 {
		return fmt.Errorf("%w: no result", ErrDecode)
	}
	resp, err := icq.DecodeRegisterResponse(result.Data)
	if err != nil {
		return fmt.Errorf("%w: failed to parse response: %s", ErrDecode, err.Error())
	}

	subject, err := subjectOf()
	if err != nil {
		return err
	}

	err = operation.UpsertObject(rw, resp.ID, subject)
	if err != nil {
		return fmt.Errorf("could not bind query %d: %w", resp.ID, err)
	}

	queries, err := w.Queries(rw)
	if err != nil {
		return err
	}
	queries = append(queries, resp.ID)
	err = operation.UpsertRegisteredQueries(rw, queries)
	if err != nil {
		return fmt.Errorf("could not store registry: %w", err)
	}

	w.log.Info().
		Uint64("reply_id", reply.ID).
		Uint64("query_id", resp.ID).
		Str("subject", subject).
		Msg("balance query registered")
	return nil
}

func lastRegistered(r storage.Reader) (string, error) {
	var subject string
	err := operation.RetrieveLastRegistered(r, &subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoPendingRegistration
		}
		return "", fmt.Errorf("could not retrieve last registered subject: %w", err)
	}
	return subject, nil
}

func takePending(rw storage.ReaderWriter, correlationID uint64) (string, error) {
	var subject string
	err := operation.RetrievePendingRegistration(rw, correlationID, &subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%w: reply id %d", ErrNoPendingRegistration, correlationID)
		}
		return "", fmt.Errorf("could not retrieve pending registration %d: %w", correlationID, err)
	}
	err = operation.RemovePendingRegistration(rw, correlationID)
	if err != nil {
		return "", fmt.Errorf("could not remove pending registration %d: %w", correlationID, err)
	}
	return subject, nil
}

// Sudo handles a notification of the subsystem. Only KV query results change
// state: each one increments the notification counter, whatever query it
// refers to. The refreshed result itself is neither read nor stored.
// Expected errors during normal operations:
//   - ErrConfigurationMissing if the counter was never initialized
func (w *Watcher) Sudo(rw storage.ReaderWriter, msg icq.SudoMsg) error {
	switch m := msg.(type) {
	case icq.SudoKVQueryResult:
		return w.kvQueryResult(rw, m.QueryID)
	case *icq.SudoKVQueryResult:
		return w.kvQueryResult(rw, m.QueryID)
	case icq.SudoTxQueryResult, icq.SudoResponse, icq.SudoError, icq.SudoTimeout,
		*icq.SudoTxQueryResult, *icq.SudoResponse, *icq.SudoError, *icq.SudoTimeout:
		return nil
	default:
		return fmt.Errorf("unsupported sudo message %T", msg)
	}
}

func (w *Watcher) kvQueryResult(rw storage.ReaderWriter, queryID uint64) error {
	count, err := w.Count(rw)
	if err != nil {
		return err
	}
	count++
	err = operation.UpsertNotificationCount(rw, count)
	if err != nil {
		return fmt.Errorf("could not store counter: %w", err)
	}

	w.log.Debug().
		Uint64("query_id", queryID).
		Uint64("count", count).
		Msg("kv query result notified")
	return nil
}
