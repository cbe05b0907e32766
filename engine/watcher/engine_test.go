package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/module/metrics"
	mocksubsystem "github.com/onflow/icq-watcher/module/subsystem/mock"
	state "github.com/onflow/icq-watcher/state/watcher"
	"github.com/onflow/icq-watcher/storage"
	"github.com/onflow/icq-watcher/storage/operation"
	"github.com/onflow/icq-watcher/storage/operation/pebbleimpl"
	"github.com/onflow/icq-watcher/utils/unittest"
)

type EngineSuite struct {
	suite.Suite

	db        storage.DB
	subsystem *mocksubsystem.Subsystem
	engine    *Engine

	cancel context.CancelFunc
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	dir := unittest.TempDir(s.T())
	pdb := unittest.PebbleDB(s.T(), dir)
	s.T().Cleanup(func() {
		s.Require().NoError(pdb.Close())
	})
	s.db = pebbleimpl.ToDB(pdb)
	s.subsystem = mocksubsystem.NewSubsystem(s.T())

	w := state.New(unittest.Logger(), s.subsystem, icq.CorrelationPerRequest)
	eng, err := New(unittest.Logger(), metrics.NewNoopCollector(), s.db, w, s.subsystem, DefaultConfig())
	s.Require().NoError(err)
	s.engine = eng

	var ctx irrecoverable.SignalerContext
	ctx, s.cancel = irrecoverable.NewMockSignalerContextWithCancel(s.T(), context.Background())
	s.engine.Start(ctx)
	unittest.RequireCloseBefore(s.T(), s.engine.Ready(), time.Second, "engine did not start")
}

func (s *EngineSuite) TearDownTest() {
	s.cancel()
	unittest.RequireCloseBefore(s.T(), s.engine.Done(), time.Second, "engine did not stop")
}

func (s *EngineSuite) instantiate() {
	err := s.engine.Instantiate(context.Background(), unittest.OwnerFixture(), unittest.InstantiateMsgFixture())
	s.Require().NoError(err)
}

func (s *EngineSuite) queryQueries() []uint64 {
	data, err := s.engine.Query(context.Background(), icq.QueryQueries{})
	s.Require().NoError(err)
	var ids []uint64
	s.Require().NoError(icq.Unmarshal(data, &ids))
	return ids
}

func (s *EngineSuite) queryCount() uint64 {
	data, err := s.engine.Query(context.Background(), icq.QueryCount{})
	s.Require().NoError(err)
	var count uint64
	s.Require().NoError(icq.Unmarshal(data, &count))
	return count
}

// Sub-messages are dispatched only once the registration committed.
func (s *EngineSuite) TestRegister_DispatchAfterCommit() {
	s.instantiate()
	subject := unittest.SubjectFixture()

	s.subsystem.On("Submit", mock.Anything, mock.AnythingOfType("icq.SubMsg")).
		Run(func(args mock.Arguments) {
			msg := args.Get(1).(icq.SubMsg)
			var pending string
			err := s.db.View(func(r storage.Reader) error {
				return operation.RetrievePendingRegistration(r, msg.ID, &pending)
			})
			s.Assert().NoError(err)
			s.Assert().Equal(subject, pending)
		}).
		Return(nil).
		Once()

	resp, err := s.engine.Execute(context.Background(), unittest.OwnerFixture(), icq.RegisterAddr{Addr: subject})
	s.Require().NoError(err)
	s.Require().Len(resp.Messages, 1)
	s.Assert().Equal(subject, resp.Messages[0].Msg.Addr)
	s.Assert().Equal(unittest.DefaultAssetDenom, resp.Messages[0].Msg.Denom)

	err = s.engine.ProcessReply(context.Background(), unittest.RegisterReplyFixture(resp.Messages[0].ID, 7))
	s.Require().NoError(err)
	s.Assert().Equal([]uint64{7}, s.queryQueries())

	data, err := s.engine.Query(context.Background(), icq.QueryObjects{QueryID: 7})
	s.Require().NoError(err)
	s.Assert().JSONEq(`"`+subject+`"`, string(data))
}

func (s *EngineSuite) TestRegister_DispatchFailure() {
	s.instantiate()
	s.subsystem.On("Submit", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	resp, err := s.engine.Execute(context.Background(), unittest.OwnerFixture(), icq.RegisterAddr{Addr: "neutron1abc"})
	s.Require().ErrorIs(err, ErrDispatchFailed)

	// the registration itself committed
	s.Require().NotNil(resp)
	s.Require().Len(resp.Messages, 1)
	var pending string
	err = s.db.View(func(r storage.Reader) error {
		return operation.RetrievePendingRegistration(r, resp.Messages[0].ID, &pending)
	})
	s.Require().NoError(err)
	s.Assert().Equal("neutron1abc", pending)
}

func (s *EngineSuite) TestRegister_BeforeInstantiate() {
	_, err := s.engine.Execute(context.Background(), unittest.OwnerFixture(), icq.RegisterAddr{Addr: "neutron1abc"})
	s.Require().ErrorIs(err, state.ErrConfigurationMissing)
}

func (s *EngineSuite) TestInvalidRequests() {
	err := s.engine.Instantiate(context.Background(), unittest.OwnerFixture(), unittest.InstantiateMsgFixture(func(m *icq.InstantiateMsg) {
		m.Frequency = 0
	}))
	s.Require().True(IsInvalidRequestError(err))

	err = s.engine.Instantiate(context.Background(), unittest.OwnerFixture(), unittest.InstantiateMsgFixture(func(m *icq.InstantiateMsg) {
		m.AssetDenom = ""
	}))
	s.Require().True(IsInvalidRequestError(err))

	_, err = s.engine.Execute(context.Background(), unittest.OwnerFixture(), icq.RegisterAddr{})
	s.Require().True(IsInvalidRequestError(err))

	// nothing reached the store
	_, err = s.engine.Query(context.Background(), icq.QueryConfig{})
	s.Require().ErrorIs(err, state.ErrConfigurationMissing)
}

func (s *EngineSuite) TestInstantiate_Twice() {
	s.instantiate()
	err := s.engine.Instantiate(context.Background(), unittest.OwnerFixture(), unittest.InstantiateMsgFixture())
	s.Require().ErrorIs(err, state.ErrAlreadyInitialized)
}

// Notifications delivered through the asynchronous callbacks are processed in order.
func (s *EngineSuite) TestSudo_Callbacks() {
	s.instantiate()

	for i := 0; i < 5; i++ {
		s.engine.Sudo(icq.SudoKVQueryResult{QueryID: uint64(i)})
	}
	s.engine.Sudo(icq.SudoTimeout{})

	s.Require().Eventually(func() bool {
		return s.queryCount() == 5
	}, time.Second, 10*time.Millisecond)

	err := s.engine.ProcessSudo(context.Background(), icq.SudoKVQueryResult{QueryID: 1})
	s.Require().NoError(err)
	s.Assert().Equal(uint64(6), s.queryCount())
}

func (s *EngineSuite) TestReply_Rejected() {
	s.instantiate()
	err := s.engine.ProcessReply(context.Background(), icq.ReplyErr(icq.RequestCorrelationID(1), "out of gas"))
	s.Require().ErrorIs(err, state.ErrSubsystemRejected)
	s.Assert().Empty(s.queryQueries())
}

func TestEngine_InboundQueueFull(t *testing.T) {
	unittest.RunWithPebbleDB(t, func(pdb *pebble.DB) {
		db := pebbleimpl.ToDB(pdb)
		sub := mocksubsystem.NewSubsystem(t)
		w := state.New(unittest.Logger(), sub, icq.CorrelationPerRequest)
		eng, err := New(unittest.Logger(), metrics.NewNoopCollector(), db, w, sub, Config{InboundQueueCapacity: 1})
		require.NoError(t, err)

		// the engine is not started, so queued invocations are never drained
		eng.Sudo(icq.SudoKVQueryResult{QueryID: 1})

		err = eng.Instantiate(context.Background(), unittest.OwnerFixture(), unittest.InstantiateMsgFixture())
		require.ErrorIs(t, err, ErrInboundQueueFull)
		assert.Equal(t, 1, eng.inbound.Len())
	})
}

func TestEngine_ContextCancelled(t *testing.T) {
	unittest.RunWithPebbleDB(t, func(pdb *pebble.DB) {
		db := pebbleimpl.ToDB(pdb)
		sub := mocksubsystem.NewSubsystem(t)
		w := state.New(unittest.Logger(), sub, icq.CorrelationPerRequest)
		eng, err := New(unittest.Logger(), metrics.NewNoopCollector(), db, w, sub, DefaultConfig())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = eng.Instantiate(ctx, unittest.OwnerFixture(), unittest.InstantiateMsgFixture())
		require.ErrorIs(t, err, context.Canceled)
	})
}
