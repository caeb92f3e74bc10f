package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-combat/internal/engine"
	enginemock "github.com/KirkDiggler/rpg-combat/internal/engine/mock"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/executor"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
	archivemock "github.com/KirkDiggler/rpg-combat/internal/repositories/archive/mock"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
	battlemock "github.com/KirkDiggler/rpg-combat/internal/repositories/battle/mock"
	"github.com/KirkDiggler/rpg-combat/internal/testutils"
	"github.com/KirkDiggler/rpg-combat/internal/testutils/builders"
	"github.com/KirkDiggler/rpg-combat/internal/testutils/mocks"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx      context.Context
	cleanup  func()
	repo     battle.Repository
	archive  *archive.Store
	engine   engine.Engine
	executor executor.Service
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.repo = battle.NewRedisRepository(client)
	s.archive = testutils.CreateTestArchive(s.T(), nil)

	var err error
	s.engine, err = engine.New(&engine.Config{Registry: testutils.LoadRegistry(s.T())})
	s.Require().NoError(err)

	s.executor, err = executor.NewOrchestrator(&executor.Config{
		Repository:      s.repo,
		Engine:          s.engine,
		Archive:         s.archive,
		CheckpointEvery: 2,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *OrchestratorTestSuite) seed(duel *testutils.Duel, targets map[string][]string) {
	_, err := s.repo.CreateBattle(s.ctx, battle.CreateBattleInput{Meta: duel.Meta, Actors: duel.Actors, Targets: targets})
	s.Require().NoError(err)
}

// queue registers the actions' moves as intents and transfers them.
func (s *OrchestratorTestSuite) queue(actions ...*combat.CombatAction) {
	for _, action := range actions {
		for _, move := range action.Moves() {
			_, err := s.repo.RegisterIntent(s.ctx, battle.RegisterIntentInput{BattleID: testutils.TestBattleID, Move: move})
			s.Require().NoError(err)
		}
	}
	_, err := s.repo.TransferActions(s.ctx, battle.TransferActionsInput{BattleID: testutils.TestBattleID, Actions: actions})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) execute(batch int) *executor.ExecuteOutput {
	out, err := s.executor.Execute(s.ctx, &executor.ExecuteInput{BattleID: testutils.TestBattleID, BatchSize: batch})
	s.Require().NoError(err)
	return out
}

func (s *OrchestratorTestSuite) load() *battle.LoadContextOutput {
	out, err := s.repo.LoadContext(s.ctx, battle.LoadContextInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	return out
}

func forced(move *combat.CombatMove) *combat.CombatAction {
	return &combat.CombatAction{ActionID: move.MoveID, Type: combat.ActionExchange, Move: move, IsForced: true}
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidatesConfig() {
	_, err := executor.NewOrchestrator(&executor.Config{})
	s.Error(err)

	_, err = executor.NewOrchestrator(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestExecuteRequiresBatchSize() {
	_, err := s.executor.Execute(s.ctx, &executor.ExecuteInput{BattleID: testutils.TestBattleID})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestEmptyQueue() {
	s.seed(testutils.CreateTestDuel(), nil)

	out := s.execute(10)
	s.Equal(0, out.Processed)
	s.Equal(0, out.Remaining)
}

func (s *OrchestratorTestSuite) TestPairedExchangeMutualHit() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.queue(&combat.CombatAction{
		ActionID:    "m1+m2",
		Type:        combat.ActionExchange,
		Move:        testutils.Exchange("m1", "1", "2"),
		PartnerMove: testutils.Exchange("m2", "2", "1"),
	})

	out := s.execute(10)

	s.Equal(1, out.Processed)
	s.Equal(0, out.Remaining)
	s.Equal(1, out.LogLength)
	s.Require().Len(out.Entries, 1)
	s.Equal(2, out.Entries[0].CountEvents(combat.EventHit))

	loaded := s.load()
	s.Equal(80, loaded.Actors["1"].Meta.HP)
	s.Equal(80, loaded.Actors["2"].Meta.HP)
	s.Equal(int64(1), loaded.Actors["1"].Meta.ExchangeCounter)
	s.Equal(int64(1), loaded.Actors["2"].Meta.ExchangeCounter)
	s.Equal(int64(1), loaded.Meta.ExchangeCounter)

	s.Run("the log and the archive agree", func() {
		hot, err := s.repo.ListLog(s.ctx, battle.ListLogInput{BattleID: testutils.TestBattleID, Limit: 10})
		s.Require().NoError(err)
		cold, err := s.archive.ListLog(s.ctx, archive.ListLogInput{BattleID: testutils.TestBattleID, Limit: 10})
		s.Require().NoError(err)
		s.Equal(1, hot.Total)
		s.Equal(1, cold.Total)
		s.Equal(hot.Entries[0].ActionID, cold.Entries[0].ActionID)
	})
}

func (s *OrchestratorTestSuite) TestBatchSizeAndCounters() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.queue(
		forced(testutils.Exchange("m1", "1", "2")),
		forced(testutils.Exchange("m2", "2", "1")),
		&combat.CombatAction{
			ActionID: "m3",
			Type:     combat.ActionItem,
			Move: &combat.CombatMove{
				MoveID:  "m3",
				CharID:  "1",
				Payload: combat.ItemPayload{TargetID: combat.TargetSelf, ItemID: "potion"},
				Targets: []string{"1"},
			},
		},
	)

	first := s.execute(2)
	s.Equal(2, first.Processed)
	s.Equal(1, first.Remaining)

	second := s.execute(2)
	s.Equal(1, second.Processed)
	s.Equal(0, second.Remaining)
	s.Equal(3, second.LogLength)

	loaded := s.load()
	s.Equal(int64(3), loaded.Actors["1"].Meta.ExchangeCounter, "two exchanges and the potion")
	s.Equal(int64(2), loaded.Actors["2"].Meta.ExchangeCounter, "two exchanges")
	s.Equal(int64(3), loaded.Meta.ExchangeCounter)
	s.Equal(100, loaded.Actors["1"].Meta.HP, "potion healed the exchange damage")
	s.Equal(80, loaded.Actors["2"].Meta.HP)

	s.Run("entries are archived in order", func() {
		cold, err := s.archive.ListLog(s.ctx, archive.ListLogInput{BattleID: testutils.TestBattleID, Limit: 10})
		s.Require().NoError(err)
		s.Require().Len(cold.Entries, 3)
		s.Equal("m1", cold.Entries[0].ActionID)
		s.Equal("m2", cold.Entries[1].ActionID)
		s.Equal("m3", cold.Entries[2].ActionID)
	})

	s.Run("a checkpoint was taken at the boundary", func() {
		cp, err := s.archive.LatestCheckpoint(s.ctx, archive.LatestCheckpointInput{BattleID: testutils.TestBattleID})
		s.Require().NoError(err)
		s.Equal(int64(2), cp.Tick)
		s.Len(cp.Actors, 2)
	})
}

func (s *OrchestratorTestSuite) TestDeathInsideBatch() {
	duel := &testutils.Duel{
		Meta: testutils.CreateTestDuel().Meta,
		Actors: []*combat.ActorSnapshot{
			builders.NewActorBuilder("1").Build(),
			builders.NewActorBuilder("2").WithHP(15).Build(),
		},
	}
	s.seed(duel, nil)
	s.queue(forced(testutils.Exchange("m1", "1", "2")))

	out := s.execute(10)

	s.Equal([]string{"2"}, out.Deaths)
	loaded := s.load()
	s.Equal(0, loaded.Actors["2"].Meta.HP)
	s.False(loaded.Actors["2"].Meta.IsAlive)
	s.Equal([]string{"2"}, loaded.Meta.DeadActors)
	s.True(loaded.Meta.Active, "finalization is left to the turn manager")
}

func (s *OrchestratorTestSuite) TestResolvedExchangeClearsTargetQueue() {
	s.seed(testutils.CreateTestBotDuel(), map[string][]string{"2": {"1"}})
	s.queue(&combat.CombatAction{
		ActionID:    "m1+m2",
		Type:        combat.ActionExchange,
		Move:        testutils.Exchange("m1", "1", "2"),
		PartnerMove: testutils.Exchange("m2", "2", "1"),
	})

	s.execute(10)

	queues, err := s.repo.GetTargetQueues(s.ctx, battle.GetTargetQueuesInput{BattleID: testutils.TestBattleID, BotIDs: []string{"2"}})
	s.Require().NoError(err)
	s.Empty(queues.Targets["2"])
}

type ExecutorMockTestSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	repo     *battlemock.MockRepository
	engine   *enginemock.MockEngine
	archive  *archivemock.MockRepository
	executor executor.Service
	duel     *testutils.Duel
	action   *combat.CombatAction
}

func TestExecutorMockTestSuite(t *testing.T) {
	suite.Run(t, new(ExecutorMockTestSuite))
}

func (s *ExecutorMockTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.repo = battlemock.NewMockRepository(s.ctrl)
	s.engine = enginemock.NewMockEngine(s.ctrl)
	s.archive = archivemock.NewMockRepository(s.ctrl)
	s.duel = testutils.CreateTestDuel()
	s.action = forced(testutils.Exchange("m1", "1", "2"))

	var err error
	s.executor, err = executor.NewOrchestrator(&executor.Config{
		Repository: s.repo,
		Engine:     s.engine,
		Archive:    s.archive,
	})
	s.Require().NoError(err)

	mocks.ExpectQueueHead(s.ctx, s.repo, testutils.TestBattleID, 5, s.action)
	mocks.ExpectLoadDuel(s.ctx, s.repo, s.duel)
}

func (s *ExecutorMockTestSuite) TestInconsistentStateIsNotCommitted() {
	s.engine.EXPECT().ResolveAction(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *engine.ResolveActionInput) (*engine.ResolveActionOutput, error) {
			// HP reached zero but nobody recorded the death
			in.Actors["2"].Meta.HP = 0
			return &engine.ResolveActionOutput{
				Entry:   &combat.LogEntry{ActionID: in.Action.ActionID},
				Touched: []string{"1", "2"},
			}, nil
		})

	_, err := s.executor.Execute(s.ctx, &executor.ExecuteInput{BattleID: testutils.TestBattleID, BatchSize: 5})
	s.Require().Error(err)
	s.True(errors.HasReason(err, errors.ReasonConsistencyViolation))
	s.True(errors.IsDataLoss(err))
}

func (s *ExecutorMockTestSuite) TestArchiveFailureDoesNotFailBatch() {
	entry := &combat.LogEntry{ActionID: "m1"}
	s.engine.EXPECT().ResolveAction(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *engine.ResolveActionInput) (*engine.ResolveActionOutput, error) {
			in.Meta.ExchangeCounter++
			return &engine.ResolveActionOutput{Entry: entry, Touched: []string{"1", "2"}}, nil
		})
	s.repo.EXPECT().CommitBatch(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in battle.CommitBatchInput) (*battle.CommitBatchOutput, error) {
			s.Equal(1, in.ConsumedActions)
			s.Len(in.Actors, 2)
			s.Equal([]*combat.LogEntry{entry}, in.Entries)
			return &battle.CommitBatchOutput{LogLength: 7}, nil
		})
	s.archive.EXPECT().AppendLog(s.ctx, archive.AppendLogInput{
		BattleID: testutils.TestBattleID,
		FirstSeq: 6,
		Entries:  []*combat.LogEntry{entry},
	}).Return(nil, errors.Unavailable("disk full"))

	out, err := s.executor.Execute(s.ctx, &executor.ExecuteInput{BattleID: testutils.TestBattleID, BatchSize: 5})
	s.Require().NoError(err)
	s.Equal(1, out.Processed)
	s.Equal(7, out.LogLength)
}
