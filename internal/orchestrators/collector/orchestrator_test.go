package collector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-combat/internal/engine"
	enginemock "github.com/KirkDiggler/rpg-combat/internal/engine/mock"
	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/collector"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
	battlemock "github.com/KirkDiggler/rpg-combat/internal/repositories/battle/mock"
	"github.com/KirkDiggler/rpg-combat/internal/testutils"
	"github.com/KirkDiggler/rpg-combat/internal/testutils/builders"
	"github.com/KirkDiggler/rpg-combat/internal/testutils/mocks"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx       context.Context
	cleanup   func()
	repo      battle.Repository
	collector collector.Service
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.repo = battle.NewRedisRepository(client)

	eng, err := engine.New(&engine.Config{Registry: testutils.LoadRegistry(s.T())})
	s.Require().NoError(err)

	s.collector, err = collector.NewOrchestrator(&collector.Config{Repository: s.repo, Engine: eng})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *OrchestratorTestSuite) seed(duel *testutils.Duel, targets map[string][]string) {
	_, err := s.repo.CreateBattle(s.ctx, battle.CreateBattleInput{Meta: duel.Meta, Actors: duel.Actors, Targets: targets})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) register(move *combat.CombatMove) {
	_, err := s.repo.RegisterIntent(s.ctx, battle.RegisterIntentInput{BattleID: testutils.TestBattleID, Move: move})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) signal(sig combat.Signal) {
	_, err := s.repo.AddSignal(s.ctx, battle.AddSignalInput{BattleID: testutils.TestBattleID, Signal: sig})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) pendingSignals() []combat.Signal {
	out, err := s.repo.ListSignals(s.ctx, battle.ListSignalsInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	return out.Signals
}

func (s *OrchestratorTestSuite) collect() *collector.CollectOutput {
	out, err := s.collector.Collect(s.ctx, &collector.CollectInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	return out
}

func (s *OrchestratorTestSuite) intentCount() int {
	out, err := s.repo.ListIntents(s.ctx, battle.ListIntentsInput{BattleID: testutils.TestBattleID, ActorIDs: []string{"1", "2", "3"}})
	s.Require().NoError(err)
	n := 0
	for _, moves := range out.Intents {
		n += len(moves)
	}
	return n
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidatesConfig() {
	_, err := collector.NewOrchestrator(&collector.Config{})
	s.Error(err)

	_, err = collector.NewOrchestrator(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestPairsReciprocalExchanges() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.register(testutils.Exchange("m1", "1", "2"))
	s.register(testutils.Exchange("m2", "2", "1"))

	out := s.collect()

	s.True(out.Active)
	s.Require().Len(out.Actions, 1)
	action := out.Actions[0]
	s.Equal(combat.ActionExchange, action.Type)
	s.False(action.IsForced)
	s.Equal("m1", action.Move.MoveID)
	s.Require().NotNil(action.PartnerMove)
	s.Equal("m2", action.PartnerMove.MoveID)
	s.Equal([]string{"2"}, action.Move.Targets)
	s.Equal([]string{"1"}, action.PartnerMove.Targets)

	s.Equal(1, out.Pending)
	s.Equal(100, out.BatchSize)
	s.False(out.Decided(), "victory is not checked while actions are queued")
	s.Equal(0, s.intentCount())
}

func (s *OrchestratorTestSuite) TestUnmatchedExchangeWaits() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.register(testutils.Exchange("m1", "1", "2"))

	out := s.collect()

	s.Empty(out.Actions)
	s.Equal(0, out.Pending)
	s.Equal(1, s.intentCount())
}

func (s *OrchestratorTestSuite) TestTimeoutSignalForcesMove() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.register(testutils.Exchange("m1", "1", "2"))
	s.signal(combat.Signal{MoveID: "m1"})

	out := s.collect()

	s.Require().Len(out.Actions, 1)
	s.True(out.Actions[0].IsForced)
	s.Nil(out.Actions[0].PartnerMove)
	s.Equal("m1", out.Actions[0].Move.MoveID)
	s.Equal(0, s.intentCount())

	s.Run("signals are consumed", func() {
		s.Empty(s.pendingSignals())
	})
}

// flakyTransfer fails the first TransferActions the way a dropped store
// connection would.
type flakyTransfer struct {
	battle.Repository
	failures int
}

func (f *flakyTransfer) TransferActions(ctx context.Context, input battle.TransferActionsInput) (*battle.TransferActionsOutput, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.StoreUnavailable(context.DeadlineExceeded, "failed to transfer actions")
	}
	return f.Repository.TransferActions(ctx, input)
}

func (s *OrchestratorTestSuite) TestSignalSurvivesFailedTransfer() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.register(testutils.Exchange("m1", "1", "2"))
	s.signal(combat.Signal{MoveID: "m1"})

	eng, err := engine.New(&engine.Config{Registry: testutils.LoadRegistry(s.T())})
	s.Require().NoError(err)
	c, err := collector.NewOrchestrator(&collector.Config{
		Repository: &flakyTransfer{Repository: s.repo, failures: 1},
		Engine:     eng,
	})
	s.Require().NoError(err)

	_, err = c.Collect(s.ctx, &collector.CollectInput{BattleID: testutils.TestBattleID})
	s.Require().Error(err)
	s.True(errors.IsRetryable(err))
	s.Equal([]combat.Signal{{MoveID: "m1"}}, s.pendingSignals())
	s.Equal(1, s.intentCount())

	out, err := c.Collect(s.ctx, &collector.CollectInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	s.Require().Len(out.Actions, 1)
	s.True(out.Actions[0].IsForced)
	s.Equal("m1", out.Actions[0].Move.MoveID)
	s.Empty(s.pendingSignals())
}

func (s *OrchestratorTestSuite) TestSignalForOtherMoveDoesNothing() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.register(testutils.Exchange("m1", "1", "2"))
	s.signal(combat.Signal{MoveID: "m9"})

	out := s.collect()

	s.Empty(out.Actions)
	s.Equal(1, s.intentCount())
	s.Empty(s.pendingSignals(), "a stale signal is dropped")
}

func (s *OrchestratorTestSuite) TestBatchSignalScope() {
	duel := &testutils.Duel{
		Meta: builders.NewBattleBuilder(testutils.TestBattleID).
			WithPlayer(testutils.TeamBlue, "1").
			WithPlayer(testutils.TeamRed, "2").
			WithPlayer(testutils.TeamRed, "3").
			Build(),
		Actors: []*combat.ActorSnapshot{
			builders.NewActorBuilder("1").Build(),
			builders.NewActorBuilder("2").Build(),
			builders.NewActorBuilder("3").Build(),
		},
	}
	s.seed(duel, nil)
	s.register(testutils.Exchange("m1", "1", "2"))
	s.register(testutils.Exchange("m2", "3", "1"))

	s.Run("scoped to one actor", func() {
		s.signal(combat.Signal{MoveID: combat.SignalBatch, CharID: "3"})
		out := s.collect()
		s.Require().Len(out.Actions, 1)
		s.Equal("m2", out.Actions[0].Move.MoveID)
		s.True(out.Actions[0].IsForced)
	})

	s.Run("unscoped forces everything", func() {
		s.signal(combat.Signal{MoveID: combat.SignalBatch})
		out := s.collect()
		s.Require().Len(out.Actions, 1)
		s.Equal("m1", out.Actions[0].Move.MoveID)
		s.Equal(0, s.intentCount())
	})
}

func (s *OrchestratorTestSuite) TestDeadTargetIsForcedImmediately() {
	duel := &testutils.Duel{
		Meta: builders.NewBattleBuilder(testutils.TestBattleID).
			WithPlayer(testutils.TeamBlue, "1").
			WithPlayer(testutils.TeamRed, "2").
			WithPlayer(testutils.TeamRed, "3").
			WithDead("3").
			Build(),
		Actors: []*combat.ActorSnapshot{
			builders.NewActorBuilder("1").Build(),
			builders.NewActorBuilder("2").Build(),
			builders.NewActorBuilder("3").WithHP(0).Build(),
		},
	}
	s.seed(duel, nil)
	s.register(testutils.Exchange("m1", "1", "3"))

	out := s.collect()

	s.Require().Len(out.Actions, 1)
	s.True(out.Actions[0].IsForced)
	s.Empty(out.Actions[0].Move.Targets)
}

func (s *OrchestratorTestSuite) TestAIGating() {
	s.seed(testutils.CreateTestBotDuel(), map[string][]string{"2": {"1"}})
	s.register(testutils.Exchange("m1", "1", "2"))

	first := s.collect()
	s.Empty(first.Actions)
	s.Equal([]collector.AITurnRequest{{BotID: "2", MissingTargets: []string{"1"}}}, first.AIRequests)

	s.register(testutils.Exchange("m2", "2", "1"))

	second := s.collect()
	s.Empty(second.AIRequests)
	s.Require().Len(second.Actions, 1)
	s.Equal("m1", second.Actions[0].Move.MoveID)
	s.Equal("m2", second.Actions[0].PartnerMove.MoveID)
}

func (s *OrchestratorTestSuite) TestInstantsAndItemsComeFirst() {
	s.seed(testutils.CreateTestDuel(), nil)
	s.register(testutils.Exchange("m1", "1", "2"))
	s.register(testutils.Exchange("m2", "2", "1"))
	s.register(&combat.CombatMove{MoveID: "m3", CharID: "2", Payload: combat.ItemPayload{TargetID: combat.TargetSelf, ItemID: "potion"}})
	s.register(&combat.CombatMove{MoveID: "m4", CharID: "1", Payload: combat.InstantPayload{TargetID: combat.TargetAllEnemies, AbilityID: "whirlwind"}})

	out := s.collect()

	s.Require().Len(out.Actions, 3)
	s.Equal(combat.ActionInstant, out.Actions[0].Type)
	s.Equal("m4", out.Actions[0].Move.MoveID)
	s.Equal([]string{"2"}, out.Actions[0].Move.Targets)

	s.Equal(combat.ActionItem, out.Actions[1].Type)
	s.Equal([]string{"2"}, out.Actions[1].Move.Targets)

	s.Equal(combat.ActionExchange, out.Actions[2].Type)
	s.Equal(0, s.intentCount())
}

func (s *OrchestratorTestSuite) TestMatchmakingOrderIsDeterministic() {
	duel := &testutils.Duel{
		Meta: builders.NewBattleBuilder(testutils.TestBattleID).
			WithPlayer(testutils.TeamBlue, "1").
			WithPlayer(testutils.TeamRed, "2").
			WithPlayer(testutils.TeamRed, "3").
			Build(),
		Actors: []*combat.ActorSnapshot{
			builders.NewActorBuilder("1").Build(),
			builders.NewActorBuilder("2").Build(),
			builders.NewActorBuilder("3").Build(),
		},
	}
	s.seed(duel, nil)
	s.register(testutils.Exchange("m5", "3", "1"))
	s.register(testutils.Exchange("m4", "2", "1"))
	s.register(testutils.Exchange("m2", "1", "3"))
	s.register(testutils.Exchange("m1", "1", "2"))

	out := s.collect()

	s.Require().Len(out.Actions, 2)
	s.Equal("m1+m4", out.Actions[0].ActionID)
	s.Equal("m2+m5", out.Actions[1].ActionID)
}

func (s *OrchestratorTestSuite) TestVictoryWhenQueueIsEmpty() {
	duel := &testutils.Duel{
		Meta: builders.NewBattleBuilder(testutils.TestBattleID).
			WithPlayer(testutils.TeamBlue, "1").
			WithPlayer(testutils.TeamRed, "2").
			WithDead("2").
			Build(),
		Actors: []*combat.ActorSnapshot{
			builders.NewActorBuilder("1").Build(),
			builders.NewActorBuilder("2").WithHP(0).Build(),
		},
	}
	s.seed(duel, nil)

	out := s.collect()

	s.True(out.Decided())
	s.Equal(testutils.TeamBlue, out.Winner)
}

func (s *OrchestratorTestSuite) TestInactiveBattle() {
	duel := testutils.CreateTestDuel()
	s.seed(duel, nil)

	meta := duel.Meta
	meta.Active = false
	meta.Winner = combat.WinnerDraw
	_, err := s.repo.Finalize(s.ctx, battle.FinalizeInput{Meta: meta})
	s.Require().NoError(err)

	out := s.collect()
	s.False(out.Active)
	s.Empty(out.Actions)
}

func (s *OrchestratorTestSuite) TestUnknownBattle() {
	_, err := s.collector.Collect(s.ctx, &collector.CollectInput{BattleID: "missing"})
	s.True(errors.HasReason(err, errors.ReasonInvalidBattle))
}

func TestBatchBoundsSize(t *testing.T) {
	bounds := collector.BatchBounds{Min: 5, Max: 100, Divisor: 200}
	cases := map[int]int{0: 100, 1: 100, 2: 100, 3: 66, 10: 20, 40: 5, 50: 5}

	for living, want := range cases {
		if got := bounds.Size(living); got != want {
			t.Errorf("Size(%d) = %d, want %d", living, got, want)
		}
	}
}

type CollectorMockTestSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	repo      *battlemock.MockRepository
	engine    *enginemock.MockEngine
	collector collector.Service
	meta      *combat.BattleMeta
}

func TestCollectorMockTestSuite(t *testing.T) {
	suite.Run(t, new(CollectorMockTestSuite))
}

func (s *CollectorMockTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.repo = battlemock.NewMockRepository(s.ctrl)
	s.engine = enginemock.NewMockEngine(s.ctrl)
	s.meta = testutils.CreateTestDuel().Meta

	var err error
	s.collector, err = collector.NewOrchestrator(&collector.Config{
		Repository:            s.repo,
		Engine:                s.engine,
		BackpressureThreshold: 10,
	})
	s.Require().NoError(err)

	mocks.ExpectGetMeta(s.ctx, s.repo, s.meta)
}

func (s *CollectorMockTestSuite) TestBackpressureSkipsMatchmaking() {
	s.repo.EXPECT().ListIntents(s.ctx, gomock.Any()).Return(&battle.ListIntentsOutput{
		Intents: map[string][]*combat.CombatMove{
			"1": {testutils.Exchange("m1", "1", "2")},
			"2": {testutils.Exchange("m2", "2", "1")},
		},
	}, nil)
	s.repo.EXPECT().PeekActions(s.ctx, battle.PeekActionsInput{BattleID: testutils.TestBattleID, Limit: 1}).
		Return(&battle.PeekActionsOutput{Pending: 10}, nil)

	out, err := s.collector.Collect(s.ctx, &collector.CollectInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	s.True(out.Backpressure)
	s.Empty(out.Actions)
	s.Equal(10, out.Pending)
}

func (s *CollectorMockTestSuite) TestTransferMismatchIsAnError() {
	s.repo.EXPECT().ListIntents(s.ctx, gomock.Any()).Return(&battle.ListIntentsOutput{
		Intents: map[string][]*combat.CombatMove{
			"1": {testutils.Exchange("m1", "1", "2")},
			"2": {testutils.Exchange("m2", "2", "1")},
		},
	}, nil)
	s.repo.EXPECT().PeekActions(s.ctx, gomock.Any()).Return(&battle.PeekActionsOutput{}, nil)
	s.repo.EXPECT().ListSignals(s.ctx, gomock.Any()).Return(&battle.ListSignalsOutput{}, nil)
	s.repo.EXPECT().TransferActions(s.ctx, gomock.Any()).Return(&battle.TransferActionsOutput{Pushed: 2, Deleted: 1}, nil)

	_, err := s.collector.Collect(s.ctx, &collector.CollectInput{BattleID: testutils.TestBattleID})
	s.Require().Error(err)
	s.Equal(errors.CodeInternal, errors.GetCode(err))
}

func (s *CollectorMockTestSuite) TestTransferAbortIsRetryable() {
	s.repo.EXPECT().ListIntents(s.ctx, gomock.Any()).Return(&battle.ListIntentsOutput{
		Intents: map[string][]*combat.CombatMove{"1": {testutils.Exchange("m1", "1", "2")}},
	}, nil)
	s.repo.EXPECT().PeekActions(s.ctx, gomock.Any()).Return(&battle.PeekActionsOutput{}, nil)
	s.repo.EXPECT().ListSignals(s.ctx, gomock.Any()).
		Return(&battle.ListSignalsOutput{Signals: []combat.Signal{{MoveID: "m1"}}}, nil)
	s.repo.EXPECT().TransferActions(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in battle.TransferActionsInput) (*battle.TransferActionsOutput, error) {
			s.Equal([]combat.Signal{{MoveID: "m1"}}, in.Signals, "signals ride with the transfer")
			return nil, errors.Abortedf("intent m1 is gone")
		})

	_, err := s.collector.Collect(s.ctx, &collector.CollectInput{BattleID: testutils.TestBattleID})
	s.True(errors.IsRetryable(err))
}
