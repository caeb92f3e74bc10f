package battle_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/redis"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
	"github.com/KirkDiggler/rpg-combat/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	client  redis.Client
	mr      *miniredis.Miniredis
	cleanup func()
	repo    battle.Repository
	duel    *testutils.Duel
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.client, s.mr, s.cleanup = testutils.CreateTestRedis(s.T())
	s.repo = battle.NewRedisRepository(s.client)
	s.duel = testutils.CreateTestDuel()

	_, err := s.repo.CreateBattle(s.ctx, battle.CreateBattleInput{
		Meta:    s.duel.Meta,
		Actors:  s.duel.Actors,
		Targets: map[string][]string{"2": {"1"}},
	})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) register(move *combat.CombatMove) *battle.RegisterIntentOutput {
	out, err := s.repo.RegisterIntent(s.ctx, battle.RegisterIntentInput{BattleID: testutils.TestBattleID, Move: move})
	s.Require().NoError(err)
	return out
}

func (s *RedisRepositoryTestSuite) TestCreateBattle() {
	s.Run("writes the documented keys", func() {
		s.True(s.mr.Exists("battle:" + testutils.TestBattleID + ":meta"))
		s.True(s.mr.Exists("battle:" + testutils.TestBattleID + ":actor:1"))
		s.True(s.mr.Exists("battle:" + testutils.TestBattleID + ":actor:2"))
		members, err := s.mr.Members("battle:" + testutils.TestBattleID + ":targets:2")
		s.Require().NoError(err)
		s.Equal([]string{"1"}, members)
	})

	s.Run("rejects a second create", func() {
		_, err := s.repo.CreateBattle(s.ctx, battle.CreateBattleInput{Meta: s.duel.Meta, Actors: s.duel.Actors})
		s.True(errors.IsAlreadyExists(err))
	})

	s.Run("rejects a snapshot that breaks its resource rules", func() {
		duel := testutils.CreateTestDuel()
		duel.Meta.BattleID = "other"
		duel.Actors[1].Meta.HP = 0
		_, err := s.repo.CreateBattle(s.ctx, battle.CreateBattleInput{Meta: duel.Meta, Actors: duel.Actors})
		s.True(errors.IsInvalidArgument(err))
		s.False(s.mr.Exists("battle:other:meta"))
	})

	s.Run("rejects a dead actor missing from dead_actors", func() {
		duel := testutils.CreateTestDuel()
		duel.Meta.BattleID = "other"
		duel.Actors[1].Meta.HP = 0
		duel.Actors[1].Meta.IsAlive = false
		_, err := s.repo.CreateBattle(s.ctx, battle.CreateBattleInput{Meta: duel.Meta, Actors: duel.Actors})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("rejects missing snapshots", func() {
		meta := testutils.CreateTestDuel().Meta
		meta.BattleID = "other"
		_, err := s.repo.CreateBattle(s.ctx, battle.CreateBattleInput{Meta: meta, Actors: s.duel.Actors[:1]})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *RedisRepositoryTestSuite) TestGetMetaUnknownBattle() {
	_, err := s.repo.GetMeta(s.ctx, battle.GetMetaInput{BattleID: "nope"})
	s.Require().Error(err)
	s.True(errors.HasReason(err, errors.ReasonInvalidBattle))
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestLoadContext() {
	out, err := s.repo.LoadContext(s.ctx, battle.LoadContextInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	s.Equal(testutils.TestBattleID, out.Meta.BattleID)
	s.Len(out.Actors, 2)
	s.Equal(20.0, out.Actors["1"].Raw.Attributes[combat.StatPower].Base)

	s.mr.Del("battle:" + testutils.TestBattleID + ":actor:2")
	_, err = s.repo.LoadContext(s.ctx, battle.LoadContextInput{BattleID: testutils.TestBattleID})
	s.True(errors.HasReason(err, errors.ReasonConsistencyViolation))
}

func (s *RedisRepositoryTestSuite) TestRegisterIntentIsIdempotent() {
	first := s.register(testutils.Exchange("mv_a", "1", "2"))
	s.True(first.Created)
	s.Equal("mv_a", first.MoveID)

	again := s.register(testutils.Exchange("mv_b", "1", "2"))
	s.False(again.Created)
	s.Equal("mv_a", again.MoveID)

	out, err := s.repo.ListIntents(s.ctx, battle.ListIntentsInput{BattleID: testutils.TestBattleID, ActorIDs: []string{"1", "2"}})
	s.Require().NoError(err)
	s.Require().Len(out.Intents["1"], 1)
	s.Equal("mv_a", out.Intents["1"][0].MoveID)
	s.Equal(combat.ExchangePayload{TargetID: "2"}, out.Intents["1"][0].Payload)
	s.Empty(out.Intents["2"])
}

func (s *RedisRepositoryTestSuite) TestTransferActions() {
	s.register(testutils.Exchange("mv_a", "1", "2"))
	s.register(testutils.Exchange("mv_b", "2", "1"))

	action := &combat.CombatAction{
		ActionID:    "act_1",
		Type:        combat.ActionExchange,
		Move:        testutils.Exchange("mv_a", "1", "2"),
		PartnerMove: testutils.Exchange("mv_b", "2", "1"),
	}

	s.Run("pushes and deletes atomically", func() {
		out, err := s.repo.TransferActions(s.ctx, battle.TransferActionsInput{
			BattleID: testutils.TestBattleID,
			Actions:  []*combat.CombatAction{action},
		})
		s.Require().NoError(err)
		s.Equal(2, out.Pushed)
		s.Equal(out.Pushed, out.Deleted)

		intents, err := s.repo.ListIntents(s.ctx, battle.ListIntentsInput{BattleID: testutils.TestBattleID, ActorIDs: []string{"1", "2"}})
		s.Require().NoError(err)
		s.Empty(intents.Intents["1"])
		s.Empty(intents.Intents["2"])

		// the slot is free again
		s.True(s.register(testutils.Exchange("mv_c", "1", "2")).Created)
	})

	s.Run("refuses to push an action twice", func() {
		_, err := s.repo.TransferActions(s.ctx, battle.TransferActionsInput{
			BattleID: testutils.TestBattleID,
			Actions:  []*combat.CombatAction{action},
		})
		s.Require().Error(err)
		s.Equal(errors.CodeAborted, errors.GetCode(err))

		peek, err := s.repo.PeekActions(s.ctx, battle.PeekActionsInput{BattleID: testutils.TestBattleID, Limit: 10})
		s.Require().NoError(err)
		s.Equal(1, peek.Pending)
		s.Require().Len(peek.Actions, 1)
		s.Equal("act_1", peek.Actions[0].ActionID)
		s.Equal("mv_b", peek.Actions[0].PartnerMove.MoveID)
	})
}

func (s *RedisRepositoryTestSuite) TestCommitBatch() {
	s.register(testutils.Exchange("mv_a", "1", "2"))
	_, err := s.repo.TransferActions(s.ctx, battle.TransferActionsInput{
		BattleID: testutils.TestBattleID,
		Actions: []*combat.CombatAction{{
			ActionID: "act_1", Type: combat.ActionExchange, Move: testutils.Exchange("mv_a", "1", "2"), IsForced: true,
		}},
	})
	s.Require().NoError(err)

	loaded, err := s.repo.LoadContext(s.ctx, battle.LoadContextInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	loaded.Actors["2"].Meta.HP = 80
	loaded.Meta.ExchangeCounter = 1

	out, err := s.repo.CommitBatch(s.ctx, battle.CommitBatchInput{
		BattleID:        testutils.TestBattleID,
		Meta:            loaded.Meta,
		Actors:          []*combat.ActorSnapshot{loaded.Actors["2"]},
		Entries:         []*combat.LogEntry{{ActionID: "act_1", SourceID: "1", TargetIDs: []string{"2"}, DamageFinal: 20}},
		ConsumedActions: 1,
		TargetRemovals:  []battle.TargetRemoval{{BotID: "2", TargetID: "1"}},
	})
	s.Require().NoError(err)
	s.Equal(1, out.LogLength)

	after, err := s.repo.LoadContext(s.ctx, battle.LoadContextInput{BattleID: testutils.TestBattleID, ActorIDs: []string{"2"}})
	s.Require().NoError(err)
	s.Equal(80, after.Actors["2"].Meta.HP)
	s.Equal(int64(1), after.Meta.ExchangeCounter)

	peek, err := s.repo.PeekActions(s.ctx, battle.PeekActionsInput{BattleID: testutils.TestBattleID, Limit: 5})
	s.Require().NoError(err)
	s.Zero(peek.Pending)

	queues, err := s.repo.GetTargetQueues(s.ctx, battle.GetTargetQueuesInput{BattleID: testutils.TestBattleID, BotIDs: []string{"2"}})
	s.Require().NoError(err)
	s.Empty(queues.Targets["2"])

	log, err := s.repo.ListLog(s.ctx, battle.ListLogInput{BattleID: testutils.TestBattleID, Offset: 0, Limit: 50})
	s.Require().NoError(err)
	s.Equal(1, log.Total)
	s.Equal(20, log.Entries[0].DamageFinal)
}

func (s *RedisRepositoryTestSuite) TestTargetQueues() {
	added, err := s.repo.AddRequiredTarget(s.ctx, battle.AddRequiredTargetInput{BattleID: testutils.TestBattleID, BotID: "2", TargetID: "1"})
	s.Require().NoError(err)
	s.False(added.Added, "already queued at creation")

	out, err := s.repo.GetTargetQueues(s.ctx, battle.GetTargetQueuesInput{BattleID: testutils.TestBattleID, BotIDs: []string{"1", "2"}})
	s.Require().NoError(err)
	s.Equal([]string{"1"}, out.Targets["2"])
	s.Empty(out.Targets["1"])
}

func (s *RedisRepositoryTestSuite) signals() []combat.Signal {
	out, err := s.repo.ListSignals(s.ctx, battle.ListSignalsInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	return out.Signals
}

func (s *RedisRepositoryTestSuite) TestSignals() {
	for _, sig := range []combat.Signal{{MoveID: "mv_a"}, {MoveID: combat.SignalBatch, CharID: "2"}, {MoveID: "mv_a"}} {
		_, err := s.repo.AddSignal(s.ctx, battle.AddSignalInput{BattleID: testutils.TestBattleID, Signal: sig})
		s.Require().NoError(err)
	}

	s.Equal([]combat.Signal{{MoveID: "mv_a"}, {MoveID: combat.SignalBatch, CharID: "2"}}, s.signals())

	s.Run("reading does not consume", func() {
		s.Len(s.signals(), 2)
	})

	s.Run("a transfer without actions clears only what it was given", func() {
		out, err := s.repo.TransferActions(s.ctx, battle.TransferActionsInput{
			BattleID: testutils.TestBattleID,
			Signals:  []combat.Signal{{MoveID: "mv_a"}},
		})
		s.Require().NoError(err)
		s.Zero(out.Pushed)
		s.Equal([]combat.Signal{{MoveID: combat.SignalBatch, CharID: "2"}}, s.signals())
	})
}

func (s *RedisRepositoryTestSuite) TestTransferConsumesSignals() {
	s.register(testutils.Exchange("mv_a", "1", "2"))
	_, err := s.repo.AddSignal(s.ctx, battle.AddSignalInput{BattleID: testutils.TestBattleID, Signal: combat.Signal{MoveID: "mv_a"}})
	s.Require().NoError(err)

	forced := []*combat.CombatAction{{
		ActionID: "act_1", Type: combat.ActionExchange, Move: testutils.Exchange("mv_a", "1", "2"), IsForced: true,
	}}

	s.Run("an aborted transfer keeps the signal", func() {
		_, err := s.repo.TransferActions(s.ctx, battle.TransferActionsInput{
			BattleID: testutils.TestBattleID,
			Actions: []*combat.CombatAction{{
				ActionID: "act_0", Type: combat.ActionExchange, Move: testutils.Exchange("mv_gone", "1", "2"), IsForced: true,
			}},
			Signals: []combat.Signal{{MoveID: "mv_a"}},
		})
		s.Equal(errors.CodeAborted, errors.GetCode(err))
		s.Equal([]combat.Signal{{MoveID: "mv_a"}}, s.signals())
	})

	s.Run("a committed transfer removes it", func() {
		out, err := s.repo.TransferActions(s.ctx, battle.TransferActionsInput{
			BattleID: testutils.TestBattleID,
			Actions:  forced,
			Signals:  []combat.Signal{{MoveID: "mv_a"}},
		})
		s.Require().NoError(err)
		s.Equal(1, out.Deleted)
		s.Empty(s.signals())
	})
}

func (s *RedisRepositoryTestSuite) TestFinalizeOnce() {
	s.register(testutils.Exchange("mv_a", "1", "2"))

	meta := *s.duel.Meta
	meta.Active = false
	meta.Winner = testutils.TeamBlue

	first, err := s.repo.Finalize(s.ctx, battle.FinalizeInput{Meta: &meta})
	s.Require().NoError(err)
	s.True(first.First)

	second, err := s.repo.Finalize(s.ctx, battle.FinalizeInput{Meta: &meta})
	s.Require().NoError(err)
	s.False(second.First)

	got, err := s.repo.GetMeta(s.ctx, battle.GetMetaInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	s.False(got.Meta.Active)
	s.Equal(testutils.TeamBlue, got.Meta.Winner)

	intents, err := s.repo.ListIntents(s.ctx, battle.ListIntentsInput{BattleID: testutils.TestBattleID, ActorIDs: []string{"1"}})
	s.Require().NoError(err)
	s.Empty(intents.Intents["1"])
}

func (s *RedisRepositoryTestSuite) TestFinalizeCompletesAfterInterruptedAttempt() {
	// a marker without the final meta, as left by a writer that died halfway
	s.Require().NoError(s.mr.Set("battle:"+testutils.TestBattleID+":finalized", testutils.TeamRed))
	s.register(testutils.Exchange("mv_a", "1", "2"))

	meta := *s.duel.Meta
	meta.Active = false
	meta.Winner = testutils.TeamBlue
	entry := &combat.LogEntry{ActionID: "system-corrupted", ActionType: combat.ActionSystem}

	out, err := s.repo.Finalize(s.ctx, battle.FinalizeInput{Meta: &meta, Entry: entry})
	s.Require().NoError(err)
	s.True(out.First)

	got, err := s.repo.GetMeta(s.ctx, battle.GetMetaInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)
	s.False(got.Meta.Active)
	s.Equal(testutils.TeamBlue, got.Meta.Winner)

	marker, err := s.mr.Get("battle:" + testutils.TestBattleID + ":finalized")
	s.Require().NoError(err)
	s.Equal(testutils.TeamBlue, marker)

	log, err := s.repo.ListLog(s.ctx, battle.ListLogInput{BattleID: testutils.TestBattleID, Limit: 10})
	s.Require().NoError(err)
	s.Require().Equal(1, log.Total)
	s.Equal("system-corrupted", log.Entries[0].ActionID)
	s.Zero(s.intentTotal())
}

func (s *RedisRepositoryTestSuite) TestFinalizeRejectsBadInput() {
	s.Run("active meta", func() {
		_, err := s.repo.Finalize(s.ctx, battle.FinalizeInput{Meta: s.duel.Meta})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("unknown battle", func() {
		meta := *s.duel.Meta
		meta.BattleID = "missing"
		meta.Active = false
		_, err := s.repo.Finalize(s.ctx, battle.FinalizeInput{Meta: &meta})
		s.True(errors.HasReason(err, errors.ReasonInvalidBattle))
	})
}

func (s *RedisRepositoryTestSuite) TestAnnouncementMarker() {
	in := battle.IsAnnouncedInput{BattleID: testutils.TestBattleID}

	before, err := s.repo.IsAnnounced(s.ctx, in)
	s.Require().NoError(err)
	s.False(before.Announced)

	_, err = s.repo.MarkAnnounced(s.ctx, battle.MarkAnnouncedInput{BattleID: testutils.TestBattleID})
	s.Require().NoError(err)

	after, err := s.repo.IsAnnounced(s.ctx, in)
	s.Require().NoError(err)
	s.True(after.Announced)
}

func (s *RedisRepositoryTestSuite) intentTotal() int {
	out, err := s.repo.ListIntents(s.ctx, battle.ListIntentsInput{BattleID: testutils.TestBattleID, ActorIDs: []string{"1", "2"}})
	s.Require().NoError(err)
	n := 0
	for _, moves := range out.Intents {
		n += len(moves)
	}
	return n
}

func (s *RedisRepositoryTestSuite) TestListBattleIDs() {
	out, err := s.repo.ListBattleIDs(s.ctx, battle.ListBattleIDsInput{})
	s.Require().NoError(err)
	s.Equal([]string{testutils.TestBattleID}, out.BattleIDs)
}
