package archive_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
	"github.com/KirkDiggler/rpg-combat/internal/testutils"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	path  string
	clock *clock.Manual
	store *archive.Store
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "archive.db")
	s.clock = clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	var err error
	s.store, err = archive.Open(s.ctx, &archive.Config{Path: s.path, Clock: s.clock})
	s.Require().NoError(err)
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *StoreTestSuite) TestOpenIsRepeatable() {
	s.Require().NoError(s.store.Close())

	again, err := archive.Open(s.ctx, &archive.Config{Path: s.path, Clock: s.clock})
	s.Require().NoError(err)
	s.store = again
}

func (s *StoreTestSuite) TestOpenRequiresPath() {
	_, err := archive.Open(s.ctx, &archive.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestSaveAndGetBattle() {
	meta := testutils.CreateTestDuel().Meta
	meta.Active = false
	meta.Winner = testutils.TeamBlue
	meta.ExchangeCounter = 7

	_, err := s.store.SaveBattle(s.ctx, archive.SaveBattleInput{Meta: meta})
	s.Require().NoError(err)

	meta.Corrupted = true
	_, err = s.store.SaveBattle(s.ctx, archive.SaveBattleInput{Meta: meta})
	s.Require().NoError(err)

	out, err := s.store.GetBattle(s.ctx, archive.GetBattleInput{BattleID: meta.BattleID})
	s.Require().NoError(err)
	s.Equal(testutils.TeamBlue, out.Summary.Meta.Winner)
	s.True(out.Summary.Meta.Corrupted)
	s.Equal(int64(7), out.Summary.Meta.ExchangeCounter)
	s.True(s.clock.Now().Equal(out.Summary.FinishedAt))

	_, err = s.store.GetBattle(s.ctx, archive.GetBattleInput{BattleID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *StoreTestSuite) TestAppendLogIsIdempotent() {
	entries := []*combat.LogEntry{
		{ActionID: "act_1", ExchangeCounter: 0, SourceID: "1", TargetIDs: []string{"2"}, DamageFinal: 20},
		{ActionID: "act_2", ExchangeCounter: 1, SourceID: "2", TargetIDs: []string{"1"}, DamageFinal: 20},
	}

	out, err := s.store.AppendLog(s.ctx, archive.AppendLogInput{BattleID: "b1", FirstSeq: 0, Entries: entries})
	s.Require().NoError(err)
	s.Equal(2, out.Stored)

	out, err = s.store.AppendLog(s.ctx, archive.AppendLogInput{BattleID: "b1", FirstSeq: 0, Entries: entries})
	s.Require().NoError(err)
	s.Zero(out.Stored)

	_, err = s.store.AppendLog(s.ctx, archive.AppendLogInput{
		BattleID: "b1",
		FirstSeq: 2,
		Entries:  []*combat.LogEntry{{ActionID: "act_3", ExchangeCounter: 2, SourceID: "1"}},
	})
	s.Require().NoError(err)

	page, err := s.store.ListLog(s.ctx, archive.ListLogInput{BattleID: "b1", Offset: 1, Limit: 5})
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Require().Len(page.Entries, 2)
	s.Equal("act_2", page.Entries[0].ActionID)
	s.Equal("act_3", page.Entries[1].ActionID)
}

func (s *StoreTestSuite) TestCheckpoints() {
	duel := testutils.CreateTestDuel()

	_, err := s.store.LatestCheckpoint(s.ctx, archive.LatestCheckpointInput{BattleID: duel.Meta.BattleID})
	s.True(errors.IsNotFound(err))

	_, err = s.store.Checkpoint(s.ctx, archive.CheckpointInput{BattleID: duel.Meta.BattleID, Tick: 10, Actors: duel.Actors})
	s.Require().NoError(err)

	duel.Actors[1].Meta.HP = 0
	duel.Actors[1].Meta.IsAlive = false
	duel.Actors[0].Meta.HP = 55
	out, err := s.store.Checkpoint(s.ctx, archive.CheckpointInput{BattleID: duel.Meta.BattleID, Tick: 20, Actors: duel.Actors})
	s.Require().NoError(err)
	s.Equal(1, out.Stored, "dead actors are not checkpointed")

	latest, err := s.store.LatestCheckpoint(s.ctx, archive.LatestCheckpointInput{BattleID: duel.Meta.BattleID})
	s.Require().NoError(err)
	s.Equal(int64(20), latest.Tick)
	s.Require().Len(latest.Actors, 1)
	s.Equal(55, latest.Actors[0].Meta.HP)
}
