package combat_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

type BattleTestSuite struct {
	suite.Suite
	meta *combat.BattleMeta
}

func TestBattleSuite(t *testing.T) {
	suite.Run(t, new(BattleTestSuite))
}

func (s *BattleTestSuite) SetupTest() {
	s.meta = &combat.BattleMeta{
		BattleID: "b-1",
		Teams: map[string][]string{
			"blue": {"1", "3"},
			"red":  {"2", "4"},
		},
		ActorsInfo: map[string]combat.ActorKind{
			"1": combat.ActorKindPlayer,
			"2": combat.ActorKindAI,
			"3": combat.ActorKindPlayer,
			"4": combat.ActorKindAI,
		},
		Active: true,
	}
}

func (s *BattleTestSuite) TestTeamQueries() {
	team, ok := s.meta.TeamOf("4")
	s.Assert().True(ok)
	s.Assert().Equal("red", team)

	s.Assert().Equal([]string{"1", "2", "3", "4"}, s.meta.ActorIDs())
	s.Assert().Equal([]string{"2", "4"}, s.meta.Enemies("1"))
	s.Assert().Equal([]string{"1", "3"}, s.meta.Allies("1"))
	s.Assert().True(s.meta.IsAI("2"))
	s.Assert().False(s.meta.IsAI("1"))
	s.Assert().False(s.meta.IsLiving("9"))
}

func (s *BattleTestSuite) TestMarkDeadKeepsSetSorted() {
	s.meta.MarkDead("4")
	s.meta.MarkDead("2")
	s.meta.MarkDead("4")

	s.Assert().Equal([]string{"2", "4"}, s.meta.DeadActors)
	s.Assert().True(s.meta.IsDead("2"))
	s.Assert().Empty(s.meta.Enemies("1"))
	s.Assert().Equal([]string{"1", "3"}, s.meta.LivingActors())
}

func (s *BattleTestSuite) TestDeadListOrderDoesNotMatter() {
	s.Run("hand-built unsorted list", func() {
		s.meta.DeadActors = []string{"4", "1"}
		s.True(s.meta.IsDead("1"))
		s.True(s.meta.IsDead("4"))
		s.Equal([]string{"2", "3"}, s.meta.LivingActors())

		s.meta.MarkDead("2")
		s.Equal([]string{"1", "2", "4"}, s.meta.DeadActors)
	})

	s.Run("decoded record is normalized", func() {
		var meta combat.BattleMeta
		s.Require().NoError(json.Unmarshal([]byte(`{
			"battle_id": "b-1",
			"teams": {"blue": ["1", "3"], "red": ["2"]},
			"actors_info": {"1": "player", "2": "ai", "3": "player"},
			"dead_actors": ["3", "1", "3"],
			"active": true
		}`), &meta))
		s.Equal([]string{"1", "3"}, meta.DeadActors)
		s.Equal([]string{"2"}, meta.LivingActors())
		s.Equal("b-1", meta.BattleID)
	})

	s.Run("duplicates fail validation", func() {
		s.meta.DeadActors = []string{"2", "2"}
		err := s.meta.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "listed twice")
	})
}

func (s *BattleTestSuite) TestValidate() {
	s.Assert().NoError(s.meta.Validate())

	s.Run("dead actor outside teams", func() {
		meta := *s.meta
		meta.DeadActors = []string{"9"}
		s.Assert().True(errors.IsInvalidArgument(meta.Validate()))
	})

	s.Run("inactive without winner", func() {
		meta := *s.meta
		meta.Active = false
		s.Assert().Error(meta.Validate())
		meta.Winner = "blue"
		s.Assert().NoError(meta.Validate())
	})

	s.Run("actor on two teams", func() {
		meta := *s.meta
		meta.Teams = map[string][]string{"blue": {"1"}, "red": {"1", "2"}}
		s.Assert().Error(meta.Validate())
	})
}

func (s *BattleTestSuite) TestMoveCarriesPayloadVariant() {
	moves := []*combat.CombatMove{
		{MoveID: "m1", CharID: "1", Payload: combat.ExchangePayload{TargetID: "2", FeintID: "feint_low"}},
		{MoveID: "m2", CharID: "1", Payload: combat.ItemPayload{TargetID: "self", ItemID: "potion"}},
		{MoveID: "m3", CharID: "1", Payload: combat.InstantPayload{TargetID: "cleave", AbilityID: "whirlwind"}, Targets: []string{"2", "4"}},
	}

	for _, move := range moves {
		data, err := json.Marshal(move)
		s.Require().NoError(err)

		var back combat.CombatMove
		s.Require().NoError(json.Unmarshal(data, &back))
		s.Assert().Equal(*move, back)
	}
}

func (s *BattleTestSuite) TestMoveUnknownStrategy() {
	var move combat.CombatMove
	err := json.Unmarshal([]byte(`{"move_id":"m","char_id":"1","strategy":"flee","payload":{}}`), &move)
	s.Assert().Error(err)
}

func (s *BattleTestSuite) TestNewPayload() {
	p, err := combat.NewPayload(combat.StrategyExchange, combat.PayloadInput{TargetID: "2", AbilityID: "power_strike"})
	s.Require().NoError(err)
	s.Assert().Equal(combat.ExchangePayload{TargetID: "2", AbilityID: "power_strike"}, p)

	p, err = combat.NewPayload(combat.StrategyItem, combat.PayloadInput{ItemID: "potion"})
	s.Require().NoError(err)
	s.Assert().Equal("self", p.Target())

	_, err = combat.NewPayload(combat.StrategyExchange, combat.PayloadInput{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = combat.NewPayload(combat.StrategyExchange, combat.PayloadInput{TargetID: "random_enemy"})
	s.Assert().Error(err)

	_, err = combat.NewPayload(combat.StrategyInstant, combat.PayloadInput{TargetID: "2"})
	s.Assert().Error(err)

	_, err = combat.NewPayload("flee", combat.PayloadInput{TargetID: "2"})
	s.Assert().Error(err)
}

func (s *BattleTestSuite) TestSignals() {
	move := &combat.CombatMove{MoveID: "m1", CharID: "2", Payload: combat.ExchangePayload{TargetID: "1"}}

	exact := combat.Signal{MoveID: "m1"}
	s.Assert().True(exact.Matches(move))

	scoped := combat.Signal{MoveID: combat.SignalBatch, CharID: "3"}
	s.Assert().False(scoped.Matches(move))

	all := combat.Signal{MoveID: combat.SignalBatch}
	s.Assert().True(all.Matches(move))

	parsed, err := combat.ParseSignal(scoped.Key())
	s.Require().NoError(err)
	s.Assert().Equal(scoped, parsed)

	_, err = combat.ParseSignal("garbage")
	s.Assert().Error(err)
}
