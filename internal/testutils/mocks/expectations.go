// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/battle"
	battlemock "github.com/KirkDiggler/rpg-combat/internal/repositories/battle/mock"
	"github.com/KirkDiggler/rpg-combat/internal/testutils"
)

// ExpectGetMeta expects one control record read for the meta's battle.
func ExpectGetMeta(ctx context.Context, repo *battlemock.MockRepository, meta *combat.BattleMeta) *gomock.Call {
	return repo.EXPECT().
		GetMeta(ctx, battle.GetMetaInput{BattleID: meta.BattleID}).
		Return(&battle.GetMetaOutput{Meta: meta}, nil)
}

// ExpectLoadDuel expects a full context load that returns every actor of
// the duel.
func ExpectLoadDuel(ctx context.Context, repo *battlemock.MockRepository, duel *testutils.Duel) *gomock.Call {
	return repo.EXPECT().
		LoadContext(ctx, battle.LoadContextInput{BattleID: duel.Meta.BattleID}).
		Return(&battle.LoadContextOutput{Meta: duel.Meta, Actors: duel.ActorMap()}, nil)
}

// ExpectQueueHead expects a read of the action queue head.
func ExpectQueueHead(ctx context.Context, repo *battlemock.MockRepository, battleID string, limit int, actions ...*combat.CombatAction) *gomock.Call {
	return repo.EXPECT().
		PeekActions(ctx, battle.PeekActionsInput{BattleID: battleID, Limit: limit}).
		Return(&battle.PeekActionsOutput{Actions: actions, Pending: len(actions)}, nil)
}
