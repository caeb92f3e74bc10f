// Package v1alpha1 handles the combat grpc service interface
package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/turn"
)

// HandlerConfig holds dependencies for the combat handler
type HandlerConfig struct {
	TurnService turn.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c.TurnService == nil {
		return errors.InvalidArgument("turn service is required")
	}
	return nil
}

// Handler implements CombatServiceServer
type Handler struct {
	turnService turn.Service
}

var _ CombatServiceServer = (*Handler)(nil)

// NewHandler creates a new combat handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Handler{turnService: cfg.TurnService}, nil
}

// SubmitMove registers an intent for an actor
func (h *Handler) SubmitMove(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in SubmitMoveRequest
	if err := Decode(req, &in); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.turnService.RegisterMove(ctx, &turn.RegisterMoveInput{
		BattleID: in.BattleID,
		CharID:   string(in.ActorID),
		Strategy: combat.Strategy(in.Strategy),
		Payload:  in.Payload,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return respond(&SubmitMoveResponse{MoveID: out.MoveID, Duplicate: !out.Created})
}

// BattleView returns a snapshot, a log page or a history page
func (h *Handler) BattleView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in BattleViewRequest
	if err := Decode(req, &in); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if in.View == "" {
		in.View = string(turn.ViewSnapshot)
	}

	out, err := h.turnService.GetBattleView(ctx, &turn.GetBattleViewInput{
		BattleID: in.BattleID,
		View:     turn.View(in.View),
		Page:     in.Page,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	resp := &BattleViewResponse{
		Meta:    out.Meta,
		Actors:  out.Actors,
		Entries: out.Entries,
		Total:   out.Total,
		Page:    out.Page,
	}
	if out.Summary != nil {
		resp.Meta = out.Summary.Meta
		finished := out.Summary.FinishedAt.UTC()
		resp.FinishedAt = &finished
	}
	return respond(resp)
}

// CreateBattle seeds a new battle
func (h *Handler) CreateBattle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in CreateBattleRequest
	if err := Decode(req, &in); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.turnService.CreateBattle(ctx, &turn.CreateBattleInput{
		Meta:    in.Meta,
		Actors:  in.Actors,
		Targets: in.Targets,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return respond(&CreateBattleResponse{BattleID: out.BattleID})
}

func respond(v any) (*structpb.Struct, error) {
	out, err := Encode(v)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return out, nil
}
