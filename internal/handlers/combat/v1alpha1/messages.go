package v1alpha1

import (
	"bytes"
	"encoding/json"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// ActorID accepts an actor id sent as a JSON string or number
type ActorID string

// UnmarshalJSON implements json.Unmarshaler
func (a *ActorID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = ActorID(s)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return errors.InvalidArgumentf("actor_id must be a string or an integer")
	}
	*a = ActorID(n.String())
	return nil
}

// SubmitMoveRequest submits one intent
type SubmitMoveRequest struct {
	BattleID string              `json:"battle_id"`
	ActorID  ActorID             `json:"actor_id"`
	Strategy string              `json:"strategy"`
	Payload  combat.PayloadInput `json:"payload"`
}

// SubmitMoveResponse carries the move id. Duplicate is set when an identical
// intent was already pending and its id is returned.
type SubmitMoveResponse struct {
	MoveID    string `json:"move_id"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// BattleViewRequest reads a battle
type BattleViewRequest struct {
	BattleID string `json:"battle_id"`
	View     string `json:"view"`
	Page     int    `json:"page,omitempty"`
}

// BattleViewResponse is the union of the snapshot, log and history views
type BattleViewResponse struct {
	Meta       *combat.BattleMeta   `json:"meta,omitempty"`
	Actors     []combat.PublicActor `json:"actors,omitempty"`
	Entries    []*combat.LogEntry   `json:"entries,omitempty"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}

// CreateBattleRequest seeds a battle
type CreateBattleRequest struct {
	Meta    *combat.BattleMeta      `json:"meta"`
	Actors  []*combat.ActorSnapshot `json:"actors"`
	Targets map[string][]string     `json:"targets,omitempty"`
}

// CreateBattleResponse names the created battle
type CreateBattleResponse struct {
	BattleID string `json:"battle_id"`
}

// Decode fills v from a structpb document
func Decode(in *structpb.Struct, v any) error {
	if in == nil {
		return errors.InvalidArgument("request is required")
	}
	data, err := in.MarshalJSON()
	if err != nil {
		return errors.InvalidArgumentf("unreadable request: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.InvalidArgumentf("malformed request: %v", err)
	}
	return nil
}

// Encode converts v to a structpb document
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to reshape message")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build struct")
	}
	return out, nil
}
