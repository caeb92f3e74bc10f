package errors

// Reason classifies failures of the combat pipeline. Reasons ride on an Error
// next to its Code so callers can branch on the combat meaning while gRPC
// still gets a sensible status.
type Reason string

const (
	ReasonInvalidBattle        Reason = "INVALID_BATTLE"
	ReasonBattleEnded          Reason = "BATTLE_ENDED"
	ReasonActorDead            Reason = "ACTOR_DEAD"
	ReasonStoreUnavailable     Reason = "DATA_STORE_UNAVAILABLE"
	ReasonConsistencyViolation Reason = "CONSISTENCY_VIOLATION"
)

// InvalidBattle reports a battle id with no metadata in the hot cache.
func InvalidBattle(battleID string) *Error {
	return NotFoundf("battle %s not found", battleID).
		WithReason(ReasonInvalidBattle).
		WithMeta("battle_id", battleID)
}

// BattleEnded reports an intent submitted to a finalized battle.
func BattleEnded(battleID string) *Error {
	return FailedPreconditionf("battle %s has ended", battleID).
		WithReason(ReasonBattleEnded).
		WithMeta("battle_id", battleID)
}

// ActorDead reports an intent from an actor that is dead or not in the battle.
func ActorDead(battleID, actorID string) *Error {
	return FailedPreconditionf("actor %s cannot act in battle %s", actorID, battleID).
		WithReason(ReasonActorDead).
		WithMeta("battle_id", battleID).
		WithMeta("actor_id", actorID)
}

// StoreUnavailable wraps a cache or durable store failure.
func StoreUnavailable(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return WrapWithCode(err, CodeUnavailable, message).WithReason(ReasonStoreUnavailable)
}

// ConsistencyViolationf reports a broken snapshot invariant. It is fatal for
// the battle.
func ConsistencyViolationf(format string, args ...interface{}) *Error {
	return DataLossf(format, args...).WithReason(ReasonConsistencyViolation)
}
