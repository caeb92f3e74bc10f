// Package errors is the error vocabulary of the combat service.
//
// Every layer returns *Error values carrying a Code (mapped to a gRPC status
// at the handler boundary) and, for combat failures, a Reason:
//
//	err := errors.ActorDead(battleID, actorID)
//	errors.HasReason(err, errors.ReasonActorDead) // true
//	errors.IsFailedPrecondition(err)              // true
//
// Storage failures are wrapped with errors.StoreUnavailable so the worker
// runtime can retry them:
//
//	if err := pipe.Exec(ctx); err != nil {
//	    return errors.StoreUnavailable(err, "failed to commit batch")
//	}
//
// Wrap and Wrapf keep the code and reason of the wrapped error, so a reason
// raised in a repository survives up to the handler:
//
//	if err := repo.RegisterIntent(ctx, input); err != nil {
//	    return nil, errors.Wrapf(err, "failed to register move for %s", input.Move.CharID)
//	}
//
// Handlers finish with ToGRPCError, which renders the reason as a
// "[REASON] message" prefix; FromGRPCError restores it on the client side.
//
// Config and request validation go through the ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("battle_id", input.BattleID, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// Skip reasons recorded on battle log entries (NO_RESOURCE, NO_TARGET,
// CONTROLLED) are outcomes, not errors, and live in the combat entities.
package errors
