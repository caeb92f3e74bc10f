package battle

import "strings"

const battlePrefix = "battle:"

func metaKey(battleID string) string {
	return battlePrefix + battleID + ":meta"
}

func actorKey(battleID, actorID string) string {
	return battlePrefix + battleID + ":actor:" + actorID
}

func intentsKey(battleID, actorID string) string {
	return battlePrefix + battleID + ":intents:" + actorID
}

func targetsKey(battleID, botID string) string {
	return battlePrefix + battleID + ":targets:" + botID
}

func actionsKey(battleID string) string {
	return battlePrefix + battleID + ":actions"
}

func logKey(battleID string) string {
	return battlePrefix + battleID + ":log"
}

func signalsKey(battleID string) string {
	return battlePrefix + battleID + ":signals"
}

func finalizedKey(battleID string) string {
	return battlePrefix + battleID + ":finalized"
}

func announcedKey(battleID string) string {
	return battlePrefix + battleID + ":announced"
}

// battleIDFromMetaKey extracts the battle id of a meta key.
func battleIDFromMetaKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, battlePrefix)
	if !ok {
		return "", false
	}
	return strings.CutSuffix(rest, ":meta")
}

// Intent hashes hold two kinds of fields: the move itself under its id and
// the (strategy, target) slot pointing at the move id.
const (
	moveFieldPrefix = "m:"
	slotFieldPrefix = "s:"
)

func moveField(moveID string) string {
	return moveFieldPrefix + moveID
}

func slotField(dedupeKey string) string {
	return slotFieldPrefix + dedupeKey
}
