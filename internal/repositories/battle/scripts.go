package battle

import (
	redis "github.com/redis/go-redis/v9"
)

// registerIntentScript writes an intent into its actor's hash unless the
// (strategy, target) slot is taken.
//
// KEYS[1] intents hash
// ARGV[1] slot field, ARGV[2] move id, ARGV[3] move field, ARGV[4] move json
//
// Returns {move_id, created}.
var registerIntentScript = redis.NewScript(`
local existing = redis.call('HGET', KEYS[1], ARGV[1])
if existing then
  return {existing, 0}
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2], ARGV[3], ARGV[4])
return {ARGV[2], 1}
`)

// transferActionsScript pushes actions, deletes the intents they carry and
// removes the timeout signals the run acted on. Nothing is written unless
// every consumed intent is still pending.
//
// KEYS[1] action list, KEYS[2] signal set, KEYS[3..] intent hashes
// ARGV[1] action count n, ARGV[2] signal count s, ARGV[3..n+2] action json,
// ARGV[n+3..n+s+2] signal members, then one (key index, move id, slot field)
// triple per consumed intent.
//
// Returns the number of intents deleted.
var transferActionsScript = redis.NewScript(`
local n = tonumber(ARGV[1])
local s = tonumber(ARGV[2])
local first = n + s + 3
local i = first
while i <= #ARGV do
  local key = KEYS[tonumber(ARGV[i])]
  if redis.call('HEXISTS', key, 'm:' .. ARGV[i + 1]) == 0 then
    return redis.error_reply('ABORTED intent ' .. ARGV[i + 1] .. ' is no longer pending')
  end
  i = i + 3
end
for j = 3, n + 2 do
  redis.call('RPUSH', KEYS[1], ARGV[j])
end
for j = n + 3, n + s + 2 do
  redis.call('SREM', KEYS[2], ARGV[j])
end
local deleted = 0
i = first
while i <= #ARGV do
  local key = KEYS[tonumber(ARGV[i])]
  deleted = deleted + redis.call('HDEL', key, 'm:' .. ARGV[i + 1])
  if redis.call('HGET', key, ARGV[i + 2]) == ARGV[i + 1] then
    redis.call('HDEL', key, ARGV[i + 2])
  end
  i = i + 3
end
return deleted
`)

// finalizeScript ends an active battle in one step. The stored meta decides:
// a battle whose meta is no longer active is left untouched, whatever the
// finalized marker says.
//
// KEYS[1] finalized marker, KEYS[2] meta, KEYS[3] action list, KEYS[4]
// signal set, KEYS[5] log, KEYS[6..] intent hashes
// ARGV[1] winner, ARGV[2] meta json, ARGV[3] system entry json or ''
//
// Returns 1 when this call ended the battle, 0 when it was already over and
// -1 when the battle does not exist.
var finalizeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[2])
if not raw then
  return -1
end
if cjson.decode(raw).active ~= true then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[3], KEYS[4])
for i = 6, #KEYS do
  redis.call('DEL', KEYS[i])
end
if ARGV[3] ~= '' then
  redis.call('RPUSH', KEYS[5], ARGV[3])
end
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)
