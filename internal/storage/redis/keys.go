package redis

import (
	"fmt"

	"github.com/duelhub/duelhub/internal/model"
)

// Key prefix for all duelhub data
const keyPrefix = "duelhub"

// matchRecordKey returns the Redis key for a MatchRecord
func matchRecordKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match_record:%d", keyPrefix, id)
}

// matchIndexKey returns the Redis key for the sorted set of match ids
// (scored by id, so the latest id is one ZRevRange away)
func matchIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}

// accountKey returns the Redis key for an Account
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%d", keyPrefix, id)
}

// accountIndexKey returns the Redis key for the SET of account ids
func accountIndexKey() string {
	return fmt.Sprintf("%s:idx:accounts", keyPrefix)
}

// usageKey returns the Redis key for a participant's usage audit list
func usageKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:usage:%s", keyPrefix, id)
}
