package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	ConversationKeyPrefix = "chat:%d:%d"
)

// UserTTL is deliberately short: a cache fill racing a concurrent save can
// store the pre-save record, and the TTL is the bound on how long that stale
// entry survives.
const (
	UserTTL           = 30 * time.Second
	MessageHistoryTTL = 2 * time.Minute
)

// JitterTTL shortens ttl by a random amount of up to 20% so entries cached
// in the same burst do not all expire at once.
func JitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl - time.Duration(rand.Int64N(int64(ttl/5)+1))
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// ConversationKey derives the history cache key for a pair of users. The pair
// is order-normalized so both directions share one entry.
func ConversationKey(userA, userB uint) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf(ConversationKeyPrefix, userA, userB)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateConversation(ctx context.Context, userA, userB uint) {
	Invalidate(ctx, ConversationKey(userA, userB))
}
