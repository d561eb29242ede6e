package cache

import (
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Cache keys are built here and nowhere else, so every writer and reader
// agrees on eviction targets without coordination. Layout:
//
//	memberCache::<userID>               member read model
//	diaryCache::<diaryID>               single content entity
//	<entity>::q::<hash>                 paged-query signature
const (
	memberKeyPrefix = "memberCache::"
	diaryKeyPrefix  = "diaryCache::"
	querySegment    = "::q::"
)

// MemberKey returns the cache key for a member read model.
func MemberKey(userID string) string {
	return memberKeyPrefix + userID
}

// DiaryKey returns the cache key for a single content entity.
func DiaryKey(diaryID string) string {
	return diaryKeyPrefix + diaryID
}

// QueryKey returns a stable key for a composite query signature: entity name
// plus the ordered query parts (filters, sort, page). Parts are hashed so
// arbitrary user input cannot produce oversized or collision-prone keys.
func QueryKey(entity string, parts ...string) string {
	h := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = h.WriteString("\x1f")
		}
		_, _ = h.WriteString(p)
	}

	var sum [8]byte
	hv := h.Sum64()
	for i := 0; i < 8; i++ {
		sum[i] = byte(hv >> (56 - 8*i))
	}

	var b strings.Builder
	b.Grow(len(entity) + len(querySegment) + hex.EncodedLen(len(sum)))
	b.WriteString(entity)
	b.WriteString(querySegment)
	b.WriteString(hex.EncodeToString(sum[:]))
	return b.String()
}
