package internaldefs

import (
	authcache "github.com/sweep-team/authcache"
)

// CounterDef binds a core MetricID to its stable exported name.
type CounterDef struct {
	ID   authcache.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram MetricID to its stable exported name.
type HistogramDef struct {
	ID   authcache.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter. Both exporters iterate this
// list so names never drift between them.
var CounterDefs = []CounterDef{
	{ID: authcache.MetricLoginSuccess, Name: "authcache_login_success_total", Help: "Successful login attempts."},
	{ID: authcache.MetricLoginFailure, Name: "authcache_login_failure_total", Help: "Failed login attempts."},
	{ID: authcache.MetricReissueSuccess, Name: "authcache_reissue_success_total", Help: "Successful refresh token rotations."},
	{ID: authcache.MetricReissueFailure, Name: "authcache_reissue_failure_total", Help: "Rejected reissue attempts."},
	{ID: authcache.MetricReplayDetected, Name: "authcache_replay_detected_total", Help: "Reissue attempts presenting a rotated-out refresh token."},
	{ID: authcache.MetricSessionCreated, Name: "authcache_session_created_total", Help: "Session records created by login."},
	{ID: authcache.MetricSessionRevoked, Name: "authcache_session_revoked_total", Help: "Session records removed by logout or account removal."},
	{ID: authcache.MetricLogout, Name: "authcache_logout_total", Help: "Logout operations."},
	{ID: authcache.MetricSignupSuccess, Name: "authcache_signup_success_total", Help: "Created member accounts."},
	{ID: authcache.MetricSignupDuplicate, Name: "authcache_signup_duplicate_total", Help: "Signups rejected for a taken login id."},
	{ID: authcache.MetricAccountRemoved, Name: "authcache_account_removed_total", Help: "Accounts marked deleted."},
	{ID: authcache.MetricPasswordChange, Name: "authcache_password_change_total", Help: "Successful password updates."},
	{ID: authcache.MetricCacheHit, Name: "authcache_cache_hit_total", Help: "Entity cache hits."},
	{ID: authcache.MetricCacheMiss, Name: "authcache_cache_miss_total", Help: "Entity cache misses."},
	{ID: authcache.MetricCacheBypass, Name: "authcache_cache_bypass_total", Help: "Reads served directly from storage because the cache was unavailable."},
	{ID: authcache.MetricCacheEviction, Name: "authcache_cache_eviction_total", Help: "Cache entries evicted after committed writes."},
	{ID: authcache.MetricCacheEvictFailure, Name: "authcache_cache_evict_failure_total", Help: "Evictions that failed after a committed write."},
}

// HistogramDefs enumerates every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authcache.MetricVerifyLatency, Name: "authcache_verify_latency_seconds", Help: "Access token verification latency histogram."},
}

// HistogramBounds are the upper bounds of the core latency buckets, in
// seconds, as Prometheus le label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in OTel
// instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// export formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
