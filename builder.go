package authcache

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweep-team/authcache/cache"
	"github.com/sweep-team/authcache/password"
	"github.com/sweep-team/authcache/session"
	"github.com/sweep-team/authcache/token"
)

// Builder assembles an Engine from its dependencies. Configure it during
// initialization, call Build once, and treat the resulting Engine as
// immutable.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	memberProvider MemberProvider
	auditSink      AuditSink
	clock          func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig. Key material and the
// member provider must still be supplied before Build.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing both the session store and the
// entity cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithMemberProvider sets the authoritative member backend.
func (b *Builder) WithMemberProvider(mp MemberProvider) *Builder {
	b.memberProvider = mp
	return b
}

// WithAuditSink sets the sink receiving audit events. Without one, events
// are dropped by a NoOpSink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify-latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the engine's time source. Tests use this to move
// tokens past their expiry without sleeping.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration, wires all subsystems, and returns the
// Engine. A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.memberProvider == nil {
		return nil, errors.New("member provider required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:         cfg,
		memberProvider: b.memberProvider,
	}

	engine.metrics = NewMetrics(cfg.Metrics)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	codec, err := token.NewCodec(token.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: token.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}
	if b.clock != nil {
		codec = codec.WithClock(b.clock)
	}
	engine.codec = codec

	engine.sessions = session.NewStore(b.redis, cfg.Session.RedisPrefix)

	cacheStore := cache.NewStore(b.redis)
	engine.cache = cache.NewCoordinator(cacheStore, cfg.Cache.TTL, cache.Observer{
		OnHit:  func(string) { engine.metricInc(MetricCacheHit) },
		OnMiss: func(string) { engine.metricInc(MetricCacheMiss) },
		OnBypass: func(string) {
			engine.metricInc(MetricCacheBypass)
		},
		OnEviction: func(string) { engine.metricInc(MetricCacheEviction) },
		OnEvictFailure: func(key string, err error) {
			engine.metricInc(MetricCacheEvictFailure)
			engine.emitAudit(nil, AuditEvent{
				EventType: auditEventCacheEvictFailure,
				CacheKey:  key,
				Success:   false,
				Error:     err.Error(),
			})
		},
	})

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = hasher

	b.built = true

	return engine, nil
}
