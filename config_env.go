package authcache

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type envSpec struct {
	AccessTTL     time.Duration `env:"AUTHCACHE_ACCESS_TTL" envDefault:"30m"`
	RefreshTTL    time.Duration `env:"AUTHCACHE_REFRESH_TTL" envDefault:"168h"`
	SigningMethod string        `env:"AUTHCACHE_SIGNING_METHOD" envDefault:"ed25519"`
	PrivateKey    string        `env:"AUTHCACHE_PRIVATE_KEY"`
	PublicKey     string        `env:"AUTHCACHE_PUBLIC_KEY"`
	Issuer        string        `env:"AUTHCACHE_ISSUER"`
	SessionPrefix string        `env:"AUTHCACHE_SESSION_PREFIX" envDefault:"rtk"`
	CacheTTL      time.Duration `env:"AUTHCACHE_CACHE_TTL" envDefault:"10m"`
	AuditEnabled  bool          `env:"AUTHCACHE_AUDIT_ENABLED" envDefault:"true"`
	Metrics       bool          `env:"AUTHCACHE_METRICS_ENABLED" envDefault:"true"`
}

// ConfigFromEnv builds a Config from AUTHCACHE_* environment variables on
// top of DefaultConfig. Key material is base64 (std encoding).
func ConfigFromEnv() (Config, error) {
	var spec envSpec
	if err := env.Parse(&spec); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := DefaultConfig()
	cfg.JWT.AccessTTL = spec.AccessTTL
	cfg.JWT.RefreshTTL = spec.RefreshTTL
	cfg.JWT.SigningMethod = spec.SigningMethod
	cfg.JWT.Issuer = spec.Issuer
	cfg.Session.RedisPrefix = spec.SessionPrefix
	cfg.Cache.TTL = spec.CacheTTL
	cfg.Audit.Enabled = spec.AuditEnabled
	cfg.Metrics.Enabled = spec.Metrics

	if spec.PrivateKey != "" {
		key, err := base64.StdEncoding.DecodeString(spec.PrivateKey)
		if err != nil {
			return Config{}, fmt.Errorf("decode AUTHCACHE_PRIVATE_KEY: %w", err)
		}
		cfg.JWT.PrivateKey = key
	}
	if spec.PublicKey != "" {
		key, err := base64.StdEncoding.DecodeString(spec.PublicKey)
		if err != nil {
			return Config{}, fmt.Errorf("decode AUTHCACHE_PUBLIC_KEY: %w", err)
		}
		cfg.JWT.PublicKey = key
	}

	return cfg, cfg.Validate()
}
