package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the signature algorithm the codec uses for both
// token kinds.
type SigningMethod string

const (
	// MethodEd25519 signs with an Ed25519 key pair (default).
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

// Kind distinguishes the two token flavors minted by the codec. A refresh
// token presented where an access token is expected (or vice versa) must be
// rejected by the caller.
type Kind string

const (
	// KindAccess marks short-lived per-request credentials.
	KindAccess Kind = "access"
	// KindRefresh marks long-lived rotation credentials.
	KindRefresh Kind = "refresh"
)

// Status is the verification verdict for a presented token string.
type Status int

const (
	// StatusValid means signature, structure, and lifetime all check out.
	StatusValid Status = iota
	// StatusExpired means the token is well-formed and correctly signed but
	// past its expiry. Claims are still returned so callers that only need
	// the subject identity (logout) can proceed.
	StatusExpired
	// StatusMalformed covers everything else: bad signature, wrong
	// algorithm, structural garbage. No claims are returned.
	StatusMalformed
)

// Claims is the payload carried by every minted token: the subject identity
// plus its capability set. Capabilities are an order-irrelevant set of names;
// the codec preserves whatever slice order the caller supplies.
type Claims struct {
	Capabilities []string `json:"cap,omitempty"`
	Kind         Kind     `json:"knd"`
	jwt.RegisteredClaims
}

// Config carries the key material and lifetimes supplied at process start.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Codec mints and verifies signed, time-bound tokens. It holds no mutable
// state and is safe for concurrent use.
type Codec struct {
	config Config
	now    func() time.Time
}

// NewCodec validates the configuration and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Codec{config: cfg, now: time.Now}, nil
}

// WithClock overrides the codec clock. Intended for tests that need to
// simulate TTL expiry without waiting.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// IssueAccess mints a short-lived access token for the subject.
func (c *Codec) IssueAccess(subject string, capabilities []string) (string, error) {
	return c.issue(KindAccess, subject, capabilities, c.config.AccessTTL)
}

// IssueRefresh mints a long-lived refresh token for the subject. Its
// signature alone is not proof of liveness: validity additionally depends on
// matching the session store record.
func (c *Codec) IssueRefresh(subject string, capabilities []string) (string, error) {
	return c.issue(KindRefresh, subject, capabilities, c.config.RefreshTTL)
}

func (c *Codec) issue(kind Kind, subject string, capabilities []string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}

	now := c.now()
	claims := Claims{
		Capabilities: capabilities,
		Kind:         kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti makes every minted token unique, so rotation always
			// changes the stored session value even within one clock tick.
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
		},
	}

	tok := jwt.NewWithClaims(c.getMethod(), claims)

	signKey, err := c.getSignKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Verify checks a presented token string and classifies it. It never returns
// an error value: well-formed-but-expired tokens yield StatusExpired together
// with the parsed claims, and anything failing signature or structural checks
// yields StatusMalformed with nil claims.
func (c *Codec) Verify(tokenStr string) (*Claims, Status) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.getMethod().Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.getVerifyKey()
	})
	if err != nil {
		// The parser verifies the signature before validating lifetimes, so
		// an expiry error implies an otherwise authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) && tok != nil {
			if claims, ok := tok.Claims.(*Claims); ok && claims.Subject != "" {
				return claims, StatusExpired
			}
		}
		return nil, StatusMalformed
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return nil, StatusMalformed
	}

	return claims, StatusValid
}

func (c *Codec) getMethod() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (c *Codec) getSignKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(c.config.PrivateKey)
	}
}

func (c *Codec) getVerifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodHS256:
		return c.config.PrivateKey, nil
	default:
		return parseEdPublicKey(c.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
