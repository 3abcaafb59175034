package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired reports a token whose embedded expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrMalformed reports a token with a broken structure or signature,
	// or one signed with the wrong key.
	ErrMalformed = errors.New("token malformed")
)

// Config carries the process-wide signing material, loaded once at startup.
// Access and refresh tokens are signed with distinct secrets so that a
// compromise of one key cannot forge tokens of the other kind.
type Config struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
	Issuer        string
	Now           func() time.Time
}

type Claims struct {
	jwt.RegisteredClaims
}

type Signer struct {
	cfg Config
}

func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token: both signing secrets are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: TTLs must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Signer{cfg: cfg}, nil
}

func (s *Signer) IssueAccess(userID int64) (string, error) {
	return s.issue(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

func (s *Signer) IssueRefresh(userID int64) (string, error) {
	return s.issue(userID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// VerifyAccess checks signature and expiry of an access token and returns the
// embedded subject id.
func (s *Signer) VerifyAccess(token string) (int64, error) {
	return s.verify(token, s.cfg.AccessSecret)
}

// VerifyRefresh checks signature and expiry of a refresh token and returns
// the embedded subject id. It does not consult the session store; the caller
// owns the store-existence check.
func (s *Signer) VerifyRefresh(token string) (int64, error) {
	return s.verify(token, s.cfg.RefreshSecret)
}

func (s *Signer) issue(userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := s.cfg.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.cfg.Issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Signer) verify(token string, secret []byte) (int64, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.cfg.Now),
	}
	if s.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.cfg.Issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrMalformed
	}
	if !parsed.Valid {
		return 0, ErrMalformed
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return id, nil
}
