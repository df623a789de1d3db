package token

import (
	"time"

	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/users"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind distinguishes access tokens from refresh tokens. Access tokens carry
// no kind claim on the wire; refresh tokens are marked explicitly.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Refresh token lifetime is fixed; only the access expiry is configurable.
const refreshTokenExpiry = 7 * 24 * time.Hour

const defaultAccessExpiry = 24 * time.Hour

// Payload is the identity a verified token proves.
type Payload struct {
	UserID    string
	Email     string
	Role      users.RoleType
	CompanyID string
	Kind      Kind
}

type claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// Issuer mints and verifies signed bearer tokens. It never persists them:
// refresh-token validity lives in the session store.
type Issuer struct {
	secret        []byte
	refreshSecret []byte
	issuerName    string
	accessExpiry  time.Duration
	nowFunc       func() time.Time
}

type IssuerOption func(*Issuer)

func WithAccessExpiry(expiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		if expiry > 0 {
			i.accessExpiry = expiry
		}
	}
}

// WithRefreshSecret sets a distinct signing secret for refresh tokens.
// Without it, refresh tokens fall back to the access-token secret.
func WithRefreshSecret(secret string) IssuerOption {
	return func(i *Issuer) {
		if secret != "" {
			i.refreshSecret = []byte(secret)
		}
	}
}

func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		i.issuerName = name
	}
}

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func New(secret string, options ...IssuerOption) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("[token.New] signing secret is required")
	}

	issuer := &Issuer{
		secret:       []byte(secret),
		accessExpiry: defaultAccessExpiry,
		nowFunc:      time.Now,
	}
	for _, opt := range options {
		opt(issuer)
	}

	if issuer.refreshSecret == nil {
		issuer.refreshSecret = issuer.secret
	}
	return issuer, nil
}

// IssueAccess mints a signed access token carrying the user's role and
// company id.
func (i *Issuer) IssueAccess(payload Payload) (string, error) {
	return i.sign(payload, KindAccess, i.accessExpiry, i.secret)
}

// IssueRefresh mints a signed refresh token with the kind marker set. The
// 7-day expiry is an upper bound; rotation through the session store usually
// retires a refresh token long before its signature expires.
func (i *Issuer) IssueRefresh(payload Payload) (string, error) {
	return i.sign(payload, KindRefresh, refreshTokenExpiry, i.refreshSecret)
}

func (i *Issuer) sign(payload Payload, kind Kind, expiry time.Duration, secret []byte) (string, error) {
	now := i.nowFunc()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuerName,
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
		Email:     payload.Email,
		Role:      string(payload.Role),
		CompanyID: payload.CompanyID,
	}
	if kind == KindRefresh {
		c.Kind = string(KindRefresh)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.sign] SignedString")
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the payload. The expected
// kind selects the verification secret; a well-signed token of the wrong
// kind fails with ErrTokenKindMismatch.
func (i *Issuer) Verify(raw string, expected Kind) (*Payload, error) {
	secret := i.secret
	if expected == KindRefresh {
		secret = i.refreshSecret
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.ErrTokenExpired
		}
		return nil, errs.ErrTokenMalformed
	}

	kind := Kind(c.Kind)
	if kind == "" {
		kind = KindAccess
	}
	if kind != expected {
		return nil, errs.ErrTokenKindMismatch
	}

	return &Payload{
		UserID:    c.Subject,
		Email:     c.Email,
		Role:      users.RoleType(c.Role),
		CompanyID: c.CompanyID,
		Kind:      kind,
	}, nil
}

// AccessExpiry exposes the configured access-token lifetime (for response
// metadata).
func (i *Issuer) AccessExpiry() time.Duration {
	return i.accessExpiry
}
