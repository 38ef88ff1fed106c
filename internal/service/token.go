package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type claims. Every gate verifies the embedded type against the type
// it expects; a token of one class must never be accepted where the other is
// required.
const (
	TokenTypeSession = "session"
	TokenTypeOrder   = "order"
)

var (
	// ErrTokenInvalid covers malformed tokens and bad signatures.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the signed expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenTypeMismatch is returned when a structurally valid token
	// carries the wrong type claim for the gate that is checking it.
	ErrTokenTypeMismatch = errors.New("token type mismatch")
)

// TokenClaims is the claim set carried by both token classes. AdminCode is
// only present on session tokens; order tokens are anonymous admission
// passes and carry no subject.
type TokenClaims struct {
	AdminCode string `json:"admin_code,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the two token classes used by the API:
// administrator session tokens and short-lived order-submission tokens.
// The classes are signed with distinct secrets, so a token of one class
// fails signature verification against the other's key in addition to
// failing the type check.
type TokenService struct {
	sessionSecret []byte
	orderSecret   []byte
	orderWindow   time.Duration
	now           func() time.Time
}

// NewTokenService creates a TokenService. orderWindow is the validity of an
// order token, typically a handful of seconds.
func NewTokenService(sessionSecret, orderSecret string, orderWindow time.Duration) *TokenService {
	return &TokenService{
		sessionSecret: []byte(sessionSecret),
		orderSecret:   []byte(orderSecret),
		orderWindow:   orderWindow,
		now:           time.Now,
	}
}

// WithClock overrides the service's clock. Test use only.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// IssueSessionToken signs a session token for the given administrator. The
// caller picks the TTL: the normal session TTL on a first login, the longer
// refresh TTL when replacing a still-valid token.
func (s *TokenService) IssueSessionToken(adminCode string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		AdminCode: adminCode,
		TokenType: TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "comanda",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.sessionSecret)
}

// IssueOrderToken signs an anonymous order-submission token valid for the
// configured window. This is an admission throttle for the public order
// endpoint, not an authentication of identity: anyone holding the token may
// submit until it expires.
func (s *TokenService) IssueOrderToken() (string, error) {
	now := s.now()
	claims := TokenClaims{
		TokenType: TokenTypeOrder,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.orderWindow)),
			Issuer:    "comanda",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.orderSecret)
}

// Verify checks signature, expiry, and the type claim of a token against
// the expected class. The secret is selected by expectedType, so a
// cross-class token fails the signature check before the type comparison
// ever runs.
func (s *TokenService) Verify(tokenStr, expectedType string) (*TokenClaims, error) {
	secret := s.sessionSecret
	if expectedType == TokenTypeOrder {
		secret = s.orderSecret
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != expectedType {
		return nil, ErrTokenTypeMismatch
	}
	return claims, nil
}

// DecodeUnsafe extracts claims without verifying the signature. It exists
// solely so the logout path can read the expiry off a token it is about to
// revoke; it must never feed an authorization decision.
func (s *TokenService) DecodeUnsafe(tokenStr string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
