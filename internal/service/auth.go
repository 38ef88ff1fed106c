package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/antojitos/comanda/internal/store"
)

var (
	// ErrInvalidCredentials is deliberately generic: it never reveals
	// whether the account name or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountLockedError rejects a login while the account's lockout window is
// open. RemainingMinutes is the display-adjusted time left (see
// EvaluateLockout).
type AccountLockedError struct {
	RemainingMinutes int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.RemainingMinutes)
}

// AuthService runs the administrator login state machine: lockout
// evaluation, credential verification, failure bookkeeping, and session
// token issuance with refresh detection.
type AuthService struct {
	store      *store.Store
	tokens     *TokenService
	sessionTTL time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewAuthService wires the auth flow. sessionTTL is used for a fresh login;
// refreshTTL replaces it when the client presents a still-valid session
// token for the same account at login time.
func NewAuthService(st *store.Store, tokens *TokenService, sessionTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		store:      st,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the service's clock. Test use only.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login authenticates an administrator and returns a new session token.
// presentedToken is the bearer token from the login request, if any; a
// valid, non-revoked token for the same account turns the login into a
// refresh: the old token is revoked and the new one gets the longer TTL.
//
// Failure returns ErrInvalidCredentials or *AccountLockedError. The lockout
// check runs before the password comparison, so attempts against a blocked
// account never advance the failure counter.
func (s *AuthService) Login(ctx context.Context, accountName, password, presentedToken string) (string, error) {
	admin, err := s.store.GetAdministratorByName(ctx, accountName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup administrator: %w", err)
	}

	now := s.now()
	if d := EvaluateLockout(admin.BlockedUntil, now); d.Blocked {
		return "", &AccountLockedError{RemainingMinutes: d.RemainingMinutes}
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		attempts, blockedUntil := RecordFailure(admin.LoginAttempts, now)
		if err := s.store.UpdateLoginState(ctx, admin.AdminCode, attempts, blockedUntil, now); err != nil {
			return "", fmt.Errorf("record failed attempt: %w", err)
		}
		if blockedUntil != nil {
			d := EvaluateLockout(blockedUntil, now)
			return "", &AccountLockedError{RemainingMinutes: d.RemainingMinutes}
		}
		return "", ErrInvalidCredentials
	}

	// Successful login always resets the failure state.
	if err := s.store.UpdateLoginState(ctx, admin.AdminCode, 0, nil, now); err != nil {
		return "", fmt.Errorf("reset login state: %w", err)
	}

	ttl := s.sessionTTL
	if presentedToken != "" {
		if old, ok := s.refreshableToken(ctx, presentedToken, admin.AdminCode); ok {
			// Revoke the replaced token under its true signed expiry, then
			// hand out the longer-lived replacement.
			if err := s.store.RevokeToken(ctx, presentedToken, old.ExpiresAt.Time); err != nil {
				return "", fmt.Errorf("revoke replaced token: %w", err)
			}
			ttl = s.refreshTTL
		}
	}

	return s.tokens.IssueSessionToken(admin.AdminCode, ttl)
}

// refreshableToken reports whether the presented token is a signature-valid,
// unexpired, non-revoked session token belonging to adminCode.
func (s *AuthService) refreshableToken(ctx context.Context, tokenStr, adminCode string) (*TokenClaims, bool) {
	claims, err := s.tokens.Verify(tokenStr, TokenTypeSession)
	if err != nil || claims.AdminCode != adminCode || claims.ExpiresAt == nil {
		return nil, false
	}
	revoked, err := s.store.IsTokenRevoked(ctx, tokenStr)
	if err != nil || revoked {
		return nil, false
	}
	return claims, true
}

// Logout invalidates a session token by adding it to the revocation ledger.
// The signature is not checked: the token is being thrown away regardless,
// and logging out an already-expired token is a harmless no-op. A token
// without an administrator claim is rejected as malformed.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.tokens.DecodeUnsafe(tokenStr)
	if err != nil {
		return ErrTokenInvalid
	}
	if claims.AdminCode == "" {
		return ErrTokenInvalid
	}
	expiresAt := s.now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.store.RevokeToken(ctx, tokenStr, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
