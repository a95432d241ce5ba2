// Package token bridges the User and RefreshToken aggregates to bearer
// token artifacts: signed JWT access tokens and opaque random refresh
// tokens whose hashes are persisted.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sneakerlib/auth-service/internal/domain"
)

const (
	// TypeAccess and TypeRefresh are the values of the "type" claim.
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	// DefaultAccessTokenTTL is used when no TTL override is supplied.
	DefaultAccessTokenTTL = 60 * time.Minute

	refreshTokenBytes = 48
)

// Claims is the decoded payload of an access token.
type Claims struct {
	Subject       string
	Username      string
	Email         string
	Role          string
	EmailVerified bool
	TokenType     string
	JTI           string
	ExpiresAt     time.Time
	IssuedAt      time.Time
	Extra         map[string]any
}

// Service issues and verifies access and refresh tokens. It is safe for
// concurrent use.
type Service struct {
	secret         []byte
	issuer         string
	audience       string
	accessTokenTTL time.Duration
}

// NewService creates a token service signing with a symmetric key.
func NewService(secret, issuer, audience string, accessTokenTTL time.Duration) *Service {
	if accessTokenTTL <= 0 {
		accessTokenTTL = DefaultAccessTokenTTL
	}
	return &Service{
		secret:         []byte(secret),
		issuer:         issuer,
		audience:       audience,
		accessTokenTTL: accessTokenTTL,
	}
}

// CreateAccessToken signs an access token for the user. Extra claims are
// merged into the payload; reserved claim names are not overridable.
func (s *Service) CreateAccessToken(user *domain.User, extra map[string]any) (string, error) {
	return s.createAccessTokenWithTTL(user, extra, s.accessTokenTTL)
}

// CreateAccessTokenWithTTL signs an access token with an explicit lifetime.
func (s *Service) CreateAccessTokenWithTTL(user *domain.User, extra map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.accessTokenTTL
	}
	return s.createAccessTokenWithTTL(user, extra, ttl)
}

func (s *Service) createAccessTokenWithTTL(user *domain.User, extra map[string]any, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = user.ID().String()
	claims["username"] = user.Username().String()
	claims["email"] = user.Email().String()
	claims["role"] = string(user.Role())
	claims["email_verified"] = user.IsEmailVerified()
	claims["type"] = TypeAccess
	claims["iss"] = s.issuer
	claims["aud"] = s.audience
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()
	claims["jti"] = uuid.New().String()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// CreateRefreshToken generates a high-entropy opaque token, wraps it in a
// RefreshToken aggregate and returns both the plaintext (for the caller)
// and the aggregate for persistence. Only the hash is stored.
func (s *Service) CreateRefreshToken(user *domain.User, meta domain.TokenMetadata, rememberMe bool) (string, *domain.RefreshToken, error) {
	plaintext, err := GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	days := domain.DefaultRefreshTokenDays
	if rememberMe {
		days = domain.RememberMeRefreshTokenDays
	}

	entity, err := domain.NewRefreshToken(user.ID(), plaintext, days, meta)
	if err != nil {
		return "", nil, err
	}
	return plaintext, entity, nil
}

// VerifyAccessToken validates signature, expiry and token type, and
// decodes the claims. Expired tokens are distinguished from malformed or
// otherwise invalid ones so callers can decide between re-login and
// silent refresh.
func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.WrapError(domain.KindTokenExpired, err, "access token is expired")
		}
		return nil, domain.WrapError(domain.KindInvalidToken, err, "failed to parse access token")
	}
	if !parsed.Valid {
		return nil, domain.NewError(domain.KindInvalidToken, "access token is invalid")
	}

	raw, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.NewError(domain.KindInvalidToken, "access token has invalid claims")
	}
	if raw["type"] != TypeAccess {
		return nil, domain.NewError(domain.KindInvalidToken, "token is not an access token")
	}

	claims, err := decodeClaims(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RefreshAccessToken issues a new access token from a presented refresh
// token value and its stored aggregate. The stored token must be valid
// and match the presented plaintext.
func (s *Service) RefreshAccessToken(presented string, stored *domain.RefreshToken, user *domain.User) (string, error) {
	if !stored.IsValid() {
		return "", domain.NewError(domain.KindInvalidToken, "refresh token is invalid or expired")
	}
	if !stored.VerifyToken(presented) {
		return "", domain.NewError(domain.KindInvalidToken, "refresh token does not match")
	}
	return s.CreateAccessToken(user, nil)
}

// ExtractUserID verifies an access token and extracts the subject user ID.
// Any underlying failure is surfaced as an invalid-token error.
func (s *Service) ExtractUserID(tokenString string) (domain.UserID, error) {
	claims, err := s.VerifyAccessToken(tokenString)
	if err != nil {
		return domain.UserID{}, domain.WrapError(domain.KindInvalidToken, err, "failed to extract user id from token")
	}
	if claims.Subject == "" {
		return domain.UserID{}, domain.NewError(domain.KindInvalidToken, "token does not contain a user id")
	}
	id, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return domain.UserID{}, domain.WrapError(domain.KindInvalidToken, err, "token subject is not a valid user id")
	}
	return id, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// AccessTokenTTLSeconds returns the access token lifetime in whole seconds.
func (s *Service) AccessTokenTTLSeconds() int {
	return int(s.accessTokenTTL.Seconds())
}

// GenerateSecureToken returns a URL-safe cryptographically random string
// of n source bytes.
func GenerateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

var knownClaims = map[string]struct{}{
	"sub": {}, "username": {}, "email": {}, "role": {}, "email_verified": {},
	"type": {}, "iss": {}, "aud": {}, "iat": {}, "exp": {}, "jti": {},
}

func decodeClaims(raw jwt.MapClaims) (*Claims, error) {
	sub, ok := raw["sub"].(string)
	if !ok {
		return nil, domain.NewError(domain.KindInvalidToken, "token is missing the sub claim")
	}
	exp, ok := raw["exp"].(float64)
	if !ok {
		return nil, domain.NewError(domain.KindInvalidToken, "token is missing the exp claim")
	}
	iat, ok := raw["iat"].(float64)
	if !ok {
		return nil, domain.NewError(domain.KindInvalidToken, "token is missing the iat claim")
	}

	claims := &Claims{
		Subject:   sub,
		ExpiresAt: time.Unix(int64(exp), 0),
		IssuedAt:  time.Unix(int64(iat), 0),
		Extra:     map[string]any{},
	}
	claims.Username, _ = raw["username"].(string)
	claims.Email, _ = raw["email"].(string)
	claims.Role, _ = raw["role"].(string)
	claims.EmailVerified, _ = raw["email_verified"].(bool)
	claims.TokenType, _ = raw["type"].(string)
	claims.JTI, _ = raw["jti"].(string)

	for k, v := range raw {
		if _, known := knownClaims[k]; !known {
			claims.Extra[k] = v
		}
	}
	return claims, nil
}
