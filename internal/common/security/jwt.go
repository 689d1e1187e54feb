package security

import (
	"time"

	"gamehub/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed payload identifying a session. Role flags are
// carried for the edge pre-filter only; authorization decisions re-read the
// live user record.
type SessionClaims struct {
	UserID   string
	Username string
	Email    string
	IsAdmin  bool
	IsOwner  bool
}

// TokenCodec signs and verifies session tokens with a process-wide secret.
// The secret is injected once at startup and never mutated.
type TokenCodec struct {
	key []byte
	ttl time.Duration
	ja  *jwtauth.JWTAuth
}

func NewTokenCodec(key []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		key: key,
		ttl: ttl,
		ja:  jwtauth.New("HS256", key, nil),
	}
}

// TTL is the lifetime stamped into issued tokens, also used as the session
// cookie max-age.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

func (c *TokenCodec) Generate(claims SessionClaims) (string, error) {
	now := time.Now()
	_, tokenString, err := c.ja.Encode(jwt.MapClaims{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"email":    claims.Email,
		"is_admin": claims.IsAdmin,
		"is_owner": claims.IsOwner,
		"iat":      now.Unix(),
		"exp":      now.Add(c.ttl).Unix(),
	})
	return tokenString, err
}

// Verify checks signature and expiry and returns the embedded claims.
// Any failure (malformed input, bad signature, elapsed exp) comes back as
// ErrInvalidToken; attacker-controlled tokens must never panic here.
func (c *TokenCodec) Verify(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return c.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, common.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, common.ErrInvalidToken
	}
	userID, ok := mapClaims["user_id"].(string)
	if !ok || userID == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &SessionClaims{UserID: userID}
	claims.Username, _ = mapClaims["username"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	claims.IsAdmin, _ = mapClaims["is_admin"].(bool)
	claims.IsOwner, _ = mapClaims["is_owner"].(bool)
	return claims, nil
}
