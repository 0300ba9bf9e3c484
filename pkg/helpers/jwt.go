package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload carried by both access and refresh tokens.
// CrossRef is the opaque string joining the relational identity row to the
// profile document; ProfileID and FriendlyID are derived from the profile.
type SessionClaims struct {
	CrossRef   string `json:"cross_ref"`
	ProfileID  string `json:"profile_id"`
	FriendlyID string `json:"friendly_id"`
	jwt.RegisteredClaims
}

// JWTManager handles generation and validation of session tokens.
// Access and refresh tokens are signed with distinct secrets.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

func (m *JWTManager) GenerateAccessToken(crossRef, profileID, friendlyID string) (string, time.Time, error) {
	return m.generate(crossRef, profileID, friendlyID, m.AccessSecret, m.AccessTTL)
}

func (m *JWTManager) GenerateRefreshToken(crossRef, profileID, friendlyID string) (string, time.Time, error) {
	return m.generate(crossRef, profileID, friendlyID, m.RefreshSecret, m.RefreshTTL)
}

func (m *JWTManager) generate(crossRef, profileID, friendlyID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &SessionClaims{
		CrossRef:   crossRef,
		ProfileID:  profileID,
		FriendlyID: friendlyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*SessionClaims, error) {
	return parseToken(tokenStr, m.AccessSecret)
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (*SessionClaims, error) {
	return parseToken(tokenStr, m.RefreshSecret)
}

func parseToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// IsTokenExpired reports whether a parse failure was caused by expiry alone.
// Only expiry may trigger the silent-refresh path; any other failure
// (bad signature, malformed token) is terminal.
func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
