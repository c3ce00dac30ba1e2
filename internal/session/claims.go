package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryHorizon is how close to expiry a token counts as "expiring soon".
const ExpiryHorizon = 5 * time.Minute

// ErrMalformedToken is returned when a credential cannot be decoded into claims.
var ErrMalformedToken = errors.New("malformed token")

// Claims is the subset of the backend token payload the gateway inspects. The signature is
// never verified here; the backend stays the only authority on token validity.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// HasExpiry reports whether the token carried an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

var unverifiedParser = jwt.NewParser()

// DecodeClaims reads the payload segment of a three-part token without verifying it.
func DecodeClaims(token string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var claims Claims
	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: exp: %v", ErrMalformedToken, err)
	}
	if exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	return claims, nil
}

// IsTokenExpiringSoon reports whether token expires within ExpiryHorizon of now. Tokens
// that cannot be decoded, or that carry no exp claim, count as expiring.
func IsTokenExpiringSoon(token string, now time.Time) bool {
	claims, err := DecodeClaims(token)
	if err != nil || !claims.HasExpiry() {
		return true
	}
	return claims.ExpiresAt.Sub(now) < ExpiryHorizon
}
