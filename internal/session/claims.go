package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campusbuzz/internal/models"
)

// RoleBroadcaster is the role allowed to create announcement posts. Any other
// value, including absence, carries the default capability set.
const RoleBroadcaster = "broadcaster"

// Claims is the identity decoded from the access token payload.
type Claims struct {
	Subject  string
	Role     string
	Username string
	Email    string
	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time
}

// IsBroadcaster reports whether the claims grant announcement posting.
func (c Claims) IsBroadcaster() bool {
	return c.Role == RoleBroadcaster
}

// decodeClaims parses the token payload without verifying the signature; the
// client never holds the signing secret, so validity here means structural
// decodability plus an unexpired (or absent) exp claim.
func decodeClaims(token string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser()
	mapClaims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mapClaims); err != nil {
		return nil, models.NewDecodeError(err)
	}

	claims := &Claims{}

	if exp, err := mapClaims.GetExpirationTime(); err != nil {
		return nil, models.NewDecodeError(err)
	} else if exp != nil {
		if !exp.Time.After(now) {
			return nil, models.NewTokenExpiredError()
		}
		claims.ExpiresAt = exp.Time
	}

	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	claims.Role = stringClaim(mapClaims, "role")
	claims.Username = stringClaim(mapClaims, "username")
	claims.Email = stringClaim(mapClaims, "email")

	return claims, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
