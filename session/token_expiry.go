package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew treats tokens expiring imminently as already expired, so a
// request does not leave with a token that dies in flight.
const expirySkew = 10 * time.Second

// accessTokenExpired reports whether the access token's exp claim is in the
// past. The token is parsed without signature verification - the backend is
// the authority on validity; this only exists to skip a guaranteed 401
// round-trip. Opaque (non-JWT) tokens and tokens without an exp claim are
// assumed live.
func accessTokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now.Add(expirySkew))
}
