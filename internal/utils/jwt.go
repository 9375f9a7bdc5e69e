package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrTokenConfig is returned when a token is requested but no signing
// secret has been configured.  This is a process misconfiguration and
// callers should treat it as fatal rather than retry.
var ErrTokenConfig = errors.New("jwt signing secret is not configured")

// ErrInvalidToken is returned for any token that fails validation:
// bad signature, unexpected algorithm, malformed or missing claims, or
// expiry in the past.  Callers translate it into an unauthenticated
// response without exposing which check failed.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its
// expiry.  Tokens are stateless: validity is purely a function of the
// signature and the exp claim, and there is no revocation list.  A
// leaked token therefore stays valid until it expires naturally.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for an identity.  It
// takes the signing secret, the subject ID, the subject's role, any
// extra claims, and a TTL in minutes.  The JWT includes the standard
// claims subject (sub), role, expiration (exp) and issued at (iat);
// extra claims may not override those four.  Every service validating
// tokens must share the same secret and algorithm.
func NewAccessToken(secret string, subjectID uint64, role string, extra map[string]any, ttlMin int) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, ErrTokenConfig
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subjectID
	claims["role"] = role
	claims["exp"] = exp.Unix()
	claims["iat"] = now.Unix()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ValidateAccessToken verifies the signature and expiry of a raw token
// string and extracts the subject ID and role.  Validation is a pure
// function of the token and the shared secret; no store access is
// involved.  Any failure is reported as ErrInvalidToken.
func ValidateAccessToken(secret, raw string) (uint64, string, error) {
	if secret == "" {
		return 0, "", ErrTokenConfig
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC; a token signed
		// with "none" or an asymmetric key must not pass.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	sub, ok := subjectFromClaims(claims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return 0, "", ErrInvalidToken
	}
	return sub, role, nil
}

// subjectFromClaims extracts the numeric subject from the sub claim.
// JSON numbers decode as float64; string subjects from older issuers
// are parsed as well.
func subjectFromClaims(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
