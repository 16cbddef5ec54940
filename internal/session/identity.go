// Package session holds the bearer token for the current user and the
// identity derived from it.
package session

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role names carried in the token claims.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Identity is the subject and roles read from a token's claims. It is not
// verified locally: it gates what the terminal shows, while the API enforces
// access on every call.
type Identity struct {
	// Subject keys per-user API calls. It is the numeric user id when the
	// token carries one, otherwise the email.
	Subject   string
	Email     string
	Roles     []string
	ExpiresAt time.Time
}

// HasRole reports whether the identity holds role. Both "ADMIN" and the
// Spring-style "ROLE_ADMIN" count as the ADMIN role; matching is case-sensitive.
func (id *Identity) HasRole(role string) bool {
	if id == nil {
		return false
	}
	return slices.Contains(id.Roles, role) || slices.Contains(id.Roles, "ROLE_"+role)
}

// IsAdmin reports whether the identity holds the ADMIN role.
func (id *Identity) IsAdmin() bool { return id.HasRole(RoleAdmin) }

// IsUser reports whether the identity holds the USER role.
func (id *Identity) IsUser() bool { return id.HasRole(RoleUser) }

// Expired reports whether the token's exp claim is in the past relative to now.
// Tokens without exp never expire locally.
func (id *Identity) Expired(now time.Time) bool {
	return id != nil && !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

var segmentDecoder = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode reads the identity from a JWT-shaped token without verifying its
// signature. It returns nil for anything it cannot decode: wrong segment
// count, bad base64, a payload that is not a JSON object, or claims without
// any subject.
func Decode(token string) *Identity {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	payload, err := segmentDecoder.DecodeSegment(parts[1])
	if err != nil {
		return nil
	}

	var claims jwt.MapClaims
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil || claims == nil {
		return nil
	}

	subject, ok := firstClaim(claims, "id", "userId", "email", "sub")
	if !ok {
		return nil
	}
	email, ok := firstClaim(claims, "email", "sub")
	if !ok {
		email = subject
	}

	id := &Identity{
		Subject: subject,
		Email:   email,
		Roles:   rolesClaim(claims),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id
}

// firstClaim returns the first of keys holding a string or number.
func firstClaim(claims jwt.MapClaims, keys ...string) (string, bool) {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			return v, true
		case json.Number:
			return v.String(), true
		}
	}
	return "", false
}

func rolesClaim(claims jwt.MapClaims) []string {
	if list, ok := claims["roles"].([]any); ok {
		roles := make([]string, 0, len(list))
		for _, r := range list {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	}
	if role, ok := claims["role"].(string); ok {
		return []string{role}
	}
	return []string{}
}
