// Package auth is the authorization gate: it derives a Principal from a
// request's bearer token and answers the admin/ownership questions every
// mutating operation asks. Token issuance belongs to the identity provider;
// this package only verifies.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated indicates absent or invalid credentials.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// Principal is the authenticated identity plus its group memberships.
type Principal struct {
	SubjectID   string
	DisplayName string
	Groups      []string
}

// InGroup reports whether the principal belongs to the named group.
func (p *Principal) InGroup(group string) bool {
	if p == nil {
		return false
	}
	for _, g := range p.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Capabilities are the per-record flags computed relative to a principal.
// They are never stored.
type Capabilities struct {
	CanEdit   bool
	CanDelete bool
}

// tokenClaims mirrors the identity provider's token payload.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Groups   []string `json:"groups,omitempty"`
}

// Verifier validates bearer tokens and decides capability questions.
type Verifier struct {
	secret     []byte
	adminGroup string
}

// NewVerifier constructs a Verifier for HS256 tokens signed with secret.
// adminGroup is the group name granting admin capability.
func NewVerifier(secret, adminGroup string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: secret cannot be empty")
	}
	if adminGroup == "" {
		adminGroup = "Admin"
	}
	return &Verifier{secret: []byte(secret), adminGroup: adminGroup}, nil
}

// Authenticate extracts and verifies the request's bearer token, producing a
// Principal. It returns ErrUnauthenticated when the Authorization header is
// absent, malformed, or the token fails verification.
func (v *Verifier) Authenticate(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrUnauthenticated
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, ErrUnauthenticated
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	displayName := claims.Username
	if displayName == "" {
		displayName = claims.Email
	}

	return &Principal{
		SubjectID:   claims.Subject,
		DisplayName: displayName,
		Groups:      claims.Groups,
	}, nil
}

// Identify is the anonymous-tolerant variant of Authenticate used by read
// endpoints: absent or invalid credentials yield a nil principal instead of
// an error, so browsing stays open.
func (v *Verifier) Identify(r *http.Request) *Principal {
	p, err := v.Authenticate(r)
	if err != nil {
		return nil
	}
	return p
}

// IsAdmin reports whether the principal carries the admin group.
func (v *Verifier) IsAdmin(p *Principal) bool {
	return p.InGroup(v.adminGroup)
}

// Capabilities computes the edit/delete flags for a record owned by
// authorID relative to the given principal. Anonymous callers get neither.
func (v *Verifier) Capabilities(p *Principal, authorID string) Capabilities {
	if p == nil {
		return Capabilities{}
	}
	canEdit := p.SubjectID == authorID
	return Capabilities{
		CanEdit:   canEdit,
		CanDelete: canEdit || v.IsAdmin(p),
	}
}
