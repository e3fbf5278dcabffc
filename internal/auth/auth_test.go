package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func mintToken(t *testing.T, secret string, sub, username, email string, groups []string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	if username != "" {
		claims["username"] = username
	}
	if email != "" {
		claims["email"] = email
	}
	if groups != nil {
		claims["groups"] = groups
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret, "Admin")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestAuthenticate(t *testing.T) {
	v := newTestVerifier(t)

	req := httptest.NewRequest("GET", "/movies", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, "user-1", "alice", "alice@example.com", []string{"Admin"}, time.Hour))

	p, err := v.Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.SubjectID != "user-1" {
		t.Fatalf("SubjectID = %s, want user-1", p.SubjectID)
	}
	if p.DisplayName != "alice" {
		t.Fatalf("DisplayName = %s, want alice", p.DisplayName)
	}
	if !v.IsAdmin(p) {
		t.Fatalf("expected admin principal")
	}
}

func TestAuthenticateDisplayNameFallsBackToEmail(t *testing.T) {
	v := newTestVerifier(t)

	req := httptest.NewRequest("GET", "/movies", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, "user-2", "", "bob@example.com", nil, time.Hour))

	p, err := v.Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.DisplayName != "bob@example.com" {
		t.Fatalf("DisplayName = %s, want bob@example.com", p.DisplayName)
	}
	if v.IsAdmin(p) {
		t.Fatalf("principal without groups must not be admin")
	}
}

func TestAuthenticateRejections(t *testing.T) {
	v := newTestVerifier(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + mintToken(t, "another-secret-another-secret!!", "user-1", "alice", "", nil, time.Hour)},
		{"expired", "Bearer " + mintToken(t, testSecret, "user-1", "alice", "", nil, -time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/movies", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if _, err := v.Authenticate(req); err != ErrUnauthenticated {
				t.Fatalf("Authenticate error = %v, want ErrUnauthenticated", err)
			}
			if p := v.Identify(req); p != nil {
				t.Fatalf("Identify = %+v, want nil for invalid credentials", p)
			}
		})
	}
}

func TestCapabilities(t *testing.T) {
	v := newTestVerifier(t)

	author := &Principal{SubjectID: "user-1"}
	stranger := &Principal{SubjectID: "user-2"}
	admin := &Principal{SubjectID: "user-3", Groups: []string{"Admin"}}

	tests := []struct {
		name      string
		principal *Principal
		canEdit   bool
		canDelete bool
	}{
		{"anonymous", nil, false, false},
		{"author", author, true, true},
		{"stranger", stranger, false, false},
		{"admin", admin, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := v.Capabilities(tt.principal, "user-1")
			if caps.CanEdit != tt.canEdit || caps.CanDelete != tt.canDelete {
				t.Fatalf("Capabilities = %+v, want edit=%v delete=%v", caps, tt.canEdit, tt.canDelete)
			}
		})
	}
}
