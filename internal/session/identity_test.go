package session

import (
	"encoding/base64"
	"encoding/json"
	"slices"
	"testing"
	"time"
)

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestDecode_RolesList(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
	}{
		{"single", []string{"USER"}},
		{"admin and user", []string{"ADMIN", "USER"}},
		{"empty", []string{}},
		{"unicode", []string{"RÉDACTEUR", "USER"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := makeToken(t, map[string]any{"email": "ada@findy.io", "roles": tt.roles})
			id := Decode(tok)
			if id == nil {
				t.Fatal("Decode() = nil")
			}
			if !slices.Equal(id.Roles, tt.roles) {
				t.Errorf("Roles = %v, want %v", id.Roles, tt.roles)
			}
			if id.Subject != "ada@findy.io" {
				t.Errorf("Subject = %q, want email", id.Subject)
			}
		})
	}
}

func TestDecode_SubjectPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   string
		email  string
	}{
		{"id wins", map[string]any{"id": 42, "userId": 7, "email": "a@b.io", "sub": "s"}, "42", "a@b.io"},
		{"userId next", map[string]any{"userId": "u-7", "email": "a@b.io"}, "u-7", "a@b.io"},
		{"email next", map[string]any{"email": "a@b.io", "sub": "s"}, "a@b.io", "a@b.io"},
		{"sub last", map[string]any{"sub": "a@b.io"}, "a@b.io", "a@b.io"},
		{"large id keeps digits", map[string]any{"id": int64(9007199254740993)}, "9007199254740993", "9007199254740993"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Decode(makeToken(t, tt.claims))
			if id == nil {
				t.Fatal("Decode() = nil")
			}
			if id.Subject != tt.want {
				t.Errorf("Subject = %q, want %q", id.Subject, tt.want)
			}
			if id.Email != tt.email {
				t.Errorf("Email = %q, want %q", id.Email, tt.email)
			}
		})
	}
}

func TestDecode_SingleRole(t *testing.T) {
	id := Decode(makeToken(t, map[string]any{"sub": "x", "role": "ADMIN"}))
	if id == nil {
		t.Fatal("Decode() = nil")
	}
	if !slices.Equal(id.Roles, []string{"ADMIN"}) {
		t.Errorf("Roles = %v, want [ADMIN]", id.Roles)
	}

	id = Decode(makeToken(t, map[string]any{"sub": "x"}))
	if id == nil {
		t.Fatal("Decode() = nil")
	}
	if len(id.Roles) != 0 {
		t.Errorf("Roles = %v, want empty", id.Roles)
	}
}

func TestDecode_Expiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	id := Decode(makeToken(t, map[string]any{"sub": "x", "exp": exp.Unix()}))
	if id == nil {
		t.Fatal("Decode() = nil")
	}
	if !id.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt, exp)
	}
	if id.Expired(exp.Add(-time.Second)) {
		t.Error("Expired() before exp = true")
	}
	if !id.Expired(exp.Add(time.Second)) {
		t.Error("Expired() after exp = false")
	}
}

func TestDecode_PaddedSegment(t *testing.T) {
	payload := base64.URLEncoding.EncodeToString([]byte(`{"sub":"abc"}`))
	id := Decode("h." + payload + ".s")
	if id == nil || id.Subject != "abc" {
		t.Errorf("Decode(padded) = %+v, want subject abc", id)
	}
}

func TestDecode_Malformed(t *testing.T) {
	valid := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x"}`))
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "a." + valid},
		{"four segments", "a." + valid + ".c.d"},
		{"bad base64", "a.!!!.c"},
		{"not json", "a." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".c"},
		{"json array", "a." + base64.RawURLEncoding.EncodeToString([]byte(`["sub"]`)) + ".c"},
		{"json null", "a." + base64.RawURLEncoding.EncodeToString([]byte(`null`)) + ".c"},
		{"no subject", "a." + base64.RawURLEncoding.EncodeToString([]byte(`{"roles":["USER"]}`)) + ".c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id := Decode(tt.token); id != nil {
				t.Errorf("Decode(%q) = %+v, want nil", tt.token, id)
			}
		})
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		roles []string
		admin bool
		user  bool
	}{
		{[]string{"ADMIN"}, true, false},
		{[]string{"USER"}, false, true},
		{[]string{"ROLE_ADMIN", "ROLE_USER"}, true, true},
		{[]string{"admin", "user"}, false, false},
		{nil, false, false},
	}
	for _, tt := range tests {
		id := &Identity{Subject: "x", Roles: tt.roles}
		if got := id.IsAdmin(); got != tt.admin {
			t.Errorf("IsAdmin(%v) = %v, want %v", tt.roles, got, tt.admin)
		}
		if got := id.IsUser(); got != tt.user {
			t.Errorf("IsUser(%v) = %v, want %v", tt.roles, got, tt.user)
		}
	}

	var none *Identity
	if none.IsAdmin() || none.IsUser() {
		t.Error("nil identity should hold no roles")
	}
}
