package domain

import "testing"

func TestValidJobType(t *testing.T) {
	tests := []struct {
		name  string
		typ   string
		valid bool
	}{
		{"valid full-time", "Full-time", true},
		{"valid part-time", "Part-time", true},
		{"valid contract", "Contract", true},
		{"valid remote", "Remote", true},
		{"invalid empty", "", false},
		{"invalid unknown", "Internship", false},
		{"invalid lowercase", "contract", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidJobType(tt.typ); got != tt.valid {
				t.Errorf("ValidJobType(%q) = %v, want %v", tt.typ, got, tt.valid)
			}
		})
	}
}

func TestJobPosting(t *testing.T) {
	j := Job{Posted: "2 days ago", PostedAt: "2025-01-01T10:00:00"}
	if got := j.Posting(); got != "2 days ago" {
		t.Errorf("Posting() = %q, want %q", got, "2 days ago")
	}
	j.Posted = ""
	if got := j.Posting(); got != "2025-01-01T10:00:00" {
		t.Errorf("Posting() = %q, want postedAt fallback", got)
	}
}

func TestUserFullName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.io"}, "Ada Lovelace"},
		{User{FirstName: "Ada", Email: "ada@x.io"}, "Ada"},
		{User{LastName: "Lovelace"}, "Lovelace"},
		{User{Email: "ada@x.io"}, "ada@x.io"},
	}
	for _, tt := range tests {
		if got := tt.user.FullName(); got != tt.want {
			t.Errorf("FullName() = %q, want %q", got, tt.want)
		}
	}
}
