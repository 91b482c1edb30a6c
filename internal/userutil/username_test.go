package userutil

import (
	"errors"
	"os/user"
	"testing"
)

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "alice", want: "alice"},
		{name: "domain user", input: "DOMAIN\\user", want: "DOMAIN_user"},
		{name: "email", input: "user@domain.com", want: "user_domain.com"},
		{name: "empty", input: "", want: "unknown"},
		{name: "whitespace", input: "  ", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeUsername(tt.input); got != tt.want {
				t.Fatalf("SanitizeUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCurrentUsername(t *testing.T) {
	origLookup := lookupUserFn
	t.Cleanup(func() { lookupUserFn = origLookup })

	t.Setenv("USERNAME", "unit user!")
	if got := CurrentUsername(); got != "unit_user_" {
		t.Fatalf("CurrentUsername() = %q, want unit_user_", got)
	}

	t.Setenv("USERNAME", "")
	t.Setenv("USER", "fallback")
	if got := CurrentUsername(); got != "fallback" {
		t.Fatalf("CurrentUsername() = %q, want fallback", got)
	}

	t.Setenv("USER", "")
	lookupUserFn = func() (*user.User, error) { return nil, errors.New("no passwd entry") }
	if got := CurrentUsername(); got != "unknown" {
		t.Fatalf("CurrentUsername() = %q, want unknown", got)
	}

	lookupUserFn = func() (*user.User, error) { return &user.User{Username: "acct"}, nil }
	if got := CurrentUsername(); got != "acct" {
		t.Fatalf("CurrentUsername() = %q, want acct", got)
	}
}
