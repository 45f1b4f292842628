package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSignupCollectsAllViolations(t *testing.T) {
	err := Validate(SignupInput{Username: "ab", Email: "a@x.com", Password: "123"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected errors.Is ErrValidation")
	}
	want := map[string]bool{
		"Username must be at least 3 characters long": false,
		"Password must be at least 6 characters long": false,
	}
	for _, v := range ve.Violations {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for msg, seen := range want {
		if !seen {
			t.Fatalf("missing violation %q in %v", msg, ve.Violations)
		}
	}
}

func TestValidateSignupRules(t *testing.T) {
	cases := []struct {
		name  string
		in    SignupInput
		valid bool
		msg   string
	}{
		{name: "ok", in: SignupInput{Username: "alice_1", Email: "a@x.com", Password: "secret1"}, valid: true},
		{name: "bad chars", in: SignupInput{Username: "al ice", Email: "a@x.com", Password: "secret1"}, msg: "Username can only contain letters, numbers, and underscores"},
		{name: "bad email", in: SignupInput{Username: "alice", Email: "nope", Password: "secret1"}, msg: "Please provide a valid email address"},
		{name: "missing email", in: SignupInput{Username: "alice", Password: "secret1"}, msg: "Email is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, v := range ve.Violations {
				if v == tc.msg {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %q in %v", tc.msg, ve.Violations)
			}
		})
	}
}

func TestSignupNormalize(t *testing.T) {
	in := SignupInput{Username: "  bob ", Email: " Bob@Example.COM ", Password: " pw "}.Normalize()
	if in.Username != "bob" || in.Email != "bob@example.com" || in.Password != " pw " {
		t.Fatalf("unexpected normalization: %+v", in)
	}
}

func TestValidateLogin(t *testing.T) {
	err := Validate(LoginInput{})
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Violations) != 2 {
		t.Fatalf("expected two violations, got %v", err)
	}
}

func TestValidateSignupPasswordByteLimit(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "72 bytes", password: strings.Repeat("p", 72), valid: true},
		{name: "73 bytes", password: strings.Repeat("p", 73)},
		// 30 runes but 90 bytes
		{name: "multibyte", password: strings.Repeat("密", 30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(SignupInput{Username: "alice123", Email: "a@x.com", Password: tc.password})
			if tc.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Violations) != 1 || ve.Violations[0] != "Password must be at most 72 bytes long" {
				t.Fatalf("unexpected violations: %v", ve.Violations)
			}
		})
	}
}
