package auth

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrPasswordRequired},
		{"Ab1!", ErrPasswordShort},
		{"abcdefg1!", ErrPasswordUppercase},
		{"Abcdefgh!", ErrPasswordDigit},
		{"Abcdefg12", ErrPasswordSpecial},
		{"Abcdefg1!", nil},
		{"Pass word9", nil},
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfirmPassword(t *testing.T) {
	if err := ConfirmPassword("Abcdefg1!", "Abcdefg1?"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Expected mismatch, got %v", err)
	}
	if err := ConfirmPassword("short", "short"); !errors.Is(err, ErrPasswordShort) {
		t.Errorf("Expected rule error first, got %v", err)
	}
	if err := ConfirmPassword("Abcdefg1!", "Abcdefg1!"); err != nil {
		t.Errorf("Unexpected error %v", err)
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		in    string
		level Level
		label string
	}{
		{"", LevelNone, ""},
		{"abc", LevelNone, ""},
		{"abcdefgh", LevelWeak, "Weak"},
		{"Abcdefgh", LevelOkay, "Okay"},
		{"Abcdefg1", LevelGood, "Good"},
		{"Abcdefg1!", LevelStrong, "Strong"},
		{"A1!", LevelGood, "Good"},
	}
	for _, tt := range tests {
		got := Strength(tt.in)
		if got != tt.level || got.String() != tt.label {
			t.Errorf("Strength(%q) = %d %q, want %d %q", tt.in, got, got, tt.level, tt.label)
		}
	}
}

func TestValidateEmailDomain(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"sam@mavs.uta.edu", nil},
		{"Prof@UTA.EDU", nil},
		{"  sam@uta.edu ", nil},
		{"sam@gmail.com", ErrEmailDomain},
		{"sam@fake.uta.edu", ErrEmailDomain},
		{"mavs.uta.edu", ErrEmailDomain},
		{"", ErrEmailEmpty},
	}
	for _, tt := range tests {
		if got := ValidateEmailDomain(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("ValidateEmailDomain(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if err := ValidateEmailDomain("a@example.org", "@example.org"); err != nil {
		t.Errorf("Custom domain rejected: %v", err)
	}
}

func TestFormatFullName(t *testing.T) {
	tests := map[string]string{
		"  sam   MAVERICK ": "Sam Maverick",
		"prakash":           "Prakash",
		"":                  "",
		"o'neil smith":      "O'neil Smith",
	}
	for in, want := range tests {
		if got := FormatFullName(in); got != want {
			t.Errorf("FormatFullName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateFullName(t *testing.T) {
	if err := ValidateFullName("  "); !errors.Is(err, ErrNameRequired) {
		t.Errorf("Expected required, got %v", err)
	}
	if err := ValidateFullName("Sam"); !errors.Is(err, ErrNameShort) {
		t.Errorf("Expected short, got %v", err)
	}
	if err := ValidateFullName("Sam Maverick"); err != nil {
		t.Errorf("Unexpected %v", err)
	}
}

func TestGreeting(t *testing.T) {
	tests := map[string]string{
		"PRAKASH KUMAR": "Welcome, Prakash!",
		"jane.doe":      "Welcome, Jane!",
		"":              "Welcome, Maverick!",
		"  ":            "Welcome, Maverick!",
		"3rd Person":    "Welcome, Maverick!",
	}
	for in, want := range tests {
		if got := Greeting(in); got != want {
			t.Errorf("Greeting(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("", "sam@mavs.uta.edu"); got != "sam" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := DisplayName("Sam M", "sam@mavs.uta.edu"); got != "Sam M" {
		t.Errorf("DisplayName = %q", got)
	}
}
