package auth

import (
	"strings"
	"unicode"
)

const (
	ErrNameRequired RuleError = "Full name is required."
	ErrNameShort    RuleError = "Enter your first and last name."
	ErrEmailEmpty   RuleError = "Email is required."
	ErrEmailDomain  RuleError = "Must be @mavs.uta.edu or @uta.edu"
)

// DefaultDomains are the email domains accepted for registration.
var DefaultDomains = []string{"@mavs.uta.edu", "@uta.edu"}

// FallbackName greets a user whose name is unknown.
const FallbackName = "Maverick"

// FormatFullName collapses whitespace and capitalizes each word.
func FormatFullName(s string) string {
	parts := strings.Fields(strings.ToLower(s))
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

// ValidateFullName requires at least a first and a last name.
func ValidateFullName(s string) error {
	parts := strings.Fields(s)
	switch {
	case len(parts) == 0:
		return ErrNameRequired
	case len(parts) < 2:
		return ErrNameShort
	}
	return nil
}

// ValidateEmailDomain checks that email ends in one of domains, or in
// DefaultDomains when none are given. Only the part from the last '@' is
// compared, case-insensitively.
func ValidateEmailDomain(email string, domains ...string) error {
	v := strings.ToLower(strings.TrimSpace(email))
	if v == "" {
		return ErrEmailEmpty
	}
	if len(domains) == 0 {
		domains = DefaultDomains
	}
	at := strings.LastIndex(v, "@")
	if at < 0 {
		return ErrEmailDomain
	}
	for _, d := range domains {
		if v[at:] == strings.ToLower(d) {
			return nil
		}
	}
	return ErrEmailDomain
}

// FirstName returns the leading run of ASCII letters of fullName,
// capitalized. "PRAKASH.K" becomes "Prakash".
func FirstName(fullName string) string {
	end := strings.IndexFunc(fullName, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		end = len(fullName)
	}
	return capitalize(strings.ToLower(fullName[:end]))
}

// Greeting is the welcome line shown after a successful card login.
func Greeting(fullName string) string {
	name := FirstName(strings.TrimSpace(fullName))
	if name == "" {
		name = FallbackName
	}
	return "Welcome, " + name + "!"
}

// DisplayName picks the name to show for a user record.
func DisplayName(fullName, email string) string {
	if strings.TrimSpace(fullName) != "" {
		return fullName
	}
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
