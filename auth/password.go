// Package auth holds the local credential rules the kiosk checks before
// anything is sent to the backend.
package auth

// RuleError is a broken credential rule. Its text is shown as is.
type RuleError string

func (e RuleError) Error() string { return string(e) }

const (
	ErrPasswordShort     RuleError = "Password must be at least 8 characters long."
	ErrPasswordUppercase RuleError = "Password must contain an uppercase letter."
	ErrPasswordDigit     RuleError = "Password must contain a number."
	ErrPasswordSpecial   RuleError = "Password must contain a special character."
	ErrPasswordMismatch  RuleError = "Passwords do not match."
	ErrPasswordRequired  RuleError = "Password required."
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

type rules struct {
	long, upper, digit, special bool
}

func check(p string) rules {
	r := rules{long: len([]rune(p)) >= MinPasswordLength}
	for _, c := range p {
		switch {
		case c >= 'A' && c <= 'Z':
			r.upper = true
		case c >= '0' && c <= '9':
			r.digit = true
		case c >= 'a' && c <= 'z':
		default:
			r.special = true
		}
	}
	return r
}

// ValidatePassword returns the first rule p breaks, or nil.
func ValidatePassword(p string) error {
	if p == "" {
		return ErrPasswordRequired
	}
	r := check(p)
	switch {
	case !r.long:
		return ErrPasswordShort
	case !r.upper:
		return ErrPasswordUppercase
	case !r.digit:
		return ErrPasswordDigit
	case !r.special:
		return ErrPasswordSpecial
	}
	return nil
}

// ConfirmPassword validates p and checks that confirm matches it.
func ConfirmPassword(p, confirm string) error {
	if err := ValidatePassword(p); err != nil {
		return err
	}
	if p != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// Level is a password strength score, one point per satisfied rule.
type Level int

const (
	LevelNone Level = iota
	LevelWeak
	LevelOkay
	LevelGood
	LevelStrong
)

var levelLabels = [...]string{"", "Weak", "Okay", "Good", "Strong"}

func (l Level) String() string {
	if l < LevelNone || l > LevelStrong {
		return ""
	}
	return levelLabels[l]
}

// Strength scores p for the strength meter. Only LevelStrong passes
// ValidatePassword.
func Strength(p string) Level {
	r := check(p)
	var l Level
	for _, ok := range []bool{r.long, r.upper, r.digit, r.special} {
		if ok {
			l++
		}
	}
	return l
}
