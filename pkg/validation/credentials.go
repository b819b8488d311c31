package validation

import (
	"regexp"
	"unicode/utf8"
)

// MinPasswordLength is the only strength rule; no character-class
// requirements exist.
const MinPasswordLength = 6

// emailShape accepts local@domain.tld: exactly one "@", at least one "."
// after it, no "@" inside either segment. Shape only, no deliverability
// check.
var emailShape = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// PasswordAcceptable reports whether the password meets the minimum length.
// The result depends on length alone.
func PasswordAcceptable(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// EmailWellFormed reports whether the address matches the basic
// local@domain.tld shape.
func EmailWellFormed(email string) bool {
	return emailShape.MatchString(email)
}
