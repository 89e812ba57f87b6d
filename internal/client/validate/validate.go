// Package validate holds the form field rules. Every function is pure and
// reports the first rule the input breaks.
package validate

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result is the outcome of one field check. ErrorMessage is empty on success.
type Result struct {
	Successful   bool
	ErrorMessage string
}

func ok() Result { return Result{Successful: true} }

func fail(msg string) Result { return Result{ErrorMessage: msg} }

const (
	maxEmailLength = 254
	minNameLength  = 2
	maxNameLength  = 50
	minPassword    = 8
)

// emailPattern is the platform email grammar: a local part of 1-256 allowed
// characters, then a domain of dot-separated labels.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9+._%\-]{1,256}` +
		`@` +
		`[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}` +
		`(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`,
)

var invalidNameSymbol = regexp.MustCompile(`[^a-zA-Z\s0-9]`)

var forbiddenNames = []string{"admin", "root", "null"}

// Email checks an email address.
func Email(email string) Result {
	trimmed := strings.TrimSpace(email)

	switch {
	case trimmed == "":
		return fail("The email can't be blank")
	case utf8.RuneCountInString(trimmed) > maxEmailLength:
		return fail("The email must not exceed 254 characters")
	case !emailPattern.MatchString(trimmed):
		return fail("Please enter a valid email")
	}
	return ok()
}

// Name checks a display name.
func Name(name string) Result {
	trimmed := strings.TrimSpace(name)
	length := utf8.RuneCountInString(trimmed)

	switch {
	case trimmed == "":
		return fail("Name can't be blank or just spaces.")
	case length < minNameLength:
		return fail("The name must be at least 2 characters long")
	case length > maxNameLength:
		return fail("The name must not exceed 50 characters")
	case invalidNameSymbol.MatchString(trimmed):
		return fail("The name must not contain invalid symbols")
	case name != trimmed:
		return fail("The name must not have leading or trailing spaces")
	case slices.Contains(forbiddenNames, strings.ToLower(trimmed)):
		return fail("The name is not allowed")
	case strings.IndexFunc(trimmed, unicode.IsDigit) >= 0:
		return fail("The name must not contain numbers")
	}
	return ok()
}

// Password checks a new or entered password.
func Password(password string) Result {
	if utf8.RuneCountInString(password) < minPassword {
		return fail("Password must be at least 8 characters long")
	}

	hasLetter := strings.IndexFunc(password, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(password, unicode.IsDigit) >= 0
	if !hasLetter || !hasDigit {
		return fail("Password must include a letter and a digit.")
	}
	return ok()
}

// Terms checks that the terms checkbox is ticked.
func Terms(accepted bool) Result {
	if !accepted {
		return fail("Please accept the terms")
	}
	return ok()
}
