package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/google/uuid"
)

const (
	maxNameLen        = 100
	maxEmailLen       = 256
	minTitleLen       = 3
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxMediaURLLen    = 500
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if len(email) > maxEmailLen {
		return invalid("email must be at most %d characters", maxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email is not a valid address")
	}
	return nil
}

func validateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		if min == 1 {
			return invalid("%s is required", field)
		}
		return invalid("%s must be at least %d characters", field, min)
	}
	if n > max {
		return invalid("%s must be at most %d characters", field, max)
	}
	return nil
}

// checkID maps malformed identifiers to ErrorNotFound so that they never
// reach the database as a type error. Only the canonical hyphenated form is
// accepted; uuid.Parse alone also takes urn:uuid: and braced forms.
func checkID(id string) error {
	if len(id) != 36 {
		return common.ErrorNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

func trim(s string) string { return strings.TrimSpace(s) }
