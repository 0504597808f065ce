package users

import (
	"errors"
	"fmt"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// PasswordPolicy is the pluggable strength check applied at registration and
// password change. The ruleset is a configuration detail, not a hard
// invariant; override any field or replace the policy wholesale.
type PasswordPolicy struct {
	MinLength      int
	MaxLength      int
	RequireLetter  bool
	RequireDigit   bool
	RequireUpper   bool
	RequireSpecial bool
}

// DefaultPasswordPolicy requires 8-128 characters with at least one letter
// and one digit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     8,
		MaxLength:     128,
		RequireLetter: true,
		RequireDigit:  true,
	}
}

// Validate reports the first rule the password breaks, nil if it passes.
func (p PasswordPolicy) Validate(password string) error {
	runes := []rune(password)

	if p.MinLength > 0 && len(runes) < p.MinLength {
		return fmt.Errorf("must be at least %d characters long", p.MinLength)
	}

	if p.MaxLength > 0 && len(runes) > p.MaxLength {
		return fmt.Errorf("must be at most %d characters long", p.MaxLength)
	}

	var hasLetter, hasDigit, hasUpper, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
			if unicode.IsUpper(r) {
				hasUpper = true
			}
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if p.RequireLetter && !hasLetter {
		return errors.New("must contain at least one letter")
	}

	if p.RequireDigit && !hasDigit {
		return errors.New("must contain at least one digit")
	}

	if p.RequireUpper && !hasUpper {
		return errors.New("must contain at least one uppercase letter")
	}

	if p.RequireSpecial && !hasSpecial {
		return errors.New("must contain at least one special character")
	}

	return nil
}

// Rule adapts the policy to an ozzo validation rule so payloads can embed
// it in their Validate methods.
func (p PasswordPolicy) Rule() validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		return p.Validate(s)
	})
}
