package users

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeEmailExists        = "email_exists"
	TextCodeTokenExpired       = "token_expired"
	TextCodeTokenMalformed     = "token_malformed"
	TextCodeTokenWrongType     = "token_wrong_type"
	TextCodeIdentityInactive   = "identity_inactive"
	TextCodeValidation         = "validation_failed"
)

// ErrInvalidCredentials is the single error for login failures. Unknown
// email and wrong password both map here so responses cannot be used to
// enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrEmailAlreadyExists is returned when registering an email that is taken.
var ErrEmailAlreadyExists = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)

// ErrTokenExpired is returned when a token's expiry timestamp has elapsed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be decoded or its
// signature does not verify.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenWrongType is returned when a refresh token is presented where an
// access token is required, or vice versa.
var ErrTokenWrongType = errors.New("unexpected token type", errors.CategoryAuth).
	WithTextCode(TextCodeTokenWrongType).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrIdentityInactive is returned when a token resolves to a deactivated
// account.
var ErrIdentityInactive = errors.New("identity is not active", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityInactive).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword mirrors bcrypt's mismatch error. Malformed
// or foreign hashes read as a mismatch too, never as a panic.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = errors.New("password can not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ValidationError builds a field-scoped validation failure, surfaced as a
// 400 with the offending field in the metadata.
func ValidationError(field, reason string) *errors.Error {
	return errors.New(reason, errors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{"field": field})
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field -> message map suitable for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["base"] = err.Error()
	return out
}
