package credentials

import (
	"fmt"
	"strings"
)

// Identity error codes reported by the Store.
const (
	CodeInvalidUserName                 = "InvalidUserName"
	CodeDuplicateUserName               = "DuplicateUserName"
	CodeInvalidEmail                    = "InvalidEmail"
	CodeDuplicateEmail                  = "DuplicateEmail"
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
)

type IdentityError struct {
	Code        string
	Description string
}

// IdentityErrors is returned by Store.Create when the user or password is
// rejected. Errors keep the order in which the checks ran.
type IdentityErrors struct {
	Errors []IdentityError
}

func (e *IdentityErrors) Error() string {
	return strings.Join(e.Descriptions(), ", ")
}

func (e *IdentityErrors) Descriptions() []string {
	out := make([]string, 0, len(e.Errors))
	for _, ie := range e.Errors {
		out = append(out, ie.Description)
	}
	return out
}

func (e *IdentityErrors) Has(code string) bool {
	for _, ie := range e.Errors {
		if ie.Code == code {
			return true
		}
	}
	return false
}

func invalidUserName(name string) IdentityError {
	return IdentityError{CodeInvalidUserName, fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", name)}
}

func duplicateUserName(name string) IdentityError {
	return IdentityError{CodeDuplicateUserName, fmt.Sprintf("Username '%s' is already taken.", name)}
}

func invalidEmail(email string) IdentityError {
	return IdentityError{CodeInvalidEmail, fmt.Sprintf("Email '%s' is invalid.", email)}
}

func duplicateEmail(email string) IdentityError {
	return IdentityError{CodeDuplicateEmail, fmt.Sprintf("Email '%s' is already taken.", email)}
}

func passwordTooShort(n int) IdentityError {
	return IdentityError{CodePasswordTooShort, fmt.Sprintf("Passwords must be at least %d characters.", n)}
}

var (
	errRequiresNonAlphanumeric = IdentityError{CodePasswordRequiresNonAlphanumeric, "Passwords must have at least one non alphanumeric character."}
	errRequiresDigit           = IdentityError{CodePasswordRequiresDigit, "Passwords must have at least one digit ('0'-'9')."}
	errRequiresLower           = IdentityError{CodePasswordRequiresLower, "Passwords must have at least one lowercase ('a'-'z')."}
	errRequiresUpper           = IdentityError{CodePasswordRequiresUpper, "Passwords must have at least one uppercase ('A'-'Z')."}
)
