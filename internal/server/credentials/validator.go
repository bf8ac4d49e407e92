package credentials

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/users"
)

// AllowedUserNameCharacters is the default set of characters a user name may contain.
const AllowedUserNameCharacters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

type PasswordPolicy struct {
	RequiredLength         int
	RequireNonAlphanumeric bool
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		RequiredLength:         6,
		RequireNonAlphanumeric: true,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
	}
}

// Validate returns every rule the password breaks, in a fixed order.
func (p PasswordPolicy) Validate(password string) []IdentityError {
	var errs []IdentityError

	if utf8.RuneCountInString(password) < p.RequiredLength {
		errs = append(errs, passwordTooShort(p.RequiredLength))
	}

	var hasNonAlnum, hasDigit, hasLower, hasUpper bool
	for _, c := range password {
		switch {
		case isDigit(c):
			hasDigit = true
		case isLower(c):
			hasLower = true
		case isUpper(c):
			hasUpper = true
		default:
			hasNonAlnum = true
		}
	}

	if p.RequireNonAlphanumeric && !hasNonAlnum {
		errs = append(errs, errRequiresNonAlphanumeric)
	}
	if p.RequireDigit && !hasDigit {
		errs = append(errs, errRequiresDigit)
	}
	if p.RequireLowercase && !hasLower {
		errs = append(errs, errRequiresLower)
	}
	if p.RequireUppercase && !hasUpper {
		errs = append(errs, errRequiresUpper)
	}

	return errs
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }
func isLower(c rune) bool { return c >= 'a' && c <= 'z' }
func isUpper(c rune) bool { return c >= 'A' && c <= 'Z' }

type userValidator struct {
	users        users.Repository
	allowedChars string
}

// validate checks user name then email. Lookup failures other than
// not-found are returned as err.
func (v *userValidator) validate(ctx context.Context, u *models.User) ([]IdentityError, error) {
	var errs []IdentityError

	switch {
	case strings.TrimSpace(u.UserName) == "":
		errs = append(errs, invalidUserName(u.UserName))
	case strings.ContainsFunc(u.UserName, func(r rune) bool { return !strings.ContainsRune(v.allowedChars, r) }):
		errs = append(errs, invalidUserName(u.UserName))
	default:
		taken, err := v.taken(ctx, u, v.users.GetUserByUserName, u.UserName)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, duplicateUserName(u.UserName))
		}
	}

	switch {
	case !validEmail(u.Email):
		errs = append(errs, invalidEmail(u.Email))
	default:
		taken, err := v.taken(ctx, u, v.users.GetUserByEmail, u.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, duplicateEmail(u.Email))
		}
	}

	return errs, nil
}

func (v *userValidator) taken(ctx context.Context, u *models.User,
	find func(context.Context, string) (*models.User, error), key string) (bool, error) {

	owner, err := find(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner.ID != u.ID, nil
}

// validEmail accepts a bare RFC 5322 address with no display name.
func validEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == email
}
