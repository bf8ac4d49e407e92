// Package credentials holds user records on behalf of the identity service:
// validation, password hashing, uniqueness and role membership.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/cryptox"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/roles"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Store validates, hashes and persists users and their role memberships.
type Store struct {
	users     users.Repository
	roles     roles.Repository
	hasher    cryptox.PasswordHasher
	policy    PasswordPolicy
	validator *userValidator
}

type Option func(*Store)

func WithPasswordPolicy(p PasswordPolicy) Option {
	return func(s *Store) { s.policy = p }
}

func WithAllowedUserNameCharacters(chars string) Option {
	return func(s *Store) { s.validator.allowedChars = chars }
}

// NewStore binds a Store to the given repositories. Pass repositories built
// on a transaction to make Create and AddToRole part of it.
func NewStore(u users.Repository, r roles.Repository, hasher cryptox.PasswordHasher, opts ...Option) *Store {
	s := &Store{
		users:     u,
		roles:     r,
		hasher:    hasher,
		policy:    DefaultPasswordPolicy(),
		validator: &userValidator{users: u, allowedChars: AllowedUserNameCharacters},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetUserByEmail(ctx, email)
}

func (s *Store) FindByUsername(ctx context.Context, userName string) (*models.User, error) {
	return s.users.GetUserByUserName(ctx, userName)
}

// Create validates user and password, hashes the password and inserts the
// user. A rejection is returned as *IdentityErrors; anything else is an
// infrastructure failure.
func (s *Store) Create(ctx context.Context, user *models.User, password string) error {
	errs, err := s.validator.validate(ctx, user)
	if err != nil {
		return fmt.Errorf("validate user: %w", err)
	}
	errs = append(errs, s.policy.Validate(password)...)
	if len(errs) > 0 {
		return &IdentityErrors{Errors: errs}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.SecurityStamp == "" {
		user.SecurityStamp = uuid.NewString()
	}
	user.NormalizedUserName = models.Normalize(user.UserName)
	user.NormalizedEmail = models.Normalize(user.Email)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	err = s.users.Create(ctx, user)
	switch {
	case errors.Is(err, common.ErrorDuplicateUserName):
		return &IdentityErrors{Errors: []IdentityError{duplicateUserName(user.UserName)}}
	case errors.Is(err, common.ErrorDuplicateEmail):
		return &IdentityErrors{Errors: []IdentityError{duplicateEmail(user.Email)}}
	case err != nil:
		return err
	}

	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *Store) CheckPassword(user *models.User, password string) (bool, error) {
	if user == nil || user.PasswordHash == "" {
		return false, nil
	}
	return s.hasher.Verify(password, user.PasswordHash)
}

// AddToRole is a no-op when user already has the role.
func (s *Store) AddToRole(ctx context.Context, user *models.User, roleName string) error {
	role, err := s.roles.FindByName(ctx, roleName)
	if errors.Is(err, common.ErrRoleNotFound) {
		return fmt.Errorf("%w: role %s does not exist", common.ErrRoleNotFound, strings.ToUpper(roleName))
	}
	if err != nil {
		return err
	}
	return s.roles.AddUserToRole(ctx, user.ID, role.ID)
}

func (s *Store) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	return s.roles.GetUserRoles(ctx, user.ID)
}
