// Package services contains server-side business logic. IdentityService
// registers members and taskers and issues access tokens at login.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/cryptox"
	"github.com/dmitrijs2005/taskerid/internal/dbx"
	"github.com/dmitrijs2005/taskerid/internal/logging"
	"github.com/dmitrijs2005/taskerid/internal/server/auth"
	"github.com/dmitrijs2005/taskerid/internal/server/config"
	"github.com/dmitrijs2005/taskerid/internal/server/credentials"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/repomanager"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TaskerRegisteredMessage is returned by a successful RegisterTasker.
const TaskerRegisteredMessage = "Tasker registered successfully!"

// TokenSigner signs claim sets and verifies the resulting tokens.
type TokenSigner interface {
	Sign(claims auth.Claims, expiresAt time.Time) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// TaskerRegistration is the input of RegisterTasker.
type TaskerRegistration struct {
	UserName         string
	Email            string
	FullName         string
	Password         string
	Skills           []string
	ExperienceLevel  string
	HourlyRate       float64
	SelectedCategory string
	CategoryID       int64
}

// Identity describes the holder of a verified token.
type Identity struct {
	UserID    string
	UserName  string
	Email     string
	TokenID   string
	ExpiresAt time.Time
	Roles     []string
	Profile   *models.TaskerProfile
}

// IdentityService holds only collaborators and immutable settings and is
// safe for concurrent use.
type IdentityService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        cryptox.PasswordHasher
	signer        TokenSigner
	tokenLifetime time.Duration
	logger        logging.Logger
	now           func() time.Time
}

func NewIdentityService(db *sql.DB, rm repomanager.RepositoryManager, hasher cryptox.PasswordHasher,
	signer TokenSigner, cfg *config.Config, logger logging.Logger) *IdentityService {

	return &IdentityService{
		db:            db,
		repomanager:   rm,
		hasher:        hasher,
		signer:        signer,
		tokenLifetime: cfg.AccessTokenValidityDuration,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *IdentityService) store(db dbx.DBTX) *credentials.Store {
	return credentials.NewStore(s.repomanager.Users(db), s.repomanager.Roles(db), s.hasher)
}

// RegisterMember creates a regular member and returns a token for the new
// account.
func (s *IdentityService) RegisterMember(ctx context.Context, fullName, email, userName, password string) (string, error) {
	store := s.store(s.db)

	if err := s.checkDuplicate(ctx, store, email, userName); err != nil {
		return "", err
	}

	user := &models.User{
		FullName:      fullName,
		Email:         email,
		UserName:      userName,
		SecurityStamp: uuid.NewString(),
		IsTasker:      false,
	}

	if err := store.Create(ctx, user, password); err != nil {
		var rejected *credentials.IdentityErrors
		if errors.As(err, &rejected) {
			s.logger.Warn(ctx, "member registration rejected", "username", userName, "reasons", len(rejected.Errors))
			return "", fmt.Errorf("%w: unable to register user %s errors: %s",
				common.ErrRegistrationFailed, userName, FormatErrors(rejected.Descriptions()))
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "member registered", "username", userName, "user_id", user.ID)

	return s.issueToken(ctx, user)
}

// RegisterTasker creates a tasker, grants the MemberTasker role and stores
// the profile in one transaction. No token is issued.
func (s *IdentityService) RegisterTasker(ctx context.Context, r TaskerRegistration) (string, error) {
	if err := s.checkDuplicate(ctx, s.store(s.db), r.Email, r.UserName); err != nil {
		return "", err
	}

	user := &models.User{
		UserName: r.UserName,
		Email:    r.Email,
		FullName: r.FullName,
		IsTasker: true,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := s.store(tx)

		if err := store.Create(ctx, user, r.Password); err != nil {
			var rejected *credentials.IdentityErrors
			if errors.As(err, &rejected) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		if err := store.AddToRole(ctx, user, models.RoleMemberTasker); err != nil {
			return fmt.Errorf("error assigning role: %w", err)
		}

		profile := &models.TaskerProfile{
			UserID:           user.ID,
			Skills:           r.Skills,
			ExperienceLevel:  r.ExperienceLevel,
			HourlyRate:       r.HourlyRate,
			SelectedCategory: r.SelectedCategory,
			CategoryID:       r.CategoryID,
		}
		if err := s.repomanager.TaskerProfiles(tx).Create(ctx, profile); err != nil {
			return fmt.Errorf("error creating tasker profile: %w", err)
		}

		return nil
	})

	if err != nil {
		var rejected *credentials.IdentityErrors
		if errors.As(err, &rejected) {
			s.logger.Warn(ctx, "tasker registration rejected", "username", r.UserName, "reasons", len(rejected.Errors))
			return "", fmt.Errorf("%w: unable to register tasker %s errors: %s",
				common.ErrRegistrationFailed, r.UserName, FormatErrors(rejected.Descriptions()))
		}
		if errors.Is(err, common.ErrorInvalidProfile) {
			s.logger.Warn(ctx, "tasker registration rejected", "username", r.UserName, "error", err)
			return "", fmt.Errorf("%w: unable to register tasker %s: %v",
				common.ErrRegistrationFailed, r.UserName, err)
		}
		s.logger.Error(ctx, "tasker registration failed", "username", r.UserName, "error", err)
		return "", err
	}

	s.logger.Info(ctx, "tasker registered", "username", r.UserName, "user_id", user.ID)

	return TaskerRegisteredMessage, nil
}

// Login accepts a user name or an email. Unknown users and wrong passwords
// fail with the same error.
func (s *IdentityService) Login(ctx context.Context, identifier, password string) (string, error) {
	store := s.store(s.db)

	user, err := store.FindByUsername(ctx, identifier)
	if errors.Is(err, common.ErrorNotFound) {
		user, err = store.FindByEmail(ctx, identifier)
	}

	authFailed := fmt.Errorf("%w: unable to authenticate user %s", common.ErrAuthenticationFailed, identifier)

	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.logger.Info(ctx, "login failed", "identifier", identifier)
		return "", authFailed
	case err != nil:
		return "", fmt.Errorf("error searching user: %w", err)
	}

	ok, err := store.CheckPassword(user, password)
	if err != nil {
		return "", fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		s.logger.Info(ctx, "login failed", "identifier", identifier)
		return "", authFailed
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "login succeeded", "user_id", user.ID)

	return token, nil
}

// issueToken signs an access token for user valid for the configured lifetime.
func (s *IdentityService) issueToken(ctx context.Context, user *models.User) (string, error) {
	now := s.now()
	claims := auth.Claims{
		Name:  user.UserName,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	token, err := s.signer.Sign(claims, now.Add(s.tokenLifetime))
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	s.logger.Debug(ctx, "token issued", "user_id", user.ID, "jti", claims.ID)

	return token, nil
}

// WhoAmI verifies token and describes its holder.
func (s *IdentityService) WhoAmI(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}

	id := &Identity{
		UserID:   claims.Subject,
		UserName: claims.Name,
		Email:    claims.Email,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}

	user := &models.User{ID: claims.Subject}
	if id.Roles, err = s.store(s.db).GetRoles(ctx, user); err != nil {
		return nil, fmt.Errorf("error loading roles: %w", err)
	}

	profile, err := s.repomanager.TaskerProfiles(s.db).GetByUserID(ctx, claims.Subject)
	switch {
	case errors.Is(err, common.ErrorNotFound):
	case err != nil:
		return nil, fmt.Errorf("error loading tasker profile: %w", err)
	default:
		id.Profile = profile
	}

	return id, nil
}

func (s *IdentityService) checkDuplicate(ctx context.Context, store *credentials.Store, email, userName string) error {
	byEmail, err := store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error searching user: %w", err)
	}
	byName, err := store.FindByUsername(ctx, userName)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error searching user: %w", err)
	}

	if byEmail != nil || byName != nil {
		return fmt.Errorf("%w: user with email %s or username %s already exists", common.ErrDuplicateUser, email, userName)
	}
	return nil
}

// FormatErrors joins descriptions with ", " in the order given.
func FormatErrors(descriptions []string) string {
	return strings.Join(descriptions, ", ")
}
