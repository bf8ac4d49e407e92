package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/dbx"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	constraintUserName = "users_normalized_username_key"
	constraintEmail    = "users_normalized_email_key"
)

const selectUser = `SELECT id, username, normalized_username, email, normalized_email,
		full_name, password_hash, is_tasker, security_stamp, created_at
	FROM users
	`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user as is; ID, normalized columns and hash must already be set.
// Unique violations are reported as common.ErrorDuplicateUserName or
// common.ErrorDuplicateEmail.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {

	query :=
		`INSERT INTO users (id, username, normalized_username, email, normalized_email,
			full_name, password_hash, is_tasker, security_stamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.NormalizedUserName, user.Email, user.NormalizedEmail,
		user.FullName, user.PasswordHash, user.IsTasker, user.SecurityStamp).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case constraintUserName:
				return common.ErrorDuplicateUserName
			case constraintEmail:
				return common.ErrorDuplicateEmail
			}
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE normalized_email = $1`, models.Normalize(email))
}

func (r *PostgresRepository) GetUserByUserName(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE normalized_username = $1`, models.Normalize(userName))
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.UserName, &user.NormalizedUserName, &user.Email, &user.NormalizedEmail,
		&user.FullName, &user.PasswordHash, &user.IsTasker, &user.SecurityStamp, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
