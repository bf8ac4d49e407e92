package taskerprofiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/dbx"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	checkViolation = "23514"

	constraintHourlyRate = "tasker_profiles_hourly_rate_check"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores the profile fields verbatim. Skills keep their order.
func (r *PostgresRepository) Create(ctx context.Context, p *models.TaskerProfile) error {

	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}

	query :=
		`INSERT INTO tasker_profiles (user_id, skills, experience_level, hourly_rate, selected_category, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		p.UserID, string(raw), p.ExperienceLevel, p.HourlyRate, p.SelectedCategory, p.CategoryID).
		Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == checkViolation && pgErr.ConstraintName == constraintHourlyRate {
			return fmt.Errorf("%w: hourly rate must not be negative", common.ErrorInvalidProfile)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.TaskerProfile, error) {
	query :=
		`SELECT id, user_id, skills, experience_level, hourly_rate, selected_category, category_id, created_at
		 FROM tasker_profiles
		 WHERE user_id = $1
		 `

	p := &models.TaskerProfile{}
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &raw, &p.ExperienceLevel, &p.HourlyRate, &p.SelectedCategory, &p.CategoryID, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(raw, &p.Skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}

	return p, nil
}
