package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/dbx"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	query :=
		`SELECT id, name, normalized_name FROM roles
		 WHERE normalized_name = $1
		 `

	role := &models.Role{}
	err := r.db.QueryRowContext(ctx, query, models.Normalize(name)).Scan(&role.ID, &role.Name, &role.NormalizedName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrRoleNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return role, nil
}

// AddUserToRole is a no-op when the membership already exists.
func (r *PostgresRepository) AddUserToRole(ctx context.Context, userID string, roleID int64) error {
	query :=
		`INSERT INTO user_roles (user_id, role_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, role_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	query :=
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return names, nil
}
