package roles

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	findQ  = `(?s)^SELECT\s+id,\s*name,\s*normalized_name\s+FROM\s+roles\s+WHERE\s+normalized_name\s*=\s*\$1\s*$`
	addQ   = `(?s)^INSERT\s+INTO\s+user_roles\s*\(user_id,\s*role_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT.*DO\s+NOTHING\s*$`
	rolesQ = `(?s)^SELECT\s+r\.name\s+FROM\s+roles\s+r\s+JOIN\s+user_roles.*WHERE\s+ur\.user_id\s*=\s*\$1.*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestFindByName_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(findQ).
		WithArgs("membertasker").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "normalized_name"}).AddRow(int64(2), "MemberTasker", "membertasker"))

	role, err := repo.FindByName(context.Background(), "MemberTasker")
	require.NoError(t, err)
	assert.Equal(t, int64(2), role.ID)
	assert.Equal(t, "MemberTasker", role.Name)
}

func TestFindByName_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(findQ).WithArgs("admin").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByName(context.Background(), "Admin")
	assert.ErrorIs(t, err, common.ErrRoleNotFound)
}

func TestAddUserToRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(addQ).WithArgs("u-1", int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	// conflict: zero rows, still no error
	mock.ExpectExec(addQ).WithArgs("u-1", int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AddUserToRole(context.Background(), "u-1", 2))
	require.NoError(t, repo.AddUserToRole(context.Background(), "u-1", 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUserToRole_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(addQ).WithArgs("u-1", int64(2)).WillReturnError(errors.New("fk violation"))

	err := repo.AddUserToRole(context.Background(), "u-1", 2)
	assert.ErrorContains(t, err, "db error: fk violation")
}

func TestGetUserRoles(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(rolesQ).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Member").AddRow("MemberTasker"))

	got, err := repo.GetUserRoles(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Member", "MemberTasker"}, got)
}

func TestGetUserRoles_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(rolesQ).WithArgs("u-2").WillReturnRows(sqlmock.NewRows([]string{"name"}))

	got, err := repo.GetUserRoles(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetUserRoles_RowError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(rolesQ).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Member").RowError(0, errors.New("broken row")))

	_, err := repo.GetUserRoles(context.Background(), "u-1")
	assert.ErrorContains(t, err, "broken row")
}
