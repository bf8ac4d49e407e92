package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskerid/internal/dbx"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/roles"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/taskerprofiles"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so one registration can span several of them.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	TaskerProfiles(db dbx.DBTX) taskerprofiles.Repository
}
