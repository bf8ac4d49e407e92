package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/dbx"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
	rolesrepo "github.com/dmitrijs2005/taskerid/internal/server/repositories/roles"
	profilesrepo "github.com/dmitrijs2005/taskerid/internal/server/repositories/taskerprofiles"
	usersrepo "github.com/dmitrijs2005/taskerid/internal/server/repositories/users"
)

// memStore backs all fake repositories. Writes are not transactional.
type memStore struct {
	mu       sync.Mutex
	users    []*models.User
	members  map[string][]string
	profiles []*models.TaskerProfile

	creates        int
	lookupErr      error
	createErr      error
	profileErr     error
	raceOnCreate   bool
	roleLookupFail bool
}

func newMemStore() *memStore {
	return &memStore{members: map[string][]string{}}
}

type fakeRepoManager struct{ m *memStore }

func (r *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (r *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository        { return (*fakeUsers)(r.m) }
func (r *fakeRepoManager) Roles(dbx.DBTX) rolesrepo.Repository        { return (*fakeRoles)(r.m) }
func (r *fakeRepoManager) TaskerProfiles(dbx.DBTX) profilesrepo.Repository {
	return (*fakeProfiles)(r.m)
}

type fakeUsers memStore

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if f.raceOnCreate {
		return common.ErrorDuplicateEmail
	}
	for _, x := range f.users {
		if x.NormalizedUserName == u.NormalizedUserName {
			return common.ErrorDuplicateUserName
		}
		if x.NormalizedEmail == u.NormalizedEmail {
			return common.ErrorDuplicateEmail
		}
	}
	cp := *u
	f.users = append(f.users, &cp)
	return nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	n := models.Normalize(email)
	return f.find(func(u *models.User) bool { return u.NormalizedEmail == n })
}

func (f *fakeUsers) GetUserByUserName(_ context.Context, name string) (*models.User, error) {
	n := models.Normalize(name)
	return f.find(func(u *models.User) bool { return u.NormalizedUserName == n })
}

type fakeRoles memStore

func (f *fakeRoles) FindByName(_ context.Context, name string) (*models.Role, error) {
	if f.roleLookupFail {
		return nil, errors.New("roles table locked")
	}
	switch models.Normalize(name) {
	case "member":
		return &models.Role{ID: 1, Name: models.RoleMember, NormalizedName: "member"}, nil
	case "membertasker":
		return &models.Role{ID: 2, Name: models.RoleMemberTasker, NormalizedName: "membertasker"}, nil
	}
	return nil, common.ErrRoleNotFound
}

func (f *fakeRoles) AddUserToRole(_ context.Context, userID string, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := models.RoleMember
	if roleID == 2 {
		name = models.RoleMemberTasker
	}
	for _, r := range f.members[userID] {
		if r == name {
			return nil
		}
	}
	f.members[userID] = append(f.members[userID], name)
	return nil
}

func (f *fakeRoles) GetUserRoles(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.members[userID]...), nil
}

type fakeProfiles memStore

func (f *fakeProfiles) Create(_ context.Context, p *models.TaskerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return f.profileErr
	}
	cp := *p
	cp.ID = int64(len(f.profiles) + 1)
	f.profiles = append(f.profiles, &cp)
	return nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*models.TaskerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}
