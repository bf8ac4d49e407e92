package credentials

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
)

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	lookupErr error
	createErr error
	creates   int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.byID {
		if x.NormalizedUserName == u.NormalizedUserName {
			return common.ErrorDuplicateUserName
		}
		if x.NormalizedEmail == u.NormalizedEmail {
			return common.ErrorDuplicateEmail
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.byID {
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

type membership struct {
	userID string
	roleID int64
}

type fakeRoles struct {
	roles   []models.Role
	members map[membership]bool
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{
		roles: []models.Role{
			{ID: 1, Name: models.RoleMember, NormalizedName: "member"},
			{ID: 2, Name: models.RoleMemberTasker, NormalizedName: "membertasker"},
		},
		members: map[membership]bool{},
	}
}

func (f *fakeRoles) FindByName(_ context.Context, name string) (*models.Role, error) {
	n := models.Normalize(name)
	for _, r := range f.roles {
		if r.NormalizedName == n {
			cp := r
			return &cp, nil
		}
	}
	return nil, common.ErrRoleNotFound
}

func (f *fakeRoles) AddUserToRole(_ context.Context, userID string, roleID int64) error {
	f.members[membership{userID, roleID}] = true
	return nil
}

func (f *fakeRoles) GetUserRoles(_ context.Context, userID string) ([]string, error) {
	var out []string
	for _, r := range f.roles {
		if f.members[membership{userID, r.ID}] {
			out = append(out, r.Name)
		}
	}
	return out, nil
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error)          { return "", errors.New("no entropy") }
func (failingHasher) Verify(string, string) (bool, error) { return false, nil }
