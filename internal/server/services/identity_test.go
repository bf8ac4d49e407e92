package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/cryptox"
	"github.com/dmitrijs2005/taskerid/internal/logging"
	"github.com/dmitrijs2005/taskerid/internal/server/auth"
	"github.com/dmitrijs2005/taskerid/internal/server/config"
	"github.com/dmitrijs2005/taskerid/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc    *IdentityService
	mem    *memStore
	mock   sqlmock.Sqlmock
	signer *auth.Signer
	clock  *time.Time
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testHasher() cryptox.PasswordHasher {
	return cryptox.NewArgon2Hasher(cryptox.WithMemory(1024), cryptox.WithTime(1), cryptox.WithThreads(1))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.JWT.Secret = "test-secret"
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	cfg := testConfig()

	clock := testNow
	signer := auth.NewSigner([]byte(cfg.JWT.Secret), cfg.JWT.ValidIssuer, cfg.JWT.ValidAudience,
		auth.WithClock(func() time.Time { return clock }))

	mem := newMemStore()
	svc := NewIdentityService(db, &fakeRepoManager{m: mem}, testHasher(), signer, cfg, logging.Nop{})
	svc.now = func() time.Time { return testNow }

	return &fixture{svc: svc, mem: mem, mock: mock, signer: signer, clock: &clock}
}

func janeTasker() TaskerRegistration {
	return TaskerRegistration{
		UserName:         "tasker1",
		Email:            "tom@x.com",
		FullName:         "Tom Tasker",
		Password:         "Secret123!",
		Skills:           []string{"plumbing", "assembly", "moving"},
		ExperienceLevel:  "Intermediate",
		HourlyRate:       35.5,
		SelectedCategory: "Handyman",
		CategoryID:       4,
	}
}

func TestRegisterMember_ReturnsTokenForNewUser(t *testing.T) {
	f := newFixture(t)

	tok, err := f.svc.RegisterMember(context.Background(), "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.NoError(t, err)

	claims, err := f.signer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "janed", claims.Name)
	assert.Equal(t, "jane@x.com", claims.Email)
	assert.NotEmpty(t, claims.ID)

	require.Len(t, f.mem.users, 1)
	u := f.mem.users[0]
	assert.False(t, u.IsTasker)
	assert.NotEmpty(t, u.SecurityStamp)
	assert.Equal(t, "Jane Doe", u.FullName)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Empty(t, f.mem.members[u.ID])
}

func TestRegisterMember_Duplicate(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		userName string
	}{
		{"same pair", "jane@x.com", "janed"},
		{"same email", "JANE@x.com", "other"},
		{"same username", "other@x.com", "JaneD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := f.svc.RegisterMember(ctx, "Jane Doe", "jane@x.com", "janed", "Secret123!")
			require.NoError(t, err)
			creates := f.mem.creates

			_, err = f.svc.RegisterMember(ctx, "Jane Doe", tt.email, tt.userName, "Secret123!")
			require.ErrorIs(t, err, common.ErrDuplicateUser)
			assert.Contains(t, err.Error(), tt.email)
			assert.Contains(t, err.Error(), tt.userName)
			assert.Equal(t, "duplicate user: user with email "+tt.email+" or username "+tt.userName+" already exists", err.Error())
			assert.Equal(t, creates, f.mem.creates, "no store mutation after a duplicate")
		})
	}
}

func TestRegisterMember_Rejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterMember(context.Background(), "Jane Doe", "jane@x.com", "janed", "secret")
	require.ErrorIs(t, err, common.ErrRegistrationFailed)
	assert.Equal(t, "registration failed: unable to register user janed errors: "+
		"Passwords must have at least one non alphanumeric character., "+
		"Passwords must have at least one digit ('0'-'9')., "+
		"Passwords must have at least one uppercase ('A'-'Z').", err.Error())
	assert.Empty(t, f.mem.users)
}

func TestRegisterMember_RaceLoserIsRegistrationFailure(t *testing.T) {
	f := newFixture(t)
	f.mem.raceOnCreate = true

	_, err := f.svc.RegisterMember(context.Background(), "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.ErrorIs(t, err, common.ErrRegistrationFailed)
	assert.Contains(t, err.Error(), "Email 'jane@x.com' is already taken.")
}

func TestRegisterMember_InfrastructureError(t *testing.T) {
	f := newFixture(t)
	f.mem.createErr = errors.New("db down")

	_, err := f.svc.RegisterMember(context.Background(), "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrRegistrationFailed))
	assert.ErrorContains(t, err, "error creating user: db down")
}

func TestRegisterMember_ConcurrentSamePair(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.RegisterMember(context.Background(), "Jane Doe", "jane@x.com", "janed", "Secret123!")
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, common.ErrDuplicateUser) || errors.Is(err, common.ErrRegistrationFailed), err)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, f.mem.users, 1)
}

func TestRegisterMember_EmailEqualToExistingUserName(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"same password", "Secret123!"},
		{"different password", "Other456?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := f.svc.RegisterMember(ctx, "A", "a@x.com", "b@x.com", "Secret123!")
			require.NoError(t, err)

			tok, err := f.svc.RegisterMember(ctx, "B", "b@x.com", "bee", tt.password)
			require.NoError(t, err)

			claims, err := f.signer.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, "bee", claims.Name)
			assert.Equal(t, "b@x.com", claims.Email)

			require.Len(t, f.mem.users, 2)
			assert.Equal(t, f.mem.users[1].ID, claims.Subject)
		})
	}
}

func TestLogin_ByUserNameOrEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.RegisterMember(ctx, "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, id := range []string{"janed", "jane@x.com", "JaneD", "janed"} {
		tok, err := f.svc.Login(ctx, id, "Secret123!")
		require.NoError(t, err, id)

		claims, err := f.signer.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "janed", claims.Name)
		assert.Equal(t, "jane@x.com", claims.Email)
		assert.False(t, seen[claims.ID], "jti must be fresh")
		seen[claims.ID] = true
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.RegisterMember(ctx, "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, "janed", "Wrong123!")
	_, unknownUser := f.svc.Login(ctx, "ghost", "Secret123!")

	require.ErrorIs(t, wrongPassword, common.ErrAuthenticationFailed)
	require.ErrorIs(t, unknownUser, common.ErrAuthenticationFailed)
	assert.Equal(t, "authentication failed: unable to authenticate user janed", wrongPassword.Error())
	assert.Equal(t, "authentication failed: unable to authenticate user ghost", unknownUser.Error())
	assert.Equal(t,
		strings.Replace(wrongPassword.Error(), "janed", "X", 1),
		strings.Replace(unknownUser.Error(), "ghost", "X", 1))
}

func TestLogin_LookupErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.mem.lookupErr = errors.New("conn refused")

	_, err := f.svc.Login(context.Background(), "janed", "Secret123!")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrAuthenticationFailed))
	assert.ErrorContains(t, err, "conn refused")
}

func TestLogin_TokenExpiresAfterThreeHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.RegisterMember(ctx, "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.NoError(t, err)

	claims, err := f.signer.Verify(tok)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Time.Equal(testNow))
	assert.Equal(t, 3*time.Hour, claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time))

	*f.clock = testNow.Add(3*time.Hour - time.Second)
	_, err = f.signer.Verify(tok)
	require.NoError(t, err)

	*f.clock = testNow.Add(3*time.Hour + time.Second)
	_, err = f.signer.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

type failingSigner struct{ *auth.Signer }

func (failingSigner) Sign(auth.Claims, time.Time) (string, error) { return "", errors.New("hsm offline") }

func TestLogin_SignerErrorPropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.RegisterMember(ctx, "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.NoError(t, err)

	f.svc.signer = failingSigner{f.signer}
	_, err = f.svc.Login(ctx, "janed", "Secret123!")
	assert.ErrorContains(t, err, "error signing token: hsm offline")
}

func TestRegisterTasker_CreatesUserRoleAndProfile(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	in := janeTasker()
	msg, err := f.svc.RegisterTasker(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Tasker registered successfully!", msg)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	require.Len(t, f.mem.users, 1)
	u := f.mem.users[0]
	assert.True(t, u.IsTasker)
	assert.Equal(t, "tasker1", u.UserName)
	assert.Equal(t, []string{models.RoleMemberTasker}, f.mem.members[u.ID])

	require.Len(t, f.mem.profiles, 1)
	p := f.mem.profiles[0]
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, in.Skills, p.Skills)
	assert.Equal(t, in.ExperienceLevel, p.ExperienceLevel)
	assert.Equal(t, in.HourlyRate, p.HourlyRate)
	assert.Equal(t, in.SelectedCategory, p.SelectedCategory)
	assert.Equal(t, in.CategoryID, p.CategoryID)
}

func TestRegisterTasker_DuplicateBeforeTransaction(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.svc.RegisterTasker(context.Background(), janeTasker())
	require.NoError(t, err)

	_, err = f.svc.RegisterTasker(context.Background(), janeTasker())
	require.ErrorIs(t, err, common.ErrDuplicateUser)
	assert.Contains(t, err.Error(), "tom@x.com")
	assert.Contains(t, err.Error(), "tasker1")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterTasker_RejectedRollsBack(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	in := janeTasker()
	in.UserName = "tom tasker"
	in.Password = "short"

	msg, err := f.svc.RegisterTasker(context.Background(), in)
	assert.Empty(t, msg)
	require.ErrorIs(t, err, common.ErrRegistrationFailed)
	assert.True(t, strings.HasPrefix(err.Error(),
		"registration failed: unable to register tasker tom tasker errors: Username 'tom tasker' is invalid"))
	assert.NoError(t, f.mock.ExpectationsWereMet())
	assert.Empty(t, f.mem.profiles)
}

func TestRegisterTasker_ProfileFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.mem.profileErr = errors.New("check constraint hourly_rate")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.RegisterTasker(context.Background(), janeTasker())
	assert.ErrorContains(t, err, "error creating tasker profile: check constraint hourly_rate")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterTasker_NegativeRateIsRejected(t *testing.T) {
	f := newFixture(t)
	f.mem.profileErr = fmt.Errorf("%w: hourly rate must not be negative", common.ErrorInvalidProfile)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	r := janeTasker()
	r.HourlyRate = -1
	_, err := f.svc.RegisterTasker(context.Background(), r)
	require.ErrorIs(t, err, common.ErrRegistrationFailed)
	assert.ErrorContains(t, err, "hourly rate must not be negative")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterTasker_RoleFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.mem.roleLookupFail = true
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.RegisterTasker(context.Background(), janeTasker())
	assert.ErrorContains(t, err, "error assigning role: roles table locked")
	assert.Empty(t, f.mem.profiles)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterTasker_DoesNotLogIn(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	msg, err := f.svc.RegisterTasker(context.Background(), janeTasker())
	require.NoError(t, err)

	_, verr := f.signer.Verify(msg)
	assert.ErrorIs(t, verr, common.ErrInvalidToken)
}

func TestWhoAmI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.RegisterTasker(ctx, janeTasker())
	require.NoError(t, err)
	tok, err := f.svc.Login(ctx, "tom@x.com", "Secret123!")
	require.NoError(t, err)

	id, err := f.svc.WhoAmI(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "tasker1", id.UserName)
	assert.Equal(t, "tom@x.com", id.Email)
	assert.Equal(t, []string{models.RoleMemberTasker}, id.Roles)
	require.NotNil(t, id.Profile)
	assert.Equal(t, []string{"plumbing", "assembly", "moving"}, id.Profile.Skills)
	assert.True(t, id.ExpiresAt.Equal(testNow.Add(3*time.Hour)))

	_, err = f.svc.WhoAmI(ctx, tok+"x")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestWhoAmI_MemberHasNoProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.RegisterMember(ctx, "Jane Doe", "jane@x.com", "janed", "Secret123!")
	require.NoError(t, err)

	id, err := f.svc.WhoAmI(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, id.Profile)
	assert.Empty(t, id.Roles)
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "", FormatErrors(nil))
	assert.Equal(t, "a", FormatErrors([]string{"a"}))
	assert.Equal(t, "b, a, c", FormatErrors([]string{"b", "a", "c"}))
}
