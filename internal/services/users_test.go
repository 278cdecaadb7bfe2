package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily_report/internal/models"
	"daily_report/internal/repository/repotest"
)

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Users.Signup(ctx, SignupInput{Name: "Hanako", Email: " Hanako@Example.com ", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "hanako@example.com", res.User.Email)
	assert.Equal(t, "token-"+res.User.ID, res.Token)
	assert.NotEqual(t, "s3cret", res.User.Password)

	_, err = f.svc.Users.Signup(ctx, SignupInput{Name: "Dup", Email: "hanako@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Users.Signup(ctx, SignupInput{Name: "NoAt", Email: "nowhere", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalid)

	login, err := f.svc.Users.Login(ctx, "hanako@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = f.svc.Users.Login(ctx, "hanako@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.Users.Login(ctx, "missing@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	newbie := addUser(t, f, "Newbie", "newbie@example.com")

	err := f.svc.Users.UpdateUserRole(ctx, f.admin, newbie.UserID, models.RoleDriver)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.Users.CreateUserRole(ctx, f.admin, newbie.UserID, models.RoleDriver))
	require.NoError(t, f.svc.Users.UpdateUserRole(ctx, f.admin, newbie.UserID, models.RoleAdmin))

	role, err := f.svc.Identity.CurrentRole(ctx, newbie)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, *role)

	assert.ErrorIs(t, f.svc.Users.CreateUserRole(ctx, f.owner, newbie.UserID, models.RoleDriver), ErrForbidden)
	assert.ErrorIs(t, f.svc.Users.CreateUserRole(ctx, f.admin, newbie.UserID, "owner"), ErrInvalid)
	assert.ErrorIs(t, f.svc.Users.CreateUserRole(ctx, f.admin, models.NewID(), models.RoleDriver), ErrNotFound)
}

func TestGrantAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Users.GrantAdmin(ctx, "taro@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.owner.UserID, u.ID)

	role, err := f.svc.Identity.CurrentRole(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, *role)

	_, err = f.svc.Users.GrantAdmin(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.svc.Users.ListUsers(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, users, 3)
	byEmail := map[string]UserSummary{}
	for _, u := range users {
		byEmail[u.Email] = u
	}
	require.NotNil(t, byEmail["admin@example.com"].Role)
	assert.Equal(t, models.RoleAdmin, *byEmail["admin@example.com"].Role)
	assert.Nil(t, byEmail["admin@example.com"].Driver)
	require.NotNil(t, byEmail["taro@example.com"].Driver)
	assert.Equal(t, f.driver.ID, byEmail["taro@example.com"].Driver.ID)

	users, err = f.svc.Users.ListUsers(ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)

	_, err = f.svc.Users.ListUsers(ctx, Principal{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentIdentityAnonymous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.svc.Identity.CurrentRole(ctx, Principal{})
	require.NoError(t, err)
	assert.Nil(t, role)

	d, err := f.svc.Identity.CurrentDriver(ctx, Principal{})
	require.NoError(t, err)
	assert.Nil(t, d)

	stranger := addUser(t, f, "Nobody", "nobody@example.com")
	role, err = f.svc.Identity.CurrentRole(ctx, stranger)
	require.NoError(t, err)
	assert.Nil(t, role)
}

type mapCache struct {
	mu    sync.Mutex
	roles map[string]models.Role
}

func (c *mapCache) Get(_ context.Context, userID string) (models.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.roles[userID]
	return r, ok
}

func (c *mapCache) Fill(_ context.Context, userID string, role models.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.roles[userID]; !ok {
		c.roles[userID] = role
	}
}

func (c *mapCache) Set(_ context.Context, userID string, role models.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[userID] = role
}

func (c *mapCache) get(userID string) models.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roles[userID]
}

func TestRoleCacheIsConsultedAndUpdated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := &mapCache{roles: map[string]models.Role{}}
	f.svc = New(f.store, Options{Tokens: fakeTokens{}, RoleCache: cache})

	role, err := f.svc.Identity.CurrentRole(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDriver, *role)
	assert.Equal(t, models.RoleDriver, cache.get(f.owner.UserID))

	// a cached role wins over the database until a role change overwrites it
	cache.Set(ctx, f.owner.UserID, models.RoleAdmin)
	_, err = f.svc.Reports.Stats(ctx, f.owner, "", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Users.UpdateUserRole(ctx, f.admin, f.owner.UserID, models.RoleDriver))
	assert.Equal(t, models.RoleDriver, cache.get(f.owner.UserID))
	_, err = f.svc.Reports.Stats(ctx, f.owner, "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

// roleChangeStore runs onRead right after the first role lookup for userID,
// between the database read and the cache fill that follows it.
type roleChangeStore struct {
	*repotest.MemStore
	userID string
	onRead func()
}

func (s *roleChangeStore) GetUserRole(ctx context.Context, userID string) (*models.UserRole, error) {
	r, err := s.MemStore.GetUserRole(ctx, userID)
	if userID == s.userID && s.onRead != nil {
		hook := s.onRead
		s.onRead = nil
		hook()
	}
	return r, err
}

func TestDemotionDuringRoleReadIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	target := f.owner
	current, err := f.store.GetUserRole(ctx, target.UserID)
	require.NoError(t, err)
	current.Role = models.RoleAdmin
	require.NoError(t, f.store.SaveUserRole(ctx, current))

	store := &roleChangeStore{MemStore: f.store, userID: target.UserID}
	cache := &mapCache{roles: map[string]models.Role{}}
	svc := New(store, Options{Tokens: fakeTokens{}, RoleCache: cache})
	store.onRead = func() {
		require.NoError(t, svc.Users.UpdateUserRole(ctx, f.admin, target.UserID, models.RoleDriver))
	}

	// this call read "admin" before the demotion committed
	_, err = svc.Drivers.List(ctx, target)
	require.NoError(t, err)

	stored, err := f.store.GetUserRole(ctx, target.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDriver, stored.Role)
	assert.Equal(t, models.RoleDriver, cache.get(target.UserID))

	_, err = svc.Drivers.List(ctx, target)
	assert.ErrorIs(t, err, ErrForbidden)
}
