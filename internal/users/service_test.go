package users

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaddesk/internal/auth"
	"leaddesk/internal/database"
	"leaddesk/internal/models"
	"leaddesk/internal/repository"
)

func newService(t *testing.T, passwords auth.Passwords) *Service {
	t.Helper()
	return NewService(repository.New[models.User](database.NewMemory(), models.KeyUsers, "user"), passwords, nil)
}

func adminInput() models.UserInput {
	return models.UserInput{
		Name:     "Admin User",
		Email:    "admin@mahajanautomation.com",
		Phone:    "+91 9876543210",
		Role:     models.RoleAdmin,
		Password: "admin123",
	}
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	u, err := svc.Create(ctx, adminInput())
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.Equal(t, "admin123", u.Password, "plain mode stores as entered")

	got, err := svc.Authenticate(ctx, " ADMIN@mahajanautomation.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "admin@mahajanautomation.com", "nope")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost@mahajanautomation.com", "admin123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestInactiveUserCannotLogIn(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	in := adminInput()
	inactive := false
	in.IsActive = &inactive
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, in.Email, in.Password)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestBcryptMode(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, auth.BcryptPasswords{Cost: 4})

	u, err := svc.Create(ctx, adminInput())
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", u.Password)

	_, err = svc.Authenticate(ctx, "admin@mahajanautomation.com", "admin123")
	require.NoError(t, err)
}

func TestEmailIsUnique(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	_, err := svc.Create(ctx, adminInput())
	require.NoError(t, err)

	in := adminInput()
	in.Email = "Admin@MahajanAutomation.com"
	_, err = svc.Create(ctx, in)
	assert.True(t, models.IsValidation(err))
}

func TestConcurrentCreatesWithSameEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, adminInput())
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.True(t, models.IsValidation(err))
		}
	}
	assert.Equal(t, 1, created)
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	_, err := svc.Create(ctx, adminInput())
	require.NoError(t, err)
	in := adminInput()
	in.Email = "manager@mahajanautomation.com"
	mgr, err := svc.Create(ctx, in)
	require.NoError(t, err)

	in.Email = "ADMIN@mahajanautomation.com"
	_, err = svc.Update(ctx, mgr.ID, in)
	assert.True(t, models.IsValidation(err))

	in.Email = "manager@mahajanautomation.com"
	in.Name = "Manager"
	_, err = svc.Update(ctx, mgr.ID, in)
	require.NoError(t, err, "keeping its own email is fine")
}

func TestUpdateKeepsPasswordWhenBlank(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	u, err := svc.Create(ctx, adminInput())
	require.NoError(t, err)

	in := adminInput()
	in.Password = ""
	in.Role = models.RoleManager
	updated, err := svc.Update(ctx, u.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, updated.Role)
	assert.Equal(t, "admin123", updated.Password)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)

	in.Password = "changed"
	updated, err = svc.Update(ctx, u.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Password)
}

func TestNamesAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	u, err := svc.Create(ctx, adminInput())
	require.NoError(t, err)

	names, err := svc.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{u.ID: "Admin User"}, names)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPublicViewOmitsPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	u, err := svc.Create(ctx, adminInput())
	require.NoError(t, err)

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "admin123")
}
