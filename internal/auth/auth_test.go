package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaddesk/internal/models"
)

func menuKeys(items []MenuItem) []Permission {
	keys := make([]Permission, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.Key)
	}
	return keys
}

func TestVisibleMenu(t *testing.T) {
	assert.Equal(t, []Permission{
		PermDashboard, PermLeads, PermProposals, PermTemplates, PermSpareParts, PermReports, PermUsers, PermSettings,
	}, menuKeys(VisibleMenu(models.RoleAdmin)))

	assert.Equal(t, []Permission{
		PermDashboard, PermLeads, PermProposals, PermTemplates, PermSpareParts, PermReports, PermSettings,
	}, menuKeys(VisibleMenu(models.RoleManager)))

	eng := []Permission{PermDashboard, PermLeads, PermProposals, PermTemplates, PermSpareParts, PermSettings}
	assert.Equal(t, eng, menuKeys(VisibleMenu(models.RoleEngineer)))
	assert.Equal(t, eng, menuKeys(VisibleMenu(models.RoleSales)))

	assert.Empty(t, VisibleMenu("guest"))
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		role models.Role
		perm Permission
		want bool
	}{
		{models.RoleAdmin, PermUsers, true},
		{models.RoleManager, PermUsers, false},
		{models.RoleManager, PermReports, true},
		{models.RoleEngineer, PermReports, false},
		{models.RoleSales, PermLeads, true},
		{models.RoleAdmin, PermAssignLead, true},
		{models.RoleManager, PermAssignLead, false},
		{models.RoleAdmin, "unknown", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.role, tc.perm), "%s %s", tc.role, tc.perm)
	}
}

func TestPlainPasswords(t *testing.T) {
	p, err := NewPasswords("")
	require.NoError(t, err)
	stored, err := p.Hash("admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin123", stored)
	assert.True(t, p.Verify(stored, "admin123"))
	assert.False(t, p.Verify(stored, "admin124"))
}

func TestBcryptPasswords(t *testing.T) {
	p, err := NewPasswords(PasswordBcrypt)
	require.NoError(t, err)
	p = BcryptPasswords{Cost: 4}

	stored, err := p.Hash("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", stored)
	assert.True(t, p.Verify(stored, "admin123"))
	assert.False(t, p.Verify(stored, "wrong"))
	assert.False(t, p.Verify("admin123", "admin123"), "plain stored value does not verify")
}

func TestUnknownPasswordMode(t *testing.T) {
	_, err := NewPasswords("md5")
	assert.Error(t, err)
}

func TestInitGothProvidersWithoutConfig(t *testing.T) {
	names := InitGothProviders(OAuthConfig{SessionSecret: "secret"}, nil)
	assert.Empty(t, names)
}
