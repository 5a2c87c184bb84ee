package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompatibility(t *testing.T) {
	assert.Equal(t, []string{"RJ3iB", "RJ3iC"}, ParseCompatibility("RJ3iB, RJ3iC"))
	assert.Equal(t, []string{"All Models"}, ParseCompatibility(" All Models ,, "))
	assert.Equal(t, []string{}, ParseCompatibility(""))
}

func TestCompatibilityListAcceptsListOrString(t *testing.T) {
	var in SparePartInput
	require.NoError(t, json.Unmarshal([]byte(`{"compatibility":["a"," b ",""]}`), &in))
	assert.Equal(t, CompatibilityList{"a", "b"}, in.Compatibility)

	require.NoError(t, json.Unmarshal([]byte(`{"compatibility":"x, y"}`), &in))
	assert.Equal(t, CompatibilityList{"x", "y"}, in.Compatibility)

	assert.Error(t, json.Unmarshal([]byte(`{"compatibility":5}`), &in))
}

func TestUserIsActiveDefaultsTrue(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"Admin","role":"admin"}`), &u))
	assert.True(t, u.IsActive)
	assert.Equal(t, RoleAdmin, u.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"2","isActive":false}`), &u))
	assert.False(t, u.IsActive)
}

func TestPublicUserHasNoPassword(t *testing.T) {
	b, err := json.Marshal(User{ID: "1", Password: "secret"}.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}

func TestValidationErrors(t *testing.T) {
	err := Required([2]string{"a", "x"}, [2]string{"b", " "}, [2]string{"c", ""})
	require.Error(t, err)
	assert.Equal(t, "b: is required", err.Error())
	assert.True(t, IsValidation(err))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "b", ve.Field)

	nf := NotFound("lead", "42")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.False(t, IsValidation(nf))
}

func TestEnums(t *testing.T) {
	assert.True(t, LeadProposalSent.Valid())
	assert.False(t, LeadStatus("lost").Valid())
	assert.True(t, SourceSocialMedia.Valid())
	assert.True(t, MemoKeyAccount.Valid())
	assert.True(t, ProposalRejected.Valid())
	assert.True(t, RoleSales.Valid())
	assert.False(t, Role("root").Valid())
}

func TestLeadInputValidate(t *testing.T) {
	in := LeadInput{
		CompanyName: "Acme", ContactPerson: "J. Doe", Email: "j@acme.com",
		Phone: "123", Application: "Vision System", Source: SourceWebsite,
	}
	assert.NoError(t, in.Validate())
	in.Source = "fax"
	assert.True(t, IsValidation(in.Validate()))
}

func TestUserInputValidate(t *testing.T) {
	in := UserInput{Name: "A", Email: "a@x", Role: RoleManager}
	assert.True(t, IsValidation(in.Validate(true)), "password required on create")
	assert.NoError(t, in.Validate(false))
	in.Role = "boss"
	assert.True(t, IsValidation(in.Validate(false)))
}
