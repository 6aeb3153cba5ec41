package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/utils"
)

func TestNewLocalUserNormalizesAndHashes(t *testing.T) {
	user, err := NewLocalUser(" Jane@Example.COM ", "+2348012345678", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, utils.CheckPassword(user.PasswordHash, "secret123"))
}

func TestNewLocalUserRejectsBadEmail(t *testing.T) {
	_, err := NewLocalUser("not-an-email", "+2348012345678", "secret123")
	assert.Error(t, err)
}

func TestNewOrganizationDefaultsToOrgRole(t *testing.T) {
	org, err := NewOrganization("ops@acme.com", "Acme Ltd", "secret123")
	require.NoError(t, err)

	assert.Equal(t, models.RoleOrg, org.Role)
	assert.Equal(t, "Acme Ltd", org.CompanyName)
	assert.False(t, org.EmailVerified)
	assert.NoError(t, utils.CheckPassword(org.PasswordHash, "secret123"))
}
