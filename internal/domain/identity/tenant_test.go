package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	t.Run("valid tenant", func(t *testing.T) {
		tenant, err := NewTenant("acme", "Acme Logistics")
		require.NoError(t, err)
		assert.Equal(t, "ACME", tenant.Code)
		assert.Equal(t, "Acme Logistics", tenant.Name)
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.True(t, tenant.IsActive())
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := NewTenant("", "Acme")
		assert.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewTenant("ACME", "")
		assert.Error(t, err)
	})
}

func TestTenant_Settings(t *testing.T) {
	tenant, err := NewTenant("ACME", "Acme Logistics")
	require.NoError(t, err)

	t.Run("missing key", func(t *testing.T) {
		_, ok := tenant.Setting(SettingSecretToken)
		assert.False(t, ok)
	})

	t.Run("set and read token", func(t *testing.T) {
		require.NoError(t, tenant.SetSetting(SettingSecretToken, "s3cr3t"))
		token, ok := tenant.SecretToken()
		assert.True(t, ok)
		assert.Equal(t, "s3cr3t", token)
	})

	t.Run("malformed settings blob", func(t *testing.T) {
		broken := &Tenant{Settings: "not-json"}
		_, ok := broken.Setting(SettingSecretToken)
		assert.False(t, ok)
		assert.Error(t, broken.SetSetting("k", "v"))
	})
}
