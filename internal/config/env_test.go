package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "1", c.MinNativeReserve)
	assert.Equal(t, 18, c.ScryptCostLog2)
	assert.Empty(t, c.RedisAddr)
	assert.False(t, c.IdentityRegistration)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MIN_NATIVE_RESERVE", "0.5")
	t.Setenv("LOCK_EXPIRY_SECONDS", "5")
	t.Setenv("IDENTITY_REGISTRATION_ENABLED", "true")

	require.NoError(t, Init())
	assert.Equal(t, "9090", GetPort())
	assert.Equal(t, "0.5", GetMinNativeReserve())
	assert.Equal(t, 5*time.Second, GetLockExpiry())
	assert.True(t, GetIdentityRegistration())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("SCRYPT_COST_LOG2", "4")
	_, err := Load()
	assert.Error(t, err)
}

func TestReadPasswordFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pw")
	require.NoError(t, os.WriteFile(path, []byte("s3cret\n"), 0600))

	require.NoError(t, ReadPasswordFile(path))

	pw, err := GetMasterPasswordBytes()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))

	// callers receive a copy they may wipe
	clear(pw)
	again, err := GetMasterPasswordBytes()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(again))
}

func TestReadPasswordFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pw")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))

	assert.Error(t, ReadPasswordFile(path))
}
