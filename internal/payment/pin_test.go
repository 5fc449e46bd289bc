package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPIN(t *testing.T) {
	hash, err := HashPIN("123456")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	match, err := VerifyPIN("123456", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyPIN("654321", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashPINUniqueSalts(t *testing.T) {
	hash1, err := HashPIN("123456")
	require.NoError(t, err)
	hash2, err := HashPIN("123456")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPINMalformedHash(t *testing.T) {
	_, err := VerifyPIN("123456", "not-a-hash")
	assert.Error(t, err)
}
