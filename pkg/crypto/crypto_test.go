package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, ValidatePassword("correct horse battery staple", hash))
	assert.False(t, ValidatePassword("wrong password", hash))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encrypted, err := Encrypt("coindcx-api-key-value", "encryption-key")
	require.NoError(t, err)
	require.NotEqual(t, "coindcx-api-key-value", encrypted)

	plaintext, err := Decrypt(encrypted, "encryption-key")
	require.NoError(t, err)
	assert.Equal(t, "coindcx-api-key-value", plaintext)
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt("secret", "key-one")
	require.NoError(t, err)

	_, err = Decrypt(encrypted, "key-two")
	assert.Error(t, err)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	a, err := Encrypt("secret", "key")
	require.NoError(t, err)
	b, err := Encrypt("secret", "key")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "random nonce per encryption")
}
