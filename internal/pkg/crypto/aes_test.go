package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptor_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	require.Len(t, key, 64)

	enc, err := NewEncryptorFromHex(key)
	require.NoError(t, err)

	plaintext := []byte(`{"users":[]}`)
	sealed, err := enc.Seal(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "users")

	again, err := enc.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)

	opened, err := enc.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestEncryptor_Failures(t *testing.T) {
	enc, err := NewEncryptorFromHex(strings.Repeat("ab", 32))
	require.NoError(t, err)
	other, err := NewEncryptorFromHex(strings.Repeat("cd", 32))
	require.NoError(t, err)

	sealed, err := enc.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = enc.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	sealed[len(sealed)-1] ^= 0xff
	_, err = enc.Open(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestParseHexKey(t *testing.T) {
	_, err := ParseHexKey("abcd")
	assert.ErrorIs(t, err, ErrInvalidHexKey)

	_, err = ParseHexKey(strings.Repeat("zz", 32))
	assert.ErrorIs(t, err, ErrInvalidHexKey)

	key, err := ParseHexKey("  " + strings.Repeat("0f", 32) + "\n")
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	_, err = NewEncryptor([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}
