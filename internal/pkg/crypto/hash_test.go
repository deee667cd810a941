package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSHA256Hasher_Hash(t *testing.T) {
	h := SHA256Hasher{}

	got, err := h.Hash("123")
	require.NoError(t, err)
	require.Equal(t, "a665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae3", got)
	require.True(t, ValidateSHA256(got))

	again, err := h.Hash("123")
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestSHA256Hasher_Verify(t *testing.T) {
	h := SHA256Hasher{}
	digest, err := h.Hash("secret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		stored  string
		attempt string
		want    Match
	}{
		{name: "hashed match", stored: digest, attempt: "secret", want: MatchHashed},
		{name: "hashed mismatch", stored: digest, attempt: "Secret", want: NoMatch},
		{name: "legacy plaintext", stored: "123", attempt: "123", want: MatchLegacyPlaintext},
		{name: "legacy mismatch", stored: "123", attempt: "1234", want: NoMatch},
		{name: "digest typed verbatim is legacy", stored: digest, attempt: digest, want: MatchLegacyPlaintext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Verify(tt.stored, tt.attempt))
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	stored, err := h.Hash("pa55")
	require.NoError(t, err)
	require.True(t, isBcryptHash(stored))

	digest := ComputeSHA256([]byte("pa55"))

	tests := []struct {
		name    string
		stored  string
		attempt string
		want    Match
	}{
		{name: "bcrypt match", stored: stored, attempt: "pa55", want: MatchHashed},
		{name: "bcrypt mismatch", stored: stored, attempt: "nope", want: NoMatch},
		{name: "legacy plaintext", stored: "pa55", attempt: "pa55", want: MatchLegacyPlaintext},
		{name: "legacy digest", stored: digest, attempt: "pa55", want: MatchLegacyPlaintext},
		{name: "legacy digest mismatch", stored: digest, attempt: "other", want: NoMatch},
		{name: "digest typed verbatim", stored: digest, attempt: digest, want: NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Verify(tt.stored, tt.attempt))
		})
	}
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("", 0)
	require.NoError(t, err)
	require.IsType(t, SHA256Hasher{}, h)

	h, err = NewHasher("bcrypt", 0)
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, h.(BcryptHasher).Cost)

	_, err = NewHasher("md5", 0)
	require.Error(t, err)
}

func TestValidateSHA256(t *testing.T) {
	assert.False(t, ValidateSHA256("123"))
	assert.False(t, ValidateSHA256("A665A45920422F9D417E4867EFDC4FB8A04A1F3FFF1FA07E998E86F7F7A27AE3"))
	assert.True(t, ValidateSHA256(ComputeSHA256(nil)))
}
