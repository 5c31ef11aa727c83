package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonseca/fluxo/internal/crypto"
)

func TestAESCodec_RoundTrip(t *testing.T) {
	codec, err := crypto.NewAESCodec("test-passphrase")
	require.NoError(t, err)

	tests := []string{"123.45", "Mercado 3/12", "", "açaí & café"}

	for _, plaintext := range tests {
		encoded, err := codec.Encode(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encoded)

		decoded, err := codec.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decoded)
	}
}

func TestAESCodec_EncodeIsNonDeterministic(t *testing.T) {
	codec, err := crypto.NewAESCodec("test-passphrase")
	require.NoError(t, err)

	a, err := codec.Encode("100.00")
	require.NoError(t, err)
	b, err := codec.Encode("100.00")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestAESCodec_DecodeRejectsGarbage(t *testing.T) {
	codec, err := crypto.NewAESCodec("test-passphrase")
	require.NoError(t, err)

	for _, ct := range []string{"not base64!!", "aGVsbG8=", ""} {
		_, err := codec.Decode(ct)
		assert.ErrorIs(t, err, crypto.ErrUndecodable)
	}
}

func TestAESCodec_DecodeRejectsWrongKey(t *testing.T) {
	a, err := crypto.NewAESCodec("key-a")
	require.NoError(t, err)
	b, err := crypto.NewAESCodec("key-b")
	require.NoError(t, err)

	encoded, err := a.Encode("42.00")
	require.NoError(t, err)

	_, err = b.Decode(encoded)
	assert.ErrorIs(t, err, crypto.ErrUndecodable)
}

func TestNewAESCodec_EmptyPassphrase(t *testing.T) {
	_, err := crypto.NewAESCodec("")
	assert.Error(t, err)
}
