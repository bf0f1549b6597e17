package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_VerifiesOriginalPassword(t *testing.T) {
	h, err := Hash("secret1")
	require.NoError(t, err)

	ok, err := Verify(h, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHash_NeverEqualsPlainPassword(t *testing.T) {
	h, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", h)
	assert.True(t, strings.HasPrefix(h, "$argon2id$"))
}

func TestHash_SaltedPerCall(t *testing.T) {
	h1, err := Hash("secret1")
	require.NoError(t, err)
	h2, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerify_WrongPassword(t *testing.T) {
	h, err := Hash("secret1")
	require.NoError(t, err)

	ok, err := Verify(h, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	_, err := Verify("not-a-hash", "secret1")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = Verify("$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "secret1")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
