package passhash_test

import (
	"strings"
	"testing"

	"github.com/dockguard/dockguard/internal/pkg/passhash"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := passhash.New()

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	require.NotContains(t, encoded, "correct horse")

	ok, err := h.Verify(encoded, "correct horse battery staple")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify(encoded, "wrong password")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHash_SaltedPerCall(t *testing.T) {
	h := passhash.New()

	first, err := h.Hash("same password")
	require.NoError(t, err)

	second, err := h.Hash("same password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestVerify_Malformed(t *testing.T) {
	h := passhash.New()

	for _, bad := range []string{"", "plaintext", "$bcrypt$whatever", "$argon2id$v=19$bad"} {
		_, err := h.Verify(bad, "password")
		require.ErrorIs(t, err, passhash.ErrMalformedHash, "input %q", bad)
	}
}
