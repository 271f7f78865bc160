package secrets

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRandomPasswordLengthAndAlphabet(t *testing.T) {
	p := RandomPassword(0)
	require.Len(t, p, DefaultPasswordLength)

	p = RandomPassword(64)
	require.Len(t, p, 64)
	for _, r := range p {
		require.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected character %q", r)
	}
}

func TestRandomPasswordNotRepeating(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		p := RandomPassword(20)
		_, dup := seen[p]
		require.False(t, dup, "password repeated: %s", p)
		seen[p] = struct{}{}
	}
}

func TestRandomNameIsUUID(t *testing.T) {
	a := RandomName()
	b := RandomName()
	require.NotEqual(t, a, b)

	_, err := uuid.Parse(a)
	require.NoError(t, err)
}
