package internals

import (
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedAlgorithms(t *testing.T) {
	algos := SupportedAlgorithms()
	require.Len(t, algos, 5)
	for _, a := range algos {
		assert.True(t, IsSupportedAlgorithm(a))
	}
	assert.False(t, IsSupportedAlgorithm(Algorithm("nonsense")))
}

func TestNewHasherRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewHasher(Algorithm("nonsense"))
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

// TestHashFileMultiAlgoSinglePass checks that HashFile produces the same
// digest for one algorithm whether it is hashed alone or alongside every
// other supported algorithm in one pass.
func TestHashFileMultiAlgoSinglePass(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/example.txt"
	require.NoError(t, os.WriteFile(path, []byte("dupfiles generates rεports\n😊\n"), 0o644))

	solo, err := NewHasher(AlgoMD5)
	require.NoError(t, err)
	require.NoError(t, HashFile(path, solo))

	hashers := make([]Hasher, 0, len(SupportedAlgorithms()))
	for _, algo := range SupportedAlgorithms() {
		h, err := NewHasher(algo)
		require.NoError(t, err)
		hashers = append(hashers, h)
	}
	require.NoError(t, HashFile(path, hashers...))

	for _, h := range hashers {
		if h.Algorithm() == AlgoMD5 {
			assert.Equal(t, solo.Sum(), h.Sum())
		}
	}
}

func TestHashFileEmptyInput(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/empty.txt"
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	h, err := NewHasher(AlgoMD5)
	require.NoError(t, err)
	require.NoError(t, HashFile(path, h))
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hex.EncodeToString(h.Sum()))
}

func TestC4IdentifierShape(t *testing.T) {
	h, err := NewHasher(AlgoC4)
	require.NoError(t, err)
	h.Write([]byte("hello"))
	sum := string(h.Sum())
	assert.Len(t, sum, c4IDLength)
	assert.Equal(t, "c4", sum[:2])
}

func TestHasherResetAllowsReuse(t *testing.T) {
	h, err := NewHasher(AlgoSHA1)
	require.NoError(t, err)
	h.Write([]byte("a"))
	first := h.Sum()
	h.Reset()
	h.Write([]byte("a"))
	assert.Equal(t, first, h.Sum())
}
