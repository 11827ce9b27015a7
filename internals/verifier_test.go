package internals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyNewFile(t *testing.T) {
	v := &Verifier{History: NewHistoryIndex()}
	entry := v.Verify("a.txt", map[Algorithm][]byte{AlgoMD5: {0x01}})
	assert.Equal(t, OutcomeNewFile, entry.Outcome)
}

func TestVerifyUnmodifiedFile(t *testing.T) {
	history := BuildHistoryIndex([]Generation{genWithFile(1, "a.txt", OutcomeNewFile, AlgoMD5, []byte{0x01})})
	v := &Verifier{History: history}
	entry := v.Verify("a.txt", map[Algorithm][]byte{AlgoMD5: {0x01}})
	assert.Equal(t, OutcomeVerified, entry.Outcome)
}

func TestVerifyExtendedAlgorithm(t *testing.T) {
	history := BuildHistoryIndex([]Generation{genWithFile(1, "a.txt", OutcomeNewFile, AlgoMD5, []byte{0x01})})
	v := &Verifier{History: history}
	entry := v.Verify("a.txt", map[Algorithm][]byte{AlgoMD5: {0x01}, AlgoSHA1: {0x02}})
	assert.Equal(t, OutcomeVerifiedAndExtended, entry.Outcome)
}

func TestVerifyHashMismatch(t *testing.T) {
	history := BuildHistoryIndex([]Generation{genWithFile(1, "a.txt", OutcomeNewFile, AlgoMD5, []byte{0x01})})
	v := &Verifier{History: history}
	entry := v.Verify("a.txt", map[Algorithm][]byte{AlgoMD5: {0xFF}})
	assert.Equal(t, OutcomeHashMismatch, entry.Outcome)
	assert.Equal(t, AlgoMD5, entry.MismatchAlgo)
	assert.Equal(t, []byte{0x01}, entry.MismatchOld)
	assert.Equal(t, []byte{0xFF}, entry.MismatchNew)
}

func TestVerifyMissing(t *testing.T) {
	history := BuildHistoryIndex([]Generation{genWithFile(1, "a.txt", OutcomeNewFile, AlgoMD5, []byte{0x01})})
	v := &Verifier{History: history}
	entry := v.VerifyMissing("a.txt")
	assert.Equal(t, OutcomeMissing, entry.Outcome)
}

func TestMissingPathsOnlyReportsLastKnownPresent(t *testing.T) {
	gen1 := genWithFile(1, "a.txt", OutcomeNewFile, AlgoMD5, []byte{0x01})
	gen2 := Generation{Number: 2, Files: []FileEntry{{Path: "b.txt", Outcome: OutcomeMissing}}}
	history := BuildHistoryIndex([]Generation{gen1, gen2})
	v := &Verifier{History: history}

	missing := v.MissingPaths(map[string]bool{})
	assert.ElementsMatch(t, []string{"a.txt"}, missing)
}
