package internals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIOErrorUnwraps(t *testing.T) {
	inner := errors.New("disk full")
	err := &IOError{Path: "/tmp/x", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "/tmp/x")
}

func TestVerificationFailedErrorMessage(t *testing.T) {
	err := &VerificationFailedError{Mismatches: 2, Missing: 1}
	assert.Contains(t, err.Error(), "2 mismatch")
	assert.Contains(t, err.Error(), "1 missing")
}

func TestOutcomeSucceeds(t *testing.T) {
	assert.True(t, OutcomeNewFile.Succeeds())
	assert.True(t, OutcomeVerified.Succeeds())
	assert.True(t, OutcomeVerifiedAndExtended.Succeeds())
	assert.False(t, OutcomeHashMismatch.Succeeds())
	assert.False(t, OutcomeMissing.Succeeds())
}
