package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	require.True(t, Matches("42", 42))
	require.False(t, Matches(" 42", 42))
	require.False(t, Matches("042", 42))
	require.False(t, Matches("PKG-42", 42))
}

func TestNewFailureReport(t *testing.T) {
	_, err := NewFailureReport("   ")
	require.ErrorIs(t, err, ErrReasonRequired)

	report, err := NewFailureReport(" Cliente ausente ")
	require.NoError(t, err)
	require.Equal(t, DefaultFailureReason, report.Reason)
}

func TestMismatchError(t *testing.T) {
	err := &MismatchError{Scanned: "41", Expected: 42}
	require.Equal(t, "scanned 41 but expected 42", err.Error())
}
