package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTime_DecodesNaiveAndZonedTimestamps(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-05-01T10:00:00.123456"`: time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC),
		`"2024-05-01T10:00:00Z"`:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		`"2024-05-01T12:00:00+02:00"`:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		`"2024-05-01"`:                 time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var got Time
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		require.True(t, want.Equal(got.Time), raw)
	}
}

func TestTime_NullAndGarbage(t *testing.T) {
	var got Time
	require.NoError(t, json.Unmarshal([]byte(`null`), &got))
	require.True(t, got.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"ayer"`), &got))
	require.Error(t, json.Unmarshal([]byte(`42`), &got))

	out, err := json.Marshal(Time{})
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}
