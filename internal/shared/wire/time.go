// Package wire holds JSON value types shared by the client DTOs and the
// development backend.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Time decodes the backend's ISO-8601 timestamps, which may omit the zone
// offset (naive UTC). It always encodes as RFC 3339 with nanoseconds.
type Time struct {
	time.Time
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func NewTime(t time.Time) Time { return Time{Time: t.UTC()} }

// ParseTime accepts any layout the backend is known to emit.
func ParseTime(value string) (Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Time{Time: t.UTC()}, nil
		}
	}
	return Time{}, fmt.Errorf("wire: unrecognised timestamp %q", value)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("wire: timestamp must be a string: %w", err)
	}
	parsed, err := ParseTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
