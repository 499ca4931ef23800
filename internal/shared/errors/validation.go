package errors

import (
	"fmt"
	"strings"
)

// FieldError is one entry of a 422 body: the path to the offending field and
// the reason it was rejected.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

// Path renders Loc as "body -> cliente -> celular".
func (f FieldError) Path() string {
	parts := make([]string, 0, len(f.Loc))
	for _, seg := range f.Loc {
		switch v := seg.(type) {
		case string:
			parts = append(parts, v)
		case float64:
			parts = append(parts, fmt.Sprintf("%d", int64(v)))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, " -> ")
}

// ValidationBody is the 422 response shape: {"detail": [FieldError...]}.
type ValidationBody struct {
	Detail []FieldError `json:"detail"`
}

// FlattenFieldErrors joins field errors into one display line:
// "loc0 -> loc1: msg; loc0 -> loc2: msg".
func FlattenFieldErrors(fields []FieldError) string {
	if len(fields) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		path := f.Path()
		if path == "" {
			msgs = append(msgs, f.Msg)
			continue
		}
		msgs = append(msgs, path+": "+f.Msg)
	}
	return strings.Join(msgs, "; ")
}
