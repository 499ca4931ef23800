package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNoActiveRoute is the empty state of the courier app, not a failure.
	ErrNoActiveRoute  = errors.New("no active route assigned")
	ErrNotVerified    = errors.New("scan the package before recording the outcome")
	ErrReasonRequired = errors.New("a reason is required for a failed delivery")
)

// DefaultFailureReason is offered when the courier is asked for a reason.
const DefaultFailureReason = "Cliente ausente"

// MismatchError reports a scan that does not belong to the stop's package.
type MismatchError struct {
	Scanned  string
	Expected int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("scanned %s but expected %d", e.Scanned, e.Expected)
}

// Matches compares a decoded barcode against a package identifier. The code
// is opaque: only an exact match of the decimal id is accepted.
func Matches(decoded string, packageID int64) bool {
	return decoded == strconv.FormatInt(packageID, 10)
}

// FailureReport is the body of a failed-delivery transition.
type FailureReport struct {
	Reason string `json:"motivo_fallo" validate:"required"`
}

// NewFailureReport trims reason and rejects blank input.
func NewFailureReport(reason string) (FailureReport, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return FailureReport{}, ErrReasonRequired
	}
	return FailureReport{Reason: reason}, nil
}
