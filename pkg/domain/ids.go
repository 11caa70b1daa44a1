package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	dErrors "bizhealth/pkg/domain-errors"
)

// RunID identifies one execution of the assessment pipeline for one company
// submission. Invariant: the value has the form BH-YYYYMMDD-HHMMSS and
// encodes a real calendar time.
//
// Usage: construct via NewRunID for new runs and ParseRunID at trust
// boundaries; direct casting bypasses validation.
type RunID string

const runIDLayout = "20060102-150405"

var runIDPattern = regexp.MustCompile(`^BH-\d{8}-\d{6}$`)

// NewRunID derives the run identifier for a run started at t (UTC).
func NewRunID(t time.Time) RunID {
	return RunID("BH-" + t.UTC().Format(runIDLayout))
}

// ParseRunID constructs a RunID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or
// names an impossible date.
func ParseRunID(s string) (RunID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "run id cannot be empty")
	}
	if !runIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "run id must match BH-YYYYMMDD-HHMMSS")
	}
	if _, err := time.Parse(runIDLayout, s[3:]); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "run id encodes an invalid timestamp")
	}
	return RunID(s), nil
}

// StartedAt returns the UTC start time encoded in the id. The zero time is
// returned for ids that were not built through NewRunID or ParseRunID.
func (id RunID) StartedAt() time.Time {
	if len(id) != len("BH-")+len(runIDLayout) {
		return time.Time{}
	}
	t, err := time.Parse(runIDLayout, string(id)[3:])
	if err != nil {
		return time.Time{}
	}
	return t
}

func (id RunID) String() string {
	return string(id)
}

// IsNil reports whether the id is unset.
func (id RunID) IsNil() bool {
	return id == ""
}

// IssueID identifies a single validation issue within a run's log.
type IssueID uuid.UUID

// NewIssueID returns a random issue id.
func NewIssueID() IssueID {
	return IssueID(uuid.New())
}

func (id IssueID) String() string {
	return uuid.UUID(id).String()
}

func (id IssueID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText encodes the id as its canonical UUID string.
func (id IssueID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts a canonical UUID string.
func (id *IssueID) UnmarshalText(data []byte) error {
	u, err := uuid.ParseBytes(data)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid issue id")
	}
	*id = IssueID(u)
	return nil
}
