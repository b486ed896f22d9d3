package model

import (
	"errors"
	"fmt"
)

// Rule identifiers carried by StateConflictError so a UI can render a
// specific, actionable message.
const (
	RuleAlreadyRegistered = "already_registered"
	RuleMemberBlackedOut  = "member_blacked_out"
	RuleNotDue            = "not_due"
	RuleWindowClosed      = "window_closed"
	RuleNotEligible       = "not_eligible"
	RuleRequestClosed     = "request_closed"
	RuleInvalidTransition = "invalid_transition"
	RuleLateCheckin       = "late_checkin"
	RuleWindowStillOpen   = "window_still_open"
)

// ValidationError reports malformed input. It is surfaced immediately and
// never retried.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Detail)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Detail)
}

// StateConflictError reports an operation rejected by a business rule. It
// is an actionable message for staff or the member, not a system fault.
type StateConflictError struct {
	Rule   string
	Detail string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Detail)
}

// NotFoundError reports a missing entity lookup.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// RaceLostError reports that another writer mutated the same row between
// read and write. Callers retry with fresh reads before surfacing it.
type RaceLostError struct {
	Table    string
	RecordID string
}

func (e *RaceLostError) Error() string {
	return fmt.Sprintf("concurrent update lost on %s %s", e.Table, e.RecordID)
}

// IntegrityError reports a violated invariant that requires manual
// reconciliation. It is never auto-corrected because resolving conflicting
// history requires human judgment.
type IntegrityError struct {
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity invariant violated: %s", e.Detail)
}

// IsStateConflict reports whether err is a StateConflictError for the given
// rule (any rule when rule is empty).
func IsStateConflict(err error, rule string) bool {
	var sc *StateConflictError
	if !errors.As(err, &sc) {
		return false
	}
	return rule == "" || sc.Rule == rule
}

// IsRaceLost reports whether err is a RaceLostError.
func IsRaceLost(err error) bool {
	var rl *RaceLostError
	return errors.As(err, &rl)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
