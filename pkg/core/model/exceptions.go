package model

// CheckMarkExceptionReason enumerates job conditions that do not generate a
// check mark when declined. The classification is evaluated once at labor
// request creation and stored on the request, so the ranking path never
// re-derives policy.
type CheckMarkExceptionReason string

const (
	ExceptionSpecialtyWork     CheckMarkExceptionReason = "specialty_work"
	ExceptionMOUSite           CheckMarkExceptionReason = "mou_site"
	ExceptionEarlyStart        CheckMarkExceptionReason = "early_start"
	ExceptionUnderScale        CheckMarkExceptionReason = "under_scale"
	ExceptionShortCall         CheckMarkExceptionReason = "short_call"
	ExceptionEmployerRejection CheckMarkExceptionReason = "employer_rejection"
)

// CheckMarkExceptionRule decides whether a job condition exempts declines
// from check marks. Additional rules can be registered without touching the
// ranking or dispatch code.
type CheckMarkExceptionRule func(req *LaborRequest) (CheckMarkExceptionReason, bool)

// DefaultCheckMarkExceptionRules covers the conditions derivable from the
// request itself. Conditions known only at intake (specialty work, MOU
// site, employer rejection) are applied by the caller as explicit reasons.
var DefaultCheckMarkExceptionRules = []CheckMarkExceptionRule{
	func(req *LaborRequest) (CheckMarkExceptionReason, bool) {
		if req.ShortCall {
			return ExceptionShortCall, true
		}
		return "", false
	},
}

// EvaluateCheckMarkExceptions runs the rules against a request and returns
// the first matching exception reason, if any.
func EvaluateCheckMarkExceptions(req *LaborRequest, rules []CheckMarkExceptionRule) (CheckMarkExceptionReason, bool) {
	for _, rule := range rules {
		if reason, ok := rule(req); ok {
			return reason, true
		}
	}
	return "", false
}

// IsCheckMarkException reports whether the reason string names one of the
// enumerated exceptions.
func IsCheckMarkException(reason string) bool {
	switch CheckMarkExceptionReason(reason) {
	case ExceptionSpecialtyWork, ExceptionMOUSite, ExceptionEarlyStart,
		ExceptionUnderScale, ExceptionShortCall, ExceptionEmployerRejection:
		return true
	}
	return false
}
