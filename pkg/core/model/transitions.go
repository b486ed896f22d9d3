package model

// Explicit transition tables. Statuses are only ever moved through these
// maps so drift between scattered boolean flags cannot occur.

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationActive:     {RegistrationDispatched, RegistrationRolledOff, RegistrationExpired},
	RegistrationDispatched: {RegistrationActive, RegistrationRolledOff, RegistrationExpired},
	// rolled_off and expired are terminal; re-entry requires a new row
}

var dispatchTransitions = map[DispatchStatus][]DispatchStatus{
	DispatchOffered:  {DispatchAccepted, DispatchRejected, DispatchNoShow},
	DispatchAccepted: {DispatchWorking, DispatchRejected, DispatchNoShow},
	DispatchWorking:  {DispatchTerminated, DispatchQuit},
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestOpen:            {RequestPartiallyFilled, RequestFilled, RequestCancelled, RequestExpired},
	RequestPartiallyFilled: {RequestFilled, RequestCancelled, RequestExpired},
}

// CanTransition reports whether the registration status may move to next.
func (s RegistrationStatus) CanTransition(next RegistrationStatus) bool {
	return contains(registrationTransitions[s], next)
}

// Terminal reports whether the registration status is final. A member must
// register anew to re-enter the book.
func (s RegistrationStatus) Terminal() bool {
	return s == RegistrationRolledOff || s == RegistrationExpired
}

// CanTransition reports whether the dispatch status may move to next.
func (s DispatchStatus) CanTransition(next DispatchStatus) bool {
	return contains(dispatchTransitions[s], next)
}

// Terminal reports whether the dispatch status is final.
func (s DispatchStatus) Terminal() bool {
	switch s {
	case DispatchTerminated, DispatchQuit, DispatchRejected, DispatchNoShow:
		return true
	}
	return false
}

// CanTransition reports whether the request status may move to next.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	return contains(requestTransitions[s], next)
}

func contains[T comparable](xs []T, x T) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
