package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationTransitions(t *testing.T) {
	tests := []struct {
		from    RegistrationStatus
		to      RegistrationStatus
		allowed bool
	}{
		{RegistrationActive, RegistrationDispatched, true},
		{RegistrationActive, RegistrationRolledOff, true},
		{RegistrationDispatched, RegistrationActive, true},
		{RegistrationDispatched, RegistrationExpired, true},
		{RegistrationRolledOff, RegistrationActive, false},
		{RegistrationExpired, RegistrationActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}

	assert.True(t, RegistrationRolledOff.Terminal())
	assert.True(t, RegistrationExpired.Terminal())
	assert.False(t, RegistrationActive.Terminal())
	assert.False(t, RegistrationDispatched.Terminal())
}

func TestDispatchTransitions(t *testing.T) {
	assert.True(t, DispatchOffered.CanTransition(DispatchAccepted))
	assert.True(t, DispatchAccepted.CanTransition(DispatchWorking))
	assert.True(t, DispatchWorking.CanTransition(DispatchQuit))
	assert.False(t, DispatchOffered.CanTransition(DispatchWorking))
	assert.False(t, DispatchTerminated.CanTransition(DispatchWorking))

	assert.True(t, DispatchQuit.Terminal())
	assert.True(t, DispatchNoShow.Terminal())
	assert.False(t, DispatchWorking.Terminal())
}

func TestRequestTransitions(t *testing.T) {
	assert.True(t, RequestOpen.CanTransition(RequestFilled))
	assert.True(t, RequestPartiallyFilled.CanTransition(RequestFilled))
	assert.False(t, RequestFilled.CanTransition(RequestOpen))
	assert.False(t, RequestCancelled.CanTransition(RequestOpen))
}

func TestExemptionActiveOn(t *testing.T) {
	ex := Exemption{StartDate: "2026-02-01", EndDate: "2026-03-01"}

	assert.False(t, ex.ActiveOn("2026-01-31"))
	assert.True(t, ex.ActiveOn("2026-02-01"))
	assert.True(t, ex.ActiveOn("2026-03-01"))
	assert.False(t, ex.ActiveOn("2026-03-02"))

	openEnded := Exemption{StartDate: "2026-02-01"}
	assert.True(t, openEnded.ActiveOn("2027-12-31"))

	pending := Exemption{StartDate: "2026-02-01", RequiresApproval: true}
	assert.False(t, pending.ActiveOn("2026-02-15"))
	pending.Approved = true
	assert.True(t, pending.ActiveOn("2026-02-15"))
}

func TestBlackoutCoversOn(t *testing.T) {
	b := MemberBlackout{StartDate: "2026-03-10", EndDate: "2026-03-24"}

	assert.False(t, b.CoversOn("2026-03-09"))
	assert.True(t, b.CoversOn("2026-03-10"))
	assert.True(t, b.CoversOn("2026-03-24"))
	assert.False(t, b.CoversOn("2026-03-25"))
}

func TestCheckMarkExceptions(t *testing.T) {
	assert.True(t, IsCheckMarkException("short_call"))
	assert.True(t, IsCheckMarkException("mou_site"))
	assert.False(t, IsCheckMarkException("overslept"))
	assert.False(t, IsCheckMarkException(""))

	reason, ok := EvaluateCheckMarkExceptions(&LaborRequest{ShortCall: true}, DefaultCheckMarkExceptionRules)
	assert.True(t, ok)
	assert.Equal(t, ExceptionShortCall, reason)

	_, ok = EvaluateCheckMarkExceptions(&LaborRequest{}, DefaultCheckMarkExceptionRules)
	assert.False(t, ok)
}
