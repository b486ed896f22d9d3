package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/referral"
	"github.com/unioncore/dispatch/pkg/db"
)

// TerminateParams describes one dispatch ending.
type TerminateParams struct {
	DispatchID string
	// Reason is one of the model.Term* constants.
	Reason  string
	EndDate time.Time
}

// Terminate closes a working dispatch and routes the registration
// consequences: a short-call end or layoff restores the member's queue
// position; a quit or discharge rolls the member off and opens a two-week
// by-name blackout at the employer.
func Terminate(ctx context.Context, store db.EngineStore, cal *referral.Calendar, logger *zap.Logger, params TerminateParams, now time.Time) (*model.Dispatch, error) {
	var disp *model.Dispatch
	err := withRetry(logger, DefaultRaceRetries, func() error {
		return store.InTx(ctx, func(tx db.EngineStore) error {
			var err error
			disp, err = tx.GetDispatch(ctx, params.DispatchID)
			if err != nil {
				return err
			}
			if disp.Status != model.DispatchWorking {
				return &model.StateConflictError{
					Rule:   model.RuleInvalidTransition,
					Detail: fmt.Sprintf("cannot terminate a %s dispatch", disp.Status),
				}
			}

			reg, err := tx.GetRegistration(ctx, disp.RegistrationID)
			if err != nil {
				return err
			}
			req, err := tx.GetRequest(ctx, disp.LaborRequestID)
			if err != nil {
				return err
			}

			end := params.EndDate
			if end.IsZero() {
				end = now
			}
			disp.TerminationReason = params.Reason
			disp.EndedAt = &end

			switch params.Reason {
			case model.TermQuit:
				disp.Status = model.DispatchQuit
			default:
				disp.Status = model.DispatchTerminated
			}
			if err := tx.UpdateDispatch(ctx, disp); err != nil {
				return err
			}

			switch params.Reason {
			case model.TermQuit, model.TermDischarge:
				if _, err := applyBlackout(ctx, tx, disp.MemberID, req.EmployerID, end); err != nil {
					return err
				}
				reg.Status = model.RegistrationRolledOff
				reg.RolloffReason = params.Reason
				reg.RolloffDate = end.Format(model.DateFormat)
				return tx.UpdateRegistration(ctx, reg)

			case model.TermShortCallEnd, model.TermLayoff:
				return settleShortCall(ctx, tx, cal, logger, disp, reg, end)

			default:
				// Normal completion: the registration stays terminal in
				// dispatched; re-entry requires a new registration.
				return nil
			}
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Dispatch terminated",
		zap.String("dispatch_id", disp.ID),
		zap.String("reason", params.Reason),
		zap.String("status", string(disp.Status)))
	return disp, nil
}

// settleShortCall decides whether a short-call ending restores the
// member's queue position. Calls over three business days consume one of
// the member's two per-cycle short calls; exceeding the limit means
// re-registration instead of restoration.
func settleShortCall(ctx context.Context, tx db.EngineStore, cal *referral.Calendar, logger *zap.Logger, disp *model.Dispatch, reg *model.Registration, end time.Time) error {
	if !disp.ShortCall || !cal.IsShortCall(disp.DispatchedAt, end) {
		// Layoff on a full call: restoration still applies, the short-call
		// counter does not.
		return restoreRegistration(ctx, tx, logger, reg, model.TermLayoff)
	}

	if cal.CountsAgainstShortCallLimit(disp.DispatchedAt, end) {
		reg.ShortCallCount++
		if reg.ShortCallCount > referral.ShortCallLimitPerCycle {
			reg.Status = model.RegistrationExpired
			reg.RolloffReason = "short_call_limit"
			reg.RolloffDate = end.Format(model.DateFormat)
			logger.Info("Short-call limit reached, re-registration required",
				zap.String("registration_id", reg.ID),
				zap.Int("short_calls", reg.ShortCallCount))
			return tx.UpdateRegistration(ctx, reg)
		}
	}

	return restoreRegistration(ctx, tx, logger, reg, model.TermShortCallEnd)
}
