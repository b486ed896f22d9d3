package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/db"
)

// CheckinResult is a check-in outcome. Late is set when the member checked
// in past the deadline: the dispatch is not auto-rejected but is flagged
// for staff review.
type CheckinResult struct {
	Dispatch *model.Dispatch
	Late     bool
}

// ConfirmCheckin moves an offered dispatch to working when the member
// reports in.
func ConfirmCheckin(ctx context.Context, store db.EngineStore, logger *zap.Logger, dispatchID string, checkinTime time.Time) (*CheckinResult, error) {
	result := &CheckinResult{}
	err := store.InTx(ctx, func(tx db.EngineStore) error {
		disp, err := tx.GetDispatch(ctx, dispatchID)
		if err != nil {
			return err
		}
		if disp.Status != model.DispatchOffered && disp.Status != model.DispatchAccepted {
			return &model.StateConflictError{
				Rule:   model.RuleInvalidTransition,
				Detail: fmt.Sprintf("cannot check in a %s dispatch", disp.Status),
			}
		}

		result.Late = checkinTime.After(disp.CheckInDeadline)
		if result.Late {
			disp.ReviewFlagged = true
		}

		if disp.Status == model.DispatchOffered {
			disp.Status = model.DispatchAccepted
			if err := tx.UpdateDispatch(ctx, disp); err != nil {
				return err
			}
		}
		disp.Status = model.DispatchWorking
		if err := tx.UpdateDispatch(ctx, disp); err != nil {
			return err
		}

		result.Dispatch = disp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Late {
		logger.Warn("Late check-in flagged for review",
			zap.String("dispatch_id", dispatchID),
			zap.Time("deadline", result.Dispatch.CheckInDeadline),
			zap.Time("checked_in", checkinTime))
	} else {
		logger.Info("Dispatch checked in", zap.String("dispatch_id", dispatchID))
	}
	return result, nil
}
