package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/db"
)

// ReSign renews a registration's place on its book. Early re-signs are
// allowed; only a repeat on the same calendar day is rejected, so staff
// double-entry cannot shift the due date twice. Under an active exemption
// the call is a no-op that pushes the due date past the exemption window.
func ReSign(ctx context.Context, store db.EngineStore, logger *zap.Logger, registrationID string, now time.Time) (*model.Registration, error) {
	var reg *model.Registration
	err := withRetry(logger, DefaultRaceRetries, func() error {
		return store.InTx(ctx, func(tx db.EngineStore) error {
			var err error
			reg, err = tx.GetRegistration(ctx, registrationID)
			if err != nil {
				return err
			}
			if reg.Status != model.RegistrationActive {
				return &model.StateConflictError{
					Rule:   model.RuleNotEligible,
					Detail: fmt.Sprintf("registration is %s; only active registrations re-sign", reg.Status),
				}
			}

			today := now.Format(model.DateFormat)
			if reg.LastResign == today {
				return &model.StateConflictError{
					Rule:   model.RuleNotDue,
					Detail: fmt.Sprintf("already re-signed today; next re-sign due %s", reg.NextResignDue),
				}
			}

			book, err := tx.GetBook(ctx, reg.BookID)
			if err != nil {
				return err
			}

			exemption, exempt, err := activeExemption(ctx, tx, reg.MemberID, today)
			if err != nil {
				return err
			}
			if exempt {
				// Obligations are frozen. An open-ended exemption leaves the
				// due date untouched until review closes it.
				if exemption.EndDate != "" {
					end, err := time.Parse(model.DateFormat, exemption.EndDate)
					if err != nil {
						return fmt.Errorf("malformed exemption end date %q: %w", exemption.EndDate, err)
					}
					due := end.AddDate(0, 0, book.ResignIntervalDays).Format(model.DateFormat)
					if due > reg.NextResignDue {
						reg.NextResignDue = due
					}
				}
				logger.Info("Re-sign noop under exemption",
					zap.String("registration_id", reg.ID),
					zap.String("reason", string(exemption.Reason)),
					zap.String("next_resign_due", reg.NextResignDue))
				return tx.UpdateRegistration(ctx, reg)
			}

			reg.LastResign = today
			reg.NextResignDue = now.AddDate(0, 0, book.ResignIntervalDays).Format(model.DateFormat)
			return tx.UpdateRegistration(ctx, reg)
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Registration re-signed",
		zap.String("registration_id", reg.ID),
		zap.String("next_resign_due", reg.NextResignDue))
	return reg, nil
}
