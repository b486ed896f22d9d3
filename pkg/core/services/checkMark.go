package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/db"
)

// CheckMarkParams describes one declined or missed dispatch offer.
type CheckMarkParams struct {
	RegistrationID string
	// Date defaults to the current day when empty.
	Date        string
	Reason      string
	IsException bool
}

// ApplyCheckMark records a penalty event. Exception marks (and marks
// accrued under an active exemption) persist for audit without touching
// the counter. A repeat non-exempt mark on the same day is idempotent. The
// third counted mark rolls the registration off its book.
func ApplyCheckMark(ctx context.Context, store db.EngineStore, logger *zap.Logger, params CheckMarkParams, now time.Time) (*model.Registration, error) {
	date := params.Date
	if date == "" {
		date = now.Format(model.DateFormat)
	} else if _, err := time.Parse(model.DateFormat, date); err != nil {
		return nil, &model.ValidationError{Field: "date", Detail: err.Error()}
	}

	var reg *model.Registration
	err := withRetry(logger, DefaultRaceRetries, func() error {
		return store.InTx(ctx, func(tx db.EngineStore) error {
			var err error
			reg, err = tx.GetRegistration(ctx, params.RegistrationID)
			if err != nil {
				return err
			}
			if reg.Status.Terminal() {
				return &model.StateConflictError{
					Rule:   model.RuleNotEligible,
					Detail: fmt.Sprintf("registration is %s and no longer accrues check marks", reg.Status),
				}
			}

			exception := params.IsException || model.IsCheckMarkException(params.Reason)
			if !exception {
				// Accrual freezes while an exemption covers the date.
				_, exempt, err := activeExemption(ctx, tx, reg.MemberID, date)
				if err != nil {
					return err
				}
				exception = exempt
			}

			if exception {
				mark := &model.CheckMark{
					ID:          uuid.New().String(),
					MemberID:    reg.MemberID,
					BookID:      reg.BookID,
					Date:        date,
					Reason:      params.Reason,
					IsException: true,
				}
				if err := tx.CreateCheckMark(ctx, mark); err != nil {
					return err
				}
				logger.Info("Exception check mark recorded",
					zap.String("member_id", reg.MemberID),
					zap.String("reason", params.Reason))
				return nil
			}

			existing, err := tx.FindCheckMark(ctx, reg.MemberID, reg.BookID, date)
			if err != nil {
				return err
			}
			if existing != nil {
				// One counted mark per member, book, and day.
				logger.Debug("Duplicate same-day check mark ignored",
					zap.String("member_id", reg.MemberID),
					zap.String("date", date))
				return nil
			}

			mark := &model.CheckMark{
				ID:       uuid.New().String(),
				MemberID: reg.MemberID,
				BookID:   reg.BookID,
				Date:     date,
				Reason:   params.Reason,
			}
			if err := tx.CreateCheckMark(ctx, mark); err != nil {
				return err
			}

			book, err := tx.GetBook(ctx, reg.BookID)
			if err != nil {
				return err
			}

			reg.CheckMarkCount++
			if reg.CheckMarkCount > book.MaxCheckMarks {
				reg.Status = model.RegistrationRolledOff
				reg.RolloffReason = model.RolloffThreeCheckMarks
				reg.RolloffDate = date
				logger.Warn("Registration rolled off",
					zap.String("registration_id", reg.ID),
					zap.String("member_id", reg.MemberID),
					zap.Int("check_marks", reg.CheckMarkCount))
			}
			return tx.UpdateRegistration(ctx, reg)
		})
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}
