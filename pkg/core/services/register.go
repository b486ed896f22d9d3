package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/priority"
	"github.com/unioncore/dispatch/pkg/db"
)

// RegisterParams carries one registration request.
type RegisterParams struct {
	MemberID       string
	BookCode       string
	Classification string
	// EmployerID, when set, scopes the post-quit blackout check to the
	// employer the caller is registering toward (Foreperson-by-Name flow).
	EmployerID string
}

// Register places a member on tier 1 of a book. The priority number is the
// registration day's encoding plus the next intra-day sequence on the
// book, which yields FIFO ordering without needing a unique composite key.
func Register(ctx context.Context, store db.EngineStore, members MemberDirectory, logger *zap.Logger, params RegisterParams, now time.Time) (*model.Registration, error) {
	member, err := members.GetMember(ctx, params.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member %s: %w", params.MemberID, err)
	}
	if !member.IsActive {
		return nil, &model.StateConflictError{
			Rule:   model.RuleNotEligible,
			Detail: fmt.Sprintf("member %s is not in good standing", params.MemberID),
		}
	}
	if !member.HasClassification(params.Classification) {
		return nil, &model.ValidationError{
			Field:  "classification",
			Detail: fmt.Sprintf("member %s does not hold classification %q", params.MemberID, params.Classification),
		}
	}

	book, err := store.GetBookByCode(ctx, params.BookCode)
	if err != nil {
		return nil, err
	}
	if !book.Active {
		return nil, &model.StateConflictError{
			Rule:   model.RuleNotEligible,
			Detail: fmt.Sprintf("book %q is not accepting registrations", book.Code),
		}
	}

	today := now.Format(model.DateFormat)
	if params.EmployerID != "" {
		blackedOut, until, err := blackoutUntil(ctx, store, params.MemberID, params.EmployerID, today)
		if err != nil {
			return nil, err
		}
		if blackedOut {
			return nil, &model.StateConflictError{
				Rule:   model.RuleMemberBlackedOut,
				Detail: fmt.Sprintf("member %s is blacked out at employer %s until %s", params.MemberID, params.EmployerID, until),
			}
		}
	}

	var reg *model.Registration
	err = store.InTx(ctx, func(tx db.EngineStore) error {
		existing, err := tx.FindActiveRegistration(ctx, params.MemberID, book.ID, params.Classification)
		if err != nil {
			return err
		}
		if existing != nil {
			return &model.StateConflictError{
				Rule: model.RuleAlreadyRegistered,
				Detail: fmt.Sprintf("member %s already holds an active %s registration on book %q since %s",
					params.MemberID, params.Classification, book.Code, existing.RegisteredAt.Format(model.DateFormat)),
			}
		}

		day := priority.Encode(now)
		seq, err := tx.NextPrioritySeq(ctx, book.ID, day)
		if err != nil {
			return err
		}

		reg = &model.Registration{
			ID:             uuid.New().String(),
			MemberID:       params.MemberID,
			BookID:         book.ID,
			Classification: params.Classification,
			Tier:           1,
			PriorityDay:    day,
			PrioritySeq:    seq,
			Status:         model.RegistrationActive,
			RegisteredAt:   now,
			NextResignDue:  now.AddDate(0, 0, book.ResignIntervalDays).Format(model.DateFormat),
		}
		return tx.CreateRegistration(ctx, reg)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Member registered",
		zap.String("member_id", reg.MemberID),
		zap.String("book", book.Code),
		zap.String("priority", priority.Of(reg).String()),
		zap.String("next_resign_due", reg.NextResignDue))
	return reg, nil
}
