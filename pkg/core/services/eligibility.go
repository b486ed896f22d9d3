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

// blackoutDays is the post-quit/discharge restriction span for
// Foreperson-by-Name requests at the affected employer.
const blackoutDays = 14

// suspensionDays is the bidding suspension applied on the second bid
// rejection inside a rolling twelve-month window.
const suspensionDays = 365

// CheckSuspended reports whether the member is under a bidding suspension
// at the given date.
func CheckSuspended(ctx context.Context, store db.PenaltyStore, memberID string, at time.Time) (bool, error) {
	suspended, _, err := suspendedUntil(ctx, store, memberID, at.Format(model.DateFormat))
	return suspended, err
}

func suspendedUntil(ctx context.Context, store db.PenaltyStore, memberID, date string) (bool, string, error) {
	infractions, err := store.ListInfractions(ctx, memberID)
	if err != nil {
		return false, "", err
	}
	for _, inf := range infractions {
		if inf.SuspendedUntil != "" && date <= inf.SuspendedUntil {
			return true, inf.SuspendedUntil, nil
		}
	}
	return false, "", nil
}

// CheckBlackedOut reports whether the member is blacked out at the
// employer on the given date.
func CheckBlackedOut(ctx context.Context, store db.PenaltyStore, memberID, employerID string, at time.Time) (bool, error) {
	blackedOut, _, err := blackoutUntil(ctx, store, memberID, employerID, at.Format(model.DateFormat))
	return blackedOut, err
}

func blackoutUntil(ctx context.Context, store db.PenaltyStore, memberID, employerID, date string) (bool, string, error) {
	blackouts, err := store.ListBlackouts(ctx, memberID)
	if err != nil {
		return false, "", err
	}
	for _, b := range blackouts {
		if b.EmployerID == employerID && b.CoversOn(date) {
			return true, b.EndDate, nil
		}
	}
	return false, "", nil
}

// CheckExempt reports whether an exemption covers the member on the date.
func CheckExempt(ctx context.Context, store db.PenaltyStore, memberID string, at time.Time) (bool, error) {
	_, ok, err := activeExemption(ctx, store, memberID, at.Format(model.DateFormat))
	return ok, err
}

func activeExemption(ctx context.Context, store db.PenaltyStore, memberID, date string) (*model.Exemption, bool, error) {
	exemptions, err := store.ListExemptions(ctx, memberID)
	if err != nil {
		return nil, false, err
	}
	for i := range exemptions {
		if exemptions[i].ActiveOn(date) {
			return &exemptions[i], true, nil
		}
	}
	return nil, false, nil
}

// GrantExemption records an exemption for a member.
func GrantExemption(ctx context.Context, store db.PenaltyStore, logger *zap.Logger, ex model.Exemption) (*model.Exemption, error) {
	if !ex.Reason.IsValid() {
		return nil, &model.ValidationError{
			Field:  "reason",
			Detail: fmt.Sprintf("%q is not a recognized exemption reason", ex.Reason),
		}
	}
	if _, err := time.Parse(model.DateFormat, ex.StartDate); err != nil {
		return nil, &model.ValidationError{Field: "start_date", Detail: err.Error()}
	}
	if ex.EndDate != "" {
		if _, err := time.Parse(model.DateFormat, ex.EndDate); err != nil {
			return nil, &model.ValidationError{Field: "end_date", Detail: err.Error()}
		}
		if ex.EndDate < ex.StartDate {
			return nil, &model.ValidationError{Field: "end_date", Detail: "end date precedes start date"}
		}
	}

	ex.ID = uuid.New().String()
	if err := store.CreateExemption(ctx, &ex); err != nil {
		return nil, err
	}

	logger.Info("Exemption granted",
		zap.String("member_id", ex.MemberID),
		zap.String("reason", string(ex.Reason)),
		zap.String("start", ex.StartDate),
		zap.String("end", ex.EndDate))
	return &ex, nil
}

// RecordBidRejection applies the two-strike rule: a second rejection within
// a rolling twelve-month window suspends the member from bidding for a
// year. The dispatch moves to rejected and the registration returns to the
// book with its queue position intact; the infraction, not a check mark,
// is the penalty for walking away from a won bid. Returns the infraction,
// whose SuspendedUntil is set when the threshold was crossed.
func RecordBidRejection(ctx context.Context, store db.EngineStore, logger *zap.Logger, memberID, dispatchID string, now time.Time) (*model.BiddingInfraction, error) {
	var inf *model.BiddingInfraction
	err := store.InTx(ctx, func(tx db.EngineStore) error {
		disp, err := tx.GetDispatch(ctx, dispatchID)
		if err != nil {
			return err
		}
		if disp.MemberID != memberID {
			return &model.ValidationError{
				Field:  "dispatch_id",
				Detail: fmt.Sprintf("dispatch %s does not belong to member %s", dispatchID, memberID),
			}
		}
		if !disp.Status.CanTransition(model.DispatchRejected) {
			return &model.StateConflictError{
				Rule:   model.RuleInvalidTransition,
				Detail: fmt.Sprintf("cannot reject a %s dispatch", disp.Status),
			}
		}

		disp.Status = model.DispatchRejected
		disp.EndedAt = &now
		if err := tx.UpdateDispatch(ctx, disp); err != nil {
			return err
		}

		reg, err := tx.GetRegistration(ctx, disp.RegistrationID)
		if err != nil {
			return err
		}
		if reg.Status == model.RegistrationDispatched {
			if err := restoreRegistration(ctx, tx, logger, reg, "bid_rejection"); err != nil {
				return err
			}
		}

		since := now.AddDate(0, 0, -suspensionDays).Format(model.DateFormat)
		prior, err := tx.ListInfractionsSince(ctx, memberID, since)
		if err != nil {
			return err
		}

		inf = &model.BiddingInfraction{
			ID:             uuid.New().String(),
			MemberID:       memberID,
			InfractionDate: now.Format(model.DateFormat),
			DispatchID:     dispatchID,
		}
		if len(prior) >= 1 {
			inf.SuspendedUntil = now.AddDate(0, 0, suspensionDays).Format(model.DateFormat)
		}
		return tx.CreateInfraction(ctx, inf)
	})
	if err != nil {
		return nil, err
	}

	if inf.SuspendedUntil != "" {
		logger.Warn("Bidding suspension applied",
			zap.String("member_id", memberID),
			zap.String("suspended_until", inf.SuspendedUntil))
	} else {
		logger.Info("Bid rejection recorded", zap.String("member_id", memberID))
	}
	return inf, nil
}

// applyBlackout bars the member from by-name requests at the employer for
// two weeks past the dispatch end.
func applyBlackout(ctx context.Context, store db.PenaltyStore, memberID, employerID string, endDate time.Time) (*model.MemberBlackout, error) {
	b := &model.MemberBlackout{
		ID:         uuid.New().String(),
		MemberID:   memberID,
		EmployerID: employerID,
		StartDate:  endDate.Format(model.DateFormat),
		EndDate:    endDate.AddDate(0, 0, blackoutDays).Format(model.DateFormat),
	}
	if err := store.CreateBlackout(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
