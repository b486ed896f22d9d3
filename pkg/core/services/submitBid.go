package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/window"
	"github.com/unioncore/dispatch/pkg/db"
)

// SubmitBid records a member's online bid on an open labor request during
// the nightly window. Resubmitting while a bid is pending returns the
// existing bid unchanged. Eligibility is checked up front so an
// ineligible member learns at submission time, not at window close.
func SubmitBid(ctx context.Context, store db.EngineStore, members MemberDirectory, logger *zap.Logger, sched window.Schedule, memberID, requestID string, now time.Time) (*model.Bid, error) {
	if !sched.IsBiddingOpen(now) {
		next := sched.NextEvent(now)
		return nil, &model.StateConflictError{
			Rule: model.RuleWindowClosed,
			Detail: fmt.Sprintf("bidding is closed; window opens at %s",
				next.At.Format("2006-01-02 15:04")),
		}
	}

	var bid *model.Bid
	err := store.InTx(ctx, func(tx db.EngineStore) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.Open() {
			return &model.StateConflictError{
				Rule:   model.RuleRequestClosed,
				Detail: fmt.Sprintf("labor request is %s", req.Status),
			}
		}

		today := now.Format(model.DateFormat)
		suspended, until, err := suspendedUntil(ctx, tx, memberID, today)
		if err != nil {
			return err
		}
		if suspended {
			return &model.StateConflictError{
				Rule:   model.RuleNotEligible,
				Detail: fmt.Sprintf("member %s is suspended from bidding until %s", memberID, until),
			}
		}

		blackedOut, blackoutEnd, err := blackoutUntil(ctx, tx, memberID, req.EmployerID, today)
		if err != nil {
			return err
		}
		if blackedOut {
			return &model.StateConflictError{
				Rule:   model.RuleNotEligible,
				Detail: fmt.Sprintf("member %s is blacked out at employer %s until %s", memberID, req.EmployerID, blackoutEnd),
			}
		}

		reg, err := tx.ActiveOnBook(ctx, memberID, req.BookID)
		if err != nil {
			return err
		}
		if reg == nil {
			return &model.StateConflictError{
				Rule:   model.RuleNotEligible,
				Detail: fmt.Sprintf("member %s holds no active registration on the request's book", memberID),
			}
		}

		if req.AgreementType != "" && req.AgreementType != model.AgreementStandard {
			book, err := tx.GetBook(ctx, req.BookID)
			if err != nil {
				return err
			}
			// Non-standard requests draw from matching books, or from
			// members individually flagged for the agreement type.
			if book.AgreementType != req.AgreementType {
				member, err := members.GetMember(ctx, memberID)
				if err != nil {
					return err
				}
				if !member.EligibleFor(req.AgreementType) {
					return &model.StateConflictError{
						Rule:   model.RuleNotEligible,
						Detail: fmt.Sprintf("member %s is not flagged for %s work", memberID, req.AgreementType),
					}
				}
			}
		}

		existing, err := tx.FindPendingBid(ctx, requestID, memberID)
		if err != nil {
			return err
		}
		if existing != nil {
			bid = existing
			return nil
		}

		bid = &model.Bid{
			ID:             uuid.New().String(),
			LaborRequestID: requestID,
			MemberID:       memberID,
			RegistrationID: reg.ID,
			SubmittedAt:    now,
			Status:         model.BidPending,
		}
		return tx.CreateBid(ctx, bid)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Bid submitted",
		zap.String("bid_id", bid.ID),
		zap.String("member_id", memberID),
		zap.String("request_id", requestID))
	return bid, nil
}
