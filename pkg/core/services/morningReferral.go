package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/window"
	"github.com/unioncore/dispatch/pkg/db"
)

// ReferralResult reports one morning-referral run for a request.
type ReferralResult struct {
	Request    *model.LaborRequest
	Dispatches []model.Dispatch
}

// DispatchMorningReferral fills a request's open positions from the
// book's ranked candidates, walking tiers in order. Candidate selection
// and the dispatch writes share one transaction so two concurrent requests
// can never offer the same top-ranked member twice. Partial fill is a
// valid terminal outcome. Running against a closed request is a no-op.
func DispatchMorningReferral(ctx context.Context, store db.EngineStore, members MemberDirectory, logger *zap.Logger, sched window.Schedule, requestID string, now time.Time) (*ReferralResult, error) {
	result := &ReferralResult{}
	err := withRetry(logger, DefaultRaceRetries, func() error {
		result = &ReferralResult{}
		return store.InTx(ctx, func(tx db.EngineStore) error {
			req, err := tx.GetRequest(ctx, requestID)
			if err != nil {
				return err
			}
			result.Request = req

			if !req.Open() {
				return nil
			}

			book, err := tx.GetBook(ctx, req.BookID)
			if err != nil {
				return err
			}

			today := now.Format(model.DateFormat)
			open := req.PositionsRequested - req.PositionsFilled

			for tier := 1; tier <= book.TierCount && open > 0; tier++ {
				candidates, err := RankCandidates(ctx, tx, members, logger, RankParams{
					BookID:        req.BookID,
					Tier:          tier,
					AgreementType: req.AgreementType,
					EmployerID:    req.EmployerID,
				}, now)
				if err != nil {
					return err
				}

				for i := range candidates {
					if open == 0 {
						break
					}
					reg := candidates[i]

					// One job per member per day.
					already, err := tx.CountMemberDispatchesOn(ctx, reg.MemberID, today)
					if err != nil {
						return err
					}
					if already > 0 {
						continue
					}

					disp := &model.Dispatch{
						ID:                 uuid.New().String(),
						RegistrationID:     reg.ID,
						LaborRequestID:     req.ID,
						MemberID:           reg.MemberID,
						Method:             model.MethodMorningReferral,
						DispatchedAt:       now,
						DispatchedOn:       today,
						Status:             model.DispatchOffered,
						CheckInDeadline:    sched.CheckInDeadline.At(now),
						ShortCall:          req.ShortCall,
						GeneratedCheckMark: false,
					}
					if err := tx.CreateDispatch(ctx, disp); err != nil {
						return err
					}

					reg.Status = model.RegistrationDispatched
					if err := tx.UpdateRegistration(ctx, &reg); err != nil {
						return err
					}

					req.PositionsFilled++
					open--
					result.Dispatches = append(result.Dispatches, *disp)
				}
			}

			if req.PositionsFilled >= req.PositionsRequested {
				req.Status = model.RequestFilled
			} else if req.PositionsFilled > 0 {
				req.Status = model.RequestPartiallyFilled
			}
			return tx.UpdateRequest(ctx, req)
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Morning referral processed",
		zap.String("request_id", requestID),
		zap.Int("dispatched", len(result.Dispatches)),
		zap.Int("filled", result.Request.PositionsFilled),
		zap.Int("requested", result.Request.PositionsRequested),
		zap.String("status", string(result.Request.Status)))
	return result, nil
}
