package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/priority"
	"github.com/unioncore/dispatch/pkg/core/window"
	"github.com/unioncore/dispatch/pkg/db"
)

// WindowCloseResult reports one window-close processing run.
type WindowCloseResult struct {
	Request          *model.LaborRequest
	Dispatches       []model.Dispatch
	Outranked        int
	AlreadyProcessed bool
}

// ProcessWindowClose converts the winning bids on a request into dispatch
// offers at the morning close. Bids are ranked by the bidder's
// registration priority; outranked bidders are released without penalty.
// The run is idempotent: invoking it again after the request was processed
// is a no-op, so an external scheduler may fire it more than once.
func ProcessWindowClose(ctx context.Context, store db.EngineStore, logger *zap.Logger, sched window.Schedule, requestID string, now time.Time) (*WindowCloseResult, error) {
	result := &WindowCloseResult{}
	err := withRetry(logger, DefaultRaceRetries, func() error {
		result = &WindowCloseResult{}
		return store.InTx(ctx, func(tx db.EngineStore) error {
			req, err := tx.GetRequest(ctx, requestID)
			if err != nil {
				return err
			}
			result.Request = req

			if req.WindowProcessedAt != nil {
				result.AlreadyProcessed = true
				return nil
			}
			if now.Before(req.WindowClosesAt) {
				return &model.StateConflictError{
					Rule: model.RuleWindowStillOpen,
					Detail: fmt.Sprintf("bidding window open until %s",
						req.WindowClosesAt.Format("2006-01-02 15:04")),
				}
			}

			bids, err := tx.ListPendingBids(ctx, requestID)
			if err != nil {
				return err
			}

			ranked, err := rankBids(ctx, tx, bids)
			if err != nil {
				return err
			}

			today := now.Format(model.DateFormat)
			for _, rb := range ranked {
				bid := rb.bid
				if req.PositionsFilled >= req.PositionsRequested {
					bid.Status = model.BidOutranked
					if err := tx.UpdateBid(ctx, &bid); err != nil {
						return err
					}
					result.Outranked++
					continue
				}

				// The registration may have been dispatched or rolled off
				// since the bid was placed.
				if rb.reg.Status != model.RegistrationActive {
					bid.Status = model.BidOutranked
					if err := tx.UpdateBid(ctx, &bid); err != nil {
						return err
					}
					result.Outranked++
					continue
				}

				// One job per member per day, same as the morning run. A
				// bidder who already won another request this morning is
				// released without penalty.
				already, err := tx.CountMemberDispatchesOn(ctx, bid.MemberID, today)
				if err != nil {
					return err
				}
				if already > 0 {
					bid.Status = model.BidOutranked
					if err := tx.UpdateBid(ctx, &bid); err != nil {
						return err
					}
					result.Outranked++
					continue
				}

				disp := &model.Dispatch{
					ID:                 uuid.New().String(),
					RegistrationID:     rb.reg.ID,
					LaborRequestID:     req.ID,
					MemberID:           bid.MemberID,
					Method:             model.MethodInternetBid,
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

				rb.reg.Status = model.RegistrationDispatched
				if err := tx.UpdateRegistration(ctx, &rb.reg); err != nil {
					return err
				}

				bid.Status = model.BidWon
				if err := tx.UpdateBid(ctx, &bid); err != nil {
					return err
				}

				req.PositionsFilled++
				result.Dispatches = append(result.Dispatches, *disp)
			}

			if req.PositionsFilled >= req.PositionsRequested {
				req.Status = model.RequestFilled
			} else if req.PositionsFilled > 0 {
				req.Status = model.RequestPartiallyFilled
			}
			req.WindowProcessedAt = &now
			return tx.UpdateRequest(ctx, req)
		})
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyProcessed {
		logger.Info("Window close already processed, skipping",
			zap.String("request_id", requestID))
		return result, nil
	}

	logger.Info("Bidding window processed",
		zap.String("request_id", requestID),
		zap.Int("dispatched", len(result.Dispatches)),
		zap.Int("outranked", result.Outranked),
		zap.String("status", string(result.Request.Status)))
	return result, nil
}

type rankedBid struct {
	bid model.Bid
	reg model.Registration
}

// rankBids orders pending bids by the bidder's queue position. The input
// arrives in submission order, and the stable sort keeps that as the
// tie-break for equal priority numbers.
func rankBids(ctx context.Context, tx db.EngineStore, bids []model.Bid) ([]rankedBid, error) {
	ranked := make([]rankedBid, 0, len(bids))
	for _, bid := range bids {
		reg, err := tx.GetRegistration(ctx, bid.RegistrationID)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, rankedBid{bid: bid, reg: *reg})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return priority.Less(priority.Of(&ranked[i].reg), priority.Of(&ranked[j].reg))
	})
	return ranked, nil
}
