package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/db"
)

// RankParams scopes one candidate ranking.
type RankParams struct {
	BookID        string
	Tier          int
	AgreementType model.AgreementType
	// EmployerID, when set, additionally filters members blacked out at
	// that employer (by-name request flow).
	EmployerID string
}

// RankCandidates returns the eligible ACTIVE registrations for a book tier
// in dispatch order: ascending priority number, ties broken by insertion
// order. The store returns rows pre-ordered; this function only filters,
// preserving stability. It is read-only; callers that go on to dispatch
// must invoke it inside the same transaction as the dispatch write.
func RankCandidates(ctx context.Context, store db.EngineStore, members MemberDirectory, logger *zap.Logger, params RankParams, now time.Time) ([]model.Registration, error) {
	regs, err := store.ListActive(ctx, params.BookID, params.Tier)
	if err != nil {
		return nil, err
	}

	book, err := store.GetBook(ctx, params.BookID)
	if err != nil {
		return nil, err
	}

	today := now.Format(model.DateFormat)
	eligible := make([]model.Registration, 0, len(regs))
	for _, reg := range regs {
		if params.AgreementType != "" && params.AgreementType != model.AgreementStandard &&
			book.AgreementType != params.AgreementType {
			// Non-standard requests draw from matching books, or from
			// members individually flagged for the agreement type.
			member, err := members.GetMember(ctx, reg.MemberID)
			if err != nil {
				return nil, err
			}
			if !member.EligibleFor(params.AgreementType) {
				continue
			}
		}

		suspended, _, err := suspendedUntil(ctx, store, reg.MemberID, today)
		if err != nil {
			return nil, err
		}
		if suspended {
			continue
		}

		if params.EmployerID != "" {
			blackedOut, _, err := blackoutUntil(ctx, store, reg.MemberID, params.EmployerID, today)
			if err != nil {
				return nil, err
			}
			if blackedOut {
				continue
			}
		}

		eligible = append(eligible, reg)
	}

	logger.Debug("Candidates ranked",
		zap.String("book_id", params.BookID),
		zap.Int("tier", params.Tier),
		zap.Int("active", len(regs)),
		zap.Int("eligible", len(eligible)))
	return eligible, nil
}
