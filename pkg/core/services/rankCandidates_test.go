package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
)

func memberIDs(regs []model.Registration) []string {
	ids := make([]string, len(regs))
	for i, r := range regs {
		ids[i] = r.MemberID
	}
	return ids
}

func TestRankCandidates_FIFOWithStableTies(t *testing.T) {
	store := newMockStore()
	dir := newMockDirectory()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	// Insertion order: the same-day tie between M-2 and M-3 must hold.
	seedRegistration(t, store, model.Registration{MemberID: "M-1", BookID: book.ID, PriorityDay: 9528, PrioritySeq: 1})
	seedRegistration(t, store, model.Registration{MemberID: "M-2", BookID: book.ID, PriorityDay: 9530, PrioritySeq: 0})
	seedRegistration(t, store, model.Registration{MemberID: "M-3", BookID: book.ID, PriorityDay: 9530, PrioritySeq: 0})
	seedRegistration(t, store, model.Registration{MemberID: "M-0", BookID: book.ID, PriorityDay: 9500, PrioritySeq: 7})

	ranked, err := RankCandidates(context.Background(), store, dir, zap.NewNop(), RankParams{
		BookID: book.ID,
		Tier:   1,
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{"M-0", "M-1", "M-2", "M-3"}, memberIDs(ranked))
}

func TestRankCandidates_SkipsSuspendedAndBlackedOut(t *testing.T) {
	store := newMockStore()
	dir := newMockDirectory()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})
	ctx := context.Background()

	seedRegistration(t, store, model.Registration{MemberID: "M-1", BookID: book.ID, PriorityDay: 9500})
	seedRegistration(t, store, model.Registration{MemberID: "M-2", BookID: book.ID, PriorityDay: 9501})
	seedRegistration(t, store, model.Registration{MemberID: "M-3", BookID: book.ID, PriorityDay: 9502})

	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateInfraction(ctx, &model.BiddingInfraction{
		MemberID:       "M-1",
		InfractionDate: "2026-03-01",
		DispatchID:     "disp-1",
		SuspendedUntil: "2027-03-01",
	}))
	require.NoError(t, store.CreateBlackout(ctx, &model.MemberBlackout{
		MemberID:   "M-2",
		EmployerID: "E-55",
		StartDate:  "2026-03-10",
		EndDate:    "2026-03-24",
	}))

	// Without an employer scope the blackout does not apply.
	ranked, err := RankCandidates(ctx, store, dir, zap.NewNop(), RankParams{BookID: book.ID, Tier: 1}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-2", "M-3"}, memberIDs(ranked))

	// Scoped to the employer, the blacked-out member drops as well.
	ranked, err = RankCandidates(ctx, store, dir, zap.NewNop(), RankParams{
		BookID:     book.ID,
		Tier:       1,
		EmployerID: "E-55",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-3"}, memberIDs(ranked))
}

func TestRankCandidates_AgreementFiltering(t *testing.T) {
	store := newMockStore()
	dir := newMockDirectory()
	// Standard book: PLA requests only reach members individually flagged.
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	dir.addMember(model.Member{ID: "M-1", IsActive: true})
	dir.addMember(model.Member{ID: "M-2", IsActive: true, Agreements: []model.AgreementType{model.AgreementPLA}})

	seedRegistration(t, store, model.Registration{MemberID: "M-1", BookID: book.ID, PriorityDay: 9500})
	seedRegistration(t, store, model.Registration{MemberID: "M-2", BookID: book.ID, PriorityDay: 9501})

	ranked, err := RankCandidates(context.Background(), store, dir, zap.NewNop(), RankParams{
		BookID:        book.ID,
		Tier:          1,
		AgreementType: model.AgreementPLA,
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"M-2"}, memberIDs(ranked))

	// Standard requests reach everyone without directory lookups.
	ranked, err = RankCandidates(context.Background(), store, dir, zap.NewNop(), RankParams{
		BookID:        book.ID,
		Tier:          1,
		AgreementType: model.AgreementStandard,
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"M-1", "M-2"}, memberIDs(ranked))
}

func TestRankCandidates_OnlyRequestedTier(t *testing.T) {
	store := newMockStore()
	dir := newMockDirectory()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	seedRegistration(t, store, model.Registration{MemberID: "M-1", BookID: book.ID, Tier: 1, PriorityDay: 9500})
	seedRegistration(t, store, model.Registration{MemberID: "M-2", BookID: book.ID, Tier: 2, PriorityDay: 9400})

	ranked, err := RankCandidates(context.Background(), store, dir, zap.NewNop(), RankParams{
		BookID: book.ID,
		Tier:   2,
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"M-2"}, memberIDs(ranked))
}
