package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/window"
)

// seedBid registers a pending bid tied to an existing registration.
func seedBid(t *testing.T, store *mockStore, requestID string, reg *model.Registration, submittedAt time.Time) *model.Bid {
	t.Helper()
	bid := &model.Bid{
		LaborRequestID: requestID,
		MemberID:       reg.MemberID,
		RegistrationID: reg.ID,
		SubmittedAt:    submittedAt,
		Status:         model.BidPending,
	}
	require.NoError(t, store.CreateBid(context.Background(), bid))
	return bid
}

func TestProcessWindowClose_LowestPriorityWins(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	closes := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)
	req := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:         "E-1",
		BookID:             book.ID,
		PositionsRequested: 1,
		WindowClosesAt:     closes,
	})

	// The later bidder holds the better (older) priority number.
	junior := seedRegistration(t, store, model.Registration{MemberID: "M-junior", BookID: book.ID, PriorityDay: 9600})
	senior := seedRegistration(t, store, model.Registration{MemberID: "M-senior", BookID: book.ID, PriorityDay: 9500})
	seedBid(t, store, req.ID, junior, closes.Add(-8*time.Hour))
	seedBid(t, store, req.ID, senior, closes.Add(-2*time.Hour))

	result, err := ProcessWindowClose(ctx, store, zap.NewNop(), window.Default(), req.ID, closes)
	require.NoError(t, err)

	require.Len(t, result.Dispatches, 1)
	assert.Equal(t, "M-senior", result.Dispatches[0].MemberID)
	assert.Equal(t, model.MethodInternetBid, result.Dispatches[0].Method)
	assert.Equal(t, 1, result.Outranked)
	assert.Equal(t, model.RequestFilled, result.Request.Status)

	// The winner's registration is off the book; the loser's is untouched.
	winner, err := store.GetRegistration(ctx, senior.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationDispatched, winner.Status)
	loser, err := store.GetRegistration(ctx, junior.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationActive, loser.Status)
}

func TestProcessWindowClose_SubmissionOrderBreaksTies(t *testing.T) {
	store := newMockStore()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	closes := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)
	req := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:         "E-1",
		BookID:             book.ID,
		PositionsRequested: 1,
		WindowClosesAt:     closes,
	})

	first := seedRegistration(t, store, model.Registration{MemberID: "M-first", BookID: book.ID, PriorityDay: 9500, PrioritySeq: 3})
	second := seedRegistration(t, store, model.Registration{MemberID: "M-second", BookID: book.ID, PriorityDay: 9500, PrioritySeq: 3})
	seedBid(t, store, req.ID, first, closes.Add(-5*time.Hour))
	seedBid(t, store, req.ID, second, closes.Add(-4*time.Hour))

	result, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), req.ID, closes)
	require.NoError(t, err)
	require.Len(t, result.Dispatches, 1)
	assert.Equal(t, "M-first", result.Dispatches[0].MemberID)
}

func TestProcessWindowClose_NeverOverfills(t *testing.T) {
	store := newMockStore()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	closes := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)
	req := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:         "E-1",
		BookID:             book.ID,
		PositionsRequested: 2,
		WindowClosesAt:     closes,
	})

	for i, id := range []string{"M-1", "M-2", "M-3", "M-4", "M-5"} {
		reg := seedRegistration(t, store, model.Registration{MemberID: id, BookID: book.ID, PriorityDay: 9500 + i})
		seedBid(t, store, req.ID, reg, closes.Add(-time.Duration(i+1)*time.Hour))
	}

	result, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), req.ID, closes)
	require.NoError(t, err)

	assert.Len(t, result.Dispatches, 2)
	assert.Equal(t, 3, result.Outranked)
	assert.Equal(t, 2, result.Request.PositionsFilled)
	assert.Equal(t, model.RequestFilled, result.Request.Status)
}

func TestProcessWindowClose_SkipsStaleRegistrations(t *testing.T) {
	store := newMockStore()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	closes := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)
	req := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:         "E-1",
		BookID:             book.ID,
		PositionsRequested: 1,
		WindowClosesAt:     closes,
	})

	// Rolled off after bidding; the runner-up takes the job.
	stale := seedRegistration(t, store, model.Registration{
		MemberID:    "M-stale",
		BookID:      book.ID,
		PriorityDay: 9400,
		Status:      model.RegistrationRolledOff,
	})
	live := seedRegistration(t, store, model.Registration{MemberID: "M-live", BookID: book.ID, PriorityDay: 9600})
	seedBid(t, store, req.ID, stale, closes.Add(-3*time.Hour))
	seedBid(t, store, req.ID, live, closes.Add(-2*time.Hour))

	result, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), req.ID, closes)
	require.NoError(t, err)
	require.Len(t, result.Dispatches, 1)
	assert.Equal(t, "M-live", result.Dispatches[0].MemberID)
	assert.Equal(t, 1, result.Outranked)
}

func TestProcessWindowClose_OneJobPerMemberPerDay(t *testing.T) {
	store := newMockStore()
	bookA := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})
	bookB := seedBook(t, store, model.Book{Code: "TREE-1", Classification: "tree_trimmer"})

	closes := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)
	reqA := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:         "E-1",
		BookID:             bookA.ID,
		PositionsRequested: 1,
		WindowClosesAt:     closes,
	})
	reqB := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:         "E-2",
		BookID:             bookB.ID,
		PositionsRequested: 1,
		WindowClosesAt:     closes,
	})

	// The same member holds active registrations on both books and bids
	// on both requests; a runner-up waits on the second book.
	regA := seedRegistration(t, store, model.Registration{MemberID: "M-100", BookID: bookA.ID, PriorityDay: 9400})
	regB := seedRegistration(t, store, model.Registration{MemberID: "M-100", BookID: bookB.ID, PriorityDay: 9400})
	backup := seedRegistration(t, store, model.Registration{MemberID: "M-200", BookID: bookB.ID, PriorityDay: 9600})
	seedBid(t, store, reqA.ID, regA, closes.Add(-3*time.Hour))
	seedBid(t, store, reqB.ID, regB, closes.Add(-3*time.Hour))
	seedBid(t, store, reqB.ID, backup, closes.Add(-2*time.Hour))

	first, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), reqA.ID, closes)
	require.NoError(t, err)
	require.Len(t, first.Dispatches, 1)
	assert.Equal(t, "M-100", first.Dispatches[0].MemberID)

	// The second close skips the already-dispatched member without
	// penalty and falls through to the runner-up.
	second, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), reqB.ID, closes)
	require.NoError(t, err)
	require.Len(t, second.Dispatches, 1)
	assert.Equal(t, "M-200", second.Dispatches[0].MemberID)
	assert.Equal(t, 1, second.Outranked)

	// The skipped bidder keeps an active registration on the second book.
	skipped, err := store.GetRegistration(context.Background(), regB.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationActive, skipped.Status)
}

func TestProcessWindowClose_BeforeCloseRejected(t *testing.T) {
	store := newMockStore()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	closes := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)
	req := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:     "E-1",
		BookID:         book.ID,
		WindowClosesAt: closes,
	})

	_, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), req.ID, closes.Add(-time.Hour))
	assert.True(t, model.IsStateConflict(err, model.RuleWindowStillOpen), "got %v", err)
}

func TestProcessWindowClose_Idempotent(t *testing.T) {
	store := newMockStore()
	book := seedBook(t, store, model.Book{Code: "CONST-1", Classification: "inside_wireman"})

	closes := time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)
	req := seedOpenRequest(t, store, model.LaborRequest{
		EmployerID:         "E-1",
		BookID:             book.ID,
		PositionsRequested: 1,
		WindowClosesAt:     closes,
	})
	reg := seedRegistration(t, store, model.Registration{MemberID: "M-100", BookID: book.ID, PriorityDay: 9500})
	seedBid(t, store, req.ID, reg, closes.Add(-time.Hour))

	first, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), req.ID, closes)
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)
	assert.Len(t, first.Dispatches, 1)

	second, err := ProcessWindowClose(context.Background(), store, zap.NewNop(), window.Default(), req.ID, closes.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Empty(t, second.Dispatches)
	assert.Len(t, store.dispatches, 1)
}
