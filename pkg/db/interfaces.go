package db

import (
	"context"

	"github.com/unioncore/dispatch/pkg/core/model"
)

// BookFilter narrows ListBooks. Nil/zero fields match everything.
type BookFilter struct {
	Classification string
	Region         string
	ActiveOnly     bool
}

// BookStore defines the catalog's persistence operations.
type BookStore interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBook(ctx context.Context, id string) (*model.Book, error)
	GetBookByCode(ctx context.Context, code string) (*model.Book, error)
	// ListBooks returns books ordered by morning sort order, ties broken
	// by code.
	ListBooks(ctx context.Context, filter BookFilter) ([]model.Book, error)
}

// RegistrationStore defines the registration ledger's persistence
// operations.
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) error
	GetRegistration(ctx context.Context, id string) (*model.Registration, error)
	// FindActiveRegistration returns the member's single ACTIVE
	// registration on a book of the given classification, nil when none
	// exists, and an IntegrityError when more than one is found.
	FindActiveRegistration(ctx context.Context, memberID, bookID, classification string) (*model.Registration, error)
	// ActiveOnBook returns the member's ACTIVE registration on the book,
	// nil when none.
	ActiveOnBook(ctx context.Context, memberID, bookID string) (*model.Registration, error)
	// NextPrioritySeq returns the next intra-day sequence for the
	// (book, day) pair. Must be called inside the registering transaction.
	NextPrioritySeq(ctx context.Context, bookID string, day int) (int, error)
	// ListActive returns ACTIVE registrations for a book tier ordered by
	// (priority day, priority seq, insertion order).
	ListActive(ctx context.Context, bookID string, tier int) ([]model.Registration, error)
	// UpdateRegistration writes the row iff its version is unchanged,
	// bumping the version. Returns RaceLostError on a lost race.
	UpdateRegistration(ctx context.Context, reg *model.Registration) error
}

// PenaltyStore defines persistence for check marks, exemptions,
// infractions, and blackouts.
type PenaltyStore interface {
	CreateCheckMark(ctx context.Context, mark *model.CheckMark) error
	// FindCheckMark returns the non-exempt mark for (member, book, date),
	// nil when none.
	FindCheckMark(ctx context.Context, memberID, bookID, date string) (*model.CheckMark, error)
	CreateExemption(ctx context.Context, ex *model.Exemption) error
	ListExemptions(ctx context.Context, memberID string) ([]model.Exemption, error)
	CreateInfraction(ctx context.Context, inf *model.BiddingInfraction) error
	// ListInfractionsSince returns infractions for the member on or after
	// the given date, newest first.
	ListInfractionsSince(ctx context.Context, memberID, since string) ([]model.BiddingInfraction, error)
	// ListInfractions returns all infractions for the member, newest first.
	ListInfractions(ctx context.Context, memberID string) ([]model.BiddingInfraction, error)
	CreateBlackout(ctx context.Context, b *model.MemberBlackout) error
	ListBlackouts(ctx context.Context, memberID string) ([]model.MemberBlackout, error)
}

// RequestStore defines persistence for labor requests.
type RequestStore interface {
	CreateRequest(ctx context.Context, req *model.LaborRequest) error
	GetRequest(ctx context.Context, id string) (*model.LaborRequest, error)
	// UpdateRequest is version-checked like UpdateRegistration.
	UpdateRequest(ctx context.Context, req *model.LaborRequest) error
}

// DispatchStore defines persistence for dispatches.
type DispatchStore interface {
	CreateDispatch(ctx context.Context, disp *model.Dispatch) error
	GetDispatch(ctx context.Context, id string) (*model.Dispatch, error)
	UpdateDispatch(ctx context.Context, disp *model.Dispatch) error
	// CountMemberDispatchesOn counts non-terminal dispatches created for
	// the member on the given calendar date.
	CountMemberDispatchesOn(ctx context.Context, memberID, date string) (int, error)
}

// BidStore defines persistence for bidding-window bids.
type BidStore interface {
	CreateBid(ctx context.Context, bid *model.Bid) error
	// FindPendingBid returns the member's pending bid on the request, nil
	// when none.
	FindPendingBid(ctx context.Context, requestID, memberID string) (*model.Bid, error)
	// ListPendingBids returns pending bids for the request in submission
	// order.
	ListPendingBids(ctx context.Context, requestID string) ([]model.Bid, error)
	UpdateBid(ctx context.Context, bid *model.Bid) error
}

// AuditReader exposes the audit trail for inspection. Writing happens
// inside the store's own mutations; nothing else may append.
type AuditReader interface {
	ListAudit(ctx context.Context, tableName, recordID string) ([]model.AuditRecord, error)
}

// EngineStore is the full persistence surface plus the transaction
// boundary. Services that must rank and write atomically take this and run
// inside InTx.
type EngineStore interface {
	BookStore
	RegistrationStore
	PenaltyStore
	RequestStore
	DispatchStore
	BidStore
	AuditReader

	InTx(ctx context.Context, fn func(EngineStore) error) error
}
