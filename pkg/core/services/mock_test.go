package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/db"
)

// mockStore implements an in-memory test double for db.EngineStore with
// the same contracts as the SQLite store: version-checked updates, per-day
// priority sequences, and FIFO list ordering.
type mockStore struct {
	books         map[string]*model.Book
	registrations map[string]*model.Registration
	regOrder      []string
	checkMarks    []*model.CheckMark
	exemptions    []*model.Exemption
	infractions   []*model.BiddingInfraction
	blackouts     []*model.MemberBlackout
	requests      map[string]*model.LaborRequest
	dispatches    map[string]*model.Dispatch
	bids          []*model.Bid
	audits        []model.AuditRecord

	nextID int

	// raceRegistrationOnce makes the next UpdateRegistration lose its
	// optimistic-lock race exactly once.
	raceRegistrationOnce bool
}

func newMockStore() *mockStore {
	return &mockStore{
		books:         make(map[string]*model.Book),
		registrations: make(map[string]*model.Registration),
		requests:      make(map[string]*model.LaborRequest),
		dispatches:    make(map[string]*model.Dispatch),
	}
}

func (m *mockStore) genID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockStore) audit(table, recordID string) {
	m.audits = append(m.audits, model.AuditRecord{
		ID:        m.genID("audit"),
		Actor:     "test",
		TableName: table,
		RecordID:  recordID,
	})
}

// BookStore

func (m *mockStore) CreateBook(ctx context.Context, book *model.Book) error {
	if book.ID == "" {
		book.ID = m.genID("book")
	}
	cp := *book
	m.books[book.ID] = &cp
	m.audit("books", book.ID)
	return nil
}

func (m *mockStore) GetBook(ctx context.Context, id string) (*model.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "book", Key: id}
	}
	cp := *b
	return &cp, nil
}

func (m *mockStore) GetBookByCode(ctx context.Context, code string) (*model.Book, error) {
	for _, b := range m.books {
		if b.Code == code {
			cp := *b
			return &cp, nil
		}
	}
	return nil, &model.NotFoundError{Entity: "book", Key: code}
}

func (m *mockStore) ListBooks(ctx context.Context, filter db.BookFilter) ([]model.Book, error) {
	var books []model.Book
	for _, b := range m.books {
		if filter.Classification != "" && b.Classification != filter.Classification {
			continue
		}
		if filter.Region != "" && b.Region != filter.Region {
			continue
		}
		if filter.ActiveOnly && !b.Active {
			continue
		}
		books = append(books, *b)
	}
	sort.Slice(books, func(i, j int) bool {
		if books[i].MorningSortOrder != books[j].MorningSortOrder {
			return books[i].MorningSortOrder < books[j].MorningSortOrder
		}
		return books[i].Code < books[j].Code
	})
	return books, nil
}

// RegistrationStore

func (m *mockStore) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	if reg.ID == "" {
		reg.ID = m.genID("reg")
	}
	cp := *reg
	m.registrations[reg.ID] = &cp
	m.regOrder = append(m.regOrder, reg.ID)
	m.audit("registrations", reg.ID)
	return nil
}

func (m *mockStore) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	r, ok := m.registrations[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "registration", Key: id}
	}
	cp := *r
	return &cp, nil
}

func (m *mockStore) FindActiveRegistration(ctx context.Context, memberID, bookID, classification string) (*model.Registration, error) {
	var found []*model.Registration
	for _, id := range m.regOrder {
		r := m.registrations[id]
		if r.MemberID == memberID && r.BookID == bookID &&
			r.Classification == classification && r.Status == model.RegistrationActive {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		cp := *found[0]
		return &cp, nil
	default:
		return nil, &model.IntegrityError{Detail: "duplicate active registrations"}
	}
}

func (m *mockStore) ActiveOnBook(ctx context.Context, memberID, bookID string) (*model.Registration, error) {
	for _, id := range m.regOrder {
		r := m.registrations[id]
		if r.MemberID == memberID && r.BookID == bookID && r.Status == model.RegistrationActive {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockStore) NextPrioritySeq(ctx context.Context, bookID string, day int) (int, error) {
	next := 0
	for _, r := range m.registrations {
		if r.BookID == bookID && r.PriorityDay == day && r.PrioritySeq >= next {
			next = r.PrioritySeq + 1
		}
	}
	return next, nil
}

func (m *mockStore) ListActive(ctx context.Context, bookID string, tier int) ([]model.Registration, error) {
	order := make(map[string]int, len(m.regOrder))
	for i, id := range m.regOrder {
		order[id] = i
	}
	var regs []model.Registration
	for _, id := range m.regOrder {
		r := m.registrations[id]
		if r.BookID == bookID && r.Tier == tier && r.Status == model.RegistrationActive {
			regs = append(regs, *r)
		}
	}
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].PriorityDay != regs[j].PriorityDay {
			return regs[i].PriorityDay < regs[j].PriorityDay
		}
		if regs[i].PrioritySeq != regs[j].PrioritySeq {
			return regs[i].PrioritySeq < regs[j].PrioritySeq
		}
		return order[regs[i].ID] < order[regs[j].ID]
	})
	return regs, nil
}

func (m *mockStore) UpdateRegistration(ctx context.Context, reg *model.Registration) error {
	stored, ok := m.registrations[reg.ID]
	if !ok {
		return &model.NotFoundError{Entity: "registration", Key: reg.ID}
	}
	if m.raceRegistrationOnce {
		m.raceRegistrationOnce = false
		return &model.RaceLostError{Table: "registrations", RecordID: reg.ID}
	}
	if stored.Version != reg.Version {
		return &model.RaceLostError{Table: "registrations", RecordID: reg.ID}
	}
	cp := *reg
	cp.Version++
	m.registrations[reg.ID] = &cp
	reg.Version++
	m.audit("registrations", reg.ID)
	return nil
}

// PenaltyStore

func (m *mockStore) CreateCheckMark(ctx context.Context, mark *model.CheckMark) error {
	if mark.ID == "" {
		mark.ID = m.genID("mark")
	}
	cp := *mark
	m.checkMarks = append(m.checkMarks, &cp)
	m.audit("check_marks", mark.ID)
	return nil
}

func (m *mockStore) FindCheckMark(ctx context.Context, memberID, bookID, date string) (*model.CheckMark, error) {
	for _, c := range m.checkMarks {
		if c.MemberID == memberID && c.BookID == bookID && c.Date == date && !c.IsException {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockStore) CreateExemption(ctx context.Context, ex *model.Exemption) error {
	if ex.ID == "" {
		ex.ID = m.genID("exemption")
	}
	cp := *ex
	m.exemptions = append(m.exemptions, &cp)
	m.audit("exemptions", ex.ID)
	return nil
}

func (m *mockStore) ListExemptions(ctx context.Context, memberID string) ([]model.Exemption, error) {
	var out []model.Exemption
	for _, ex := range m.exemptions {
		if ex.MemberID == memberID {
			out = append(out, *ex)
		}
	}
	return out, nil
}

func (m *mockStore) CreateInfraction(ctx context.Context, inf *model.BiddingInfraction) error {
	if inf.ID == "" {
		inf.ID = m.genID("infraction")
	}
	cp := *inf
	m.infractions = append(m.infractions, &cp)
	m.audit("bidding_infractions", inf.ID)
	return nil
}

func (m *mockStore) ListInfractionsSince(ctx context.Context, memberID, since string) ([]model.BiddingInfraction, error) {
	var out []model.BiddingInfraction
	for _, inf := range m.infractions {
		if inf.MemberID == memberID && inf.InfractionDate >= since {
			out = append(out, *inf)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InfractionDate > out[j].InfractionDate
	})
	return out, nil
}

func (m *mockStore) ListInfractions(ctx context.Context, memberID string) ([]model.BiddingInfraction, error) {
	return m.ListInfractionsSince(ctx, memberID, "")
}

func (m *mockStore) CreateBlackout(ctx context.Context, b *model.MemberBlackout) error {
	if b.ID == "" {
		b.ID = m.genID("blackout")
	}
	cp := *b
	m.blackouts = append(m.blackouts, &cp)
	m.audit("member_blackouts", b.ID)
	return nil
}

func (m *mockStore) ListBlackouts(ctx context.Context, memberID string) ([]model.MemberBlackout, error) {
	var out []model.MemberBlackout
	for _, b := range m.blackouts {
		if b.MemberID == memberID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// RequestStore

func (m *mockStore) CreateRequest(ctx context.Context, req *model.LaborRequest) error {
	if req.ID == "" {
		req.ID = m.genID("request")
	}
	cp := *req
	m.requests[req.ID] = &cp
	m.audit("labor_requests", req.ID)
	return nil
}

func (m *mockStore) GetRequest(ctx context.Context, id string) (*model.LaborRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "labor request", Key: id}
	}
	cp := *r
	return &cp, nil
}

func (m *mockStore) UpdateRequest(ctx context.Context, req *model.LaborRequest) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return &model.NotFoundError{Entity: "labor request", Key: req.ID}
	}
	if stored.Version != req.Version {
		return &model.RaceLostError{Table: "labor_requests", RecordID: req.ID}
	}
	cp := *req
	cp.Version++
	m.requests[req.ID] = &cp
	req.Version++
	m.audit("labor_requests", req.ID)
	return nil
}

// DispatchStore

func (m *mockStore) CreateDispatch(ctx context.Context, disp *model.Dispatch) error {
	if disp.ID == "" {
		disp.ID = m.genID("dispatch")
	}
	cp := *disp
	m.dispatches[disp.ID] = &cp
	m.audit("dispatches", disp.ID)
	return nil
}

func (m *mockStore) GetDispatch(ctx context.Context, id string) (*model.Dispatch, error) {
	d, ok := m.dispatches[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "dispatch", Key: id}
	}
	cp := *d
	return &cp, nil
}

func (m *mockStore) UpdateDispatch(ctx context.Context, disp *model.Dispatch) error {
	if _, ok := m.dispatches[disp.ID]; !ok {
		return &model.NotFoundError{Entity: "dispatch", Key: disp.ID}
	}
	cp := *disp
	m.dispatches[disp.ID] = &cp
	m.audit("dispatches", disp.ID)
	return nil
}

func (m *mockStore) CountMemberDispatchesOn(ctx context.Context, memberID, date string) (int, error) {
	count := 0
	for _, d := range m.dispatches {
		if d.MemberID != memberID {
			continue
		}
		if d.Status.Terminal() {
			continue
		}
		if d.DispatchedOn == date {
			count++
		}
	}
	return count, nil
}

// BidStore

func (m *mockStore) CreateBid(ctx context.Context, bid *model.Bid) error {
	if bid.ID == "" {
		bid.ID = m.genID("bid")
	}
	cp := *bid
	m.bids = append(m.bids, &cp)
	m.audit("bids", bid.ID)
	return nil
}

func (m *mockStore) FindPendingBid(ctx context.Context, requestID, memberID string) (*model.Bid, error) {
	for _, b := range m.bids {
		if b.LaborRequestID == requestID && b.MemberID == memberID && b.Status == model.BidPending {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListPendingBids(ctx context.Context, requestID string) ([]model.Bid, error) {
	var out []model.Bid
	for _, b := range m.bids {
		if b.LaborRequestID == requestID && b.Status == model.BidPending {
			out = append(out, *b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *mockStore) UpdateBid(ctx context.Context, bid *model.Bid) error {
	for i, b := range m.bids {
		if b.ID == bid.ID {
			cp := *bid
			m.bids[i] = &cp
			m.audit("bids", bid.ID)
			return nil
		}
	}
	return &model.NotFoundError{Entity: "bid", Key: bid.ID}
}

// AuditReader

func (m *mockStore) ListAudit(ctx context.Context, tableName, recordID string) ([]model.AuditRecord, error) {
	var out []model.AuditRecord
	for _, a := range m.audits {
		if a.TableName == tableName && a.RecordID == recordID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) InTx(ctx context.Context, fn func(db.EngineStore) error) error {
	return fn(m)
}

// mockDirectory implements a test double for the member and contract
// directories.
type mockDirectory struct {
	members   map[string]model.Member
	contracts map[string]model.EmployerContract // "employer/code"
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		members:   make(map[string]model.Member),
		contracts: make(map[string]model.EmployerContract),
	}
}

func (m *mockDirectory) addMember(member model.Member) {
	m.members[member.ID] = member
}

func (m *mockDirectory) addContract(employerID string, ct model.EmployerContract) {
	m.contracts[employerID+"/"+ct.ContractCode] = ct
}

func (m *mockDirectory) GetMember(ctx context.Context, id string) (*model.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "member", Key: id}
	}
	return &member, nil
}

func (m *mockDirectory) GetEmployerContract(ctx context.Context, employerID, contractCode string) (*model.EmployerContract, error) {
	ct, ok := m.contracts[employerID+"/"+contractCode]
	if !ok {
		return nil, nil
	}
	return &ct, nil
}

func (m *mockDirectory) ContractExists(ctx context.Context, contractCode string) (bool, error) {
	for key := range m.contracts {
		if strings.HasSuffix(key, "/"+contractCode) {
			return true, nil
		}
	}
	return false, nil
}
