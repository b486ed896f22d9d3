package model

import "time"

// DateFormat is the canonical format for calendar dates stored as strings.
// Instants (dispatch timestamps, window boundaries) use time.Time instead.
const DateFormat = "2006-01-02"

type AgreementType string

const (
	AgreementStandard AgreementType = "standard"
	AgreementPLA      AgreementType = "PLA"
	AgreementCWA      AgreementType = "CWA"
	AgreementTERO     AgreementType = "TERO"
)

func (a AgreementType) IsValid() bool {
	switch a {
	case AgreementStandard, AgreementPLA, AgreementCWA, AgreementTERO:
		return true
	}
	return false
}

type WorkLevel string

const (
	WorkLevelJourneyman WorkLevel = "journeyman"
	WorkLevelApprentice WorkLevel = "apprentice"
)

type BookType string

const (
	BookTypePrimary      BookType = "primary"
	BookTypeSupplemental BookType = "supplemental"
)

type RegistrationStatus string

const (
	RegistrationActive     RegistrationStatus = "active"
	RegistrationRolledOff  RegistrationStatus = "rolled_off"
	RegistrationDispatched RegistrationStatus = "dispatched"
	RegistrationExpired    RegistrationStatus = "expired"
)

type RequestStatus string

const (
	RequestOpen            RequestStatus = "open"
	RequestPartiallyFilled RequestStatus = "partially_filled"
	RequestFilled          RequestStatus = "filled"
	RequestCancelled       RequestStatus = "cancelled"
	RequestExpired         RequestStatus = "expired"
)

type DispatchStatus string

const (
	DispatchOffered    DispatchStatus = "offered"
	DispatchAccepted   DispatchStatus = "accepted"
	DispatchRejected   DispatchStatus = "rejected"
	DispatchWorking    DispatchStatus = "working"
	DispatchTerminated DispatchStatus = "terminated"
	DispatchQuit       DispatchStatus = "quit"
	DispatchNoShow     DispatchStatus = "no_show"
)

type DispatchMethod string

const (
	MethodMorningReferral DispatchMethod = "morning_referral"
	MethodInternetBid     DispatchMethod = "internet_bid"
	MethodByName          DispatchMethod = "by_name"
	MethodEmergency       DispatchMethod = "emergency"
)

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidWon       BidStatus = "won"
	BidOutranked BidStatus = "outranked"
	BidWithdrawn BidStatus = "withdrawn"
)

type ExemptionReason string

const (
	ExemptMilitary      ExemptionReason = "military"
	ExemptUnionBusiness ExemptionReason = "union_business"
	ExemptSalting       ExemptionReason = "salting"
	ExemptMedical       ExemptionReason = "medical"
	ExemptJuryDuty      ExemptionReason = "jury_duty"
	ExemptTraveling     ExemptionReason = "traveling"
	ExemptUnderScale    ExemptionReason = "under_scale"
)

func (r ExemptionReason) IsValid() bool {
	switch r {
	case ExemptMilitary, ExemptUnionBusiness, ExemptSalting, ExemptMedical,
		ExemptJuryDuty, ExemptTraveling, ExemptUnderScale:
		return true
	}
	return false
}

// RolloffThreeCheckMarks is the rolloff reason recorded when a third
// non-exempt check mark accrues on a registration.
const RolloffThreeCheckMarks = "3_check_marks"

// Book is an out-of-work priority queue for one classification, optionally
// scoped to a region and linked to an employer contract. Book codes are
// globally unique; names are not (several books may feed one contract).
type Book struct {
	ID                 string        `gorm:"type:varchar(64);primaryKey"`
	Code               string        `gorm:"type:varchar(32);uniqueIndex;not null"`
	Name               string        `gorm:"type:varchar(128);not null"`
	Classification     string        `gorm:"type:varchar(64);not null"`
	Region             string        `gorm:"type:varchar(64)"`
	ContractCode       string        `gorm:"type:varchar(32)"`
	AgreementType      AgreementType `gorm:"type:varchar(16);not null"`
	WorkLevel          WorkLevel     `gorm:"type:varchar(16);not null"`
	BookType           BookType      `gorm:"type:varchar(16);not null"`
	TierCount          int           `gorm:"not null"`
	MorningSortOrder   int           `gorm:"not null;default:0"`
	ResignIntervalDays int           `gorm:"not null;default:30"`
	MaxCheckMarks      int           `gorm:"not null;default:2"`
	Active             bool          `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Registration is one member's place on one tier of one book. The
// (PriorityDay, PrioritySeq) pair is the APN ordering key; it is not unique
// and ties are resolved by insertion order. Version backs optimistic locking.
type Registration struct {
	ID             string             `gorm:"type:varchar(64);primaryKey"`
	MemberID       string             `gorm:"type:varchar(64);index;not null"`
	BookID         string             `gorm:"type:varchar(64);index;not null"`
	Classification string             `gorm:"type:varchar(64);not null"`
	Tier           int                `gorm:"not null;default:1"`
	PriorityDay    int                `gorm:"not null"`
	PrioritySeq    int                `gorm:"not null"`
	Status         RegistrationStatus `gorm:"type:varchar(16);index;not null"`
	RegisteredAt   time.Time          `gorm:"not null"`
	LastResign     string             `gorm:"type:varchar(10)"`
	NextResignDue  string             `gorm:"type:varchar(10)"`
	CheckMarkCount int                `gorm:"not null;default:0"`
	ShortCallCount int                `gorm:"not null;default:0"`
	RolloffReason  string             `gorm:"type:varchar(32)"`
	RolloffDate    string             `gorm:"type:varchar(10)"`
	Version        int                `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CheckMark is a single penalty event. Exception marks are persisted for
// audit but never counted toward rolloff.
type CheckMark struct {
	ID          string `gorm:"type:varchar(64);primaryKey"`
	MemberID    string `gorm:"type:varchar(64);index;not null"`
	BookID      string `gorm:"type:varchar(64);index;not null"`
	Date        string `gorm:"type:varchar(10);not null"`
	Reason      string `gorm:"type:varchar(64);not null"`
	IsException bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

// Exemption suspends check-mark accrual and re-sign obligations while it
// covers the current date. Open-ended exemptions (military, medical) have
// an empty EndDate pending review.
type Exemption struct {
	ID               string          `gorm:"type:varchar(64);primaryKey"`
	MemberID         string          `gorm:"type:varchar(64);index;not null"`
	Reason           ExemptionReason `gorm:"type:varchar(32);not null"`
	StartDate        string          `gorm:"type:varchar(10);not null"`
	EndDate          string          `gorm:"type:varchar(10)"`
	RequiresApproval bool            `gorm:"not null;default:false"`
	Approved         bool            `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActiveOn reports whether the exemption covers the given calendar date.
// Exemptions requiring approval only take effect once approved.
func (e Exemption) ActiveOn(date string) bool {
	if e.RequiresApproval && !e.Approved {
		return false
	}
	if date < e.StartDate {
		return false
	}
	return e.EndDate == "" || date <= e.EndDate
}

// LaborRequest is an employer's ask for workers on one book.
type LaborRequest struct {
	ID                 string        `gorm:"type:varchar(64);primaryKey"`
	EmployerID         string        `gorm:"type:varchar(64);index;not null"`
	BookID             string        `gorm:"type:varchar(64);index;not null"`
	PositionsRequested int           `gorm:"not null"`
	PositionsFilled    int           `gorm:"not null;default:0"`
	WageRate           float64       `gorm:"not null;default:0"`
	StartAt            time.Time     `gorm:"not null"`
	Region             string        `gorm:"type:varchar(64)"`
	AgreementType      AgreementType `gorm:"type:varchar(16);not null"`
	ShortCall          bool          `gorm:"not null;default:false"`
	GeneratesCheckMark bool          `gorm:"not null;default:true"`
	Status             RequestStatus `gorm:"type:varchar(24);index;not null"`
	WindowOpensAt      time.Time
	WindowClosesAt     time.Time
	CutoffApplied      bool `gorm:"not null;default:false"`
	WindowProcessedAt  *time.Time
	Version            int `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Open reports whether the request can still accept bids or dispatches.
func (r LaborRequest) Open() bool {
	return r.Status == RequestOpen || r.Status == RequestPartiallyFilled
}

// Dispatch is the result of matching one member to one labor request.
type Dispatch struct {
	ID             string         `gorm:"type:varchar(64);primaryKey"`
	RegistrationID string         `gorm:"type:varchar(64);index;not null"`
	LaborRequestID string         `gorm:"type:varchar(64);index;not null"`
	MemberID       string         `gorm:"type:varchar(64);index;not null"`
	Method         DispatchMethod `gorm:"type:varchar(24);not null"`
	DispatchedAt   time.Time      `gorm:"not null"`
	// DispatchedOn is the referral-hall calendar day, kept as a date
	// string so the one-job-per-day check is independent of the host
	// timezone.
	DispatchedOn       string         `gorm:"type:varchar(10);index;not null"`
	Status             DispatchStatus `gorm:"type:varchar(16);index;not null"`
	CheckInDeadline    time.Time
	ShortCall          bool   `gorm:"not null;default:false"`
	GeneratedCheckMark bool   `gorm:"not null;default:false"`
	ReviewFlagged      bool   `gorm:"not null;default:false"`
	TerminationReason  string `gorm:"type:varchar(32)"`
	EndedAt            *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Bid is a member's pending claim on a labor request during the nightly
// bidding window.
type Bid struct {
	ID             string    `gorm:"type:varchar(64);primaryKey"`
	LaborRequestID string    `gorm:"type:varchar(64);index;not null"`
	MemberID       string    `gorm:"type:varchar(64);index;not null"`
	RegistrationID string    `gorm:"type:varchar(64);not null"`
	SubmittedAt    time.Time `gorm:"not null"`
	Status         BidStatus `gorm:"type:varchar(16);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BiddingInfraction records a post-acceptance bid rejection for the
// two-strikes-per-year suspension rule.
type BiddingInfraction struct {
	ID             string `gorm:"type:varchar(64);primaryKey"`
	MemberID       string `gorm:"type:varchar(64);index;not null"`
	InfractionDate string `gorm:"type:varchar(10);not null"`
	DispatchID     string `gorm:"type:varchar(64);not null"`
	SuspendedUntil string `gorm:"type:varchar(10)"`
	CreatedAt      time.Time
}

// MemberBlackout bars a member from Foreperson-by-Name requests at one
// employer for two weeks after a quit or discharge.
type MemberBlackout struct {
	ID         string `gorm:"type:varchar(64);primaryKey"`
	MemberID   string `gorm:"type:varchar(64);index;not null"`
	EmployerID string `gorm:"type:varchar(64);index;not null"`
	StartDate  string `gorm:"type:varchar(10);not null"`
	EndDate    string `gorm:"type:varchar(10);not null"`
	CreatedAt  time.Time
}

// CoversOn reports whether the blackout covers the given date.
func (b MemberBlackout) CoversOn(date string) bool {
	return date >= b.StartDate && date <= b.EndDate
}

// AuditRecord is an immutable trail entry appended on every state
// transition. Rows are never updated or deleted.
type AuditRecord struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	At        time.Time `gorm:"index;not null"`
	Actor     string    `gorm:"type:varchar(64);not null"`
	TableName string    `gorm:"type:varchar(64);index;not null"`
	RecordID  string    `gorm:"type:varchar(64);index;not null"`
	OldValues string    `gorm:"type:text"`
	NewValues string    `gorm:"type:text"`
}

// Termination reasons routed by the dispatch scheduler.
const (
	TermQuit         = "quit"
	TermDischarge    = "discharge"
	TermLayoff       = "layoff"
	TermShortCallEnd = "short_call_end"
	TermCompleted    = "completed"
)

// Member is the slice of the external member directory the engine consumes.
type Member struct {
	ID              string
	Classifications []string
	Agreements      []AgreementType
	IsActive        bool
}

// EligibleFor reports whether the member is flagged eligible for the
// agreement type. Standard requests are open to everyone.
func (m Member) EligibleFor(agreement AgreementType) bool {
	if agreement == AgreementStandard {
		return true
	}
	for _, a := range m.Agreements {
		if a == agreement {
			return true
		}
	}
	return false
}

// HasClassification reports whether the member holds the classification.
func (m Member) HasClassification(classification string) bool {
	for _, c := range m.Classifications {
		if c == classification {
			return true
		}
	}
	return false
}

// EmployerContract is the slice of the external contract directory the
// engine consumes when validating books and labor requests.
type EmployerContract struct {
	ContractCode   string
	EffectiveDate  string
	ExpirationDate string
}
