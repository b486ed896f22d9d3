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

// LaborRequestSpec is the employer-intake input for a new labor request.
type LaborRequestSpec struct {
	EmployerID    string `validate:"required"`
	BookCode      string `validate:"required"`
	Positions     int    `validate:"required,min=1"`
	WageRate      float64
	StartAt       time.Time
	Region        string
	AgreementType model.AgreementType
	ShortCall     bool
	// CheckMarkException names an intake-known exception condition
	// (specialty work, MOU site, …) that waives check marks for declines.
	CheckMarkException string
}

// CreateLaborRequest validates and opens a request. Whether declines
// generate check marks is decided here, once, and stored on the request;
// the ranking path never re-evaluates exception policy. Requests arriving
// after the daily cutoff are stamped for next-day referral.
func CreateLaborRequest(ctx context.Context, store db.EngineStore, contracts ContractDirectory, logger *zap.Logger, sched window.Schedule, spec LaborRequestSpec, now time.Time) (*model.LaborRequest, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, &model.ValidationError{Detail: err.Error()}
	}
	if spec.CheckMarkException != "" && !model.IsCheckMarkException(spec.CheckMarkException) {
		return nil, &model.ValidationError{
			Field:  "check_mark_exception",
			Detail: fmt.Sprintf("%q is not a recognized exception", spec.CheckMarkException),
		}
	}

	book, err := store.GetBookByCode(ctx, spec.BookCode)
	if err != nil {
		return nil, err
	}

	agreement := spec.AgreementType
	if agreement == "" {
		agreement = book.AgreementType
	}
	if !agreement.IsValid() {
		return nil, &model.ValidationError{
			Field:  "agreement_type",
			Detail: fmt.Sprintf("%q is not one of standard, PLA, CWA, TERO", agreement),
		}
	}

	if book.ContractCode != "" {
		contract, err := contracts.GetEmployerContract(ctx, spec.EmployerID, book.ContractCode)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve employer contract: %w", err)
		}
		today := now.Format(model.DateFormat)
		if contract == nil || today < contract.EffectiveDate ||
			(contract.ExpirationDate != "" && today > contract.ExpirationDate) {
			return nil, &model.ValidationError{
				Field: "employer_id",
				Detail: fmt.Sprintf("employer %s holds no effective %q contract",
					spec.EmployerID, book.ContractCode),
			}
		}
	}

	req := &model.LaborRequest{
		ID:                 uuid.New().String(),
		EmployerID:         spec.EmployerID,
		BookID:             book.ID,
		PositionsRequested: spec.Positions,
		WageRate:           spec.WageRate,
		StartAt:            spec.StartAt,
		Region:             spec.Region,
		AgreementType:      agreement,
		ShortCall:          spec.ShortCall,
		Status:             model.RequestOpen,
		WindowOpensAt:      sched.OpenFor(now),
		WindowClosesAt:     sched.CloseFor(now),
		CutoffApplied:      sched.IsPastCutoff(now),
	}

	req.GeneratesCheckMark = true
	if spec.CheckMarkException != "" {
		req.GeneratesCheckMark = false
	} else if _, ok := model.EvaluateCheckMarkExceptions(req, model.DefaultCheckMarkExceptionRules); ok {
		req.GeneratesCheckMark = false
	}

	if err := store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	logger.Info("Labor request opened",
		zap.String("request_id", req.ID),
		zap.String("book", book.Code),
		zap.Int("positions", req.PositionsRequested),
		zap.Bool("short_call", req.ShortCall),
		zap.Bool("generates_check_mark", req.GeneratesCheckMark),
		zap.Bool("past_cutoff", req.CutoffApplied))
	return req, nil
}
