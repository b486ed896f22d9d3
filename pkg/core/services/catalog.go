package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/db"
)

// BookSpec is the input for creating a book.
type BookSpec struct {
	Code             string              `validate:"required,max=32"`
	Name             string              `validate:"required,max=128"`
	Classification   string              `validate:"required"`
	Region           string              `validate:"omitempty,max=64"`
	ContractCode     string              `validate:"omitempty,max=32"`
	AgreementType    model.AgreementType `validate:"required"`
	WorkLevel        model.WorkLevel     `validate:"required,oneof=journeyman apprentice"`
	BookType         model.BookType      `validate:"required,oneof=primary supplemental"`
	TierCount        int                 `validate:"required,min=1,max=4"`
	MorningSortOrder int                 `validate:"min=0"`
	ResignInterval   int                 `validate:"omitempty,min=1"`
	MaxCheckMarks    int                 `validate:"omitempty,min=1"`
}

// CreateBook validates and persists a new book definition. Book codes are
// globally unique; a contract code, when set, must resolve in the external
// contract directory.
func CreateBook(ctx context.Context, store db.BookStore, contracts ContractDirectory, logger *zap.Logger, spec BookSpec) (*model.Book, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, &model.ValidationError{Detail: err.Error()}
	}
	if !spec.AgreementType.IsValid() {
		return nil, &model.ValidationError{
			Field:  "agreement_type",
			Detail: fmt.Sprintf("%q is not one of standard, PLA, CWA, TERO", spec.AgreementType),
		}
	}

	if existing, err := store.GetBookByCode(ctx, spec.Code); err != nil && !model.IsNotFound(err) {
		return nil, err
	} else if existing != nil {
		return nil, &model.ValidationError{
			Field:  "code",
			Detail: fmt.Sprintf("book code %q already exists", spec.Code),
		}
	}

	if spec.ContractCode != "" {
		known, err := contracts.ContractExists(ctx, spec.ContractCode)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve contract code: %w", err)
		}
		if !known {
			return nil, &model.ValidationError{
				Field:  "contract_code",
				Detail: fmt.Sprintf("unknown contract code %q", spec.ContractCode),
			}
		}
	}

	book := &model.Book{
		ID:                 uuid.New().String(),
		Code:               spec.Code,
		Name:               spec.Name,
		Classification:     spec.Classification,
		Region:             spec.Region,
		ContractCode:       spec.ContractCode,
		AgreementType:      spec.AgreementType,
		WorkLevel:          spec.WorkLevel,
		BookType:           spec.BookType,
		TierCount:          spec.TierCount,
		MorningSortOrder:   spec.MorningSortOrder,
		ResignIntervalDays: spec.ResignInterval,
		MaxCheckMarks:      spec.MaxCheckMarks,
		Active:             true,
	}
	if book.ResignIntervalDays == 0 {
		book.ResignIntervalDays = 30
	}
	if book.MaxCheckMarks == 0 {
		book.MaxCheckMarks = 2
	}

	if err := store.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	logger.Info("Book created",
		zap.String("code", book.Code),
		zap.String("classification", book.Classification),
		zap.Int("tiers", book.TierCount))
	return book, nil
}

// GetBook looks a book up by its code.
func GetBook(ctx context.Context, store db.BookStore, code string) (*model.Book, error) {
	return store.GetBookByCode(ctx, code)
}

// ListBooks returns books matching the filter in morning-referral order.
func ListBooks(ctx context.Context, store db.BookStore, filter db.BookFilter) ([]model.Book, error) {
	return store.ListBooks(ctx, filter)
}
