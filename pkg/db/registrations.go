package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unioncore/dispatch/pkg/core/model"
)

func (d *DB) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(reg).Error; err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	return d.appendAudit(ctx, "registrations", reg.ID, nil, reg)
}

func (d *DB) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	var reg model.Registration
	err := d.conn(ctx).First(&reg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Entity: "registration", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registration %s: %w", id, err)
	}
	return &reg, nil
}

func (d *DB) FindActiveRegistration(ctx context.Context, memberID, bookID, classification string) (*model.Registration, error) {
	var regs []model.Registration
	err := d.conn(ctx).
		Where("member_id = ? AND book_id = ? AND classification = ? AND status = ?",
			memberID, bookID, classification, model.RegistrationActive).
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active registration: %w", err)
	}

	switch len(regs) {
	case 0:
		return nil, nil
	case 1:
		return &regs[0], nil
	default:
		// Duplicate ACTIVE rows mean history is already inconsistent and a
		// human has to pick which record reflects reality.
		return nil, &model.IntegrityError{
			Detail: fmt.Sprintf("member %s holds %d active registrations on book %s classification %s",
				memberID, len(regs), bookID, classification),
		}
	}
}

func (d *DB) ActiveOnBook(ctx context.Context, memberID, bookID string) (*model.Registration, error) {
	var reg model.Registration
	err := d.conn(ctx).
		Where("member_id = ? AND book_id = ? AND status = ?", memberID, bookID, model.RegistrationActive).
		Order("priority_day asc, priority_seq asc").
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query registration on book: %w", err)
	}
	return &reg, nil
}

func (d *DB) NextPrioritySeq(ctx context.Context, bookID string, day int) (int, error) {
	var max *int
	err := d.conn(ctx).
		Model(&model.Registration{}).
		Where("book_id = ? AND priority_day = ?", bookID, day).
		Select("max(priority_seq)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute next priority sequence: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (d *DB) ListActive(ctx context.Context, bookID string, tier int) ([]model.Registration, error) {
	var regs []model.Registration
	err := d.conn(ctx).
		Where("book_id = ? AND tier = ? AND status = ?", bookID, tier, model.RegistrationActive).
		Order("priority_day asc, priority_seq asc, created_at asc, id asc").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active registrations: %w", err)
	}
	return regs, nil
}

func (d *DB) UpdateRegistration(ctx context.Context, reg *model.Registration) error {
	old, err := d.GetRegistration(ctx, reg.ID)
	if err != nil {
		return err
	}

	res := d.conn(ctx).
		Model(&model.Registration{}).
		Where("id = ? AND version = ?", reg.ID, reg.Version).
		Updates(registrationColumns(reg))
	if res.Error != nil {
		return fmt.Errorf("failed to update registration %s: %w", reg.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.RaceLostError{Table: "registrations", RecordID: reg.ID}
	}

	reg.Version++
	return d.appendAudit(ctx, "registrations", reg.ID, old, reg)
}

// registrationColumns maps every mutable field explicitly so zero values
// (a reset check-mark count, a cleared rolloff reason) are still written.
func registrationColumns(reg *model.Registration) map[string]any {
	return map[string]any{
		"tier":             reg.Tier,
		"status":           reg.Status,
		"last_resign":      reg.LastResign,
		"next_resign_due":  reg.NextResignDue,
		"check_mark_count": reg.CheckMarkCount,
		"short_call_count": reg.ShortCallCount,
		"rolloff_reason":   reg.RolloffReason,
		"rolloff_date":     reg.RolloffDate,
		"version":          reg.Version + 1,
	}
}
