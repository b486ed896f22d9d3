package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unioncore/dispatch/pkg/core/model"
)

func (d *DB) CreateCheckMark(ctx context.Context, mark *model.CheckMark) error {
	if mark.ID == "" {
		mark.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(mark).Error; err != nil {
		return fmt.Errorf("failed to insert check mark: %w", err)
	}
	return d.appendAudit(ctx, "check_marks", mark.ID, nil, mark)
}

func (d *DB) FindCheckMark(ctx context.Context, memberID, bookID, date string) (*model.CheckMark, error) {
	var mark model.CheckMark
	err := d.conn(ctx).
		Where("member_id = ? AND book_id = ? AND date = ? AND is_exception = ?",
			memberID, bookID, date, false).
		First(&mark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query check mark: %w", err)
	}
	return &mark, nil
}

func (d *DB) CreateExemption(ctx context.Context, ex *model.Exemption) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(ex).Error; err != nil {
		return fmt.Errorf("failed to insert exemption: %w", err)
	}
	return d.appendAudit(ctx, "exemptions", ex.ID, nil, ex)
}

func (d *DB) ListExemptions(ctx context.Context, memberID string) ([]model.Exemption, error) {
	var exemptions []model.Exemption
	err := d.conn(ctx).
		Where("member_id = ?", memberID).
		Order("start_date asc").
		Find(&exemptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exemptions: %w", err)
	}
	return exemptions, nil
}

func (d *DB) CreateInfraction(ctx context.Context, inf *model.BiddingInfraction) error {
	if inf.ID == "" {
		inf.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(inf).Error; err != nil {
		return fmt.Errorf("failed to insert bidding infraction: %w", err)
	}
	return d.appendAudit(ctx, "bidding_infractions", inf.ID, nil, inf)
}

func (d *DB) ListInfractionsSince(ctx context.Context, memberID, since string) ([]model.BiddingInfraction, error) {
	var infractions []model.BiddingInfraction
	err := d.conn(ctx).
		Where("member_id = ? AND infraction_date >= ?", memberID, since).
		Order("infraction_date desc").
		Find(&infractions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list infractions: %w", err)
	}
	return infractions, nil
}

func (d *DB) ListInfractions(ctx context.Context, memberID string) ([]model.BiddingInfraction, error) {
	var infractions []model.BiddingInfraction
	err := d.conn(ctx).
		Where("member_id = ?", memberID).
		Order("infraction_date desc").
		Find(&infractions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list infractions: %w", err)
	}
	return infractions, nil
}

func (d *DB) CreateBlackout(ctx context.Context, b *model.MemberBlackout) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to insert blackout: %w", err)
	}
	return d.appendAudit(ctx, "member_blackouts", b.ID, nil, b)
}

func (d *DB) ListBlackouts(ctx context.Context, memberID string) ([]model.MemberBlackout, error) {
	var blackouts []model.MemberBlackout
	err := d.conn(ctx).
		Where("member_id = ?", memberID).
		Order("start_date asc").
		Find(&blackouts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blackouts: %w", err)
	}
	return blackouts, nil
}
