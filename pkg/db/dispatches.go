package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unioncore/dispatch/pkg/core/model"
)

func (d *DB) CreateDispatch(ctx context.Context, disp *model.Dispatch) error {
	if disp.ID == "" {
		disp.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(disp).Error; err != nil {
		return fmt.Errorf("failed to insert dispatch: %w", err)
	}
	return d.appendAudit(ctx, "dispatches", disp.ID, nil, disp)
}

func (d *DB) GetDispatch(ctx context.Context, id string) (*model.Dispatch, error) {
	var disp model.Dispatch
	err := d.conn(ctx).First(&disp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Entity: "dispatch", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch %s: %w", id, err)
	}
	return &disp, nil
}

func (d *DB) UpdateDispatch(ctx context.Context, disp *model.Dispatch) error {
	old, err := d.GetDispatch(ctx, disp.ID)
	if err != nil {
		return err
	}

	res := d.conn(ctx).
		Model(&model.Dispatch{}).
		Where("id = ?", disp.ID).
		Updates(map[string]any{
			"status":             disp.Status,
			"review_flagged":     disp.ReviewFlagged,
			"termination_reason": disp.TerminationReason,
			"ended_at":           disp.EndedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update dispatch %s: %w", disp.ID, res.Error)
	}

	return d.appendAudit(ctx, "dispatches", disp.ID, old, disp)
}

func (d *DB) CountMemberDispatchesOn(ctx context.Context, memberID, date string) (int, error) {
	terminal := []model.DispatchStatus{
		model.DispatchTerminated, model.DispatchQuit,
		model.DispatchRejected, model.DispatchNoShow,
	}

	var count int64
	err := d.conn(ctx).
		Model(&model.Dispatch{}).
		Where("member_id = ? AND dispatched_on = ? AND status NOT IN ?",
			memberID, date, terminal).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count member dispatches: %w", err)
	}
	return int(count), nil
}
