package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unioncore/dispatch/pkg/core/model"
)

func (d *DB) CreateRequest(ctx context.Context, req *model.LaborRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to insert labor request: %w", err)
	}
	return d.appendAudit(ctx, "labor_requests", req.ID, nil, req)
}

func (d *DB) GetRequest(ctx context.Context, id string) (*model.LaborRequest, error) {
	var req model.LaborRequest
	err := d.conn(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Entity: "labor request", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load labor request %s: %w", id, err)
	}
	return &req, nil
}

func (d *DB) UpdateRequest(ctx context.Context, req *model.LaborRequest) error {
	old, err := d.GetRequest(ctx, req.ID)
	if err != nil {
		return err
	}

	res := d.conn(ctx).
		Model(&model.LaborRequest{}).
		Where("id = ? AND version = ?", req.ID, req.Version).
		Updates(map[string]any{
			"positions_filled":    req.PositionsFilled,
			"status":              req.Status,
			"cutoff_applied":      req.CutoffApplied,
			"window_processed_at": req.WindowProcessedAt,
			"version":             req.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update labor request %s: %w", req.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.RaceLostError{Table: "labor_requests", RecordID: req.ID}
	}

	req.Version++
	return d.appendAudit(ctx, "labor_requests", req.ID, old, req)
}
