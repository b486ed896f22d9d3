package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unioncore/dispatch/pkg/core/model"
)

func (d *DB) CreateBid(ctx context.Context, bid *model.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	if err := d.conn(ctx).Create(bid).Error; err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return d.appendAudit(ctx, "bids", bid.ID, nil, bid)
}

func (d *DB) FindPendingBid(ctx context.Context, requestID, memberID string) (*model.Bid, error) {
	var bid model.Bid
	err := d.conn(ctx).
		Where("labor_request_id = ? AND member_id = ? AND status = ?",
			requestID, memberID, model.BidPending).
		First(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending bid: %w", err)
	}
	return &bid, nil
}

func (d *DB) ListPendingBids(ctx context.Context, requestID string) ([]model.Bid, error) {
	var bids []model.Bid
	err := d.conn(ctx).
		Where("labor_request_id = ? AND status = ?", requestID, model.BidPending).
		Order("submitted_at asc, id asc").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bids: %w", err)
	}
	return bids, nil
}

func (d *DB) UpdateBid(ctx context.Context, bid *model.Bid) error {
	old, err := d.getBid(ctx, bid.ID)
	if err != nil {
		return err
	}

	res := d.conn(ctx).
		Model(&model.Bid{}).
		Where("id = ?", bid.ID).
		Update("status", bid.Status)
	if res.Error != nil {
		return fmt.Errorf("failed to update bid %s: %w", bid.ID, res.Error)
	}

	return d.appendAudit(ctx, "bids", bid.ID, old, bid)
}

func (d *DB) getBid(ctx context.Context, id string) (*model.Bid, error) {
	var bid model.Bid
	err := d.conn(ctx).First(&bid, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Entity: "bid", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bid %s: %w", id, err)
	}
	return &bid, nil
}
