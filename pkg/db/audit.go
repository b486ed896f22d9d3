package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
)

// appendAudit writes one immutable trail entry inside the current
// transaction. old is nil for creations. Audit rows are never updated or
// deleted; terminal states append, they do not overwrite history.
func (d *DB) appendAudit(ctx context.Context, tableName, recordID string, old, updated any) error {
	record := model.AuditRecord{
		ID:        uuid.New().String(),
		At:        time.Now().UTC(),
		Actor:     actorFrom(ctx),
		TableName: tableName,
		RecordID:  recordID,
	}

	if old != nil {
		raw, err := json.Marshal(old)
		if err != nil {
			return fmt.Errorf("failed to marshal audit old values: %w", err)
		}
		record.OldValues = string(raw)
	}
	if updated != nil {
		raw, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal audit new values: %w", err)
		}
		record.NewValues = string(raw)
	}

	if err := d.conn(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	d.log.Debug("Audit record appended",
		zap.String("table", tableName),
		zap.String("record_id", recordID),
		zap.String("actor", record.Actor))
	return nil
}

// ListAudit returns the trail for one record, oldest first.
func (d *DB) ListAudit(ctx context.Context, tableName, recordID string) ([]model.AuditRecord, error) {
	var records []model.AuditRecord
	err := d.conn(ctx).
		Where("table_name = ? AND record_id = ?", tableName, recordID).
		Order("at asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}
