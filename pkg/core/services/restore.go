package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/db"
)

// Restore returns a dispatched registration to ACTIVE with its original
// priority number intact, so a member laid off during a short call keeps
// their place in line.
func Restore(ctx context.Context, store db.EngineStore, logger *zap.Logger, registrationID, reason string) (*model.Registration, error) {
	var reg *model.Registration
	err := withRetry(logger, DefaultRaceRetries, func() error {
		return store.InTx(ctx, func(tx db.EngineStore) error {
			var err error
			reg, err = tx.GetRegistration(ctx, registrationID)
			if err != nil {
				return err
			}
			return restoreRegistration(ctx, tx, logger, reg, reason)
		})
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// restoreRegistration flips dispatched back to active. Callers already
// inside a transaction use this directly.
func restoreRegistration(ctx context.Context, tx db.EngineStore, logger *zap.Logger, reg *model.Registration, reason string) error {
	if !reg.Status.CanTransition(model.RegistrationActive) {
		return &model.StateConflictError{
			Rule:   model.RuleInvalidTransition,
			Detail: fmt.Sprintf("cannot restore a %s registration", reg.Status),
		}
	}

	reg.Status = model.RegistrationActive
	if err := tx.UpdateRegistration(ctx, reg); err != nil {
		return err
	}

	logger.Info("Registration restored",
		zap.String("registration_id", reg.ID),
		zap.String("member_id", reg.MemberID),
		zap.String("reason", reason),
		zap.Int("priority_day", reg.PriorityDay),
		zap.Int("priority_seq", reg.PrioritySeq))
	return nil
}
