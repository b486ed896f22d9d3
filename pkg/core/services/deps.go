package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/pkg/core/model"
)

// MemberDirectory is the external member-records collaborator. The engine
// only reads from it.
type MemberDirectory interface {
	GetMember(ctx context.Context, id string) (*model.Member, error)
}

// ContractDirectory is the external employer/contract collaborator.
type ContractDirectory interface {
	// GetEmployerContract returns nil when the employer holds no contract
	// with the given code.
	GetEmployerContract(ctx context.Context, employerID, contractCode string) (*model.EmployerContract, error)
	// ContractExists reports whether any employer carries the contract code.
	ContractExists(ctx context.Context, contractCode string) (bool, error)
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// DefaultRaceRetries bounds internal retries of operations that lose an
// optimistic-lock race. Exhausting it signals a contention problem worth
// surfacing.
const DefaultRaceRetries = 3

// withRetry re-runs fn with fresh reads while it loses update races, up to
// retries additional attempts. Any other error surfaces immediately.
func withRetry(logger *zap.Logger, retries int, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !model.IsRaceLost(err) || attempt >= retries {
			return err
		}
		logger.Warn("Lost update race, retrying with fresh reads",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
}
