package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/unioncore/dispatch/internal/config"
	"github.com/unioncore/dispatch/pkg/clients/memberdir"
	"github.com/unioncore/dispatch/pkg/core/referral"
	"github.com/unioncore/dispatch/pkg/core/window"
	"github.com/unioncore/dispatch/pkg/db"
)

// AppContext holds the dependencies shared by all commands.
type AppContext struct {
	Ctx       context.Context
	Cfg       *config.Config
	Schedule  window.Schedule
	Calendar  *referral.Calendar
	Directory *memberdir.Client
	Store     *db.DB
	Logger    *zap.Logger
}
