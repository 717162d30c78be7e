// Package worker binds dispatcher commands to the session engine.
package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rasim/simcore/internal/logging"
	"github.com/rasim/simcore/internal/session"
)

// ErrBadArgument is returned when a command argument cannot be parsed.
var ErrBadArgument = errors.New("bad command argument")

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Engine     *session.Engine
	LogManager *logging.SlogManager
}

// Manager turns dispatched commands into engine calls. Commands run with the manager's context,
// so cancelling it stops a long run.
type Manager struct {
	deps Dependencies
	ctx  context.Context
}

// NewManager creates a new worker manager
func NewManager(ctx context.Context, deps Dependencies) *Manager {
	return &Manager{
		deps: deps,
		ctx:  ctx,
	}
}

func (m *Manager) logger() *slog.Logger {
	if m.deps.LogManager == nil {
		return slog.Default()
	}
	return m.deps.LogManager.Logger()
}
