package mission

import (
	"log/slog"
	"sync"
)

// noScenario is reported before the first scenario load.
const noScenario = "No scenario loaded"

// Context holds what the session is currently playing. The engine writes it; log handlers and
// storage writers read it from other goroutines.
type Context struct {
	mu        sync.RWMutex
	sessionID string
	rowID     uint
	scenario  string
	frame     int
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{scenario: noScenario}
}

// SetSession records the session UUID and the database row it was stored under.
func (c *Context) SetSession(id string, rowID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
	c.rowID = rowID
}

// SessionID returns the session UUID.
func (c *Context) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// SessionRowID returns the database ID of the session, 0 before it is stored.
func (c *Context) SessionRowID() uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rowID
}

// SetScenario switches to a newly loaded scenario and resets the frame.
func (c *Context) SetScenario(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenario = name
	c.frame = 0
}

// Scenario returns the current scenario file name.
func (c *Context) Scenario() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenario
}

// SetFrame records the game frame just simulated.
func (c *Context) SetFrame(frame int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
}

// Frame returns the last simulated frame.
func (c *Context) Frame() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// Attrs returns the log attributes describing the current position of the session.
func (c *Context) Attrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	attrs := []slog.Attr{
		slog.String("scenario", c.scenario),
		slog.Int("frame", c.frame),
	}
	if c.sessionID != "" {
		attrs = append(attrs, slog.String("session", c.sessionID))
	}
	return attrs
}
