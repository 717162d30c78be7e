package mission

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	c := NewContext()
	assert.Equal(t, "No scenario loaded", c.Scenario())
	assert.Equal(t, 0, c.Frame())
	assert.Empty(t, c.SessionID())
	assert.Zero(t, c.SessionRowID())
}

func TestContext_ScenarioResetsFrame(t *testing.T) {
	c := NewContext()
	c.SetScenario("scg01ea.ini")
	c.SetFrame(120)
	assert.Equal(t, 120, c.Frame())

	c.SetScenario("scg02ea.ini")
	assert.Equal(t, "scg02ea.ini", c.Scenario())
	assert.Equal(t, 0, c.Frame())
}

func TestContext_Attrs(t *testing.T) {
	c := NewContext()
	c.SetScenario("scm01ea.ini")
	c.SetFrame(9)
	assert.Equal(t, []slog.Attr{slog.String("scenario", "scm01ea.ini"), slog.Int("frame", 9)}, c.Attrs())

	c.SetSession("5b2e", 3)
	assert.Equal(t, uint(3), c.SessionRowID())
	attrs := c.Attrs()
	assert.Len(t, attrs, 3)
	assert.Equal(t, slog.String("session", "5b2e"), attrs[2])
}

func TestContext_ConcurrentAccess(t *testing.T) {
	c := NewContext()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetFrame(i)
		}(i)
		go func() {
			defer wg.Done()
			_ = c.Attrs()
		}()
	}
	wg.Wait()
}
