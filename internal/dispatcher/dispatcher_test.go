package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func (l *testLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	d, err := New(logger)
	require.NoError(t, err)
	return d, logger
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Command
	d.Register("start", func(c Command) (any, error) {
		got = c
		return "started", nil
	})

	result, err := d.Dispatch(Command{Name: "start", Args: []string{"SCG01EA.INI"}})

	require.NoError(t, err)
	assert.Equal(t, "started", result)
	assert.Equal(t, "SCG01EA.INI", got.Arg(0))
	assert.Equal(t, "", got.Arg(1))
	assert.False(t, got.Issued.IsZero(), "dispatch stamps the issue time")
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Command{Name: "warp"})

	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.ErrorContains(t, err, "warp")
}

func TestDispatcher_BufferedHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup
	wg.Add(3)

	d.Register("save", func(c Command) (any, error) {
		mu.Lock()
		order = append(order, c.Arg(0))
		mu.Unlock()
		wg.Done()
		return nil, nil
	}, Buffered(100))

	for _, slot := range []string{"a", "b", "c"} {
		result, err := d.Dispatch(Command{Name: "save", Args: []string{slot}})
		require.NoError(t, err)
		assert.Equal(t, "queued", result)
	}

	wg.Wait()
	assert.Equal(t, []string{"a", "b", "c"}, order, "buffered commands run in arrival order")
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	d.Register("save", func(c Command) (any, error) {
		<-block
		return nil, nil
	}, Buffered(2))

	// one being processed, two queued
	d.Dispatch(Command{Name: "save"})
	d.Dispatch(Command{Name: "save"})
	d.Dispatch(Command{Name: "save"})

	_, err := d.Dispatch(Command{Name: "save"})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(block)
}

func TestDispatcher_BufferedBlocking(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	d.Register("save", func(c Command) (any, error) {
		<-block
		return nil, nil
	}, Buffered(1), Blocking())

	d.Dispatch(Command{Name: "save"})
	d.Dispatch(Command{Name: "save"})

	done := make(chan struct{})
	go func() {
		d.Dispatch(Command{Name: "save"})
		close(done)
	}()

	select {
	case <-done:
		t.Error("dispatch should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	close(block)
	<-done
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register("save", func(c Command) (any, error) {
		time.Sleep(time.Millisecond)
		processed.Add(1)
		return nil, nil
	}, Buffered(10))

	for i := 0; i < 5; i++ {
		_, err := d.Dispatch(Command{Name: "save"})
		require.NoError(t, err)
	}

	d.Close()
	assert.Equal(t, int32(5), processed.Load())

	_, err := d.Dispatch(Command{Name: "save"})
	assert.ErrorIs(t, err, ErrClosed)

	d.Close()
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError bool
	}{
		{name: "success"},
		{name: "failure", err: errors.New("boom"), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, logger := newTestDispatcher(t)
			d.Register("tick", func(c Command) (any, error) {
				return "ok", tt.err
			}, Logged())

			_, err := d.Dispatch(Command{Name: "tick", Args: []string{"5"}})
			assert.Equal(t, tt.err, err)

			messages := logger.snapshot()
			require.GreaterOrEqual(t, len(messages), 2)
			hasError := false
			for _, msg := range messages {
				if strings.HasPrefix(msg, "ERROR") {
					hasError = true
				}
			}
			assert.Equal(t, tt.wantError, hasError)
		})
	}
}

func TestDispatcher_HasHandlerAndCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	noop := func(c Command) (any, error) { return nil, nil }
	d.Register("win", noop)
	d.Register("lose", noop)
	d.Register("restart", noop)

	assert.True(t, d.HasHandler("win"))
	assert.False(t, d.HasHandler("quit"))
	assert.Equal(t, []string{"lose", "restart", "win"}, d.Commands())
}

func TestDispatcher_CombinedOptions(t *testing.T) {
	d, logger := newTestDispatcher(t)

	var wg sync.WaitGroup
	wg.Add(1)

	d.Register("save", func(c Command) (any, error) {
		wg.Done()
		return "done", nil
	}, Buffered(100), Logged())

	result, err := d.Dispatch(Command{Name: "save"})
	require.NoError(t, err)
	assert.Equal(t, "queued", result)

	wg.Wait()
	d.Close()

	assert.GreaterOrEqual(t, len(logger.snapshot()), 2)
}

func TestDispatcher_QueueDepth(t *testing.T) {
	d, _ := newTestDispatcher(t)
	assert.Zero(t, d.QueueDepth())

	started := make(chan struct{}, 3)
	block := make(chan struct{})
	d.Register("tick", func(c Command) (any, error) {
		started <- struct{}{}
		<-block
		return nil, nil
	}, Buffered(4))

	_, err := d.Dispatch(Command{Name: "tick"})
	require.NoError(t, err)
	<-started

	d.Dispatch(Command{Name: "tick"})
	d.Dispatch(Command{Name: "tick"})
	assert.Equal(t, 2, d.QueueDepth())

	close(block)
	d.Close()
	assert.Zero(t, d.QueueDepth())
}
