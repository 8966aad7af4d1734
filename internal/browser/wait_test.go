// File: internal/browser/wait_test.go
package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDispatcher answers wait commands from a presence map and records
// the selectors it was asked about, in order.
type scriptedDispatcher struct {
	present map[string]bool
	asked   []string
	err     error
}

func (d *scriptedDispatcher) Send(_ context.Context, _ *Session, cmd Command) (Result, error) {
	d.asked = append(d.asked, cmd.Selector)
	if d.err != nil {
		return Result{}, d.err
	}
	return Result{Status: "ok", Found: d.present[cmd.Selector]}, nil
}

func TestWaitForSelector_TimeoutIsNotAnError(t *testing.T) {
	d := &scriptedDispatcher{present: map[string]bool{}}

	found, err := WaitForSelector(context.Background(), d, &Session{}, "#absent", time.Second)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWaitForAnySelector_ReturnsFirstPresentInOrder(t *testing.T) {
	d := &scriptedDispatcher{present: map[string]bool{"#b": true, "#c": true}}

	sel, found, err := WaitForAnySelector(context.Background(), d, &Session{}, []string{"#a", "#b", "#c"}, time.Second)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "#b", sel)

	// The scan stops at the first hit; #c is never probed.
	assert.Equal(t, []string{"#a", "#b"}, d.asked)
}

func TestWaitForAnySelector_AllAbsent(t *testing.T) {
	d := &scriptedDispatcher{present: map[string]bool{}}

	sel, found, err := WaitForAnySelector(context.Background(), d, &Session{}, []string{"#a", "#b"}, time.Second)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, sel)
	assert.Equal(t, []string{"#a", "#b"}, d.asked)
}

func TestWaitForAnySelector_TransportErrorStopsScan(t *testing.T) {
	d := &scriptedDispatcher{err: &APIError{Op: "waitForSelector", Status: 502, Body: "gateway"}}

	_, found, err := WaitForAnySelector(context.Background(), d, &Session{}, []string{"#a", "#b"}, time.Second)
	require.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"#a"}, d.asked)
}
