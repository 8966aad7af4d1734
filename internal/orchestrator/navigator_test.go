// File: internal/orchestrator/navigator_test.go
package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/accountforge/internal/browser"
	"github.com/xkilldash9x/accountforge/internal/observability"
	"github.com/xkilldash9x/accountforge/internal/proxy"
)

// fakeSessions scripts the remote browser service: selectors listed in
// present are "on the page", everything else times out. It records every
// command for assertions.
type fakeSessions struct {
	mu       sync.Mutex
	commands []browser.Command
	present  map[string]bool
	// failSelector makes any non-wait command against it fail.
	failSelector string
	createErr    error
	deleteCalls  int
	deleteErr    error
}

func (f *fakeSessions) Send(_ context.Context, _ *browser.Session, cmd browser.Command) (browser.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()

	if cmd.Action == browser.ActionWaitForSelector {
		return browser.Result{Status: "ok", Found: f.present[cmd.Selector]}, nil
	}
	if f.failSelector != "" && cmd.Selector == f.failSelector {
		return browser.Result{}, &browser.APIError{Op: string(cmd.Action), Status: 500, Body: "element went stale"}
	}
	return browser.Result{Status: "ok"}, nil
}

func (f *fakeSessions) CreateSession(_ context.Context, _ *proxy.Descriptor, _ time.Duration, _ string) (*browser.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &browser.Session{ID: "sess-1", Token: "tok-1"}, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, _ *browser.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeSessions) actions() []browser.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]browser.Action, len(f.commands))
	for i, c := range f.commands {
		out[i] = c.Action
	}
	return out
}

func (f *fakeSessions) typedSelectors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.commands {
		if c.Action == browser.ActionType {
			out = append(out, c.Selector)
		}
	}
	return out
}

func testCreds() Credentials {
	return Credentials{
		Email:     "a.b@x.com",
		FullName:  "A B",
		Username:  "ab1234",
		Password:  "p4sswordp4ssw",
		Birthdate: Birthdate{Year: 1999, Month: 5, Day: 7},
	}
}

func newTestNavigator(fake *fakeSessions) *Navigator {
	return NewNavigator(fake, DefaultFlowSelectors(), "https://social.example/signup", observability.GetLogger())
}

func TestNavigator_FormNeverLoads(t *testing.T) {
	fake := &fakeSessions{present: map[string]bool{}}
	nav := newTestNavigator(fake)

	_, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "")
	require.ErrorIs(t, err, ErrFormNotLoaded)

	// The mandatory wait failing must abort before any typing command.
	assert.NotContains(t, fake.actions(), browser.ActionType)
}

func TestNavigator_FullFlowWithoutOptionalSteps(t *testing.T) {
	sels := DefaultFlowSelectors()
	// Only the second email variant exists; fallback order must find it.
	fake := &fakeSessions{present: map[string]bool{
		sels.EmailField[1]: true,
	}}
	nav := newTestNavigator(fake)

	terminal, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "")
	require.NoError(t, err)
	assert.Equal(t, TerminalCreated, terminal)

	typed := fake.typedSelectors()
	require.Len(t, typed, 4)
	assert.Equal(t, sels.EmailField[1], typed[0])
	assert.Equal(t, sels.FullNameField, typed[1])
	assert.Equal(t, sels.UsernameField, typed[2])
	assert.Equal(t, sels.PasswordField, typed[3])
}

func TestNavigator_EmailVariantPriorityOrder(t *testing.T) {
	sels := DefaultFlowSelectors()
	// Both variants present: the first listed must win.
	fake := &fakeSessions{present: map[string]bool{
		sels.EmailField[0]: true,
		sels.EmailField[1]: true,
	}}
	nav := newTestNavigator(fake)

	_, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "")
	require.NoError(t, err)
	assert.Equal(t, sels.EmailField[0], fake.typedSelectors()[0])
}

func TestNavigator_BirthdateStepFilledWhenPresent(t *testing.T) {
	sels := DefaultFlowSelectors()
	fake := &fakeSessions{present: map[string]bool{
		sels.EmailField[0]:  true,
		sels.MonthSelect[0]: true,
		sels.DaySelect[0]:   true,
		sels.YearSelect[0]:  true,
	}}
	nav := newTestNavigator(fake)

	terminal, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "")
	require.NoError(t, err)
	assert.Equal(t, TerminalCreated, terminal)

	var selected []string
	for _, c := range fake.commands {
		if c.Action == browser.ActionSelectOption {
			selected = append(selected, c.Selector+"="+c.Value)
		}
	}
	assert.Equal(t, []string{
		sels.MonthSelect[0] + "=5",
		sels.DaySelect[0] + "=7",
		sels.YearSelect[0] + "=1999",
	}, selected)
}

func TestNavigator_VerificationWithoutCodeStopsEarly(t *testing.T) {
	sels := DefaultFlowSelectors()
	fake := &fakeSessions{present: map[string]bool{
		sels.EmailField[0]:  true,
		sels.VerifyField[0]: true,
	}}
	nav := newTestNavigator(fake)

	terminal, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "")
	require.NoError(t, err)
	assert.Equal(t, TerminalVerificationRequired, terminal)

	// The code field is detected but never typed into.
	for _, sel := range fake.typedSelectors() {
		assert.NotEqual(t, sels.VerifyField[0], sel)
	}
}

func TestNavigator_VerificationWithCodeCompletes(t *testing.T) {
	sels := DefaultFlowSelectors()
	fake := &fakeSessions{present: map[string]bool{
		sels.EmailField[0]:  true,
		sels.VerifyField[0]: true,
		sels.VerifyNext[0]:  true,
	}}
	nav := newTestNavigator(fake)

	terminal, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "123456")
	require.NoError(t, err)
	assert.Equal(t, TerminalCreated, terminal)
	assert.Contains(t, fake.typedSelectors(), sels.VerifyField[0])
}

func TestNavigator_StaleFieldSelectorFailsImmediately(t *testing.T) {
	sels := DefaultFlowSelectors()
	fake := &fakeSessions{
		present:      map[string]bool{sels.EmailField[0]: true},
		failSelector: sels.UsernameField,
	}
	nav := newTestNavigator(fake)

	_, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "")
	require.Error(t, err)

	var apiErr *browser.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)

	// The password field is never reached after the username typing fails.
	assert.NotContains(t, fake.typedSelectors(), sels.PasswordField)
}

func TestNavigator_DismissalIsBestEffort(t *testing.T) {
	sels := DefaultFlowSelectors()
	fake := &fakeSessions{
		present: map[string]bool{
			sels.EmailField[0]: true,
			sels.Dismiss[1]:    true,
		},
		failSelector: sels.Dismiss[1],
	}
	nav := newTestNavigator(fake)

	// A failing dismissal click must not fail the run.
	terminal, err := nav.Run(context.Background(), &browser.Session{ID: "s"}, testCreds(), "")
	require.NoError(t, err)
	assert.Equal(t, TerminalCreated, terminal)
}
