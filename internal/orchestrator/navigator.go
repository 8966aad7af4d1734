// File: internal/orchestrator/navigator.go
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/xkilldash9x/accountforge/internal/browser"
	"go.uber.org/zap"
)

// TerminalState is where the navigator's fixed state sequence ends up when no
// command error interrupts it.
type TerminalState int

const (
	// TerminalCreated: the full flow completed.
	TerminalCreated TerminalState = iota
	// TerminalVerificationRequired: the form demanded a code the caller did
	// not supply. The session must survive so a follow-up call can finish.
	TerminalVerificationRequired
)

// Navigator drives a session through the signup flow: a fixed sequence of
// states, each gated by a bounded selector wait. Mandatory waits that expire
// become errors; optional waits that expire are skipped.
type Navigator struct {
	dispatcher browser.Dispatcher
	selectors  FlowSelectors
	signupURL  string
	logger     *zap.Logger
}

// NewNavigator builds a navigator over the given dispatcher.
func NewNavigator(dispatcher browser.Dispatcher, selectors FlowSelectors, signupURL string, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		dispatcher: dispatcher,
		selectors:  selectors,
		signupURL:  signupURL,
		logger:     logger.Named("navigator"),
	}
}

// Run executes the signup sequence against the session. Any error is a
// command-level failure the pipeline converts into the failed outcome;
// ErrFormNotLoaded marks the mandatory first wait expiring.
func (n *Navigator) Run(ctx context.Context, session *browser.Session, creds Credentials, verificationCode string) (TerminalState, error) {
	if _, err := n.dispatcher.Send(ctx, session, browser.Navigate(n.signupURL)); err != nil {
		return 0, fmt.Errorf("navigate to signup page: %w", err)
	}

	// State 1: FormLoaded. The only selector wait whose absence is fatal.
	emailSel, found, err := browser.WaitForAnySelector(ctx, n.dispatcher, session, n.selectors.EmailField, formLoadTimeout)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrFormNotLoaded
	}
	n.logger.Debug("Signup form detected.", zap.String("email_selector", emailSel))

	// State 2: BasicFieldsFilled. Type actions are not timeout-gated; the
	// prior state confirmed form presence. A stale field selector fails the
	// run immediately rather than re-running form detection.
	fields := []struct {
		selector string
		value    string
	}{
		{emailSel, creds.Email},
		{n.selectors.FullNameField, creds.FullName},
		{n.selectors.UsernameField, creds.Username},
		{n.selectors.PasswordField, creds.Password},
	}
	for _, f := range fields {
		if _, err := n.dispatcher.Send(ctx, session, browser.TypeText(f.selector, f.value)); err != nil {
			return 0, fmt.Errorf("type into %s: %w", f.selector, err)
		}
	}

	// State 3: Submitted.
	if _, err := n.dispatcher.Send(ctx, session, browser.Click(n.selectors.Submit)); err != nil {
		return 0, fmt.Errorf("click submit: %w", err)
	}

	// State 4: BirthdateMaybe. Some variants omit birthdate collection here,
	// so absence of the month selector skips the whole step.
	if err := n.maybeFillBirthdate(ctx, session, creds.Birthdate); err != nil {
		return 0, err
	}

	// State 5: VerificationMaybe.
	verifySel, found, err := browser.WaitForAnySelector(ctx, n.dispatcher, session, n.selectors.VerifyField, verifyTimeout)
	if err != nil {
		return 0, err
	}
	if found {
		if verificationCode == "" {
			n.logger.Info("Verification code requested and none supplied; retaining session.")
			return TerminalVerificationRequired, nil
		}
		if _, err := n.dispatcher.Send(ctx, session, browser.TypeText(verifySel, verificationCode)); err != nil {
			return 0, fmt.Errorf("type verification code: %w", err)
		}
		if err := n.clickFirstPresent(ctx, session, n.selectors.VerifyNext, optionalTimeout); err != nil {
			return 0, err
		}
	}

	// State 6: PostSignupDismiss, best effort.
	n.dismissDialogs(ctx, session)

	return TerminalCreated, nil
}

// maybeFillBirthdate handles the optional birthdate step. The month selector
// decides presence; day, year and the Next control are each best effort with
// shorter timeouts.
func (n *Navigator) maybeFillBirthdate(ctx context.Context, session *browser.Session, bd Birthdate) error {
	monthSel, found, err := browser.WaitForAnySelector(ctx, n.dispatcher, session, n.selectors.MonthSelect, birthdateTimeout)
	if err != nil {
		return err
	}
	if !found {
		n.logger.Debug("No birthdate step in this signup variant, skipping.")
		return nil
	}

	if _, err := n.dispatcher.Send(ctx, session, browser.SelectOption(monthSel, fmt.Sprintf("%d", bd.Month))); err != nil {
		return fmt.Errorf("select birth month: %w", err)
	}

	optional := []struct {
		variants []string
		value    string
	}{
		{n.selectors.DaySelect, fmt.Sprintf("%d", bd.Day)},
		{n.selectors.YearSelect, fmt.Sprintf("%d", bd.Year)},
	}
	for _, opt := range optional {
		sel, found, err := browser.WaitForAnySelector(ctx, n.dispatcher, session, opt.variants, optionalTimeout)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if _, err := n.dispatcher.Send(ctx, session, browser.SelectOption(sel, opt.value)); err != nil {
			return fmt.Errorf("select birthdate field %s: %w", sel, err)
		}
	}

	// Best-effort Next click; a missing control is not fatal here.
	if err := n.clickFirstPresent(ctx, session, n.selectors.BirthdateNext, optionalTimeout); err != nil {
		n.logger.Debug("Birthdate Next click failed, continuing.", zap.Error(err))
	}
	return nil
}

// clickFirstPresent waits briefly for any of the variants and clicks the
// first found. Absence is a no-op; a failed click on a present control is an
// error for the caller to judge.
func (n *Navigator) clickFirstPresent(ctx context.Context, session *browser.Session, variants []string, timeout time.Duration) error {
	sel, found, err := browser.WaitForAnySelector(ctx, n.dispatcher, session, variants, timeout)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if _, err := n.dispatcher.Send(ctx, session, browser.Click(sel)); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}

// dismissDialogs clears post-signup dialogs ("Not Now", "Skip", "Save").
// Entirely best effort: absence and failures alike are swallowed.
func (n *Navigator) dismissDialogs(ctx context.Context, session *browser.Session) {
	if err := n.clickFirstPresent(ctx, session, n.selectors.Dismiss, dismissTimeout); err != nil {
		n.logger.Debug("Post-signup dialog dismissal failed, continuing.", zap.Error(err))
	}
}
