// File: internal/orchestrator/selectors.go
package orchestrator

import "time"

// Stage timeouts. Every mandatory wait converts "UI did not respond" into an
// explicit failed outcome instead of an indefinite hang; optional waits fall
// through on absence.
const (
	formLoadTimeout  = 15 * time.Second
	birthdateTimeout = 20 * time.Second
	verifyTimeout    = 20 * time.Second
	dismissTimeout   = 12 * time.Second
	optionalTimeout  = 6 * time.Second
)

// FlowSelectors holds the selector knowledge of the signup flow. Variant
// lists are ordered by priority: newer markup first, older fallbacks after.
// The order is load-bearing, it must match what WaitForAnySelector encodes.
type FlowSelectors struct {
	// EmailField gates the mandatory FormLoaded state.
	EmailField []string

	FullNameField string
	UsernameField string
	PasswordField string
	Submit        string

	// Birthdate step, entirely optional: some signup variants omit it.
	MonthSelect   []string
	DaySelect     []string
	YearSelect    []string
	BirthdateNext []string

	// Verification step.
	VerifyField []string
	VerifyNext  []string

	// Post-signup dialog dismissal controls, best effort.
	Dismiss []string
}

// DefaultFlowSelectors covers the known markup variants of the target signup
// form.
func DefaultFlowSelectors() FlowSelectors {
	return FlowSelectors{
		EmailField: []string{
			`input[name="emailOrPhone"]`,
			`input[name="email"]`,
			`input[type="email"]`,
		},
		FullNameField: `input[name="fullName"]`,
		UsernameField: `input[name="username"]`,
		PasswordField: `input[name="password"]`,
		Submit:        `button[type="submit"]`,
		MonthSelect: []string{
			`select[title="Month:"]`,
			`select[name="month"]`,
		},
		DaySelect: []string{
			`select[title="Day:"]`,
			`select[name="day"]`,
		},
		YearSelect: []string{
			`select[title="Year:"]`,
			`select[name="year"]`,
		},
		BirthdateNext: []string{
			`button[type="button"].birthday-next`,
			`//button[text()="Next"]`,
		},
		VerifyField: []string{
			`input[name="email_confirmation_code"]`,
			`input[name="confirmationCode"]`,
			`input[aria-label*="confirmation" i]`,
		},
		VerifyNext: []string{
			`//button[text()="Next"]`,
			`//button[text()="Confirm"]`,
		},
		Dismiss: []string{
			`//button[text()="Not Now"]`,
			`//button[text()="Skip"]`,
			`//button[text()="Save"]`,
		},
	}
}
