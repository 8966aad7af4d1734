// File: internal/orchestrator/errors.go
package orchestrator

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/accountforge/internal/browser"
)

// ErrorCode is a string type used for structured error reporting from the
// pipeline. Using a custom type ensures that only predefined constants can be
// used where an ErrorCode is expected.
type ErrorCode string

const (
	// ErrCodeConfiguration covers missing recipient identity or missing both
	// authentication modes to the browser service. Fatal before side effects.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodePayment covers absent or invalid payment proofs. Fatal to the
	// request; no automation is attempted.
	ErrCodePayment ErrorCode = "PAYMENT_ERROR"
	// ErrCodeProvisioning covers proxy allocation and browser-service session
	// creation failures. Fatal; no cleanup needed since no session exists.
	ErrCodeProvisioning ErrorCode = "PROVISIONING_ERROR"
	// ErrCodeCommand covers any automation step whose remote call fails.
	// Fatal; cleanup is attempted against whatever session exists.
	ErrCodeCommand ErrorCode = "COMMAND_ERROR"
	// ErrCodeFormNotLoaded is the mandatory first wait expiring: the signup
	// form never appeared.
	ErrCodeFormNotLoaded ErrorCode = "FORM_NOT_LOADED"
)

// PaymentError aborts the request before any automation work. Reason carries
// the verifier's judgment verbatim.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment rejected: %s", e.Reason)
}

// ErrFormNotLoaded is returned by the navigator when no email-field variant
// appears within the mandatory first wait.
var ErrFormNotLoaded = errors.New("signup form did not load")

// classify maps a pipeline error onto the taxonomy for the failed outcome.
// Errors raised before a session exists are provisioning failures; everything
// after is a command failure.
func classify(err error, sessionExists bool) ErrorCode {
	switch {
	case errors.Is(err, browser.ErrNoAuthMode):
		return ErrCodeConfiguration
	case errors.Is(err, ErrFormNotLoaded):
		return ErrCodeFormNotLoaded
	case sessionExists:
		return ErrCodeCommand
	default:
		return ErrCodeProvisioning
	}
}
