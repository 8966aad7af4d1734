// File: internal/orchestrator/outcome.go
package orchestrator

import (
	"github.com/xkilldash9x/accountforge/internal/payment"
)

// Status is the terminal classification of one orchestration run.
type Status string

const (
	StatusCreated              Status = "created"
	StatusVerificationRequired Status = "verification_required"
	StatusFailed               Status = "failed"
)

// ProxyInfo is the caller-visible slice of the allocated proxy.
type ProxyInfo struct {
	Country string `json:"country"`
	Type    string `json:"type"`
}

// SessionInfo reports the remote session and whether it survived the run.
type SessionInfo struct {
	ID   string `json:"id"`
	Kept bool   `json:"kept"`
}

// Outcome is the single tagged result of a run. Exactly one is produced per
// request, and it always carries the payment receipt: the payment settled
// before automation began, so it is reportable even on failure.
type Outcome struct {
	Status   Status          `json:"status"`
	Username string          `json:"username,omitempty"`
	Password string          `json:"password,omitempty"`
	Email    string          `json:"email,omitempty"`
	Proxy    ProxyInfo       `json:"proxy"`
	Session  SessionInfo     `json:"session"`
	Payment  payment.Receipt `json:"payment"`
	Notes    string          `json:"notes,omitempty"`
	Error    string          `json:"error,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// newCreatedOutcome shapes the success terminal state.
func newCreatedOutcome(state *runState, creds Credentials) *Outcome {
	return &Outcome{
		Status:   StatusCreated,
		Username: creds.Username,
		Password: creds.Password,
		Email:    creds.Email,
		Proxy:    state.proxyInfo(),
		Session:  SessionInfo{ID: state.sessionID(), Kept: state.kept},
		Payment:  state.receipt,
	}
}

// newVerificationOutcome shapes the verification-required branch. The session
// is always retained on this path, whatever the caller asked for.
func newVerificationOutcome(state *runState, creds Credentials) *Outcome {
	return &Outcome{
		Status:   StatusVerificationRequired,
		Username: creds.Username,
		Password: creds.Password,
		Email:    creds.Email,
		Proxy:    state.proxyInfo(),
		Session:  SessionInfo{ID: state.sessionID(), Kept: true},
		Payment:  state.receipt,
		Notes:    "A verification code was requested. Re-issue the request with verificationCode against the retained session.",
	}
}

// newFailedOutcome shapes the hard-failure terminal state. Proxy and session
// may be partial; the receipt is still attached.
func newFailedOutcome(state *runState, code ErrorCode, err error) *Outcome {
	return &Outcome{
		Status:  StatusFailed,
		Proxy:   state.proxyInfo(),
		Session: SessionInfo{ID: state.sessionID(), Kept: state.kept},
		Payment: state.receipt,
		Error:   string(code),
		Message: err.Error(),
	}
}
