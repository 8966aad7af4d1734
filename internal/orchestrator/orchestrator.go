// File: internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xkilldash9x/accountforge/internal/browser"
	"github.com/xkilldash9x/accountforge/internal/payment"
	"github.com/xkilldash9x/accountforge/internal/proxy"
	"go.uber.org/zap"
)

// SessionManager is the slice of the browser service client the pipeline
// needs. *browser.Client satisfies it.
type SessionManager interface {
	browser.Dispatcher
	CreateSession(ctx context.Context, p *proxy.Descriptor, duration time.Duration, fundingProof string) (*browser.Session, error)
	DeleteSession(ctx context.Context, session *browser.Session) error
}

// Settings are the explicit configuration values the pipeline runs on. No
// ambient lookups happen below this point.
type Settings struct {
	PayTo           string
	PriceUSD        float64
	Network         string
	DefaultCountry  string
	SessionDuration time.Duration
	// HasInternalKey mirrors whether the browser client holds the privileged
	// credential, so the auth-mode preflight can run before the paid verify
	// call.
	HasInternalKey bool
}

// Orchestrator is the payment-gated automation pipeline: gate, provision,
// navigate, resolve, clean up. One request maps to one proxy and one session;
// nothing here is shared across concurrent runs.
type Orchestrator struct {
	verifier  payment.Verifier
	allocator proxy.Allocator
	sessions  SessionManager
	generator *Generator
	selectors FlowSelectors
	signupURL string
	settings  Settings
	logger    *zap.Logger
}

// New wires the pipeline. A nil generator gets a time-seeded one.
func New(verifier payment.Verifier, allocator proxy.Allocator, sessions SessionManager, generator *Generator, selectors FlowSelectors, signupURL string, settings Settings, logger *zap.Logger) *Orchestrator {
	if generator == nil {
		generator = NewGenerator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		verifier:  verifier,
		allocator: allocator,
		sessions:  sessions,
		generator: generator,
		selectors: selectors,
		signupURL: signupURL,
		settings:  settings,
		logger:    logger.Named("orchestrator"),
	}
}

// runState is the explicit pipeline context threaded through every stage, so
// the final outcome and cleanup steps see whatever was provisioned regardless
// of which stage failed.
type runState struct {
	proxy   *proxy.Descriptor
	session *browser.Session
	receipt payment.Receipt
	kept    bool
}

func (s *runState) proxyInfo() ProxyInfo {
	if s.proxy == nil {
		return ProxyInfo{Country: "unknown", Type: "mobile"}
	}
	return ProxyInfo{Country: s.proxy.Country, Type: s.proxy.Type}
}

func (s *runState) sessionID() string {
	if s.session == nil {
		return "unknown"
	}
	return s.session.ID
}

// Run executes one orchestration. Pre-automation failures (configuration,
// payment) come back as errors for the HTTP layer to map; once the payment
// settles, every path yields exactly one Outcome and the session is either
// retained or closed before it returns.
func (o *Orchestrator) Run(ctx context.Context, req Request, proof payment.Proof) (*Outcome, error) {
	logger := o.logger.With(zap.String("run_id", uuid.NewString()))

	// Auth-mode preflight runs before the paid verify call: a settled payment
	// must never be spent on a run that cannot provision a session.
	if !o.settings.HasInternalKey && req.BrowserPaymentTx == "" {
		return nil, browser.ErrNoAuthMode
	}

	verification, err := o.verifier.Verify(ctx, proof, o.settings.PayTo, o.settings.PriceUSD)
	if err != nil {
		return nil, &PaymentError{Reason: "verification unavailable: " + err.Error()}
	}
	if !verification.Valid {
		logger.Info("Payment rejected by verifier.",
			zap.String("tx_ref", proof.TxRef),
			zap.String("reason", verification.Reason),
		)
		return nil, &PaymentError{Reason: verification.Reason}
	}

	state := &runState{
		receipt: payment.Receipt{
			TxRef:         proof.TxRef,
			Network:       proof.Network,
			AmountSettled: verification.AmountSettled,
			Settled:       true,
		},
	}
	logger.Info("Payment settled, starting automation.",
		zap.String("tx_ref", proof.TxRef),
		zap.Float64("amount_settled", verification.AmountSettled),
	)

	creds := o.generator.Derive(req)
	outcome := o.automate(ctx, req, creds, state, logger)
	o.closeIfNotRetained(ctx, state, logger)
	return outcome, nil
}

// automate runs provision and navigation, converting every error into the
// failed outcome shape at this boundary. Retention decisions land in state so
// cleanup can act on them afterwards.
func (o *Orchestrator) automate(ctx context.Context, req Request, creds Credentials, state *runState, logger *zap.Logger) *Outcome {
	p, err := o.allocator.Allocate(req.LocaleCountry)
	if err != nil {
		return newFailedOutcome(state, classify(err, false), err)
	}
	// Effective locale country: explicit input, else the proxy's, else the
	// configured default.
	if req.LocaleCountry != "" {
		p.Country = req.LocaleCountry
	} else if p.Country == "" {
		p.Country = o.settings.DefaultCountry
	}
	state.proxy = p

	session, err := o.sessions.CreateSession(ctx, p, o.settings.SessionDuration, req.BrowserPaymentTx)
	if err != nil {
		logger.Warn("Session provisioning failed.", zap.Error(err))
		return newFailedOutcome(state, classify(err, false), err)
	}
	state.session = session
	state.kept = req.KeepSession

	navigator := NewNavigator(o.sessions, o.selectors, o.signupURL, logger)
	terminal, err := navigator.Run(ctx, session, creds, req.VerificationCode)
	if err != nil {
		logger.Warn("Automation failed mid-flow.",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return newFailedOutcome(state, classify(err, true), err)
	}

	if terminal == TerminalVerificationRequired {
		// Retention is forced here: without the session the caller cannot
		// complete the flow with a follow-up code.
		state.kept = true
		return newVerificationOutcome(state, creds)
	}

	logger.Info("Account created.",
		zap.String("username", creds.Username),
		zap.String("session_id", session.ID),
	)
	return newCreatedOutcome(state, creds)
}

// closeIfNotRetained tears down the session on every exit path except
// retention. Best effort: the response is already computed and a failed
// delete has no user-facing remedy, so failures are logged and swallowed.
func (o *Orchestrator) closeIfNotRetained(ctx context.Context, state *runState, logger *zap.Logger) {
	if state.session == nil || state.kept {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := o.sessions.DeleteSession(cleanupCtx, state.session); err != nil {
		logger.Warn("Failed to close remote session.",
			zap.String("session_id", state.session.ID),
			zap.Error(err),
		)
	}
}
