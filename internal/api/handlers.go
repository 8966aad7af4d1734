// File: internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/xkilldash9x/accountforge/internal/browser"
	"github.com/xkilldash9x/accountforge/internal/config"
	"github.com/xkilldash9x/accountforge/internal/orchestrator"
	"github.com/xkilldash9x/accountforge/internal/payment"
	"go.uber.org/zap"
)

// CreateAccountPath is the single payment-gated endpoint.
const CreateAccountPath = "/v1/accounts/create"

const serviceDescription = "Automated social account creation through a proxied remote browser session. " +
	"Supply an email; password, username and birthdate are generated when omitted."

// Runner executes one orchestration run. *orchestrator.Orchestrator
// satisfies it.
type Runner interface {
	Run(ctx context.Context, req orchestrator.Request, proof payment.Proof) (*orchestrator.Outcome, error)
}

// Handlers groups the HTTP handlers and their dependencies.
type Handlers struct {
	runner  Runner
	payment config.PaymentConfig
	logger  *zap.Logger
}

// NewHandlers wires the handler set.
func NewHandlers(runner Runner, paymentCfg config.PaymentConfig, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		runner:  runner,
		payment: paymentCfg,
		logger:  logger.Named("api"),
	}
}

// createRequest is the wire shape of the endpoint input. keepSession is
// boolean-like on the wire (true, "true", "1", "yes", "on").
type createRequest struct {
	Email            string `json:"email"`
	FullName         string `json:"fullName"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	Birthdate        string `json:"birthdate"`
	LocaleCountry    string `json:"localeCountry"`
	VerificationCode string `json:"verificationCode"`
	KeepSession      any    `json:"keepSession"`
	BrowserPaymentTx string `json:"browserPaymentTx"`
	PaymentTx        string `json:"paymentTx"`
	PaymentNetwork   string `json:"paymentNetwork"`
}

// CreateAccount is the payment-gated endpoint: gate, run, map the outcome to
// a status code.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	in, err := parseCreateRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if in.Email == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameter", "email is required")
		return
	}

	// Server-side wallet configuration is checked before any payment or
	// automation work.
	if h.payment.PayTo == "" {
		h.writeError(w, http.StatusInternalServerError, "configuration_error",
			"payment recipient is not configured on this server")
		return
	}

	proof := payment.ExtractProof(r, in.PaymentTx, in.PaymentNetwork)
	if proof == nil {
		h.writeJSON(w, http.StatusPaymentRequired, payment.BuildRequirements(
			CreateAccountPath, serviceDescription, h.payment.PriceUSD, h.payment.PayTo, h.payment.Network))
		return
	}

	req := orchestrator.Request{
		Email:            in.Email,
		FullName:         in.FullName,
		Username:         in.Username,
		Password:         in.Password,
		Birthdate:        in.Birthdate,
		LocaleCountry:    in.LocaleCountry,
		VerificationCode: in.VerificationCode,
		KeepSession:      coerceBool(in.KeepSession),
		BrowserPaymentTx: in.BrowserPaymentTx,
	}

	outcome, err := h.runner.Run(r.Context(), req, *proof)
	if err != nil {
		var payErr *orchestrator.PaymentError
		switch {
		case errors.As(err, &payErr):
			h.writeJSON(w, http.StatusPaymentRequired, map[string]string{
				"error":  "payment_failed",
				"reason": payErr.Reason,
				"hint":   "send a fresh, unspent transaction matching the advertised price",
			})
		case errors.Is(err, browser.ErrNoAuthMode):
			h.writeError(w, http.StatusInternalServerError, "configuration_error",
				"no browser service credential configured and no browserPaymentTx supplied")
		default:
			h.logger.Error("Pipeline returned an unexpected error.", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "internal_error", "unexpected pipeline failure")
		}
		return
	}

	// Billing signal headers ride on every settled response, independent of
	// the JSON body.
	if outcome.Payment.Settled {
		w.Header().Set(payment.HeaderSettled, "true")
		w.Header().Set(payment.HeaderTx, outcome.Payment.TxRef)
	}
	h.writeJSON(w, statusCode(outcome.Status), outcome)
}

// Healthz is a liveness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusCode(s orchestrator.Status) int {
	switch s {
	case orchestrator.StatusCreated:
		return http.StatusOK
	case orchestrator.StatusVerificationRequired:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// parseCreateRequest reads the input from the JSON body when one is supplied,
// else from query parameters.
func parseCreateRequest(r *http.Request) (createRequest, error) {
	var in createRequest

	if r.Body != nil && r.ContentLength != 0 &&
		strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.ConfigCompatibleWithStandardLibrary.NewDecoder(r.Body).Decode(&in); err != nil {
			return in, fmt.Errorf("malformed JSON body: %v", err)
		}
		return in, nil
	}

	q := r.URL.Query()
	in.Email = q.Get("email")
	in.FullName = q.Get("fullName")
	in.Username = q.Get("username")
	in.Password = q.Get("password")
	in.Birthdate = q.Get("birthdate")
	in.LocaleCountry = q.Get("localeCountry")
	in.VerificationCode = q.Get("verificationCode")
	in.KeepSession = q.Get("keepSession")
	in.BrowserPaymentTx = q.Get("browserPaymentTx")
	in.PaymentTx = q.Get("paymentTx")
	in.PaymentNetwork = q.Get("paymentNetwork")
	return in, nil
}

// coerceBool accepts the boolean-like encodings of keepSession.
func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response.", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]string{"error": code, "message": message})
}
