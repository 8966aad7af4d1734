// File: internal/payment/payment.go
package payment

import (
	"net/http"
	"strings"
)

// Proof is caller-supplied evidence that the required micropayment was sent.
// It is immutable once extracted from a request.
type Proof struct {
	TxRef         string  `json:"txRef"`
	Network       string  `json:"network"`
	ClaimedAmount float64 `json:"claimedAmount,omitempty"`
}

// Verification is the verifier's read-only judgment of a proof.
type Verification struct {
	Valid         bool    `json:"valid"`
	AmountSettled float64 `json:"amountSettled"`
	Reason        string  `json:"reason,omitempty"`
}

// Receipt is attached to every automation outcome, including failures: the
// payment settles before any automation work starts, so it is always
// reportable.
type Receipt struct {
	TxRef         string  `json:"txRef"`
	Network       string  `json:"network"`
	AmountSettled float64 `json:"amountSettled"`
	Settled       bool    `json:"settled"`
}

// Requirements is the structured 402 body telling a caller how to pay.
type Requirements struct {
	Error        string         `json:"error"`
	Endpoint     string         `json:"endpoint"`
	Description  string         `json:"description"`
	PriceUSD     float64        `json:"priceUsd"`
	PayTo        string         `json:"payTo"`
	Network      string         `json:"network"`
	OutputSchema map[string]any `json:"outputSchema"`
}

// Response signal headers. They let the caller reconcile billing without
// parsing the JSON body.
const (
	HeaderTx      = "X-Payment-Tx"
	HeaderNetwork = "X-Payment-Network"
	HeaderSettled = "X-Payment-Settled"
)

// ExtractProof pulls a payment proof from the request. Headers win over
// query/body fields; a request with no transaction reference carries no proof
// and the result is nil.
func ExtractProof(r *http.Request, fieldTx, fieldNetwork string) *Proof {
	tx := strings.TrimSpace(r.Header.Get(HeaderTx))
	network := strings.TrimSpace(r.Header.Get(HeaderNetwork))
	if tx == "" {
		tx = strings.TrimSpace(fieldTx)
		network = strings.TrimSpace(fieldNetwork)
	}
	if tx == "" {
		return nil
	}
	return &Proof{TxRef: tx, Network: network}
}

// BuildRequirements shapes the 402 payment-instructions body for the account
// creation endpoint.
func BuildRequirements(endpoint, description string, priceUSD float64, payTo, network string) Requirements {
	return Requirements{
		Error:       "payment_required",
		Endpoint:    endpoint,
		Description: description,
		PriceUSD:    priceUSD,
		PayTo:       payTo,
		Network:     network,
		OutputSchema: map[string]any{
			"status":   "created | verification_required | failed",
			"username": "string",
			"password": "string",
			"email":    "string",
			"proxy":    map[string]any{"country": "string", "type": "mobile"},
			"session":  map[string]any{"id": "string", "kept": "bool"},
			"payment":  map[string]any{"txRef": "string", "network": "string", "amountSettled": "number", "settled": "bool"},
		},
	}
}
