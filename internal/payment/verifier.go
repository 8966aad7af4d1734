// File: internal/payment/verifier.go
package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Verifier settles and validates a payment proof against an external ledger.
// Replay protection is the verifier's responsibility, not the orchestrator's:
// a proof that was already settled must be rejected here on the second use.
type Verifier interface {
	Verify(ctx context.Context, proof Proof, payTo string, priceUSD float64) (Verification, error)
}

// FacilitatorClient verifies proofs via an external x402 facilitator over HTTP.
type FacilitatorClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewFacilitatorClient builds a facilitator-backed verifier. A zero timeout
// falls back to 15s.
func NewFacilitatorClient(baseURL string, timeout time.Duration, logger *zap.Logger) *FacilitatorClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacilitatorClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("facilitator"),
	}
}

type verifyRequest struct {
	TxRef    string  `json:"txRef"`
	Network  string  `json:"network"`
	PayTo    string  `json:"payTo"`
	PriceUSD float64 `json:"priceUsd"`
}

// Verify posts the proof to the facilitator's /verify endpoint. A non-2xx
// response is a transport-level error, not an invalid proof; invalidity comes
// back inside the Verification body.
func (c *FacilitatorClient) Verify(ctx context.Context, proof Proof, payTo string, priceUSD float64) (Verification, error) {
	body, err := json.ConfigCompatibleWithStandardLibrary.Marshal(verifyRequest{
		TxRef:    proof.TxRef,
		Network:  proof.Network,
		PayTo:    payTo,
		PriceUSD: priceUSD,
	})
	if err != nil {
		return Verification{}, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return Verification{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Verification{}, fmt.Errorf("facilitator unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Verification{}, fmt.Errorf("read facilitator response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Facilitator returned non-success status.",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return Verification{}, fmt.Errorf("facilitator returned status %d", resp.StatusCode)
	}

	var verification Verification
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &verification); err != nil {
		return Verification{}, fmt.Errorf("unmarshal facilitator response: %w", err)
	}

	c.logger.Debug("Payment verification completed.",
		zap.String("tx_ref", proof.TxRef),
		zap.Bool("valid", verification.Valid),
		zap.Float64("amount_settled", verification.AmountSettled),
	)
	return verification, nil
}
