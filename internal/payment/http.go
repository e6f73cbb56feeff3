package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultHTTPTimeout = 5 * time.Second

type chargeRequest struct {
	CreditCard string          `json:"credit_card"`
	Amount     decimal.Decimal `json:"amount"`
}

type chargeResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// HTTPAuthorizer charges instruments against a remote processor's charges endpoint.
// The processor answers 2xx for approved charges and 422 for declined ones.
type HTTPAuthorizer struct {
	chargesURL string
	timeout    time.Duration
}

// NewHTTPAuthorizer builds an authorizer posting to chargesURL.
func NewHTTPAuthorizer(chargesURL string, timeout time.Duration) *HTTPAuthorizer {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPAuthorizer{chargesURL: chargesURL, timeout: timeout}
}

// Authorize posts the charge and interprets the processor response.
func (a *HTTPAuthorizer) Authorize(ctx context.Context, instrument string, amount decimal.Decimal) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return Authorization{}, err
	}

	timeout := a.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(a.chargesURL).
		Timeout(timeout).
		JSON(chargeRequest{CreditCard: instrument, Amount: amount})

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return Authorization{}, fmt.Errorf("charge request: %w", errors.Join(errs...))
	}

	var resp chargeResponse
	if len(body) > 0 {
		// Processors are not consistent about bodies on errors; a bad body is not fatal.
		_ = json.Unmarshal(body, &resp)
	}

	switch {
	case status >= fiber.StatusOK && status < fiber.StatusMultipleChoices:
		ref := resp.ID
		if ref == "" {
			ref = uuid.NewString()
		}
		return Authorization{Reference: ref, Status: StatusApproved}, nil
	case status == fiber.StatusUnprocessableEntity:
		reason := resp.Message
		if reason == "" {
			reason = "rejected by processor"
		}
		return Authorization{}, Decline(reason)
	default:
		return Authorization{}, fmt.Errorf("charge request: unexpected status %d", status)
	}
}
