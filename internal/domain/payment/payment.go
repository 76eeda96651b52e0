// Package payment resolves a payment method selection into an outcome.
//
// Each supported method is implemented by its own Strategy: pure payload
// validation plus synthetic artifact generation, with no knowledge of the
// catalog or persistence. Real gateway integration would slot in behind the
// same Strategy interface.
package payment

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// Method enumerates the supported payment methods.
type Method string

const (
	MethodPix        Method = "PIX"
	MethodCreditCard Method = "CREDIT_CARD"
	MethodBoleto     Method = "BOLETO"
)

// ParseMethod validates a raw method tag against the closed enumeration.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodPix, MethodCreditCard, MethodBoleto:
		return Method(s), nil
	}
	return "", errors.Wrapf(ErrUnsupportedMethod, "%q", s)
}

// Status is the order status a successful payment resolution yields.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// ErrUnsupportedMethod is returned for a method outside the enumeration.
var ErrUnsupportedMethod = errors.New("unsupported payment method")

// InvalidPayloadError indicates the payload required by a method is missing
// or structurally incomplete.
type InvalidPayloadError struct {
	Method Method
	Reason string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Method, e.Reason)
}

// RejectedError indicates the payload was present but failed validation.
type RejectedError struct {
	Method Method
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s payment rejected: %s", e.Method, e.Reason)
}

// CreditCard holds the card fields required by the CREDIT_CARD method.
type CreditCard struct {
	CardNumber     string
	ExpiryDate     string
	CVV            string
	CardholderName string
}

// BillingAddress holds the postal fields required by the BOLETO method.
// Complement is the only optional field.
type BillingAddress struct {
	Street       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
}

// Payload carries the method-specific data submitted with an order. Fields
// irrelevant to the chosen method are ignored by its strategy.
type Payload struct {
	CreditCard     *CreditCard
	BillingAddress *BillingAddress
}

// Outcome is the result of a successful payment resolution.
type Outcome struct {
	// Details is the opaque payment artifact: a PIX QR data URL, a card
	// approval token, or a boleto reference number.
	Details string
	// Status is the order status determined by the method.
	Status Status
	// BillingAddress is set only when the method requires one (BOLETO).
	BillingAddress *BillingAddress
}

// Strategy validates the payload for one payment method and produces its
// outcome.
type Strategy interface {
	Method() Method
	Resolve(ctx context.Context, p Payload) (*Outcome, error)
}

// Resolver dispatches payment resolution to the strategy registered for the
// chosen method.
type Resolver struct {
	strategies map[Method]Strategy
}

// NewResolver builds a Resolver from the given strategies. Registering two
// strategies for the same method keeps the last one.
func NewResolver(strategies ...Strategy) *Resolver {
	m := make(map[Method]Strategy, len(strategies))
	for _, s := range strategies {
		m[s.Method()] = s
	}
	return &Resolver{strategies: m}
}

// Resolve runs the strategy for method against the payload.
func (r *Resolver) Resolve(ctx context.Context, method Method, p Payload) (*Outcome, error) {
	s, ok := r.strategies[method]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedMethod, "%q", method)
	}
	return s.Resolve(ctx, p)
}
