package payment

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode"

	"github.com/go-faster/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultPixKey is the simulated merchant PIX key encoded into QR artifacts
// when no key is configured.
const DefaultPixKey = "12345678900"

// boletoReference is the simulated fixed-format payment slip number issued
// for every BOLETO order.
const boletoReference = "34191.12345 67890.101112 13141.516171 8 12345678901234"

const pixQRSize = 256

// PixStrategy resolves PIX payments. PIX requires no payload: it always
// succeeds and leaves the order PENDING until an (out-of-scope) capture
// confirmation.
type PixStrategy struct {
	key string
}

// NewPixStrategy creates a PixStrategy for the given merchant key. An empty
// key falls back to DefaultPixKey.
func NewPixStrategy(merchantKey string) *PixStrategy {
	if merchantKey == "" {
		merchantKey = DefaultPixKey
	}
	return &PixStrategy{key: merchantKey}
}

func (s *PixStrategy) Method() Method { return MethodPix }

// Resolve generates a scannable QR artifact encoding the merchant key,
// returned as a PNG data URL.
func (s *PixStrategy) Resolve(_ context.Context, _ Payload) (*Outcome, error) {
	png, err := qrcode.Encode(s.key, qrcode.Medium, pixQRSize)
	if err != nil {
		return nil, errors.Wrap(err, "encode pix qr")
	}

	return &Outcome{
		Details: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Status:  StatusPending,
	}, nil
}

// CreditCardStrategy resolves CREDIT_CARD payments with simulated issuer
// validation: 16 numeric digits (whitespace-insensitive) and a 3-digit CVV.
type CreditCardStrategy struct{}

// NewCreditCardStrategy creates a CreditCardStrategy.
func NewCreditCardStrategy() *CreditCardStrategy {
	return &CreditCardStrategy{}
}

func (s *CreditCardStrategy) Method() Method { return MethodCreditCard }

// Resolve validates the card and, on approval, marks the order PAID with an
// approval token.
func (s *CreditCardStrategy) Resolve(_ context.Context, p Payload) (*Outcome, error) {
	card := p.CreditCard
	if card == nil {
		return nil, &InvalidPayloadError{Method: MethodCreditCard, Reason: "card details are required"}
	}

	number := stripSpaces(card.CardNumber)
	if len(number) != 16 || !allDigits(number) {
		return nil, &RejectedError{Method: MethodCreditCard, Reason: "card number must be 16 digits"}
	}
	if len(card.CVV) != 3 {
		return nil, &RejectedError{Method: MethodCreditCard, Reason: "cvv must be 3 digits"}
	}

	return &Outcome{
		Details: "APPROVED",
		Status:  StatusPaid,
	}, nil
}

// BoletoStrategy resolves BOLETO payments: it requires a complete billing
// address and issues a payment slip reference, leaving the order PENDING.
type BoletoStrategy struct{}

// NewBoletoStrategy creates a BoletoStrategy.
func NewBoletoStrategy() *BoletoStrategy {
	return &BoletoStrategy{}
}

func (s *BoletoStrategy) Method() Method { return MethodBoleto }

func (s *BoletoStrategy) Resolve(_ context.Context, p Payload) (*Outcome, error) {
	addr := p.BillingAddress
	if addr == nil {
		return nil, &InvalidPayloadError{Method: MethodBoleto, Reason: "billing address is required"}
	}
	if field, ok := missingAddressField(addr); !ok {
		return nil, &InvalidPayloadError{Method: MethodBoleto, Reason: field + " is required"}
	}

	return &Outcome{
		Details:        boletoReference,
		Status:         StatusPending,
		BillingAddress: addr,
	}, nil
}

// missingAddressField reports the first empty required postal field.
// Complement is optional.
func missingAddressField(a *BillingAddress) (string, bool) {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"street", a.Street},
		{"neighborhood", a.Neighborhood},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			return f.name, false
		}
	}
	return "", true
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
