package payments

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

// Gateway authorizes card charges at checkout.
type Gateway interface {
	Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error)
}

// ChargeInput describes the charge to authorize.
type ChargeInput struct {
	UserID      uuid.UUID
	AmountCents int
	Descriptor  string
}

// ChargeResult carries the gateway reference stored on the order.
type ChargeResult struct {
	Reference string
}

// simulatedGateway stands in for a real processor. It declines a configured
// fraction of charges so the storefront's decline path stays exercised.
type simulatedGateway struct {
	declineRate float64
	roll        func() float64
}

// NewSimulatedGateway builds the simulated processor. roll may be nil, in
// which case the default PRNG is used; tests inject a deterministic one.
func NewSimulatedGateway(declineRate float64, roll func() float64) Gateway {
	if roll == nil {
		roll = rand.Float64
	}
	if declineRate < 0 {
		declineRate = 0
	}
	if declineRate > 1 {
		declineRate = 1
	}
	return &simulatedGateway{declineRate: declineRate, roll: roll}
}

func (g *simulatedGateway) Charge(_ context.Context, input ChargeInput) (*ChargeResult, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if g.roll() < g.declineRate {
		return nil, pkgerrors.New(pkgerrors.CodePaymentDeclined, "card declined").
			WithDetails(map[string]any{"amount_cents": input.AmountCents})
	}
	reference := fmt.Sprintf("sim_%s", strings.ReplaceAll(uuid.NewString(), "-", ""))
	return &ChargeResult{Reference: reference}, nil
}
