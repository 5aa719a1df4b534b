// Package payment talks to the payment provider that charges trainees.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidAmount = errors.New("invalid charge amount")

type ChargeRequest struct {
	MentorshipRequestID int64
	TraineeID           int64
	Amount              float64
}

// ChargeResult is the provider's verdict. A declined charge is a result, not an error.
type ChargeResult struct {
	Approved    bool
	ProviderRef string
	Reason      string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// PlaceholderGateway approves every valid charge without contacting a provider.
type PlaceholderGateway struct{}

func NewPlaceholderGateway() *PlaceholderGateway {
	return &PlaceholderGateway{}
}

func (g *PlaceholderGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}
	if req.Amount < 0 {
		return ChargeResult{}, fmt.Errorf("%w: %.2f", ErrInvalidAmount, req.Amount)
	}
	return ChargeResult{
		Approved:    true,
		ProviderRef: "placeholder_" + uuid.NewString(),
	}, nil
}
