// Package negotiation decides the carrier side of a counter-offer round.
//
// A round is stateless: the responder sees the standing rate, the customer's
// counter-offer and the conversation so far, and returns a proposal. Applying
// the proposal to the bid is domain.NegotiationState.Apply's job.
package negotiation

import (
    "context"

    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
)

type Round struct {
    CarrierName  string
    TenderTitle  string
    CurrentRate  decimal.Decimal
    CounterOffer decimal.Decimal
    // History is read-only context, oldest turn first.
    History []domain.NegotiationTurn
}

// Responder answers one negotiation round. The only error it returns is for
// a round that cannot be evaluated at all (non-positive current rate).
type Responder interface {
    Respond(ctx context.Context, r Round) (domain.Proposal, error)
}

func validate(r Round) error {
    if !r.CurrentRate.IsPositive() {
        return domain.ErrInvalidRate
    }
    return nil
}
