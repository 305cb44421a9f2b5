package negotiation

import (
    "context"
    "fmt"

    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
)

var (
    // AcceptGap is the relative shortfall below which an offer is accepted.
    AcceptGap = decimal.RequireFromString("0.05")
    // CounterGap is the shortfall below which the carrier splits the difference.
    CounterGap = decimal.RequireFromString("0.15")
    // FinalPositionFactor is applied to the standing rate when an offer is too low.
    FinalPositionFactor = decimal.RequireFromString("0.95")

    two = decimal.NewFromInt(2)
)

// RuleResponder is the deterministic carrier: three gap bands, no history.
type RuleResponder struct{}

// Gap is the counter-offer's relative shortfall below the current rate. It is
// negative when the customer offers more than the standing rate.
func Gap(current, counter decimal.Decimal) decimal.Decimal {
    return current.Sub(counter).Div(current)
}

func (RuleResponder) Respond(_ context.Context, r Round) (domain.Proposal, error) {
    if err := validate(r); err != nil {
        return domain.Proposal{}, err
    }
    gap := Gap(r.CurrentRate, r.CounterOffer)

    switch {
    case gap.LessThan(AcceptGap):
        return domain.Proposal{
            Decision:  domain.DecisionAccepted,
            NewRate:   r.CounterOffer,
            Message:   fmt.Sprintf("We accept your offer of %s. We are looking forward to the business.", domain.FormatRate(r.CounterOffer)),
            Rationale: "Offer is within 5% margin.",
        }, nil
    case gap.LessThan(CounterGap):
        mid := domain.RoundRate(r.CurrentRate.Add(r.CounterOffer).Div(two))
        return domain.Proposal{
            Decision:  domain.DecisionCounter,
            NewRate:   mid,
            Message:   fmt.Sprintf("We can't quite hit %s, but we can meet you at %s. Does that work?", domain.FormatRate(r.CounterOffer), domain.FormatRate(mid)),
            Rationale: "Split the difference.",
        }, nil
    default:
        final := domain.RoundRate(r.CurrentRate.Mul(FinalPositionFactor))
        return domain.Proposal{
            Decision: domain.DecisionRejected,
            NewRate:  final,
            Message: fmt.Sprintf("The price of %s is significantly below our operating costs for this lane. We can lower our rate to %s, but no further.",
                domain.FormatRate(r.CounterOffer), domain.FormatRate(final)),
            Rationale: "Offered price too low.",
        }, nil
    }
}
