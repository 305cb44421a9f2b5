package domain

import (
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"
)

// NegotiationStatus is the lifecycle state of a bid under negotiation.
type NegotiationStatus string

const (
    NegotiationOpen            NegotiationStatus = "OPEN"
    NegotiationCounterAccepted NegotiationStatus = "COUNTER_ACCEPTED"
    NegotiationRejected        NegotiationStatus = "REJECTED"
)

// Closed reports whether no further rounds may be played. REJECTED is not
// closed: the carrier still holds a rate on the table.
func (s NegotiationStatus) Closed() bool { return s == NegotiationCounterAccepted }

// Decision is the responder's verdict for one round.
type Decision string

const (
    DecisionAccepted Decision = "ACCEPTED"
    DecisionCounter  Decision = "COUNTER"
    DecisionRejected Decision = "REJECTED"
)

func (d Decision) Valid() bool {
    switch d {
    case DecisionAccepted, DecisionCounter, DecisionRejected:
        return true
    }
    return false
}

// Proposal is what a responder puts back on the table after one round.
type Proposal struct {
    Decision  Decision        `json:"status"`
    NewRate   decimal.Decimal `json:"new_offered_rate"`
    Message   string          `json:"response_text"`
    Rationale string          `json:"rationale,omitempty"`
}

type NegotiationState struct {
    BidID       string            `json:"bid_id"`
    TenderID    string            `json:"tender_id"`
    CarrierID   string            `json:"carrier_id"`
    TenderTitle string            `json:"tender_title"`
    CarrierName string            `json:"carrier_name"`
    CurrentRate decimal.Decimal   `json:"current_rate"`
    History     []NegotiationTurn `json:"history"`
    Status      NegotiationStatus `json:"status"`
}

// Apply returns the state after a round in which the customer countered with
// counter and the carrier answered with p, plus the two turns appended to the
// history. The receiver is left untouched.
func (s NegotiationState) Apply(counter decimal.Decimal, p Proposal, now time.Time) (NegotiationState, []NegotiationTurn, error) {
    if s.Status.Closed() {
        return s, nil, ErrNegotiationClosed
    }
    if !p.NewRate.IsPositive() {
        return s, nil, ErrInvalidRate
    }

    counter = RoundRate(counter)
    p.NewRate = RoundRate(p.NewRate)
    next := s
    switch p.Decision {
    case DecisionAccepted:
        next.CurrentRate = p.NewRate
        next.Status = NegotiationCounterAccepted
    case DecisionCounter:
        next.CurrentRate = p.NewRate
        next.Status = NegotiationOpen
    case DecisionRejected:
        // the carrier's final position still replaces the standing rate
        next.CurrentRate = p.NewRate
        next.Status = NegotiationRejected
    default:
        return s, nil, fmt.Errorf("unknown decision %q", p.Decision)
    }

    turns := []NegotiationTurn{
        NewTurn(RoleCustomer, "Counter-offer: "+FormatRate(counter), &counter, now),
        NewTurn(RoleCarrierAgent, p.Message, &p.NewRate, now),
    }
    next.History = make([]NegotiationTurn, 0, len(s.History)+len(turns))
    next.History = append(next.History, s.History...)
    next.History = append(next.History, turns...)
    return next, turns, nil
}

func NewTurn(role Role, text string, rate *decimal.Decimal, at time.Time) NegotiationTurn {
    var proposed *decimal.Decimal
    if rate != nil {
        r := *rate
        proposed = &r
    }
    return NegotiationTurn{ID: uuid.New(), Role: role, Text: text, RateProposed: proposed, CreatedAt: at}
}

// RateScale is the number of decimal places a rate is stored with.
const RateScale = 4

func RoundRate(d decimal.Decimal) decimal.Decimal { return d.Round(RateScale) }

// FormatRate renders an amount the way it appears in conversation turns:
// cents are always shown, finer digits are kept as given.
func FormatRate(d decimal.Decimal) string {
    if d.Equal(d.Round(2)) {
        return "$" + d.StringFixed(2)
    }
    return "$" + d.String()
}
