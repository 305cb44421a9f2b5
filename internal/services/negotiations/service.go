package negotiations

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/rs/zerolog/log"
    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
    "freightdesk/internal/negotiation"
    "freightdesk/internal/ports"
)

type Service struct {
    bids      ports.BidRepository
    responder negotiation.Responder
    now       func() time.Time
}

func New(bids ports.BidRepository, responder negotiation.Responder) *Service {
    return &Service{bids: bids, responder: responder, now: time.Now}
}

// OpenBid records a carrier's bid on a tender and seeds the conversation
// with the carrier's opening rate.
func (s *Service) OpenBid(ctx context.Context, bid domain.Bid) (domain.Bid, error) {
    bid.CarrierName = strings.TrimSpace(bid.CarrierName)
    bid.TenderTitle = strings.TrimSpace(bid.TenderTitle)
    if bid.CarrierName == "" || bid.TenderTitle == "" {
        return domain.Bid{}, fmt.Errorf("%w: carrier_name and tender_title are required", domain.ErrInvalidInput)
    }
    if !bid.OfferedRate.IsPositive() {
        return domain.Bid{}, domain.ErrInvalidRate
    }
    if bid.Currency == "" {
        bid.Currency = "USD"
    }
    bid.Status = domain.NegotiationOpen
    bid.OfferedRate = domain.RoundRate(bid.OfferedRate)
    rate := bid.OfferedRate
    opening := domain.NewTurn(domain.RoleCarrierAgent, "Initial bid submitted at "+domain.FormatRate(rate), &rate, s.now().UTC())
    return s.bids.CreateBid(ctx, bid, opening)
}

// Counter plays one round: the customer offers amount, the responder
// answers, and the resulting rate, status and both turns are stored together.
func (s *Service) Counter(ctx context.Context, bidID string, amount decimal.Decimal) (domain.Proposal, error) {
    if !amount.IsPositive() {
        return domain.Proposal{}, domain.ErrInvalidRate
    }
    state, err := s.bids.LoadNegotiation(ctx, bidID)
    if err != nil { return domain.Proposal{}, err }
    if state.Status.Closed() {
        return domain.Proposal{}, domain.ErrNegotiationClosed
    }

    p, err := s.responder.Respond(ctx, negotiation.Round{
        CarrierName:  state.CarrierName,
        TenderTitle:  state.TenderTitle,
        CurrentRate:  state.CurrentRate,
        CounterOffer: amount,
        History:      state.History,
    })
    if err != nil { return domain.Proposal{}, err }

    next, turns, err := state.Apply(amount, p, s.now().UTC())
    if err != nil { return domain.Proposal{}, err }
    // answer with the rate as stored
    p.NewRate = next.CurrentRate
    if err := s.bids.SaveRound(ctx, next, turns); err != nil {
        return domain.Proposal{}, fmt.Errorf("save round: %w", err)
    }
    log.Info().
        Str("bid_id", bidID).
        Str("decision", string(p.Decision)).
        Str("rate", p.NewRate.StringFixed(2)).
        Msg("negotiation round")
    return p, nil
}

func (s *Service) History(ctx context.Context, bidID string) (domain.NegotiationState, error) {
    return s.bids.LoadNegotiation(ctx, bidID)
}
