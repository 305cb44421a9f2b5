package ports

import (
    "context"

    "freightdesk/internal/domain"
)

// SurchargeReferenceStore persists the surcharge dictionary.
type SurchargeReferenceStore interface {
    ListSurcharges(ctx context.Context) ([]domain.SurchargeRef, error)
    UpsertSurcharge(ctx context.Context, ref domain.SurchargeRef) (domain.SurchargeRef, error)
}

// DictionaryCache holds a snapshot of the surcharge references. found is
// false on a miss.
type DictionaryCache interface {
    GetRefs(ctx context.Context) (refs []domain.SurchargeRef, found bool, err error)
    SetRefs(ctx context.Context, refs []domain.SurchargeRef) error
    Invalidate(ctx context.Context) error
}

// ExchangeRateStore keeps USD conversion rates by currency code.
type ExchangeRateStore interface {
    ListRates(ctx context.Context) ([]domain.ExchangeRate, error)
    UpsertRate(ctx context.Context, r domain.ExchangeRate) (domain.ExchangeRate, error)
    // ExchangeRate returns domain.ErrNotFound for unknown codes.
    ExchangeRate(ctx context.Context, currency string) (domain.ExchangeRate, error)
}

// QuoteRepository stores audited quotes.
type QuoteRepository interface {
    SaveAudit(ctx context.Context, q domain.AuditedQuote) (quoteID string, err error)
    GetQuote(ctx context.Context, quoteID string) (domain.AuditedQuote, error)
}

// BidRepository manages bids and their negotiation turns.
type BidRepository interface {
    CreateBid(ctx context.Context, bid domain.Bid, opening domain.NegotiationTurn) (domain.Bid, error)
    LoadNegotiation(ctx context.Context, bidID string) (domain.NegotiationState, error)
    // SaveRound persists the new rate and status and appends turns in one
    // transaction.
    SaveRound(ctx context.Context, next domain.NegotiationState, turns []domain.NegotiationTurn) error
}
