package ports

import (
    "context"

    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
)

// Auditor enqueues, runs and reports quote audits.
type Auditor interface {
    Submit(ctx context.Context, text, submittedBy string) (jobID string, err error)
    Status(ctx context.Context, jobID string) (domain.AuditJob, error)
    Quote(ctx context.Context, quoteID string) (domain.AuditedQuote, error)
    Challenge(ctx context.Context, quoteID string) (domain.Email, error)
}

// Negotiator plays counter-offer rounds on bids.
type Negotiator interface {
    OpenBid(ctx context.Context, bid domain.Bid) (domain.Bid, error)
    Counter(ctx context.Context, bidID string, amount decimal.Decimal) (domain.Proposal, error)
    History(ctx context.Context, bidID string) (domain.NegotiationState, error)
}

// SurchargeCatalog manages the surcharge reference table.
type SurchargeCatalog interface {
    List(ctx context.Context) ([]domain.SurchargeRef, error)
    Upsert(ctx context.Context, ref domain.SurchargeRef) (domain.SurchargeRef, error)
}

// RateBook manages the exchange-rate table.
type RateBook interface {
    List(ctx context.Context) ([]domain.ExchangeRate, error)
    Set(ctx context.Context, r domain.ExchangeRate) (domain.ExchangeRate, error)
}

// Extractor turns free-form quote text into a structured quote. refs is the
// current surcharge dictionary, offered as a naming hint.
type Extractor interface {
    Extract(ctx context.Context, text string, refs []domain.SurchargeRef) (*domain.ExtractedQuote, error)
}
