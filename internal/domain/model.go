package domain

import (
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"
)

// Core domain models shared by the audit core, the negotiation core and the
// adapters. Storage and wire shapes live next to their adapters.

type ExtractedQuote struct {
    Carrier            string          `json:"carrier"`
    Origin             string          `json:"origin"`
    Destination        string          `json:"destination"`
    TotalPrice         decimal.Decimal `json:"total_price"`
    Currency           string          `json:"currency"`
    NormalizedPriceUSD decimal.Decimal `json:"normalized_total_price_usd"`
    Surcharges         []SurchargeLine `json:"surcharges"`
}

type SurchargeLine struct {
    RawName        string          `json:"raw_name"`
    NormalizedName *string         `json:"normalized_name"`
    Category       *string         `json:"category"`
    Amount         decimal.Decimal `json:"amount"`
    Currency       string          `json:"currency"`
    Flagged        bool            `json:"flagged"`
    Confidence     float64         `json:"confidence"`
}

// SurchargeRef is one row of the surcharge reference table.
type SurchargeRef struct {
    RawName        string `json:"raw_name"`
    NormalizedName string `json:"normalized_name"`
    Category       string `json:"category"`
    Approved       bool   `json:"is_approved"`
}

type AgentLabel string

const (
    AgentFinance        AgentLabel = "Finance"
    AgentRisk           AgentLabel = "Risk"
    AgentOps            AgentLabel = "Ops"
    AgentSustainability AgentLabel = "Sustainability"
)

// Status is an insight verdict. OK < WARNING < FLAG is only used to filter
// risk flags, never aggregated.
type Status string

const (
    StatusOK      Status = "OK"
    StatusWarning Status = "WARNING"
    StatusFlag    Status = "FLAG"
)

type Insight struct {
    Agent    AgentLabel `json:"agent"`
    Status   Status     `json:"status"`
    Finding  string     `json:"finding"`
    CarbonKg *float64   `json:"carbon_kg,omitempty"`
}

type AuditResult struct {
    Insights          []Insight       `json:"agent_insights"`
    ConfidenceScore   float64         `json:"confidence_score"`
    CarbonFootprintKg float64         `json:"carbon_footprint_kg"`
    RiskFlags         []string        `json:"risk_flags"`
    Surcharges        []SurchargeLine `json:"surcharges"`
}

// AuditedQuote is a quote record as persisted after an audit.
type AuditedQuote struct {
    ID           string         `json:"id"`
    SenderDomain string         `json:"sender_domain,omitempty"`
    Quote        ExtractedQuote `json:"quote"`
    Audit        AuditResult    `json:"audit"`
    FullText     string         `json:"-"`
    CreatedAt    time.Time      `json:"created_at"`
}

const (
    JobQueued    = "queued"
    JobRunning   = "running"
    JobCompleted = "completed"
    JobFailed    = "failed"
)

type AuditJob struct {
    ID           string  `json:"id"`
    Text         string  `json:"-"`
    SenderDomain string  `json:"sender_domain,omitempty"`
    Status       string  `json:"status"` // queued|running|completed|failed
    QuoteID      *string `json:"quote_id,omitempty"`
    Error        *string `json:"error,omitempty"`
}

type ExchangeRate struct {
    Currency  string          `json:"currency_code"`
    RateToUSD decimal.Decimal `json:"rate_to_usd"`
    UpdatedAt time.Time       `json:"last_updated"`
}

type Role string

const (
    RoleCustomer     Role = "customer"
    RoleCarrierAgent Role = "carrier_agent"
)

type NegotiationTurn struct {
    ID           uuid.UUID        `json:"id"`
    Role         Role             `json:"role"`
    Text         string           `json:"text"`
    RateProposed *decimal.Decimal `json:"rate_proposed,omitempty"`
    CreatedAt    time.Time        `json:"created_at"`
}

type Bid struct {
    ID          string            `json:"id"`
    TenderID    string            `json:"tender_id"`
    TenderTitle string            `json:"tender_title"`
    CarrierID   string            `json:"carrier_id"`
    CarrierName string            `json:"carrier_name"`
    OfferedRate decimal.Decimal   `json:"offered_rate"`
    Currency    string            `json:"currency"`
    Status      NegotiationStatus `json:"status"`
}

// Email is a drafted message. Sending it is out of scope.
type Email struct {
    Subject string `json:"subject"`
    Body    string `json:"body"`
}
