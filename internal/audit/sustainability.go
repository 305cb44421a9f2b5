package audit

import (
    "context"
    "fmt"

    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
)

var (
    // CarbonPerUSD is the fixed kg CO2 per normalized USD of freight spend.
    CarbonPerUSD = decimal.RequireFromString("0.45")
    // CarbonWarnKg is the footprint above which a shipment is flagged as high intensity.
    CarbonWarnKg = decimal.NewFromInt(1500)
)

// Sustainability estimates the carbon footprint from price.
type Sustainability struct{}

func (Sustainability) Evaluate(_ context.Context, snap *Snapshot) (Report, error) {
    price := snap.Quote.NormalizedPriceUSD
    if price.IsNegative() {
        return Report{}, fmt.Errorf("normalized price %s: %w", price, domain.ErrInvalidQuote)
    }
    carbon := price.Mul(CarbonPerUSD)
    kg := carbon.InexactFloat64()

    if carbon.GreaterThan(CarbonWarnKg) {
        return Report{Insight: domain.Insight{
            Agent:    domain.AgentSustainability,
            Status:   domain.StatusWarning,
            Finding:  fmt.Sprintf("High intensity shipment estimated at %skg CO2. Consider slow-steaming or alternative ports.", carbon.StringFixed(0)),
            CarbonKg: &kg,
        }}, nil
    }
    return Report{Insight: domain.Insight{
        Agent:    domain.AgentSustainability,
        Status:   domain.StatusOK,
        Finding:  fmt.Sprintf("Estimated carbon impact: %skg CO2. This is a low-emission route for the selected mode.", carbon.StringFixed(0)),
        CarbonKg: &kg,
    }}, nil
}
