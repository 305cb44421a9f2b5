// Package fx converts quote totals to USD.
package fx

import (
    "context"
    "errors"
    "strings"

    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
)

// Static is the built-in table used when a currency has no stored rate.
// Values are USD per unit.
var Static = map[string]decimal.Decimal{
    "EUR": decimal.RequireFromString("1.08"),
    "GBP": decimal.RequireFromString("1.25"),
    "CNY": decimal.RequireFromString("0.14"),
    "JPY": decimal.RequireFromString("0.0065"),
    "CAD": decimal.RequireFromString("0.74"),
    "AUD": decimal.RequireFromString("0.65"),
}

// RateLookup returns the stored rate for a currency code, or
// domain.ErrNotFound.
type RateLookup interface {
    ExchangeRate(ctx context.Context, currency string) (domain.ExchangeRate, error)
}

type Converter struct {
    Rates RateLookup
}

// ToUSD converts amount. Stored rates win over the static table; unknown
// currencies pass through unchanged. Only storage failures are returned.
func (c Converter) ToUSD(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
    code := strings.ToUpper(strings.TrimSpace(currency))
    if code == "" || code == "USD" {
        return amount, nil
    }
    if c.Rates != nil {
        r, err := c.Rates.ExchangeRate(ctx, code)
        switch {
        case err == nil && r.RateToUSD.IsPositive():
            return amount.Mul(r.RateToUSD), nil
        case err != nil && !errors.Is(err, domain.ErrNotFound):
            return decimal.Zero, err
        }
    }
    if rate, ok := Static[code]; ok {
        return amount.Mul(rate), nil
    }
    return amount, nil
}

// Normalize fills q.NormalizedPriceUSD from its total and currency.
func (c Converter) Normalize(ctx context.Context, q *domain.ExtractedQuote) error {
    usd, err := c.ToUSD(ctx, q.TotalPrice, q.Currency)
    if err != nil { return err }
    q.NormalizedPriceUSD = usd
    return nil
}
