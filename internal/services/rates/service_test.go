package rates

import (
    "context"
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightdesk/internal/domain"
)

type memRates map[string]domain.ExchangeRate

func (m memRates) ListRates(context.Context) ([]domain.ExchangeRate, error) {
    out := make([]domain.ExchangeRate, 0, len(m))
    for _, r := range m {
        out = append(out, r)
    }
    return out, nil
}

func (m memRates) UpsertRate(_ context.Context, r domain.ExchangeRate) (domain.ExchangeRate, error) {
    m[r.Currency] = r
    return r, nil
}

func (m memRates) ExchangeRate(_ context.Context, code string) (domain.ExchangeRate, error) {
    r, ok := m[code]
    if !ok {
        return domain.ExchangeRate{}, domain.ErrNotFound
    }
    return r, nil
}

func TestSet(t *testing.T) {
    store := memRates{}
    svc := New(store)
    svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

    got, err := svc.Set(context.Background(), domain.ExchangeRate{Currency: " eur", RateToUSD: decimal.RequireFromString("1.09")})
    require.NoError(t, err)
    assert.Equal(t, "EUR", got.Currency)
    assert.Equal(t, 2025, got.UpdatedAt.Year())
    assert.Contains(t, store, "EUR")
}

func TestSet_Invalid(t *testing.T) {
    svc := New(memRates{})
    _, err := svc.Set(context.Background(), domain.ExchangeRate{Currency: "EURO", RateToUSD: decimal.NewFromInt(1)})
    assert.ErrorIs(t, err, domain.ErrInvalidInput)
    _, err = svc.Set(context.Background(), domain.ExchangeRate{Currency: "EUR", RateToUSD: decimal.Zero})
    assert.ErrorIs(t, err, domain.ErrInvalidRate)
}
