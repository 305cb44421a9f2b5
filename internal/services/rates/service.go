package rates

import (
    "context"
    "fmt"
    "strings"
    "time"

    "freightdesk/internal/domain"
    "freightdesk/internal/ports"
)

type Service struct {
    store ports.ExchangeRateStore
    now   func() time.Time
}

func New(store ports.ExchangeRateStore) *Service {
    return &Service{store: store, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]domain.ExchangeRate, error) {
    return s.store.ListRates(ctx)
}

// Set records the USD rate for a three-letter currency code.
func (s *Service) Set(ctx context.Context, r domain.ExchangeRate) (domain.ExchangeRate, error) {
    r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
    if len(r.Currency) != 3 {
        return domain.ExchangeRate{}, fmt.Errorf("%w: currency_code must be three letters", domain.ErrInvalidInput)
    }
    if !r.RateToUSD.IsPositive() {
        return domain.ExchangeRate{}, domain.ErrInvalidRate
    }
    r.UpdatedAt = s.now().UTC()
    return s.store.UpsertRate(ctx, r)
}
