package surcharges

import (
    "context"
    "fmt"
    "strings"

    "github.com/rs/zerolog/log"

    "freightdesk/internal/domain"
    "freightdesk/internal/ports"
)

// Service manages the surcharge reference table and serves dictionary
// snapshots through an optional cache.
type Service struct {
    store ports.SurchargeReferenceStore
    cache ports.DictionaryCache
}

// New returns a service; cache may be nil.
func New(store ports.SurchargeReferenceStore, cache ports.DictionaryCache) *Service {
    return &Service{store: store, cache: cache}
}

func (s *Service) List(ctx context.Context) ([]domain.SurchargeRef, error) {
    return s.store.ListSurcharges(ctx)
}

// Upsert stores ref keyed by its raw name and drops the cached dictionary.
func (s *Service) Upsert(ctx context.Context, ref domain.SurchargeRef) (domain.SurchargeRef, error) {
    ref.RawName = strings.TrimSpace(ref.RawName)
    if ref.RawName == "" {
        return domain.SurchargeRef{}, fmt.Errorf("%w: raw_name is required", domain.ErrInvalidInput)
    }
    out, err := s.store.UpsertSurcharge(ctx, ref)
    if err != nil { return domain.SurchargeRef{}, err }
    if s.cache != nil {
        if err := s.cache.Invalidate(ctx); err != nil {
            log.Warn().Err(err).Msg("surcharge dictionary cache invalidation failed")
        }
    }
    return out, nil
}

// Dictionary returns the current reference rows, read through the cache.
// Cache failures degrade to the store.
func (s *Service) Dictionary(ctx context.Context) ([]domain.SurchargeRef, error) {
    if s.cache != nil {
        refs, found, err := s.cache.GetRefs(ctx)
        if err != nil {
            log.Warn().Err(err).Msg("surcharge dictionary cache read failed")
        } else if found {
            return refs, nil
        }
    }
    refs, err := s.store.ListSurcharges(ctx)
    if err != nil { return nil, err }
    if s.cache != nil {
        if err := s.cache.SetRefs(ctx, refs); err != nil {
            log.Warn().Err(err).Msg("surcharge dictionary cache write failed")
        }
    }
    return refs, nil
}
