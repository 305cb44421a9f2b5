package postgres

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"

    "github.com/jackc/pgx/v5"
    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
)

// SurchargeReferenceStore

func (db *DB) ListSurcharges(ctx context.Context) ([]domain.SurchargeRef, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT raw_name, normalized_name, category, is_approved
        FROM surcharge_references ORDER BY id
    `)
    if err != nil { return nil, err }
    return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SurchargeRef, error) {
        var r domain.SurchargeRef
        err := row.Scan(&r.RawName, &r.NormalizedName, &r.Category, &r.Approved)
        return r, err
    })
}

func (db *DB) UpsertSurcharge(ctx context.Context, ref domain.SurchargeRef) (domain.SurchargeRef, error) {
    var out domain.SurchargeRef
    err := db.Pool.QueryRow(ctx, `
        INSERT INTO surcharge_references (raw_name, normalized_name, category, is_approved)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (raw_name) DO UPDATE
        SET normalized_name = EXCLUDED.normalized_name, category = EXCLUDED.category, is_approved = EXCLUDED.is_approved
        RETURNING raw_name, normalized_name, category, is_approved
    `, ref.RawName, ref.NormalizedName, ref.Category, ref.Approved).Scan(&out.RawName, &out.NormalizedName, &out.Category, &out.Approved)
    return out, err
}

// ExchangeRateStore

func scanRate(row pgx.Row) (domain.ExchangeRate, error) {
    var r domain.ExchangeRate
    var rate string
    if err := row.Scan(&r.Currency, &rate, &r.UpdatedAt); err != nil {
        return r, err
    }
    d, err := decimal.NewFromString(rate)
    if err != nil { return r, fmt.Errorf("rate %s: %w", r.Currency, err) }
    r.RateToUSD = d
    return r, nil
}

func (db *DB) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT currency_code, rate_to_usd::text, last_updated FROM exchange_rates ORDER BY currency_code
    `)
    if err != nil { return nil, err }
    return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ExchangeRate, error) {
        return scanRate(row)
    })
}

func (db *DB) UpsertRate(ctx context.Context, r domain.ExchangeRate) (domain.ExchangeRate, error) {
    return scanRate(db.Pool.QueryRow(ctx, `
        INSERT INTO exchange_rates (currency_code, rate_to_usd, last_updated)
        VALUES ($1, $2::text::numeric, $3)
        ON CONFLICT (currency_code) DO UPDATE
        SET rate_to_usd = EXCLUDED.rate_to_usd, last_updated = EXCLUDED.last_updated
        RETURNING currency_code, rate_to_usd::text, last_updated
    `, strings.ToUpper(r.Currency), r.RateToUSD.String(), r.UpdatedAt))
}

func (db *DB) ExchangeRate(ctx context.Context, currency string) (domain.ExchangeRate, error) {
    r, err := scanRate(db.Pool.QueryRow(ctx, `
        SELECT currency_code, rate_to_usd::text, last_updated FROM exchange_rates WHERE currency_code = $1
    `, strings.ToUpper(currency)))
    return r, notFound(err)
}

// QuoteRepository

func (db *DB) SaveAudit(ctx context.Context, q domain.AuditedQuote) (string, error) {
    extracted, err := json.Marshal(q.Quote)
    if err != nil { return "", fmt.Errorf("marshal quote: %w", err) }
    audit, err := json.Marshal(q.Audit)
    if err != nil { return "", fmt.Errorf("marshal audit: %w", err) }

    var id string
    err = db.Pool.QueryRow(ctx, `
        INSERT INTO quotes (sender_domain, carrier, origin, destination, total_price, currency,
                            normalized_total_price_usd, extracted, audit, full_text, created_at)
        VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7::text::numeric, $8, $9, $10, $11)
        RETURNING id::text
    `, q.SenderDomain, q.Quote.Carrier, q.Quote.Origin, q.Quote.Destination, q.Quote.TotalPrice.String(),
        q.Quote.Currency, q.Quote.NormalizedPriceUSD.String(), extracted, audit, q.FullText, q.CreatedAt).Scan(&id)
    return id, err
}

func (db *DB) GetQuote(ctx context.Context, quoteID string) (domain.AuditedQuote, error) {
    if err := validID(quoteID); err != nil { return domain.AuditedQuote{}, err }
    var q domain.AuditedQuote
    var extracted, audit []byte
    err := db.Pool.QueryRow(ctx, `
        SELECT id::text, sender_domain, extracted, audit, full_text, created_at
        FROM quotes WHERE id = $1::text::uuid
    `, quoteID).Scan(&q.ID, &q.SenderDomain, &extracted, &audit, &q.FullText, &q.CreatedAt)
    if err != nil { return q, notFound(err) }
    if err := json.Unmarshal(extracted, &q.Quote); err != nil {
        return q, fmt.Errorf("decode quote %s: %w", quoteID, err)
    }
    if err := json.Unmarshal(audit, &q.Audit); err != nil {
        return q, fmt.Errorf("decode audit %s: %w", quoteID, err)
    }
    return q, nil
}
