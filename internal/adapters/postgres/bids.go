package postgres

import (
    "context"
    "fmt"

    "github.com/jackc/pgx/v5"
    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
)

// CreateBid registers the carrier and tender by name when needed, then
// stores the bid with its opening turn.
func (db *DB) CreateBid(ctx context.Context, bid domain.Bid, opening domain.NegotiationTurn) (domain.Bid, error) {
    err := db.inTx(ctx, func(tx pgx.Tx) error {
        if err := tx.QueryRow(ctx, `
            INSERT INTO carriers (name) VALUES ($1)
            ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
            RETURNING id::text
        `, bid.CarrierName).Scan(&bid.CarrierID); err != nil {
            return fmt.Errorf("carrier: %w", err)
        }
        if err := tx.QueryRow(ctx, `
            INSERT INTO tenders (title) VALUES ($1)
            ON CONFLICT (title) DO UPDATE SET title = EXCLUDED.title
            RETURNING id::text
        `, bid.TenderTitle).Scan(&bid.TenderID); err != nil {
            return fmt.Errorf("tender: %w", err)
        }
        if err := tx.QueryRow(ctx, `
            INSERT INTO bids (tender_id, carrier_id, offered_rate, currency, status)
            VALUES ($1::text::uuid, $2::text::uuid, $3::text::numeric, $4, $5)
            RETURNING id::text
        `, bid.TenderID, bid.CarrierID, bid.OfferedRate.String(), bid.Currency, string(bid.Status)).Scan(&bid.ID); err != nil {
            return fmt.Errorf("bid: %w", err)
        }
        return insertTurns(ctx, tx, bid.ID, []domain.NegotiationTurn{opening})
    })
    if err != nil { return domain.Bid{}, err }
    return bid, nil
}

func (db *DB) LoadNegotiation(ctx context.Context, bidID string) (domain.NegotiationState, error) {
    if err := validID(bidID); err != nil { return domain.NegotiationState{}, err }
    var st domain.NegotiationState
    var rate, status string
    err := db.Pool.QueryRow(ctx, `
        SELECT b.id::text, t.id::text, c.id::text, t.title, c.name, b.offered_rate::text, b.status
        FROM bids b
        JOIN tenders t ON t.id = b.tender_id
        JOIN carriers c ON c.id = b.carrier_id
        WHERE b.id = $1::text::uuid
    `, bidID).Scan(&st.BidID, &st.TenderID, &st.CarrierID, &st.TenderTitle, &st.CarrierName, &rate, &status)
    if err != nil { return st, notFound(err) }
    if st.CurrentRate, err = decimal.NewFromString(rate); err != nil {
        return st, fmt.Errorf("bid %s rate: %w", bidID, err)
    }
    st.Status = domain.NegotiationStatus(status)

    rows, err := db.Pool.Query(ctx, `
        SELECT id::text, role, text, rate_proposed::text, created_at
        FROM negotiation_turns WHERE bid_id = $1::text::uuid ORDER BY seq
    `, bidID)
    if err != nil { return st, err }
    st.History, err = pgx.CollectRows(rows, scanTurn)
    return st, err
}

func scanTurn(row pgx.CollectableRow) (domain.NegotiationTurn, error) {
    var t domain.NegotiationTurn
    var id, role string
    var rate *string
    if err := row.Scan(&id, &role, &t.Text, &rate, &t.CreatedAt); err != nil {
        return t, err
    }
    if err := t.ID.UnmarshalText([]byte(id)); err != nil {
        return t, err
    }
    t.Role = domain.Role(role)
    if rate != nil {
        d, err := decimal.NewFromString(*rate)
        if err != nil { return t, err }
        t.RateProposed = &d
    }
    return t, nil
}

// SaveRound writes the new rate and status and appends the round's turns in
// one transaction. A bid closed concurrently is left untouched.
func (db *DB) SaveRound(ctx context.Context, next domain.NegotiationState, turns []domain.NegotiationTurn) error {
    return db.inTx(ctx, func(tx pgx.Tx) error {
        tag, err := tx.Exec(ctx, `
            UPDATE bids SET offered_rate = $2::text::numeric, status = $3
            WHERE id = $1::text::uuid AND status <> $4
        `, next.BidID, next.CurrentRate.String(), string(next.Status), string(domain.NegotiationCounterAccepted))
        if err != nil { return err }
        if tag.RowsAffected() == 0 {
            return domain.ErrNegotiationClosed
        }
        return insertTurns(ctx, tx, next.BidID, turns)
    })
}

func insertTurns(ctx context.Context, tx pgx.Tx, bidID string, turns []domain.NegotiationTurn) error {
    batch := &pgx.Batch{}
    for _, t := range turns {
        var rate *string
        if t.RateProposed != nil {
            s := t.RateProposed.String()
            rate = &s
        }
        batch.Queue(`
            INSERT INTO negotiation_turns (id, bid_id, role, text, rate_proposed, created_at)
            VALUES ($1::text::uuid, $2::text::uuid, $3, $4, $5::text::numeric, $6)
        `, t.ID.String(), bidID, string(t.Role), t.Text, rate, t.CreatedAt)
    }
    return tx.SendBatch(ctx, batch).Close()
}
