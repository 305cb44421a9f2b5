package postgres

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"

    "freightdesk/internal/domain"
)

const jobColumns = `id::text, text, sender_domain, status, quote_id::text, error`

func scanJob(row pgx.Row) (domain.AuditJob, error) {
    var j domain.AuditJob
    err := row.Scan(&j.ID, &j.Text, &j.SenderDomain, &j.Status, &j.QuoteID, &j.Error)
    return j, err
}

func (db *DB) EnqueueAudit(ctx context.Context, text, senderDomain string) (string, error) {
    var id string
    err := db.Pool.QueryRow(ctx, `
        INSERT INTO audit_jobs (text, sender_domain) VALUES ($1, $2)
        RETURNING id::text
    `, text, senderDomain).Scan(&id)
    return id, err
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job domain.AuditJob, found bool, err error) {
    err = db.inTx(ctx, func(tx pgx.Tx) error {
        j, err := scanJob(tx.QueryRow(ctx, `
            SELECT `+jobColumns+` FROM audit_jobs
            WHERE status = 'queued'
            ORDER BY queued_at
            FOR UPDATE SKIP LOCKED
            LIMIT 1
        `))
        if err != nil { return err }
        if _, err := tx.Exec(ctx, `
            UPDATE audit_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1::text::uuid
        `, j.ID); err != nil {
            return err
        }
        j.Status = domain.JobRunning
        job = j
        return nil
    })
    if errors.Is(err, pgx.ErrNoRows) {
        return job, false, nil
    }
    if err != nil { return job, false, err }
    return job, true, nil
}

// StartJob locks a specific queued job and marks it running. Jobs already
// claimed elsewhere or finished report not found.
func (db *DB) StartJob(ctx context.Context, jobID string) (job domain.AuditJob, err error) {
    if err := validID(jobID); err != nil { return job, err }
    err = db.inTx(ctx, func(tx pgx.Tx) error {
        j, err := scanJob(tx.QueryRow(ctx, `
            SELECT `+jobColumns+` FROM audit_jobs
            WHERE id = $1::text::uuid AND status = 'queued'
            FOR UPDATE SKIP LOCKED
        `, jobID))
        if err != nil { return err }
        if _, err := tx.Exec(ctx, `
            UPDATE audit_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1::text::uuid
        `, jobID); err != nil {
            return err
        }
        j.Status = domain.JobRunning
        job = j
        return nil
    })
    return job, notFound(err)
}

func (db *DB) MarkCompleted(ctx context.Context, jobID, quoteID string) error {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    _, err := db.Pool.Exec(ctx, `
        UPDATE audit_jobs SET status='completed', quote_id=$2::text::uuid, error=NULL, finished_at=now()
        WHERE id=$1::text::uuid
    `, jobID, quoteID)
    return err
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    _, err := db.Pool.Exec(ctx, `
        UPDATE audit_jobs SET status='failed', error=$2, finished_at=now() WHERE id=$1::text::uuid
    `, jobID, reason)
    return err
}

func (db *DB) JobStatus(ctx context.Context, jobID string) (domain.AuditJob, error) {
    if err := validID(jobID); err != nil { return domain.AuditJob{}, err }
    j, err := scanJob(db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM audit_jobs WHERE id = $1::text::uuid`, jobID))
    return j, notFound(err)
}
