package ports

import (
    "context"

    "freightdesk/internal/domain"
)

// AuditJobRepository supports enqueuing, claiming and updating audit jobs.
type AuditJobRepository interface {
    EnqueueAudit(ctx context.Context, text, senderDomain string) (jobID string, err error)
    ClaimNext(ctx context.Context) (job domain.AuditJob, found bool, err error)
    // StartJob claims one specific queued job for inline processing.
    StartJob(ctx context.Context, jobID string) (domain.AuditJob, error)
    MarkCompleted(ctx context.Context, jobID, quoteID string) error
    MarkFailed(ctx context.Context, jobID string, reason string) error
    JobStatus(ctx context.Context, jobID string) (domain.AuditJob, error)
}
