package auditrunner

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/rs/zerolog/log"

    "freightdesk/internal/domain"
    "freightdesk/internal/ports"
)

// Processor performs the audit for a claimed job and returns the stored
// quote id.
type Processor interface {
    Process(ctx context.Context, job domain.AuditJob) (quoteID string, err error)
}

// Run claims queued jobs and processes them on concurrency workers until ctx
// is cancelled. It returns once every in-flight job has been settled.
func Run(ctx context.Context, repo ports.AuditJobRepository, processor Processor, concurrency int, pollInterval time.Duration) {
    if concurrency < 1 { return }
    jobsCh := make(chan domain.AuditJob, concurrency)

    // dispatcher loop
    go func() {
        defer close(jobsCh)
        ticker := time.NewTicker(pollInterval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                for {
                    job, found, err := repo.ClaimNext(ctx)
                    if err != nil {
                        if ctx.Err() == nil {
                            log.Error().Err(err).Msg("audit job claim failed")
                        }
                        break
                    }
                    if !found { break }
                    log.Debug().Str("job_id", job.ID).Msg("audit job claimed")
                    select {
                    case jobsCh <- job:
                    case <-ctx.Done():
                        // claimed but never started; release it as failed
                        settle(context.WithoutCancel(ctx), repo, job.ID, "", ctx.Err())
                        return
                    }
                }
            }
        }
    }()

    var wg sync.WaitGroup
    for i := 0; i < concurrency; i++ {
        wg.Add(1)
        go func(idx int) {
            defer wg.Done()
            for job := range jobsCh {
                quoteID, err := processor.Process(ctx, job)
                settle(context.WithoutCancel(ctx), repo, job.ID, quoteID, err)
                if err != nil {
                    log.Warn().Err(err).Int("worker", idx).Str("job_id", job.ID).Msg("audit job failed")
                    continue
                }
                log.Info().Int("worker", idx).Str("job_id", job.ID).Str("quote_id", quoteID).Msg("audit job completed")
            }
        }(i)
    }
    wg.Wait()
}

// awaitInterval is how often ProcessInline re-reads a job a background
// worker is already running.
var awaitInterval = 250 * time.Millisecond

// ProcessInline starts and processes a specific job synchronously using the
// same processor as the background workers. If a worker claimed the job
// first, it waits for that worker's outcome until ctx is done.
func ProcessInline(ctx context.Context, repo ports.AuditJobRepository, processor Processor, jobID string) (string, error) {
    ticker := time.NewTicker(awaitInterval)
    defer ticker.Stop()
    for {
        job, err := repo.StartJob(ctx, jobID)
        if err == nil {
            return processClaimed(ctx, repo, processor, job)
        }
        if !errors.Is(err, domain.ErrNotFound) { return "", err }

        // not startable: unknown, or owned by a worker
        job, err = repo.JobStatus(ctx, jobID)
        if err != nil { return "", err }
        switch job.Status {
        case domain.JobCompleted:
            if job.QuoteID == nil {
                return "", fmt.Errorf("%w: completed without a quote", domain.ErrJobFailed)
            }
            return *job.QuoteID, nil
        case domain.JobFailed:
            reason := "unknown error"
            if job.Error != nil {
                reason = *job.Error
            }
            return "", fmt.Errorf("%w: %s", domain.ErrJobFailed, reason)
        }
        select {
        case <-ctx.Done():
            return "", ctx.Err()
        case <-ticker.C:
        }
    }
}

func processClaimed(ctx context.Context, repo ports.AuditJobRepository, processor Processor, job domain.AuditJob) (string, error) {
    quoteID, err := processor.Process(ctx, job)
    if serr := settle(context.WithoutCancel(ctx), repo, job.ID, quoteID, err); serr != nil && err == nil {
        return "", serr
    }
    return quoteID, err
}

func settle(ctx context.Context, repo ports.AuditJobRepository, jobID, quoteID string, procErr error) error {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    var err error
    if procErr != nil {
        err = repo.MarkFailed(ctx, jobID, procErr.Error())
    } else {
        err = repo.MarkCompleted(ctx, jobID, quoteID)
    }
    if err != nil {
        log.Error().Err(err).Str("job_id", jobID).Msg("audit job state update failed")
    }
    return err
}
