package audits

import (
    "context"
    "fmt"
    "net/url"
    "strings"
    "time"

    "golang.org/x/net/publicsuffix"

    "freightdesk/internal/audit"
    "freightdesk/internal/domain"
    "freightdesk/internal/negotiation"
    "freightdesk/internal/ports"
    "freightdesk/internal/textgen"
)

// Dictionaries yields the current surcharge reference rows.
type Dictionaries interface {
    Dictionary(ctx context.Context) ([]domain.SurchargeRef, error)
}

type Deps struct {
    Jobs         ports.AuditJobRepository
    Quotes       ports.QuoteRepository
    Extractor    ports.Extractor
    Dictionaries Dictionaries
    Coordinator  *audit.Coordinator
    // Drafter writes rate-challenge emails; nil disables drafting.
    Drafter      textgen.Generator
    DraftTimeout time.Duration
}

type Service struct {
    Deps
    now func() time.Time
}

func New(d Deps) *Service {
    return &Service{Deps: d, now: time.Now}
}

// SenderDomain reduces an email address, URL or host to its registrable
// domain (eTLD+1). Inputs without a known suffix are returned lowercased.
func SenderDomain(submittedBy string) string {
    s := strings.ToLower(strings.TrimSpace(submittedBy))
    if s == "" { return "" }
    if i := strings.LastIndex(s, "@"); i >= 0 {
        s = s[i+1:]
    }
    if strings.Contains(s, "://") {
        if u, err := url.Parse(s); err == nil && u.Hostname() != "" {
            s = u.Hostname()
        }
    }
    s = strings.TrimSuffix(s, ".")
    registrable, err := publicsuffix.EffectiveTLDPlusOne(s)
    if err != nil {
        return s
    }
    return registrable
}

// Submit queues text for asynchronous audit.
func (s *Service) Submit(ctx context.Context, text, submittedBy string) (string, error) {
    if strings.TrimSpace(text) == "" {
        return "", fmt.Errorf("%w: quote text is empty", domain.ErrInvalidInput)
    }
    return s.Jobs.EnqueueAudit(ctx, text, SenderDomain(submittedBy))
}

func (s *Service) Status(ctx context.Context, jobID string) (domain.AuditJob, error) {
    return s.Jobs.JobStatus(ctx, jobID)
}

func (s *Service) Quote(ctx context.Context, quoteID string) (domain.AuditedQuote, error) {
    return s.Quotes.GetQuote(ctx, quoteID)
}

// Process runs a claimed job; it is the worker pool's processor.
func (s *Service) Process(ctx context.Context, job domain.AuditJob) (string, error) {
    rec, err := s.Run(ctx, job.Text, job.SenderDomain)
    if err != nil { return "", err }
    return rec.ID, nil
}

// Run extracts, audits and stores one quote synchronously. Extraction
// failure is fatal: nothing is stored.
func (s *Service) Run(ctx context.Context, text, senderDomain string) (domain.AuditedQuote, error) {
    if strings.TrimSpace(text) == "" {
        return domain.AuditedQuote{}, fmt.Errorf("%w: quote text is empty", domain.ErrInvalidInput)
    }
    refs, err := s.Dictionaries.Dictionary(ctx)
    if err != nil {
        return domain.AuditedQuote{}, fmt.Errorf("load surcharge dictionary: %w", err)
    }
    quote, err := s.Extractor.Extract(ctx, text, refs)
    if err != nil {
        return domain.AuditedQuote{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
    }
    res, err := s.Coordinator.Audit(ctx, text, quote, audit.DictionaryFromRefs(refs))
    if err != nil { return domain.AuditedQuote{}, err }

    rec := domain.AuditedQuote{
        SenderDomain: senderDomain,
        Quote:        *quote,
        Audit:        *res,
        FullText:     text,
        CreatedAt:    s.now().UTC(),
    }
    rec.Quote.Surcharges = res.Surcharges
    rec.ID, err = s.Quotes.SaveAudit(ctx, rec)
    if err != nil {
        return domain.AuditedQuote{}, fmt.Errorf("save audit: %w", err)
    }
    return rec, nil
}

// Challenge drafts an email contesting the stored quote's findings.
func (s *Service) Challenge(ctx context.Context, quoteID string) (domain.Email, error) {
    rec, err := s.Quotes.GetQuote(ctx, quoteID)
    if err != nil { return domain.Email{}, err }
    return negotiation.DraftChallenge(ctx, s.Drafter, s.DraftTimeout, rec.Quote, Challenges(rec))
}

// Challenges lists the points worth contesting: every non-OK insight and
// every unmapped surcharge.
func Challenges(rec domain.AuditedQuote) []string {
    out := []string{}
    for _, in := range rec.Audit.Insights {
        if in.Status != domain.StatusOK {
            out = append(out, fmt.Sprintf("%s: %s", in.Agent, in.Finding))
        }
    }
    for _, l := range rec.Audit.Surcharges {
        if l.Flagged {
            out = append(out, fmt.Sprintf("Unmapped surcharge: %s (%s %s)", l.RawName, l.Amount.StringFixed(2), l.Currency))
        }
    }
    return out
}
