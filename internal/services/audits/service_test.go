package audits

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightdesk/internal/audit"
    "freightdesk/internal/domain"
    "freightdesk/internal/textgen"
)

type memQuotes struct{ rows map[string]domain.AuditedQuote }

func (m *memQuotes) SaveAudit(_ context.Context, q domain.AuditedQuote) (string, error) {
    id := fmt.Sprintf("q-%d", len(m.rows)+1)
    q.ID = id
    m.rows[id] = q
    return id, nil
}

func (m *memQuotes) GetQuote(_ context.Context, id string) (domain.AuditedQuote, error) {
    q, ok := m.rows[id]
    if !ok {
        return domain.AuditedQuote{}, domain.ErrNotFound
    }
    return q, nil
}

type memJobs struct {
    text, sender string
}

func (m *memJobs) EnqueueAudit(_ context.Context, text, sender string) (string, error) {
    m.text, m.sender = text, sender
    return "job-1", nil
}
func (m *memJobs) ClaimNext(context.Context) (domain.AuditJob, bool, error) {
    return domain.AuditJob{}, false, nil
}
func (m *memJobs) StartJob(context.Context, string) (domain.AuditJob, error) {
    return domain.AuditJob{}, domain.ErrNotFound
}
func (m *memJobs) MarkCompleted(context.Context, string, string) error { return nil }
func (m *memJobs) MarkFailed(context.Context, string, string) error    { return nil }
func (m *memJobs) JobStatus(_ context.Context, id string) (domain.AuditJob, error) {
    return domain.AuditJob{ID: id, Status: domain.JobQueued}, nil
}

type extractFunc func(ctx context.Context, text string, refs []domain.SurchargeRef) (*domain.ExtractedQuote, error)

func (f extractFunc) Extract(ctx context.Context, text string, refs []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
    return f(ctx, text, refs)
}

type staticDict []domain.SurchargeRef

func (d staticDict) Dictionary(context.Context) ([]domain.SurchargeRef, error) { return d, nil }

func sampleQuote() *domain.ExtractedQuote {
    return &domain.ExtractedQuote{
        Carrier:            "Maersk",
        Origin:             "Shanghai",
        Destination:        "Rotterdam",
        TotalPrice:         decimal.NewFromInt(4000),
        Currency:           "USD",
        NormalizedPriceUSD: decimal.NewFromInt(4000),
        Surcharges: []domain.SurchargeLine{
            {RawName: "BAF", Amount: decimal.NewFromInt(300), Currency: "USD"},
            {RawName: "WRS", Amount: decimal.NewFromInt(150), Currency: "USD"},
        },
    }
}

func newService(t *testing.T, extract extractFunc) (*Service, *memQuotes, *memJobs) {
    t.Helper()
    quotes := &memQuotes{rows: map[string]domain.AuditedQuote{}}
    jobs := &memJobs{}
    svc := New(Deps{
        Jobs:         jobs,
        Quotes:       quotes,
        Extractor:    extract,
        Dictionaries: staticDict{},
        Coordinator:  audit.NewCoordinator(audit.Risk{Gen: textgen.Disabled{}}),
    })
    return svc, quotes, jobs
}

func TestSenderDomain(t *testing.T) {
    cases := map[string]string{
        "ops@maersk.com":               "maersk.com",
        "Rates@Sales.CMA-CGM.co.uk":    "cma-cgm.co.uk",
        "https://portal.msc.com/quote": "msc.com",
        "hapag-lloyd.de.":              "hapag-lloyd.de",
        "":                             "",
        "localhost":                    "localhost",
    }
    for in, want := range cases {
        assert.Equal(t, want, SenderDomain(in), in)
    }
}

func TestRun_StoresAuditedQuote(t *testing.T) {
    svc, quotes, _ := newService(t, func(_ context.Context, text string, _ []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
        return sampleQuote(), nil
    })

    rec, err := svc.Run(context.Background(), "BAF 300 WRS 150 total 4000", "maersk.com")
    require.NoError(t, err)
    assert.Equal(t, "q-1", rec.ID)
    assert.Equal(t, 0.5, rec.Audit.ConfidenceScore)
    assert.Equal(t, 1800.0, rec.Audit.CarbonFootprintKg)
    require.Len(t, rec.Audit.RiskFlags, 2)
    assert.Contains(t, rec.Audit.RiskFlags[0], "Detected 1 unmapped surcharges")

    stored := quotes.rows["q-1"]
    assert.Equal(t, "maersk.com", stored.SenderDomain)
    require.Len(t, stored.Quote.Surcharges, 2)
    require.NotNil(t, stored.Quote.Surcharges[0].NormalizedName)
    assert.Equal(t, "Bunker Adjustment Factor", *stored.Quote.Surcharges[0].NormalizedName)
    assert.True(t, stored.Quote.Surcharges[1].Flagged)
}

func TestRun_ExtractionFailureStoresNothing(t *testing.T) {
    svc, quotes, _ := newService(t, func(context.Context, string, []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
        return nil, errors.New("model said no")
    })
    _, err := svc.Run(context.Background(), "text", "")
    assert.ErrorIs(t, err, domain.ErrExtraction)
    assert.Empty(t, quotes.rows)
}

func TestRun_EmptyText(t *testing.T) {
    svc, _, _ := newService(t, nil)
    _, err := svc.Run(context.Background(), "  ", "")
    assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmit_RecordsSenderDomain(t *testing.T) {
    svc, _, jobs := newService(t, nil)
    id, err := svc.Submit(context.Background(), "quote text", "pricing@one-line.com")
    require.NoError(t, err)
    assert.Equal(t, "job-1", id)
    assert.Equal(t, "one-line.com", jobs.sender)

    _, err = svc.Submit(context.Background(), "", "x@y.com")
    assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_ReturnsQuoteID(t *testing.T) {
    svc, _, _ := newService(t, func(context.Context, string, []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
        return sampleQuote(), nil
    })
    id, err := svc.Process(context.Background(), domain.AuditJob{ID: "job-1", Text: "t"})
    require.NoError(t, err)
    assert.Equal(t, "q-1", id)
}

func TestChallenge(t *testing.T) {
    svc, _, _ := newService(t, func(context.Context, string, []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
        return sampleQuote(), nil
    })
    var prompt string
    svc.Drafter = textgen.Func(func(_ context.Context, msgs []textgen.Message) (string, error) {
        prompt = msgs[len(msgs)-1].Content
        return `{"subject":"WRS fee","body":"Please remove it."}`, nil
    })

    rec, err := svc.Run(context.Background(), "t", "")
    require.NoError(t, err)
    email, err := svc.Challenge(context.Background(), rec.ID)
    require.NoError(t, err)
    assert.Equal(t, "WRS fee", email.Subject)
    assert.True(t, strings.Contains(prompt, "Unmapped surcharge: WRS (150.00 USD)"))

    _, err = svc.Challenge(context.Background(), "missing")
    assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChallenge_NoDrafter(t *testing.T) {
    svc, _, _ := newService(t, func(context.Context, string, []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
        return sampleQuote(), nil
    })
    rec, err := svc.Run(context.Background(), "t", "")
    require.NoError(t, err)
    _, err = svc.Challenge(context.Background(), rec.ID)
    assert.ErrorIs(t, err, textgen.ErrUnavailable)
}
