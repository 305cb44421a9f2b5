package audit

import (
    "context"
    "fmt"

    "golang.org/x/sync/errgroup"

    "freightdesk/internal/domain"
)

const (
    slotFinance = iota
    slotRisk
    slotOps
    slotSustainability
    slotCount
)

// Coordinator runs the four evaluators and merges their reports in the fixed
// order Finance, Risk, Ops, Sustainability.
type Coordinator struct {
    Finance        Evaluator
    Risk           Evaluator
    Ops            Evaluator
    Sustainability Evaluator

    // Sequential disables concurrent evaluation; results are identical.
    Sequential bool
}

// NewCoordinator wires the standard evaluators; risk uses the given capability.
func NewCoordinator(risk Risk) *Coordinator {
    return &Coordinator{
        Finance:        Finance{},
        Risk:           risk,
        Ops:            Ops{},
        Sustainability: Sustainability{},
    }
}

// Audit normalizes the quote's surcharges against dict and runs every
// evaluator. A nil quote or an evaluator error fails the call; no partial
// result is ever returned.
func (c *Coordinator) Audit(ctx context.Context, text string, quote *domain.ExtractedQuote, dict Dictionary) (*domain.AuditResult, error) {
    if quote == nil {
        return nil, domain.ErrMissingQuote
    }
    evaluators := [slotCount]Evaluator{c.Finance, c.Risk, c.Ops, c.Sustainability}
    for i, e := range evaluators {
        if e == nil {
            return nil, fmt.Errorf("audit: evaluator %d not configured", i)
        }
    }

    base := Snapshot{Text: text, Quote: *quote, Surcharges: Normalize(quote.Surcharges, dict)}
    var snaps [slotCount]*Snapshot
    var reports [slotCount]Report
    for i := range snaps {
        snaps[i] = base.clone()
    }

    if c.Sequential {
        for i, e := range evaluators {
            r, err := e.Evaluate(ctx, snaps[i])
            if err != nil {
                return nil, fmt.Errorf("audit: %w", err)
            }
            reports[i] = r
        }
    } else {
        g, gctx := errgroup.WithContext(ctx)
        for i, e := range evaluators {
            i, e := i, e
            g.Go(func() error {
                r, err := e.Evaluate(gctx, snaps[i])
                if err != nil {
                    return err
                }
                reports[i] = r
                return nil
            })
        }
        if err := g.Wait(); err != nil {
            return nil, fmt.Errorf("audit: %w", err)
        }
    }
    return merge(reports, snaps[slotFinance].Surcharges)
}

func merge(reports [slotCount]Report, surcharges []domain.SurchargeLine) (*domain.AuditResult, error) {
    fin := reports[slotFinance].Confidence
    if fin == nil {
        return nil, fmt.Errorf("audit: finance report without confidence")
    }
    carbon := reports[slotSustainability].Insight.CarbonKg
    if carbon == nil {
        return nil, fmt.Errorf("audit: sustainability report without carbon estimate")
    }

    res := &domain.AuditResult{
        Insights:          make([]domain.Insight, 0, slotCount),
        ConfidenceScore:   *fin,
        CarbonFootprintKg: *carbon,
        RiskFlags:         []string{},
        Surcharges:        surcharges,
    }
    for _, r := range reports {
        res.Insights = append(res.Insights, r.Insight)
    }
    res.RiskFlags = RiskFlags(res.Insights)
    return res, nil
}

// RiskFlags lists the findings of every non-OK insight, in insight order.
func RiskFlags(insights []domain.Insight) []string {
    flags := []string{}
    for _, in := range insights {
        if in.Status != domain.StatusOK {
            flags = append(flags, in.Finding)
        }
    }
    return flags
}
