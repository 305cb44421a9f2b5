// Package audit runs the four-perspective quote audit: finance, risk,
// operations and sustainability evaluators merged by a single coordinator.
package audit

import (
    "context"

    "freightdesk/internal/domain"
)

// Snapshot is the read-only view of one quote handed to an evaluator. Each
// evaluator gets its own copy of the surcharge lines.
type Snapshot struct {
    Text       string
    Quote      domain.ExtractedQuote
    Surcharges []domain.SurchargeLine
}

func (s Snapshot) clone() *Snapshot {
    c := s
    c.Surcharges = copyLines(s.Surcharges)
    c.Quote.Surcharges = copyLines(s.Quote.Surcharges)
    return &c
}

func copyLines(lines []domain.SurchargeLine) []domain.SurchargeLine {
    if lines == nil {
        return nil
    }
    out := make([]domain.SurchargeLine, len(lines))
    copy(out, lines)
    return out
}

// Report is one evaluator's output. Confidence is only set by the finance
// evaluator.
type Report struct {
    Insight    domain.Insight
    Confidence *float64
}

// Evaluator inspects a quote snapshot and produces a single insight. A
// returned error is unrecoverable and fails the whole audit.
type Evaluator interface {
    Evaluate(ctx context.Context, snap *Snapshot) (Report, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, snap *Snapshot) (Report, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, snap *Snapshot) (Report, error) {
    return f(ctx, snap)
}
