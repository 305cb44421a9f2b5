package audit

import (
    "context"
    "fmt"
    "math"

    "freightdesk/internal/domain"
)

const (
    // MinConfidence is the floor of the data-quality score.
    MinConfidence = 0.2

    matchedLineConfidence = 0.95
    flaggedLineConfidence = 0.5
)

// Finance scores how much of the surcharge list was normalized.
type Finance struct{}

func (Finance) Evaluate(_ context.Context, snap *Snapshot) (Report, error) {
    unmapped := 0
    for i := range snap.Surcharges {
        line := &snap.Surcharges[i]
        if line.Flagged {
            unmapped++
            line.Confidence = flaggedLineConfidence
        } else {
            line.Confidence = matchedLineConfidence
        }
    }

    confidence := Confidence(unmapped, len(snap.Surcharges))
    if unmapped > 0 {
        return Report{
            Insight: domain.Insight{
                Agent:   domain.AgentFinance,
                Status:  domain.StatusWarning,
                Finding: fmt.Sprintf("Detected %d unmapped surcharges. Manual mapping recommended.", unmapped),
            },
            Confidence: &confidence,
        }, nil
    }
    return Report{
        Insight: domain.Insight{
            Agent:   domain.AgentFinance,
            Status:  domain.StatusOK,
            Finding: "All surcharges normalized and matched against pre-approved library.",
        },
        Confidence: &confidence,
    }, nil
}

// Confidence is max(0.2, 1 - unmapped/total) with total floored at 1.
func Confidence(unmapped, total int) float64 {
    if total < 1 {
        total = 1
    }
    return math.Max(MinConfidence, 1.0-float64(unmapped)/float64(total))
}
