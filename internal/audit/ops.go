package audit

import (
    "context"
    "strings"

    "freightdesk/internal/domain"
)

// Ops checks that a quote carries what booking needs.
type Ops struct{}

func (Ops) Evaluate(_ context.Context, snap *Snapshot) (Report, error) {
    q := snap.Quote
    var missing []string
    for _, f := range []struct{ name, value string }{
        {"origin", q.Origin},
        {"destination", q.Destination},
        {"carrier", q.Carrier},
    } {
        if strings.TrimSpace(f.value) == "" {
            missing = append(missing, f.name)
        }
    }

    if len(missing) > 0 {
        return Report{Insight: domain.Insight{
            Agent:   domain.AgentOps,
            Status:  domain.StatusFlag,
            Finding: "Missing critical data for booking: " + strings.Join(missing, ", ") + ". Quote cannot be allocated yet.",
        }}, nil
    }
    return Report{Insight: domain.Insight{
        Agent:   domain.AgentOps,
        Status:  domain.StatusOK,
        Finding: "Data complete for instant booking request generation.",
    }}, nil
}
