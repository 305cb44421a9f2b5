package negotiation

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/rs/zerolog/log"
    "github.com/shopspring/decimal"

    "freightdesk/internal/domain"
    "freightdesk/internal/textgen"
)

const stallMessage = "I'll need to check with my manager regarding this rate."

// ModelResponder lets the text-generation capability play the carrier. When
// the capability is unavailable, times out or answers with something
// unusable, the round stalls: COUNTER at the unchanged current rate.
type ModelResponder struct {
    Gen     textgen.Generator
    Timeout time.Duration
}

type modelReply struct {
    ResponseText   string           `json:"response_text"`
    NewOfferedRate *decimal.Decimal `json:"new_offered_rate"`
    Status         domain.Decision  `json:"status"`
    Rationale      string           `json:"rationale"`
}

func (m ModelResponder) Respond(ctx context.Context, r Round) (domain.Proposal, error) {
    if err := validate(r); err != nil {
        return domain.Proposal{}, err
    }
    p, err := m.ask(ctx, r)
    if err != nil {
        log.Warn().Err(err).Str("carrier", r.CarrierName).Msg("negotiation responder stalled")
        return Stall(r), nil
    }
    return p, nil
}

// Stall is the no-movement answer used when no decision can be reasoned out.
func Stall(r Round) domain.Proposal {
    return domain.Proposal{
        Decision:  domain.DecisionCounter,
        NewRate:   r.CurrentRate,
        Message:   stallMessage,
        Rationale: "Reasoning capability unavailable.",
    }
}

func (m ModelResponder) ask(ctx context.Context, r Round) (domain.Proposal, error) {
    if m.Gen == nil {
        return domain.Proposal{}, textgen.ErrUnavailable
    }
    if m.Timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, m.Timeout)
        defer cancel()
    }

    prompt, err := carrierPrompt(r)
    if err != nil {
        return domain.Proposal{}, err
    }
    raw, err := m.Gen.Generate(ctx, []textgen.Message{textgen.System(prompt)})
    if err != nil {
        return domain.Proposal{}, err
    }

    var reply modelReply
    if err := textgen.DecodeJSON(raw, &reply); err != nil {
        return domain.Proposal{}, err
    }
    if !reply.Status.Valid() {
        return domain.Proposal{}, fmt.Errorf("unknown decision %q", reply.Status)
    }
    if reply.ResponseText == "" {
        return domain.Proposal{}, fmt.Errorf("empty response text")
    }

    p := domain.Proposal{Decision: reply.Status, Message: reply.ResponseText, Rationale: reply.Rationale}
    switch {
    case reply.Status == domain.DecisionAccepted:
        // accepting means taking the customer's number
        p.NewRate = r.CounterOffer
    case reply.NewOfferedRate != nil && reply.NewOfferedRate.IsPositive():
        p.NewRate = *reply.NewOfferedRate
    default:
        return domain.Proposal{}, fmt.Errorf("missing new offered rate for %s", reply.Status)
    }
    return p, nil
}

type historyEntry struct {
    Role string `json:"role"`
    Text string `json:"text"`
}

func carrierPrompt(r Round) (string, error) {
    hist := make([]historyEntry, 0, len(r.History))
    for _, t := range r.History {
        hist = append(hist, historyEntry{Role: string(t.Role), Text: t.Text})
    }
    data, err := json.MarshalIndent(hist, "", "  ")
    if err != nil {
        return "", fmt.Errorf("marshal history: %w", err)
    }
    return fmt.Sprintf(`You are representing a freight carrier '%s' negotiating for the tender '%s'.
The current rate offered is %s.
The customer just counter-offered %s.

Session History:
%s

Your goal is to stay profitable but win the business.
1. If the counter-offer is within 5%% of the current rate, you might accept.
2. If it's 5-15%% lower, you should push back with a counter-offer in the middle.
3. If it's 15%% or more lower, reject and offer 95%% of the current rate as your final position.

Respond in JSON format:
{
    "response_text": "Your message to the customer",
    "new_offered_rate": number,
    "status": "ACCEPTED" | "COUNTER" | "REJECTED",
    "rationale": "Internal reasoning"
}`, r.CarrierName, r.TenderTitle, domain.FormatRate(r.CurrentRate), domain.FormatRate(r.CounterOffer), data), nil
}
