package negotiation

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "freightdesk/internal/domain"
    "freightdesk/internal/textgen"
)

// DraftChallenge asks the capability for a rate-challenge email contesting
// the audit's findings on a quote. Unlike the audit evaluators there is no
// safe default, so capability failures are returned.
func DraftChallenge(ctx context.Context, gen textgen.Generator, timeout time.Duration, q domain.ExtractedQuote, challenges []string) (domain.Email, error) {
    if gen == nil {
        return domain.Email{}, textgen.ErrUnavailable
    }
    if timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, timeout)
        defer cancel()
    }
    quoteJSON, err := json.Marshal(q)
    if err != nil {
        return domain.Email{}, fmt.Errorf("marshal quote: %w", err)
    }
    challengeJSON, err := json.Marshal(challenges)
    if err != nil {
        return domain.Email{}, fmt.Errorf("marshal challenges: %w", err)
    }

    prompt := fmt.Sprintf(`You are a tough but professional Freight Procurement Manager. Write an email to the carrier challenging specific fees/risks in their latest quote.

Quote Context:
%s

Specific Challenges to address:
%s

Goal: Ask them to waive the unmapped fees or reduce the price based on these specific findings.

Output valid JSON:
{
    "subject": "string",
    "body": "string"
}`, quoteJSON, challengeJSON)

    raw, err := gen.Generate(ctx, []textgen.Message{
        textgen.System("You are a professional logistics negotiator."),
        textgen.User(prompt),
    })
    if err != nil {
        if errors.Is(err, textgen.ErrUnavailable) || errors.Is(err, textgen.ErrBadReply) {
            return domain.Email{}, fmt.Errorf("draft challenge: %w", err)
        }
        return domain.Email{}, fmt.Errorf("draft challenge: %w: %w", textgen.ErrUnavailable, err)
    }
    var e domain.Email
    if err := textgen.DecodeJSON(raw, &e); err != nil {
        return domain.Email{}, fmt.Errorf("draft challenge: %w", err)
    }
    if e.Subject == "" || e.Body == "" {
        return domain.Email{}, fmt.Errorf("draft challenge: %w: incomplete email", textgen.ErrBadReply)
    }
    return e, nil
}
