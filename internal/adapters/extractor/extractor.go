// Package extractor turns free-form carrier quotes into structured quotes.
package extractor

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    "freightdesk/internal/audit"
    "freightdesk/internal/domain"
    "freightdesk/internal/fx"
    "freightdesk/internal/textgen"
)

type Extractor struct {
    Gen     textgen.Generator
    Timeout time.Duration
    FX      fx.Converter
}

// Extract accepts either a quote already in structured JSON form or free
// text, which is sent to the capability. The USD total is always filled in.
func (e Extractor) Extract(ctx context.Context, text string, refs []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
    q, ok := structured(text)
    if !ok {
        var err error
        if q, err = e.ask(ctx, text, refs); err != nil {
            return nil, err
        }
    }
    if q.TotalPrice.IsNegative() {
        return nil, fmt.Errorf("total price %s: %w", q.TotalPrice, domain.ErrInvalidQuote)
    }
    if q.Surcharges == nil {
        q.Surcharges = []domain.SurchargeLine{}
    }
    if err := e.FX.Normalize(ctx, q); err != nil {
        return nil, fmt.Errorf("normalize currency: %w", err)
    }
    return q, nil
}

func structured(text string) (*domain.ExtractedQuote, bool) {
    t := strings.TrimSpace(text)
    if !strings.HasPrefix(t, "{") {
        return nil, false
    }
    var q domain.ExtractedQuote
    if err := json.Unmarshal([]byte(t), &q); err != nil {
        return nil, false
    }
    if q.Carrier == "" && len(q.Surcharges) == 0 && q.TotalPrice.IsZero() {
        return nil, false
    }
    return &q, true
}

func (e Extractor) ask(ctx context.Context, text string, refs []domain.SurchargeRef) (*domain.ExtractedQuote, error) {
    if e.Gen == nil {
        return nil, textgen.ErrUnavailable
    }
    if e.Timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, e.Timeout)
        defer cancel()
    }
    prompt, err := systemPrompt(audit.DictionaryFromRefs(refs).Effective())
    if err != nil { return nil, err }

    raw, err := e.Gen.Generate(ctx, []textgen.Message{textgen.System(prompt), textgen.User(text)})
    if err != nil {
        return nil, fmt.Errorf("extraction: %w", err)
    }
    var q domain.ExtractedQuote
    if err := textgen.DecodeJSON(raw, &q); err != nil {
        return nil, fmt.Errorf("extraction: %w", err)
    }
    return &q, nil
}

type dictEntry struct {
    Normalized string `json:"normalized"`
    Category   string `json:"category"`
}

func systemPrompt(dict audit.Dictionary) (string, error) {
    entries := make(map[string]dictEntry, len(dict))
    for raw, e := range dict {
        entries[raw] = dictEntry{Normalized: e.Normalized, Category: e.Category}
    }
    data, err := json.MarshalIndent(entries, "", "  ")
    if err != nil {
        return "", fmt.Errorf("marshal dictionary: %w", err)
    }
    return fmt.Sprintf(`You are a Senior Logistics Auditor. Extract the following from this text: Carrier, Origin, Destination, Total Price, Currency, and a list of all Surcharges.

Refer to this Surcharge Dictionary for normalization:
%s

Rules:
1. Extract the "raw_name" exactly as it appears in the text.
2. If the surcharge matches a key/alias in the dictionary, populate "normalized_name" and "category".
3. If not found, "normalized_name" should be null and "flagged" should be true.
4. Output Number values for amounts.

Output valid JSON:
{
    "carrier": "string",
    "origin": "string",
    "destination": "string",
    "total_price": number,
    "currency": "string",
    "surcharges": [
        {
            "raw_name": "string",
            "normalized_name": "string (or null)",
            "category": "string (or null)",
            "amount": number,
            "currency": "string",
            "flagged": boolean
        }
    ]
}`, data), nil
}
