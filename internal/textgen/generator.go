// Package textgen is the text-generation capability used by the audit and
// negotiation cores. Callers treat every reply as best-effort JSON.
package textgen

import "context"

type Message struct {
    Role    string `json:"role"`
    Content string `json:"content"`
}

func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

// Generator turns a role-annotated conversation into a single reply.
type Generator interface {
    Generate(ctx context.Context, msgs []Message) (string, error)
}

var (
    ErrUnavailable = errString("text generation unavailable")
    // ErrBadReply marks a reply that arrived but could not be used.
    ErrBadReply = errString("text generation reply unusable")
)

// Disabled is the deterministic capability used when no live model is
// configured. Every call fails with ErrUnavailable so callers take their
// rule-based or fallback path.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, _ []Message) (string, error) {
    if err := ctx.Err(); err != nil {
        return "", err
    }
    return "", ErrUnavailable
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, msgs []Message) (string, error)

func (f Func) Generate(ctx context.Context, msgs []Message) (string, error) { return f(ctx, msgs) }

type errString string

func (e errString) Error() string { return string(e) }
