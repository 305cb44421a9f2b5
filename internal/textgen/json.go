package textgen

import (
    "encoding/json"
    "fmt"
    "strings"
)

// StripFences removes markdown code-fence markup a model may wrap around its
// JSON reply, plus any prose before the first '{' or after the last '}'.
func StripFences(raw string) string {
    s := strings.TrimSpace(raw)
    if strings.HasPrefix(s, "```") {
        s = strings.TrimPrefix(s, "```")
        // drop an info string such as "json"
        if i := strings.IndexAny(s, "\n{"); i >= 0 && s[i] == '\n' {
            s = s[i+1:]
        } else if i >= 0 {
            s = s[i:]
        }
    }
    s = strings.TrimSuffix(strings.TrimSpace(s), "```")
    s = strings.TrimSpace(s)
    if strings.HasPrefix(s, "{") {
        return s
    }
    start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
    if start >= 0 && end > start {
        return s[start : end+1]
    }
    return s
}

// DecodeJSON strips fences from raw and decodes the single JSON object inside.
func DecodeJSON(raw string, v any) error {
    body := StripFences(raw)
    if body == "" {
        return fmt.Errorf("%w: empty reply", ErrBadReply)
    }
    if err := json.Unmarshal([]byte(body), v); err != nil {
        return fmt.Errorf("%w: %w", ErrBadReply, err)
    }
    return nil
}
