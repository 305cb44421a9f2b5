package audit

import (
    "freightdesk/internal/domain"
)

// Entry is the canonical form a raw surcharge label maps to.
type Entry struct {
    Normalized string `json:"normalized"`
    Category   string `json:"category"`
}

// Dictionary maps raw surcharge labels to their canonical entries. Keys match
// exactly; there is no case folding or fuzzy matching.
type Dictionary map[string]Entry

// DefaultDictionary is used whenever the reference table is empty.
func DefaultDictionary() Dictionary {
    return Dictionary{
        "BAF": {Normalized: "Bunker Adjustment Factor", Category: "Fuel"},
        "PSS": {Normalized: "Peak Season Surcharge", Category: "Seasonal"},
        "LSS": {Normalized: "Low Sulphur Surcharge", Category: "Fuel"},
        "THC": {Normalized: "Terminal Handling Charge", Category: "Handling"},
        "DOC": {Normalized: "Documentation Fee", Category: "Admin"},
    }
}

// DictionaryFromRefs builds a dictionary from reference rows. Later rows win
// on duplicate raw names.
func DictionaryFromRefs(refs []domain.SurchargeRef) Dictionary {
    d := make(Dictionary, len(refs))
    for _, r := range refs {
        d[r.RawName] = Entry{Normalized: r.NormalizedName, Category: r.Category}
    }
    return d
}

// Effective returns d, or the built-in set when d is empty. The two are never
// merged.
func (d Dictionary) Effective() Dictionary {
    if len(d) == 0 {
        return DefaultDictionary()
    }
    return d
}

// Normalize returns an annotated copy of lines. Matched lines get a canonical
// name and category; the rest are flagged with both left absent.
func Normalize(lines []domain.SurchargeLine, dict Dictionary) []domain.SurchargeLine {
    dict = dict.Effective()
    out := make([]domain.SurchargeLine, len(lines))
    for i, l := range lines {
        l.NormalizedName, l.Category = nil, nil
        if e, ok := dict[l.RawName]; ok {
            name, cat := e.Normalized, e.Category
            l.NormalizedName = &name
            l.Category = &cat
            l.Flagged = false
        } else {
            l.Flagged = true
        }
        out[i] = l
    }
    return out
}
