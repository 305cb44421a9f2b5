package audit

import (
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightdesk/internal/domain"
)

func line(name string, amount int64) domain.SurchargeLine {
    return domain.SurchargeLine{RawName: name, Amount: decimal.NewFromInt(amount), Currency: "USD"}
}

func TestNormalize_ExactMatch(t *testing.T) {
    dict := Dictionary{"BAF": {Normalized: "Bunker Adjustment Factor", Category: "Fuel"}}
    out := Normalize([]domain.SurchargeLine{line("BAF", 50), line("baf", 10), line("XYZ", 5)}, dict)

    require.Len(t, out, 3)
    assert.False(t, out[0].Flagged)
    require.NotNil(t, out[0].NormalizedName)
    assert.Equal(t, "Bunker Adjustment Factor", *out[0].NormalizedName)
    assert.Equal(t, "Fuel", *out[0].Category)

    // no case folding
    assert.True(t, out[1].Flagged)
    assert.Nil(t, out[1].NormalizedName)
    assert.True(t, out[2].Flagged)
    assert.Nil(t, out[2].Category)
}

func TestNormalize_EmptyDictionaryUsesBuiltins(t *testing.T) {
    out := Normalize([]domain.SurchargeLine{line("THC", 120), line("ISPS", 15)}, nil)
    assert.False(t, out[0].Flagged)
    assert.Equal(t, "Terminal Handling Charge", *out[0].NormalizedName)
    assert.True(t, out[1].Flagged)
}

func TestNormalize_NonEmptyDictionaryIsNotMerged(t *testing.T) {
    dict := Dictionary{"ISPS": {Normalized: "Port Security", Category: "Security"}}
    out := Normalize([]domain.SurchargeLine{line("BAF", 50), line("ISPS", 15)}, dict)
    assert.True(t, out[0].Flagged, "built-in codes only apply when the table is empty")
    assert.False(t, out[1].Flagged)
}

func TestNormalize_DoesNotTouchInput(t *testing.T) {
    in := []domain.SurchargeLine{line("BAF", 50)}
    stale := "stale"
    in[0].NormalizedName = &stale
    in[0].Flagged = true

    out := Normalize(in, nil)
    assert.Equal(t, "stale", *in[0].NormalizedName)
    assert.True(t, in[0].Flagged)
    assert.Equal(t, "Bunker Adjustment Factor", *out[0].NormalizedName)
}

func TestDictionaryFromRefs(t *testing.T) {
    d := DictionaryFromRefs([]domain.SurchargeRef{
        {RawName: "CAF", NormalizedName: "Currency Adjustment Factor", Category: "Finance"},
    })
    assert.Equal(t, Entry{Normalized: "Currency Adjustment Factor", Category: "Finance"}, d["CAF"])
    assert.Len(t, d.Effective(), 1)
    assert.Len(t, Dictionary{}.Effective(), 5)
}
