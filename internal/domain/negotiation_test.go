package domain

import (
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func openState() NegotiationState {
    return NegotiationState{
        BidID:       "bid-1",
        CurrentRate: decimal.NewFromInt(1000),
        Status:      NegotiationOpen,
        History: []NegotiationTurn{
            NewTurn(RoleCarrierAgent, "Initial bid", nil, time.Unix(0, 0)),
        },
    }
}

func TestApply_AcceptClosesNegotiation(t *testing.T) {
    s := openState()
    counter := decimal.NewFromInt(980)
    next, turns, err := s.Apply(counter, Proposal{Decision: DecisionAccepted, NewRate: counter, Message: "ok"}, time.Now())
    require.NoError(t, err)

    assert.Equal(t, NegotiationCounterAccepted, next.Status)
    assert.True(t, next.CurrentRate.Equal(counter))
    require.Len(t, turns, 2)
    assert.Equal(t, RoleCustomer, turns[0].Role)
    assert.Equal(t, "Counter-offer: $980.00", turns[0].Text)
    assert.Equal(t, RoleCarrierAgent, turns[1].Role)

    _, _, err = next.Apply(counter, Proposal{Decision: DecisionCounter, NewRate: counter}, time.Now())
    assert.ErrorIs(t, err, ErrNegotiationClosed)
}

func TestApply_RejectedKeepsNegotiating(t *testing.T) {
    s := openState()
    next, _, err := s.Apply(decimal.NewFromInt(800), Proposal{Decision: DecisionRejected, NewRate: decimal.NewFromInt(950)}, time.Now())
    require.NoError(t, err)
    assert.Equal(t, NegotiationRejected, next.Status)
    assert.True(t, next.CurrentRate.Equal(decimal.NewFromInt(950)))

    again, _, err := next.Apply(decimal.NewFromInt(900), Proposal{Decision: DecisionCounter, NewRate: decimal.NewFromInt(925)}, time.Now())
    require.NoError(t, err)
    assert.Equal(t, NegotiationOpen, again.Status)
    assert.Len(t, again.History, 5)
}

func TestApply_HistoryIsAppendOnly(t *testing.T) {
    s := openState()
    next, _, err := s.Apply(decimal.NewFromInt(900), Proposal{Decision: DecisionCounter, NewRate: decimal.NewFromInt(950)}, time.Now())
    require.NoError(t, err)

    assert.Len(t, s.History, 1, "receiver must not change")
    require.Len(t, next.History, 3)
    assert.Equal(t, s.History[0].ID, next.History[0].ID)
    assert.Equal(t, RoleCustomer, next.History[1].Role)
    assert.Equal(t, RoleCarrierAgent, next.History[2].Role)
}

func TestApply_RejectsBadProposal(t *testing.T) {
    s := openState()
    _, _, err := s.Apply(decimal.NewFromInt(900), Proposal{Decision: DecisionCounter, NewRate: decimal.Zero}, time.Now())
    assert.ErrorIs(t, err, ErrInvalidRate)

    _, _, err = s.Apply(decimal.NewFromInt(900), Proposal{Decision: "MAYBE", NewRate: decimal.NewFromInt(1)}, time.Now())
    assert.Error(t, err)
}

func TestFormatRate(t *testing.T) {
    for in, want := range map[string]string{
        "980":      "$980.00",
        "950.5":    "$950.50",
        "950.0000": "$950.00",
        "999.999":  "$999.999",
        "903.4025": "$903.4025",
    } {
        assert.Equal(t, want, FormatRate(decimal.RequireFromString(in)), in)
    }
}

func TestApply_RoundsToStoredScale(t *testing.T) {
    s := openState()
    counter := decimal.RequireFromString("900.123456")
    next, turns, err := s.Apply(counter, Proposal{Decision: DecisionCounter, NewRate: decimal.RequireFromString("950.061728")}, time.Now())
    require.NoError(t, err)

    assert.Equal(t, "950.0617", next.CurrentRate.String())
    require.NotNil(t, turns[0].RateProposed)
    assert.Equal(t, "900.1235", turns[0].RateProposed.String())
    assert.Equal(t, "Counter-offer: $900.1235", turns[0].Text)
    assert.True(t, turns[1].RateProposed.Equal(next.CurrentRate))
}
