package negotiations

import (
    "context"
    "errors"
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightdesk/internal/domain"
    "freightdesk/internal/negotiation"
)

type memBids struct {
    states map[string]domain.NegotiationState
    saves  int
}

func (m *memBids) CreateBid(_ context.Context, b domain.Bid, opening domain.NegotiationTurn) (domain.Bid, error) {
    b.ID = "bid-1"
    m.states[b.ID] = domain.NegotiationState{
        BidID:       b.ID,
        TenderTitle: b.TenderTitle,
        CarrierName: b.CarrierName,
        CurrentRate: b.OfferedRate,
        Status:      b.Status,
        History:     []domain.NegotiationTurn{opening},
    }
    return b, nil
}

func (m *memBids) LoadNegotiation(_ context.Context, id string) (domain.NegotiationState, error) {
    s, ok := m.states[id]
    if !ok {
        return domain.NegotiationState{}, domain.ErrNotFound
    }
    return s, nil
}

func (m *memBids) SaveRound(_ context.Context, next domain.NegotiationState, _ []domain.NegotiationTurn) error {
    m.saves++
    m.states[next.BidID] = next
    return nil
}

func open(t *testing.T, r negotiation.Responder) (*Service, *memBids) {
    t.Helper()
    repo := &memBids{states: map[string]domain.NegotiationState{}}
    svc := New(repo, r)
    _, err := svc.OpenBid(context.Background(), domain.Bid{
        TenderTitle: "Shanghai to Rotterdam Q3",
        CarrierName: "Maersk",
        OfferedRate: decimal.NewFromInt(1000),
    })
    require.NoError(t, err)
    return svc, repo
}

func TestOpenBid(t *testing.T) {
    svc, repo := open(t, negotiation.RuleResponder{})
    st, err := svc.History(context.Background(), "bid-1")
    require.NoError(t, err)
    assert.Equal(t, domain.NegotiationOpen, st.Status)
    require.Len(t, st.History, 1)
    assert.Equal(t, "Initial bid submitted at $1000.00", st.History[0].Text)
    assert.Equal(t, 0, repo.saves)

    _, err = svc.OpenBid(context.Background(), domain.Bid{TenderTitle: "t", CarrierName: "c"})
    assert.ErrorIs(t, err, domain.ErrInvalidRate)
    _, err = svc.OpenBid(context.Background(), domain.Bid{OfferedRate: decimal.NewFromInt(1)})
    assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCounter_Rounds(t *testing.T) {
    svc, repo := open(t, negotiation.RuleResponder{})
    ctx := context.Background()

    p, err := svc.Counter(ctx, "bid-1", decimal.NewFromInt(800))
    require.NoError(t, err)
    assert.Equal(t, domain.DecisionRejected, p.Decision)
    assert.True(t, repo.states["bid-1"].CurrentRate.Equal(decimal.NewFromInt(950)))
    assert.Equal(t, domain.NegotiationRejected, repo.states["bid-1"].Status)

    p, err = svc.Counter(ctx, "bid-1", decimal.NewFromInt(920))
    require.NoError(t, err)
    assert.Equal(t, domain.DecisionAccepted, p.Decision)

    st := repo.states["bid-1"]
    assert.Equal(t, domain.NegotiationCounterAccepted, st.Status)
    assert.True(t, st.CurrentRate.Equal(decimal.NewFromInt(920)))
    assert.Len(t, st.History, 5)

    _, err = svc.Counter(ctx, "bid-1", decimal.NewFromInt(900))
    assert.ErrorIs(t, err, domain.ErrNegotiationClosed)
    assert.Equal(t, 2, repo.saves)
}

func TestCounter_Errors(t *testing.T) {
    svc, repo := open(t, negotiation.RuleResponder{})
    _, err := svc.Counter(context.Background(), "nope", decimal.NewFromInt(900))
    assert.ErrorIs(t, err, domain.ErrNotFound)

    _, err = svc.Counter(context.Background(), "bid-1", decimal.Zero)
    assert.ErrorIs(t, err, domain.ErrInvalidRate)
    assert.Equal(t, 0, repo.saves)
}

type failingResponder struct{}

func (failingResponder) Respond(context.Context, negotiation.Round) (domain.Proposal, error) {
    return domain.Proposal{}, errors.New("no answer")
}

func TestCounter_ResponderErrorStoresNothing(t *testing.T) {
    svc, repo := open(t, failingResponder{})
    _, err := svc.Counter(context.Background(), "bid-1", decimal.NewFromInt(900))
    assert.Error(t, err)
    assert.Equal(t, 0, repo.saves)
    assert.Len(t, repo.states["bid-1"].History, 1)
}

type fixedResponder domain.Proposal

func (f fixedResponder) Respond(context.Context, negotiation.Round) (domain.Proposal, error) {
    return domain.Proposal(f), nil
}

func TestCounter_ReturnsStoredRate(t *testing.T) {
    svc, repo := open(t, fixedResponder{Decision: domain.DecisionCounter, NewRate: decimal.RequireFromString("925.061749"), Message: "meet me"})
    p, err := svc.Counter(context.Background(), "bid-1", decimal.NewFromInt(900))
    require.NoError(t, err)

    stored := repo.states["bid-1"].CurrentRate
    assert.Equal(t, "925.0617", p.NewRate.String())
    assert.True(t, p.NewRate.Equal(stored))
}
