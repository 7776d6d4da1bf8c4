package alert

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeprop/primeprop/internal/model"
)

// recordingNotifier captures every message it is asked to send.
type recordingNotifier struct {
	name     string
	messages []string
	err      error
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Send(ctx context.Context, text string) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, text)
	return nil
}

func edge(playerName string, edgeValue float64, side model.Side) model.PropEdge {
	return model.PropEdge{
		Player:    model.Player{ID: "p-" + playerName, DisplayName: playerName},
		Stat:      model.StatPoints,
		Line:      22.5,
		Projected: 22.5 * (1 + edgeValue),
		Edge:      edgeValue,
		Side:      side,
		Provider:  "FanDuel",
		GameID:    "game-1",
	}
}

func TestConfidenceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edge float64
		want float64
	}{
		{"positive edge", 0.075, 7.5},
		{"negative edge", -0.06, -6.0},
		{"rounds to two decimals", 0.111111, 11.11},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, ConfidenceScore(tt.edge), 0.001)
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	text := Format(edge("Stephen Curry", 0.1, model.SideOver))

	assert.Contains(t, text, "High-value prop")
	assert.Contains(t, text, "Stephen Curry")
	assert.Contains(t, text, "Over")
	assert.Contains(t, text, "22.5")
	assert.Contains(t, text, "Confidence Score: 10.00%")
	assert.Contains(t, text, "FanDuel")
}

func TestAlertHighValue_FiltersByThreshold(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{name: "test"}
	a := New(0.05, n)

	high := a.AlertHighValue(context.Background(), []model.PropEdge{
		edge("Big Over", 0.12, model.SideOver),
		edge("Big Under", -0.09, model.SideUnder),
		edge("Marginal", 0.05, model.SidePass), // not strictly above
		edge("Tiny", 0.01, model.SidePass),
	})

	require.Len(t, high, 2)
	assert.Equal(t, "Big Over", high[0].Player.DisplayName)
	assert.Equal(t, "Big Under", high[1].Player.DisplayName)
	assert.Len(t, n.messages, 2)
}

func TestAlertHighValue_FansOutToAllNotifiers(t *testing.T) {
	t.Parallel()

	tg := &recordingNotifier{name: "telegram"}
	dc := &recordingNotifier{name: "discord"}
	a := New(0.05, tg, dc)

	a.AlertHighValue(context.Background(), []model.PropEdge{edge("Stephen Curry", 0.1, model.SideOver)})

	assert.Len(t, tg.messages, 1)
	assert.Len(t, dc.messages, 1)
	assert.Equal(t, tg.messages[0], dc.messages[0])
}

func TestAlertHighValue_DeliveryFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	broken := &recordingNotifier{name: "telegram", err: eris.New("bot token revoked")}
	working := &recordingNotifier{name: "discord"}
	a := New(0.05, broken, working)

	high := a.AlertHighValue(context.Background(), []model.PropEdge{edge("Stephen Curry", 0.1, model.SideOver)})

	require.Len(t, high, 1)
	assert.Len(t, working.messages, 1)
}

func TestAlertHighValue_NoNotifiers(t *testing.T) {
	t.Parallel()

	a := New(0.05)
	high := a.AlertHighValue(context.Background(), []model.PropEdge{edge("Stephen Curry", 0.1, model.SideOver)})
	assert.Len(t, high, 1)
}
