// Package alert delivers high-value prop notifications. Transports implement
// Notifier; delivery failures are logged, never fatal — a missed Telegram
// message must not sink a pipeline run.
package alert

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/primeprop/primeprop/internal/model"
)

// Notifier delivers one formatted message over some transport.
type Notifier interface {
	// Name identifies the transport in logs.
	Name() string

	// Send delivers the message.
	Send(ctx context.Context, text string) error
}

// ConfidenceScore converts an edge fraction to a percentage, rounded to two
// decimals, for display (0.075 -> 7.5).
func ConfidenceScore(edge float64) float64 {
	return math.Round(edge*100*100) / 100
}

// Format renders one prop edge as an alert message.
func Format(edge model.PropEdge) string {
	return fmt.Sprintf(
		"**High-value prop**\n"+
			"Player: %s\n"+
			"Prop: %s %s %g\n"+
			"Projected: %g | Line: %g\n"+
			"Confidence Score: %.2f%%\n"+
			"Provider: %s",
		edge.Player.DisplayName,
		edge.Stat, edge.Side, edge.Line,
		edge.Projected, edge.Line,
		ConfidenceScore(edge.Edge),
		edge.Provider,
	)
}

// Alerter fans alerts out to every configured notifier.
type Alerter struct {
	notifiers []Notifier
	minEdge   float64
}

// New creates an alerter that fires for props with |edge| > minEdge.
func New(minEdge float64, notifiers ...Notifier) *Alerter {
	return &Alerter{notifiers: notifiers, minEdge: minEdge}
}

// AlertHighValue sends one alert per prop whose |edge| clears the threshold
// and returns the props it alerted on. Both profitable Overs (edge above
// threshold) and profitable Unders (edge below its negative) qualify.
func (a *Alerter) AlertHighValue(ctx context.Context, edges []model.PropEdge) []model.PropEdge {
	var high []model.PropEdge
	for _, e := range edges {
		if math.Abs(e.Edge) > a.minEdge {
			high = append(high, e)
		}
	}

	for _, e := range high {
		text := Format(e)
		for _, n := range a.notifiers {
			if err := n.Send(ctx, text); err != nil {
				zap.L().Warn("alert: delivery failed",
					zap.String("notifier", n.Name()),
					zap.String("player", e.Player.ID),
					zap.Error(err),
				)
			}
		}
	}
	return high
}
