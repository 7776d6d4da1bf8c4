package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/pkg/oddsapi"
)

// ScheduleSource supplies the upcoming games an ingestion run covers.
type ScheduleSource interface {
	UpcomingGames(ctx context.Context) ([]model.Game, error)
}

// OddsAPISchedule lists upcoming games from The Odds API events endpoint,
// keeping only games that have not tipped off yet.
type OddsAPISchedule struct {
	client oddsapi.Client
	now    func() time.Time // injectable for testing
}

// NewOddsAPISchedule wraps an Odds API client as a schedule source.
func NewOddsAPISchedule(client oddsapi.Client) *OddsAPISchedule {
	return &OddsAPISchedule{client: client, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (s *OddsAPISchedule) WithNow(now func() time.Time) *OddsAPISchedule {
	s.now = now
	return s
}

func (s *OddsAPISchedule) UpcomingGames(ctx context.Context) ([]model.Game, error) {
	events, err := s.client.Events(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "schedule: list events")
	}

	now := s.now()
	var games []model.Game
	for _, ev := range events {
		if !ev.CommenceTime.After(now) {
			continue
		}
		games = append(games, model.Game{
			ID:        ev.ID,
			HomeTeam:  ev.HomeTeam,
			AwayTeam:  ev.AwayTeam,
			StartTime: ev.CommenceTime,
		})
	}
	return games, nil
}

// StaticSchedule returns a fixed game list, for tests and offline runs.
type StaticSchedule []model.Game

func (s StaticSchedule) UpcomingGames(context.Context) ([]model.Game, error) {
	return s, nil
}
