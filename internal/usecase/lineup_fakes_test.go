package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

type fakeFetcher struct {
	mu        sync.Mutex
	markup    string
	err       error
	calls     int
	refuses   bool
}

func (f *fakeFetcher) Serves(time.Time) bool { return !f.refuses }

func (f *fakeFetcher) Fetch(_ context.Context, _ time.Time, _ string, trail *lineup.Trail) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	trail.Add("fetch", "fake fetch")
	return f.markup, f.err
}

func (f *fakeFetcher) Source() string { return "rotowire" }

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeParser struct {
	box          lineup.GameBox
	found        bool
	extraction   lineup.Extraction
	extractErr   error
	panicMessage string
	gotOpponent  string
	locateCalls  int
}

func (p *fakeParser) Locate(_ string, _ string, opponent string, _ *lineup.Trail) (lineup.GameBox, bool) {
	p.locateCalls++
	p.gotOpponent = opponent
	return p.box, p.found
}

func (p *fakeParser) Extract(_ string, _ lineup.GameBox, _ *lineup.Trail) (lineup.Extraction, error) {
	if p.panicMessage != "" {
		panic(p.panicMessage)
	}
	return p.extraction, p.extractErr
}

type fakeRosterProvider struct {
	mu      sync.Mutex
	players map[string][]lineup.Player
	err     error
	calls   int
}

func (p *fakeRosterProvider) FetchTeamRoster(_ context.Context, teamAbbr string, _ int) ([]lineup.Player, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.players[teamAbbr], nil
}

type fakeSchedule struct {
	mu    sync.Mutex
	games []ExternalGame
	err   error
	calls int
}

func (s *fakeSchedule) FetchGames(_ context.Context, _ time.Time) ([]ExternalGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.games, s.err
}

func (s *fakeSchedule) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func heatPlayers() []lineup.Player {
	return []lineup.Player{
		{FirstName: "Tyler", LastName: "Herro"},
		{FirstName: "Terry", LastName: "Rozier"},
		{FirstName: "Jimmy", LastName: "Butler"},
		{FirstName: "Nikola", LastName: "Jovic"},
		{FirstName: "Bam", LastName: "Adebayo"},
	}
}

// bucksAtHeatExtraction has the away team in column A and the home team in B.
func bucksAtHeatExtraction() lineup.Extraction {
	rows := []lineup.Candidate{
		{Position: lineup.PositionPG, A: "D. Lillard", B: "T. Herro"},
		{Position: lineup.PositionSG, A: "G. Trent Jr.", B: "T. Rozier"},
		{Position: lineup.PositionSF, A: "K. Middleton", B: "J. Butler"},
		{Position: lineup.PositionPF, A: "G. Antetokounmpo", B: "N. Jovic"},
		{Position: lineup.PositionC, A: "B. Lopez", B: "B. Adebayo"},
	}
	candidates := make(map[lineup.Position]lineup.Candidate, len(rows))
	for _, row := range rows {
		candidates[row.Position] = row
	}
	return lineup.Extraction{Candidates: candidates, Rows: rows, Status: lineup.StatusVerified}
}

func bucksAtHeatBox() lineup.GameBox {
	return lineup.GameBox{Start: 0, End: 100, Away: "MIL", Home: "MIA", Matchup: "MIL @ MIA", TargetIsHome: true}
}
