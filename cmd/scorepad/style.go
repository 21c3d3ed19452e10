package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/text/message"

	"dutch/internal/engine"
)

// renderStandings returns the leaderboard as a table.
func renderStandings(g engine.Game, p *message.Printer) (string, error) {
	data := [][]string{{"#", "Player", "Total", "Dutch", "Avg", "Best", "Streak"}}
	leaders := map[string]bool{}
	if g.IsOver() {
		for _, id := range engine.Leaders(g.Players) {
			leaders[id] = true
		}
	}
	for _, s := range engine.Standings(g.Players) {
		player, _ := g.GetPlayer(s.PlayerID)
		name := s.PlayerName
		if leaders[s.PlayerID] {
			name = pterm.LightYellow(name)
		}
		best := "-"
		if player.Stats.BestRound != nil {
			best = p.Sprintf("%d", *player.Stats.BestRound)
		}
		data = append(data, []string{
			p.Sprintf("%d", s.Rank),
			name,
			p.Sprintf("%d", s.TotalScore),
			p.Sprintf("%d", s.DutchCount),
			p.Sprintf("%.1f", player.Stats.AverageScore),
			best,
			p.Sprintf("%d", player.Stats.WinStreak),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
}

// renderHistory returns every round with running totals.
func renderHistory(g engine.Game, p *message.Printer) (string, error) {
	header := []string{"Round"}
	for _, pl := range g.Players {
		header = append(header, pl.Name)
	}
	data := [][]string{header}
	for _, row := range engine.History(g.Players, g.Ledger) {
		line := []string{p.Sprintf("%d", row.Round)}
		for i, score := range row.Scores {
			cell := p.Sprintf("%d (%d)", score, row.RunningTotals[i])
			if g.Players[i].ID == row.DutchPlayerID {
				cell = pterm.LightGreen(cell + " D")
			}
			line = append(line, cell)
		}
		data = append(data, line)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// renderAudit returns a panel describing an audit result.
func renderAudit(r engine.AuditReport, p *message.Printer) string {
	box := pterm.DefaultBox.WithHorizontalPadding(2)
	if r.IsValid {
		return box.WithTitle(pterm.LightGreen("|AUDIT|")).Sprint("Totals match the round history.")
	}
	body := ""
	for _, e := range r.Errors {
		body += e + "\n"
	}
	for _, c := range r.Corrections {
		body += p.Sprintf("%s: %d -> %d\n", c.PlayerName, c.From, c.To)
	}
	if len(r.Corrections) > 0 {
		body += "Type fix to apply the corrections."
	}
	return box.WithTitle(pterm.LightRed("|AUDIT|")).Sprint(body)
}

// describeError turns an engine error into a message for the person at the
// keyboard, naming players rather than ids.
func describeError(err error, players []engine.Player) string {
	name := func(id string) string {
		for _, p := range players {
			if p.ID == id {
				return p.Name
			}
		}
		return id
	}

	var (
		verr *engine.ValidationError
		ierr *engine.InconsistencyError
	)
	switch {
	case errors.As(err, &verr):
		switch verr.Reason {
		case engine.ReasonMissingPlayers:
			names := make([]string, len(verr.Missing))
			for i, id := range verr.Missing {
				names[i] = name(id)
			}
			return "missing scores for " + strings.Join(names, ", ")
		case engine.ReasonInvalidFormat:
			return fmt.Sprintf("%s: %q is not a whole number", name(verr.PlayerID), verr.Value)
		case engine.ReasonOutOfRange:
			return fmt.Sprintf("%s: %s is outside %d..%d", name(verr.PlayerID), verr.Value, verr.Min, verr.Max)
		case engine.ReasonAllZero:
			return "every score is zero, that is not a real round"
		}
	case errors.As(err, &ierr):
		return fmt.Sprintf("%s cannot be Dutch with %d, the lowest score is %d", name(ierr.PlayerID), ierr.Score, ierr.MinScore)
	}
	return err.Error()
}
