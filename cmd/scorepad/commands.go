package main

import (
	"fmt"
	"strings"

	"dutch/internal/engine"
)

type commandKind int

const (
	cmdRound commandKind = iota
	cmdUndo
	cmdAudit
	cmdFix
	cmdHistory
	cmdHelp
	cmdQuit
)

type command struct {
	kind   commandKind
	scores engine.RawScores
	dutch  string
}

const usage = `round <score>... [dutch=<name>]  record a round, scores in seat order
undo                             remove the last round
audit                            check totals against the round history
fix                              apply the corrections of a failed audit
history                          show every round with running totals
quit                             leave (the game stays saved with -db)`

// parseCommand reads one line typed at the prompt. Round scores are kept as
// typed so the engine reports malformed values per player.
func parseCommand(line string, players []engine.Player) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdHelp}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "r", "round":
		return parseRound(fields[1:], players)
	case "u", "undo":
		return command{kind: cmdUndo}, nil
	case "a", "audit":
		return command{kind: cmdAudit}, nil
	case "fix":
		return command{kind: cmdFix}, nil
	case "h", "history":
		return command{kind: cmdHistory}, nil
	case "?", "help":
		return command{kind: cmdHelp}, nil
	case "q", "quit", "exit":
		return command{kind: cmdQuit}, nil
	}
	return command{}, fmt.Errorf("unknown command %q, type help", fields[0])
}

func parseRound(args []string, players []engine.Player) (command, error) {
	cmd := command{kind: cmdRound, scores: engine.RawScores{}}
	seat := 0
	for _, arg := range args {
		if name, ok := strings.CutPrefix(strings.ToLower(arg), "dutch="); ok {
			id, found := lookupPlayer(name, players)
			if !found {
				return command{}, fmt.Errorf("no player named %q", name)
			}
			cmd.dutch = id
			continue
		}
		if seat >= len(players) {
			return command{}, fmt.Errorf("too many scores: %d players at the table", len(players))
		}
		cmd.scores[players[seat].ID] = arg
		seat++
	}
	return cmd, nil
}

// lookupPlayer matches a player by id or case-insensitive name.
func lookupPlayer(name string, players []engine.Player) (string, bool) {
	for _, p := range players {
		if p.ID == name || strings.EqualFold(p.Name, name) {
			return p.ID, true
		}
	}
	return "", false
}
