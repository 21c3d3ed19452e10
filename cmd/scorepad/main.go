// Command scorepad keeps the score of a Dutch game at the terminal, for
// tables without a TV or phones.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dutch/internal/config"
	"dutch/internal/engine"
	"dutch/internal/store"
	"dutch/internal/store/sqlite"
)

type scorepad struct {
	game    engine.Game
	store   store.Store
	table   string
	logger  *slog.Logger
	printer *message.Printer
}

func main() {
	dbPath := flag.String("db", "", "SQLite file to keep the game in (overrides DUTCH_DB_PATH)")
	table := flag.String("table", "scorepad", "name of the game inside the database")
	limit := flag.Int("limit", 0, "score limit (overrides DUTCH_SCORE_LIMIT)")
	flag.Parse()

	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	}
	rules := cfg.Engine()
	if *limit > 0 {
		rules.ScoreLimit = *limit
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	var st store.Store = store.NewMemoryStore()
	if cfg.DBPath != "" {
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			logger.Error("open storage", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		st = db
	}
	defer st.Close()

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("D", pterm.FgLightGreen.ToStyle()),
		putils.LettersFromStringWithStyle("utch", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		logger.Error(err.Error())
	}
	pterm.Print(title)

	ctx := context.Background()
	game, err := loadOrStart(ctx, st, *table, rules, logger)
	if err != nil {
		logger.Error("start game", "error", err)
		return
	}

	pad := &scorepad{
		game:    game,
		store:   st,
		table:   *table,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
	pad.save(ctx)
	pad.run(ctx)
}

// loadOrStart resumes the stored game when the user wants it, otherwise asks
// for players and starts a new one.
func loadOrStart(ctx context.Context, st store.Store, table string, rules engine.Config, logger *slog.Logger) (engine.Game, error) {
	rec, err := st.Load(ctx, table)
	switch {
	case err == nil:
		game, rerr := engine.Restore(rec.Snapshot)
		if rerr != nil {
			logger.Warn("stored game is unusable, starting over", "table", table, "error", rerr)
			break
		}
		resume, _ := pterm.DefaultInteractiveConfirm.
			WithDefaultText(pterm.Sprintf("Resume the game saved %s after %d rounds?", rec.UpdatedAt.Local().Format(time.Kitchen), game.Ledger.Len())).
			WithDefaultValue(true).
			Show()
		if resume {
			return game, nil
		}
	case !errors.Is(err, store.ErrNotFound):
		return engine.Game{}, err
	}

	for {
		line, err := pterm.DefaultInteractiveTextInput.WithDefaultText("Players, in seat order, comma separated").Show()
		if err != nil {
			return engine.Game{}, err
		}
		var seats []engine.Seat
		for _, name := range strings.Split(line, ",") {
			if name = strings.TrimSpace(name); name != "" {
				seats = append(seats, engine.Seat{ID: strings.ToLower(name), Name: name})
			}
		}
		game, err := engine.NewGame(seats, rules, time.Now())
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		pterm.Info.Printfln("Playing to %d with %d players", rules.ScoreLimit, len(seats))
		return game, nil
	}
}

func (s *scorepad) run(ctx context.Context) {
	s.printStandings()
	pterm.Println(usage)
	for {
		line, err := pterm.DefaultInteractiveTextInput.
			WithDefaultText(pterm.Sprintf("Round %d", s.game.Ledger.Len()+1)).
			Show()
		if err != nil {
			s.logger.Error("read command", "error", err)
			return
		}
		cmd, err := parseCommand(line, s.game.Players)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}

		switch cmd.kind {
		case cmdRound:
			s.addRound(ctx, cmd)
		case cmdUndo:
			s.undo(ctx)
		case cmdAudit:
			pterm.Println(renderAudit(s.game.Audit(), s.printer))
		case cmdFix:
			s.fix(ctx)
		case cmdHistory:
			out, err := renderHistory(s.game, s.printer)
			if err != nil {
				s.logger.Error("render history", "error", err)
				continue
			}
			pterm.Println(out)
		case cmdHelp:
			pterm.Println(usage)
		case cmdQuit:
			return
		}
	}
}

func (s *scorepad) addRound(ctx context.Context, cmd command) {
	if s.game.IsOver() {
		pterm.Warning.Println("The game is over. Undo the last round to keep playing.")
		return
	}
	next, out, err := s.game.AddRound(engine.RoundRequest{
		Seq:           s.game.Ledger.Len(),
		Scores:        cmd.scores,
		DeclaredDutch: cmd.dutch,
	})
	if err != nil {
		pterm.Error.Println(describeError(err, s.game.Players))
		return
	}
	s.game = next
	s.save(ctx)
	s.logger.Debug("round committed", "round", out.Round, "dutch", out.DutchPlayerID)

	dutch, _ := s.game.GetPlayer(out.DutchPlayerID)
	pterm.Success.Printfln("Round %d recorded, %s is Dutch", out.Round, dutch.Name)
	s.printStandings()
	if out.GameOver {
		var names []string
		for _, id := range engine.Leaders(s.game.Players) {
			p, _ := s.game.GetPlayer(id)
			names = append(names, p.Name)
		}
		pterm.DefaultBox.WithTitle(pterm.LightGreen("|GAME OVER|")).WithTitleTopCenter().
			Println(pterm.Sprintf("Winner: %s", strings.Join(names, ", ")))
	}
}

func (s *scorepad) undo(ctx context.Context) {
	next, out := s.game.Undo()
	if out.Empty {
		pterm.Warning.Println("No rounds to undo")
		return
	}
	s.game = next
	s.save(ctx)
	pterm.Info.Printfln("Round %d removed", out.Round)
	s.printStandings()
}

func (s *scorepad) fix(ctx context.Context) {
	report := s.game.Audit()
	if report.IsValid {
		pterm.Info.Println("Nothing to fix")
		return
	}
	next, events := s.game.ApplyCorrections(report.Corrections)
	s.game = next
	s.save(ctx)
	for _, ev := range events {
		s.logger.Info("total corrected", "player", ev.Player, "change", ev.Data)
	}
	s.printStandings()
}

func (s *scorepad) save(ctx context.Context) {
	if err := s.store.Save(ctx, s.table, s.game.Snapshot()); err != nil {
		s.logger.Warn("game not saved", "table", s.table, "error", err)
	}
}

func (s *scorepad) printStandings() {
	out, err := renderStandings(s.game, s.printer)
	if err != nil {
		s.logger.Error("render standings", "error", err)
		return
	}
	pterm.Println(out)
}
