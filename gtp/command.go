package gtp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gorgonia/weiqi/game"
	wq "github.com/gorgonia/weiqi/game/wq"
	"github.com/pkg/errors"
)

type Command interface {
	Do(id int, args []string, e *Engine) (int, string, error)
}

type stdlib func(e *Engine) string

type stdlib2 func(e *Engine, args []string) (string, error)

func (f stdlib) Do(id int, args []string, e *Engine) (int, string, error) {
	str := f(e)
	return id, str, nil
}

func (f stdlib2) Do(id int, args []string, e *Engine) (int, string, error) {
	str, err := f(e, args)
	return id, str, err
}

func protocolVersion(e *Engine) string { return "2" }
func name(e *Engine) string            { return e.name }
func version(e *Engine) string         { return e.version }

func listCommands(e *Engine) string {
	cmds := make([]string, 0, len(e.known))
	for c := range e.known {
		cmds = append(cmds, c)
	}
	sort.Strings(cmds)
	return strings.Join(cmds, "\n")
}

func quit(e *Engine) string { e.quit = true; return "" }

func clearBoard(e *Engine) string {
	e.g.Reset()
	e.undo = e.undo[:0]
	return ""
}

func showboard(e *Engine) string { return fmt.Sprintf("\n%v", e.g) }

func finalScore(e *Engine) string {
	// the margin is measured against the threshold, so the sign always agrees with Ended
	margin := 2 * (e.g.Score() - e.g.Threshold())
	if margin > 0 {
		return "B+" + strconv.FormatFloat(float64(margin), 'f', -1, 32)
	}
	return "W+" + strconv.FormatFloat(float64(-margin), 'f', -1, 32)
}

func knownCommand(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"known_command\"")
	}
	if _, ok := e.known[args[0]]; ok {
		return "true", nil
	}
	return "false", nil
}

func boardSize(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"boardsize\"")
	}
	newsize, err := strconv.Atoi(args[0])
	if err != nil {
		return "", errors.WithMessage(err, "Unable to parse first argument of boardsize")
	}
	if newsize != e.size {
		return "", errors.New("unacceptable size")
	}
	clearBoard(e)
	return "", nil
}

// komi is accepted and ignored. The threshold of the game is fixed.
func komi(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"komi\"")
	}
	if _, err := strconv.ParseFloat(args[0], 32); err != nil {
		return "", errors.WithMessage(err, "Unable to parse komi argument")
	}
	return "", nil
}

func parseColour(s string) (game.Player, error) {
	switch s {
	case "b", "black":
		return wq.BlackP, nil
	case "w", "white":
		return wq.WhiteP, nil
	}
	return game.Player(game.None), errors.Errorf("invalid color %q", s)
}

func play(e *Engine, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("Not enough arguments for \"play\"")
	}
	p, err := parseColour(args[0])
	if err != nil {
		return "", err
	}
	vertex := game.ParseVertex(args[1])
	if !e.notation.Valid(vertex) {
		return "", errors.Errorf("invalid coordinate %q", args[1])
	}
	return "", e.play(game.PlayerMove{Player: p, Single: e.notation.Decode(vertex)})
}

func genmove(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"genmove\"")
	}
	if e.Generator == nil {
		return "", errors.New("Unable to generate moves. No generator found")
	}
	p, err := parseColour(args[0])
	if err != nil {
		return "", err
	}
	e.g.SetToMove(p)
	a, err := e.Generator.GenMove(e.ctx, e.g)
	if err != nil {
		return "", errors.WithMessage(err, "Unable to generate a move")
	}
	if err = e.play(game.PlayerMove{Player: p, Single: a}); err != nil {
		return "", err
	}
	e.logger.Info().Str("colour", fmt.Sprintf("%v", p)).Str("move", e.notation.Encode(a)).Msg("Generated")
	return e.notation.Encode(a), nil
}

func undo(e *Engine, args []string) (string, error) {
	if len(e.undo) == 0 {
		return "", errors.New("cannot undo")
	}
	last := len(e.undo) - 1
	e.g = e.undo[last]
	e.undo = e.undo[:last]
	return "", nil
}

// play plays the move, keeping the previous position for undo.
func (e *Engine) play(m game.PlayerMove) error {
	prev := e.g.Clone().(*wq.Game)
	if err := e.g.Play(m); err != nil {
		return errors.WithMessage(err, "illegal move")
	}
	e.undo = append(e.undo, prev)
	return nil
}

func StandardLib() map[string]Command {
	return map[string]Command{
		"protocol_version": stdlib(protocolVersion),
		"name":             stdlib(name),
		"version":          stdlib(version),
		"list_commands":    stdlib(listCommands),
		"quit":             stdlib(quit),
		"clear_board":      stdlib(clearBoard),
		"showboard":        stdlib(showboard),
		"final_score":      stdlib(finalScore),

		"known_command": stdlib2(knownCommand),
		"boardsize":     stdlib2(boardSize),
		"komi":          stdlib2(komi),
		"play":          stdlib2(play),
		"genmove":       stdlib2(genmove),
		"undo":          stdlib2(undo),
	}
}
