// Package gtp implements the parts of the Go Text Protocol (version 2) needed to play the engine.
//
// Refer to https://www.lysator.liu.se/%7Egunnar/gtp/gtp2-spec-draft2/gtp2-spec.html
package gtp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gorgonia/weiqi/game"
	wq "github.com/gorgonia/weiqi/game/wq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Generator picks the move to play in a position.
type Generator interface {
	GenMove(ctx context.Context, g game.State) (game.Single, error)
}

// Engine keeps the game being played over GTP.
type Engine struct {
	g        *wq.Game
	size     int
	notation game.Notation
	undo     []*wq.Game

	known map[string]Command

	ch  chan string
	ret chan string

	ctx    context.Context
	quit   bool
	logger zerolog.Logger

	Generator     Generator
	name, version string
}

// New creates an engine playing on a board of the given size. known may be nil, in which case the
// standard commands are used.
func New(size int, gen Generator, name, version string, known map[string]Command, logger zerolog.Logger) *Engine {
	if known == nil {
		known = StandardLib()
	}
	return &Engine{
		g:         wq.New(size),
		size:      size,
		notation:  game.Notation(size),
		known:     known,
		ctx:       context.Background(),
		logger:    logger,
		Generator: gen,
		name:      name,
		version:   version,
	}
}

// Start runs the engine in its own goroutine. Every non empty command sent to input gets exactly one
// response on output. output is closed after "quit".
func (e *Engine) Start(ctx context.Context) (input, output chan string) {
	e.ctx = ctx
	e.ch = make(chan string)
	e.ret = make(chan string)
	go e.start()
	return e.ch, e.ret
}

// Run reads commands from r line by line and writes the responses to w, until "quit" or the end of r.
func (e *Engine) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	e.ctx = ctx
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		resp := e.Exec(scanner.Text())
		if resp == "" {
			continue
		}
		if _, err := io.WriteString(w, resp); err != nil {
			return errors.WithStack(err)
		}
		if e.quit {
			return nil
		}
	}
	return errors.WithStack(scanner.Err())
}

func (e *Engine) State() *wq.Game { return e.g }

func (e *Engine) start() {
	for cmd := range e.ch {
		resp := e.Exec(cmd)
		if resp == "" {
			continue
		}
		e.ret <- resp
		if e.quit {
			break
		}
	}
	close(e.ret)
}

// Exec runs a single command line and returns the formatted response. Lines without a command
// return an empty string.
func (e *Engine) Exec(cmd string) string {
	id, x, args, err := e.parse(cmd)
	if x == nil && err == nil {
		return ""
	}
	if err != nil {
		e.logger.Debug().Str("cmd", cmd).Err(err).Msg("Unable to parse")
		return handleErr(id, err)
	}
	id, result, err := x.Do(id, args, e)
	if err != nil {
		e.logger.Debug().Str("cmd", cmd).Err(err).Msg("Command failed")
	}
	return handleResult(id, result, err)
}

func (e *Engine) parse(cmd string) (id int, x Command, args []string, err error) {
	cmd = preprocess(cmd)
	tokens := strings.Fields(cmd)
	if len(tokens) == 0 {
		return -1, nil, nil, nil
	}
	if id, err = strconv.Atoi(tokens[0]); err == nil {
		// we've consumed ID
		tokens = tokens[1:]
	} else {
		// set err to nil because ID is optional
		err = nil
		id = -1
	}

	if len(tokens) == 0 {
		return id, nil, nil, nil // GNUGo some how does nothing when there are no tokens left. An ID may be passed in but it'll be ignored
	}

	var ok bool
	if x, ok = e.known[tokens[0]]; !ok {
		return id, nil, nil, errors.Errorf("Unknown command %q", tokens[0])
	}
	if len(tokens) > 1 {
		args = tokens[1:]
	}
	return
}

// preprocess removes comments and control characters, and lower cases the command.
func preprocess(a string) string {
	if i := strings.IndexByte(a, '#'); i >= 0 {
		a = a[:i]
	}
	a = strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r < ' ' || r == 127:
			return -1
		}
		return r
	}, a)
	return strings.ToLower(strings.TrimSpace(a))
}

func handleErr(id int, err error) string {
	if id != -1 {
		return fmt.Sprintf("? %d %v\n\n", id, err)
	}
	return fmt.Sprintf("? %v\n\n", err)
}

func handleResult(id int, result string, err error) string {
	if err != nil {
		return handleErr(id, err)
	}

	if id != -1 {
		return fmt.Sprintf("= %d %v\n\n", id, result)
	}
	return fmt.Sprintf("= %v\n\n", result)
}
