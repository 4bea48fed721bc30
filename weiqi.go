// Package weiqi plays Go on small boards with a concurrent PUCT search guided by a policy/value network.
package weiqi

import (
	"context"
	"os"

	dual "github.com/gorgonia/weiqi/dualnet"
	wq "github.com/gorgonia/weiqi/game/wq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Engine is the top level structure and the entry point of the API.
// It is a wrapper around the MCTS and the neural network that composes the algorithm.
type Engine struct {
	Statistics
	NN *dual.Dual

	conf   Config
	logger zerolog.Logger
}

// New creates an engine. Unless a dummy estimator is configured, the network starts out with random weights.
func New(conf Config, logger zerolog.Logger) (*Engine, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("Config is not valid. Unable to proceed: %+v", conf)
	}
	e := &Engine{
		Statistics: makeStatistics(),
		conf:       conf,
		logger:     logger,
	}
	if !conf.UseDummy {
		e.NN = dual.New(conf.NNConf)
		if err := e.NN.Init(); err != nil {
			return nil, errors.WithMessage(err, "Unable to initialize the network")
		}
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.conf }

// NewGame returns an empty board of the engine's size.
func (e *Engine) NewGame() *wq.Game { return wq.New(e.conf.Size) }

// NewAgent creates an agent playing with the engine's network.
func (e *Engine) NewAgent(name string) (*Agent, error) {
	var nn *dual.Dual
	if !e.conf.UseDummy {
		nn = e.NN
	}
	return NewAgent(name, nn, e.conf.MCTSConf, e.conf.Workers)
}

// Load the network from a file
func (e *Engine) Load(filename string) error {
	nn, err := dual.LoadFile(filename, e.conf.NNConf)
	if err != nil {
		return err
	}
	e.NN = nn
	e.conf.UseDummy = false
	e.logger.Info().Str("file", filename).Msg("Loaded network")
	return nil
}

// Save the network into filename
func (e *Engine) Save(filename string) error {
	if e.NN == nil {
		return errors.New("No network to save")
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return e.NN.Save(f)
}

// SelfPlay plays games of the engine against itself, and returns the recorded examples.
func (e *Engine) SelfPlay(ctx context.Context, games int) (examples []Example, err error) {
	agent, err := e.NewAgent("self")
	if err != nil {
		return nil, err
	}
	defer agent.Close()

	arena := NewArena(e.NewGame(), agent, agent, e.conf, e.logger)
	for i := 0; i < games; i++ {
		var ex []Example
		if _, ex, err = arena.Play(ctx, true); err != nil {
			return examples, err
		}
		examples = append(examples, ex...)
	}
	if e.conf.OutputEncoder != nil {
		if err = e.conf.OutputEncoder.Flush(); err != nil {
			return examples, errors.WithMessage(err, "Unable to flush the output")
		}
	}
	return examples, nil
}

// ContestResult is the outcome of a contest, from the challenger's point of view.
type ContestResult struct {
	Games              int
	Wins, Loss, Draw   float32
	ChampionName, Name string
}

// WinRate is the share of the games the challenger won.
func (r ContestResult) WinRate() float32 {
	if r.Games == 0 {
		return 0
	}
	return r.Wins / float32(r.Games)
}

// Contest plays games between the engine's network and a challenger. A nil challenger plays with the uniform estimator.
// The results are added to the engine's Statistics.
func (e *Engine) Contest(ctx context.Context, challenger Dualer, games int) (ContestResult, error) {
	var nn *dual.Dual
	if challenger != nil {
		nn = challenger.Dual()
	}
	champion, err := e.NewAgent("champion")
	if err != nil {
		return ContestResult{}, err
	}
	defer champion.Close()
	contender, err := NewAgent("challenger", nn, e.conf.MCTSConf, e.conf.Workers)
	if err != nil {
		return ContestResult{}, err
	}
	defer contender.Close()

	conf := e.conf
	conf.RandomTurns = conf.ContestRandomTurns
	conf.Augmenter = nil
	arena := NewArena(e.NewGame(), champion, contender, conf, e.logger)
	for i := 0; i < games; i++ {
		if _, _, err = arena.Play(ctx, false); err != nil {
			return ContestResult{}, err
		}
	}
	e.update(champion)
	e.update(contender)
	e.logger.Info().Float32("wins", contender.Wins).Float32("loss", contender.Loss).Float32("draw", contender.Draw).Msg("Contest over")

	return ContestResult{
		Games:        games,
		Wins:         contender.Wins,
		Loss:         contender.Loss,
		Draw:         contender.Draw,
		ChampionName: champion.Name,
		Name:         contender.Name,
	}, nil
}
