package weiqi

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chewxy/math32"
	"github.com/gorgonia/weiqi/game"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Arena is where two agents play games against each other. A and B may be the same agent, in which case
// it plays itself.
type Arena struct {
	r    *rand.Rand
	game game.State
	A, B *Agent

	// state
	currentPlayer *Agent
	randomTurns   int
	enc           OutputEncoder
	aug           Augmenter
	logger        zerolog.Logger

	name       string
	gameNumber int // which game is this in
}

// NewArena makes an arena given a game. The game is reset before every game played.
func NewArena(g game.State, a, b *Agent, conf Config, logger zerolog.Logger) *Arena {
	name := conf.Name
	if name == "" {
		name = "UNKNOWN GAME"
	}
	return &Arena{
		r:           rand.New(rand.NewSource(time.Now().UnixNano())),
		game:        g,
		A:           a,
		B:           b,
		randomTurns: conf.RandomTurns,
		enc:         conf.OutputEncoder,
		aug:         conf.Augmenter,
		logger:      logger.With().Str("arena", name).Logger(),
		name:        name,
	}
}

// Play plays a game, and returns a winner. If record is true, the positions of the game are returned as examples,
// their values set to the result of the game from the point of view of the player to move.
func (a *Arena) Play(ctx context.Context, record bool) (winner game.Player, examples []Example, err error) {
	a.game.Reset()
	black, white := a.A, a.B
	if a.A != a.B && a.r.Intn(2) == 1 {
		black, white = a.B, a.A
	}
	black.Player = game.Player(game.Black)
	if white != black {
		white.Player = game.Player(game.White)
	}
	a.currentPlayer = black
	a.logger.Info().Int("game", a.gameNumber).Str("black", black.Name).Str("white", white.Name).Bool("record", record).Msg("Playing")

	var movers []game.Player // the player to move at each example
	var ended bool
	for turn := 0; ; turn++ {
		if ended, winner = a.game.Ended(); ended {
			break
		}
		toMove := a.game.ToMove()
		var features []float32
		if record {
			features = a.game.Features()
		}

		var policy []float32
		if policy, err = a.currentPlayer.Search(ctx, a.game, 1); err != nil {
			return game.Player(game.None), nil, errors.WithMessagef(err, "Game %d, turn %d", a.gameNumber, turn)
		}
		value := a.currentPlayer.MCTS.Value()

		var best game.Single
		if turn < a.randomTurns {
			best = randomChoice(a.r, policy)
		} else {
			best = bestChoice(policy, a.game.ActionSpace())
		}
		a.logger.Debug().Int("turn", turn).Str("player", a.currentPlayer.Name).Str("colour", fmt.Sprintf("%v", toMove)).Int("move", int(best)).Float32("value", value).Msg("Move")

		if record && validPolicies(policy) {
			ex := Example{Features: features, Policy: policy, SearchValue: value}
			exs := []Example{ex}
			if a.aug != nil {
				exs = a.aug(ex)
			}
			for range exs {
				movers = append(movers, toMove)
			}
			examples = append(examples, exs...)
		}

		if !a.game.Apply(best) {
			return game.Player(game.None), nil, errors.Errorf("Game %d, turn %d: %v picked an impossible move %d", a.gameNumber, turn, a.currentPlayer.Name, best)
		}
		a.A.MCTS.Advance(best)
		if a.B != a.A {
			a.B.MCTS.Advance(best)
		}
		a.switchPlayer()

		if a.enc != nil {
			if err = a.enc.Encode(a); err != nil {
				return game.Player(game.None), nil, errors.WithMessage(err, "Unable to encode the game")
			}
		}
	}

	for i := range examples {
		switch {
		case winner == game.Player(game.None):
			examples[i].Value = 0
		case movers[i] == winner:
			examples[i].Value = 1
		default:
			examples[i].Value = -1
		}
	}

	winningAgent := "none"
	switch {
	case a.A == a.B:
	case winner == a.A.Player:
		a.A.Wins++
		a.B.Loss++
		winningAgent = a.A.Name
	case winner == a.B.Player:
		a.B.Wins++
		a.A.Loss++
		winningAgent = a.B.Name
	default:
		a.A.Draw++
		a.B.Draw++
	}
	a.logger.Info().Int("game", a.gameNumber).Str("winner", fmt.Sprintf("%v", winner)).Str("agent", winningAgent).
		Int("moves", a.game.MoveNumber()).Float32("score", a.game.Score()).Msg("Game over")

	a.A.MCTS.Reset()
	a.B.MCTS.Reset()
	a.gameNumber++
	return winner, examples, nil
}

func (a *Arena) GameNumber() int   { return a.gameNumber }
func (a *Arena) Name() string      { return a.name }
func (a *Arena) State() game.State { return a.game }

func (a *Arena) switchPlayer() {
	switch a.currentPlayer {
	case a.A:
		a.currentPlayer = a.B
	case a.B:
		a.currentPlayer = a.A
	}
}

// randomChoice samples an action from the policy.
func randomChoice(r *rand.Rand, policy []float32) game.Single {
	var sum float32
	for _, p := range policy {
		sum += p
	}
	x := r.Float32() * sum
	var accum float32
	last := game.Pass
	for a, p := range policy {
		if p <= 0 {
			continue
		}
		accum += p
		last = game.Single(a)
		if x < accum {
			return last
		}
	}
	return last
}

// bestChoice returns the action with the highest probability, or pass if that is not an action.
func bestChoice(policy []float32, actionSpace int) game.Single {
	best := argmax(policy)
	if best >= actionSpace {
		return game.Pass
	}
	return game.Single(best)
}

func argmax(a []float32) int {
	var retVal int
	var max float32 = math32.Inf(-1)
	for i := range a {
		if a[i] > max {
			max = a[i]
			retVal = i
		}
	}
	return retVal
}

func validPolicies(policy []float32) bool {
	for _, v := range policy {
		if math32.IsInf(v, 0) {
			return false
		}
		if math32.IsNaN(v) {
			return false
		}
	}
	return true
}
