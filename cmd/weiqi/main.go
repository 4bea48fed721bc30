// Command weiqi plays Go on small boards.
//
// Usage:
//
//	weiqi [flags] gtp        play over the Go Text Protocol on stdin and stdout
//	weiqi [flags] selfplay   play games against itself
//	weiqi [flags] contest    play the model against a challenger
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/gorgonia/weiqi"
	dual "github.com/gorgonia/weiqi/dualnet"
	"github.com/gorgonia/weiqi/encoding/gif"
	"github.com/gorgonia/weiqi/gtp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const version = "0.1.0"

var (
	size       = flag.Int("size", 8, "width of the board")
	sims       = flag.Int("sims", 800, "number of simulations per move")
	workers    = flag.Int("workers", runtime.NumCPU(), "number of search workers")
	puct       = flag.Float64("puct", 5, "exploration constant")
	vl         = flag.Float64("vl", 3, "virtual loss")
	random     = flag.Int("random", 8, "number of opening moves sampled from the search policy in self play")
	model      = flag.String("model", "", "path of the model to load")
	dummy      = flag.Bool("dummy", false, "use a uniform estimator instead of a network")
	save       = flag.String("save", "", "save the model here when done")
	challenger = flag.String("challenger", "", "path of the challenger model for contests. Empty uses the uniform estimator")
	games      = flag.Int("games", 1, "number of games to play")
	gifPath    = flag.String("gif", "", "render the games played as a GIF")
	statsPath  = flag.String("stats", "", "write the contest statistics as CSV")
	seed       = flag.Int64("seed", 0, "seed of the exploration noise. 0 seeds from the clock")
	verbose    = flag.Bool("v", false, "debug logging")
	colour     = flag.Bool("colour", true, "print finished games in colour")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] gtp|selfplay|contest\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Arg(0), logger); err != nil {
		logger.Error().Err(err).Msg("weiqi failed")
		os.Exit(1)
	}
}

func config(mode string) weiqi.Config {
	conf := weiqi.DefaultConfig(*size)
	conf.Name = mode
	conf.MCTSConf.Budget = *sims
	conf.MCTSConf.NumWorkers = *workers
	conf.MCTSConf.PUCT = float32(*puct)
	conf.MCTSConf.VirtualLoss = float32(*vl)
	conf.MCTSConf.Seed = *seed
	conf.Workers = *workers
	conf.RandomTurns = *random
	conf.UseDummy = *dummy
	if mode == "gtp" {
		conf.MCTSConf.Explore = false
	}
	return conf
}

func run(ctx context.Context, mode string, logger zerolog.Logger) (err error) {
	conf := config(mode)

	var encoders multiEncoder
	if *gifPath != "" {
		f, err := os.Create(*gifPath)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		encoders = append(encoders, gif.NewEncoder(f, 1000, 1000))
	}
	if mode != "gtp" {
		encoders = append(encoders, newBoardPrinter(os.Stdout, *colour))
	}
	if len(encoders) > 0 {
		conf.OutputEncoder = encoders
	}

	e, err := weiqi.New(conf, logger)
	if err != nil {
		return err
	}
	if *model != "" {
		if err = e.Load(*model); err != nil {
			return err
		}
	}

	switch mode {
	case "gtp":
		agent, err := e.NewAgent("weiqi")
		if err != nil {
			return err
		}
		defer agent.Close()
		return gtp.New(*size, agent, "weiqi", version, nil, logger).Run(ctx, os.Stdin, os.Stdout)
	case "selfplay":
		examples, err := e.SelfPlay(ctx, *games)
		if err != nil {
			return err
		}
		logger.Info().Int("games", *games).Int("examples", len(examples)).Msg("Self play done")
	case "contest":
		var nn *dual.Dual
		if *challenger != "" {
			if nn, err = dual.LoadFile(*challenger, conf.NNConf); err != nil {
				return err
			}
		}
		res, err := e.Contest(ctx, nn, *games)
		if err != nil {
			return err
		}
		if err = encoders.Flush(); err != nil {
			return err
		}
		fmt.Printf("%s won %v, lost %v, drew %v of %d games against %s. Win rate %.3f\n",
			res.Name, res.Wins, res.Loss, res.Draw, res.Games, res.ChampionName, res.WinRate())
		if *statsPath != "" {
			if err = e.Statistics.Dump(*statsPath); err != nil {
				return err
			}
		}
	default:
		flag.Usage()
		return errors.Errorf("Unknown mode %q", mode)
	}

	if *save != "" {
		return e.Save(*save)
	}
	return nil
}
