package weiqi

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Statistics keeps the results of every contest, per agent.
type Statistics struct {
	Creation []string
	Wins     map[string][]float32
	Losses   map[string][]float32
	Draws    map[string][]float32
}

func makeStatistics() Statistics {
	return Statistics{
		Creation: make([]string, 0, 64),
		Wins:     make(map[string][]float32),
		Losses:   make(map[string][]float32),
		Draws:    make(map[string][]float32),
	}
}

func (s *Statistics) update(A *Agent) {
	aname := A.Name

	if _, ok := s.Wins[aname]; !ok {
		s.Creation = append(s.Creation, aname)
	}

	s.Wins[aname] = append(s.Wins[aname], A.Wins)
	s.Losses[aname] = append(s.Losses[aname], A.Loss)
	s.Draws[aname] = append(s.Draws[aname], A.Draw)
}

// Dump writes the win rates of every contest as CSV, one column per agent.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return s.WriteCSV(f)
}

// WriteCSV writes the win rates of every contest as CSV, one column per agent.
func (s *Statistics) WriteCSV(wr io.Writer) error {
	w := csv.NewWriter(wr)
	if err := w.Write(s.Creation); err != nil {
		return err
	}
	var records [][]string
	for i, agent := range s.Creation {
		for j, win := range s.Wins[agent] {
			record := make([]string, len(s.Creation))
			var winRate float32
			if total := win + s.Losses[agent][j] + s.Draws[agent][j]; total > 0 {
				winRate = win / total
			}

			record[i] = strconv.FormatFloat(float64(winRate), 'f', 3, 32)
			records = append(records, record)
		}
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
