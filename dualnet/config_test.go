package dual

import "testing"

var correctRounds = []struct{ a, correct int }{
	{0, 0},
	{1, 1},
	{2, 2},
	{3, 4},
	{5, 4},
	{8, 8},
	{10, 8},
	{31, 32},
	{33, 32},
	{80, 64},
	{100, 128},
}

func TestRound(t *testing.T) {
	for _, c := range correctRounds {
		if b := round(c.a); b != c.correct {
			t.Errorf("Expected rounding of %v to be %v. Got %v instead", c.a, c.correct, b)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	conf := DefaultConf(8, 8, 8*8+1)
	if !conf.IsValid() {
		t.Errorf("Expected Default Config to be correct")
	}
	if conf.Features != 3 || conf.BatchSize != 1 || conf.K != 16 || conf.FC != 32 {
		t.Errorf("Unexpected default config %+v", conf)
	}

	conf.ActionSpace = 2
	if conf.IsValid() {
		t.Errorf("An action space of 2 cannot be valid")
	}
}
