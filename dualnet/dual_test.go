package dual

import (
	"bytes"
	"context"
	"encoding/gob"
	"runtime"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func smallConf(boardSize int) Config {
	conf := DefaultConf(boardSize, boardSize, boardSize*boardSize+1)
	conf.SharedLayers = 2
	return conf
}

func TestSanity(t *testing.T) {
	conf := DefaultConf(8, 8, 8*8+1)

	d := New(conf)
	if err := d.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	t.Logf("Number of nodes: %d", len(d.g.AllNodes()))
	prog, _, err := G.Compile(d.g)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("Requires %d bytes", prog.CPUMemReq())
	assert.Equal(t, []int{1, 3, 8, 8}, []int(d.planes.Shape()))

	invalid := New(Config{})
	assert.Error(t, invalid.Init())
}

func TestInferenceSanity(t *testing.T) {
	assert := assert.New(t)
	boardSize := 3
	d := New(smallConf(boardSize))
	if err := d.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	inferer, err := Infer(d, false)
	if err != nil {
		t.Fatal(err)
	}
	defer inferer.Close()

	features := []float32{
		// Black
		1, 0, 0,
		0, 1, 0,
		0, 0, 0,
		// White
		0, 0, 1,
		0, 0, 0,
		1, 0, 0,
		// White to move
		1, 1, 1,
		1, 1, 1,
		1, 1, 1,
	}
	policy, value, err := inferer.Infer(context.Background(), features)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("POLICY %v | %v", policy, value)

	assert.Len(policy, boardSize*boardSize+1)
	var sum float32
	for _, p := range policy {
		assert.True(p >= 0)
		sum += p
	}
	assert.InDelta(1, sum, 1e-4, "the policy is a softmax")
	assert.True(math32.Abs(value) <= 1, "the value is a tanh")

	// the inferencer does not hand out its own buffers
	policy[0] = 100
	policy2, value2, err := inferer.Infer(context.Background(), features)
	require.NoError(t, err)
	assert.NotEqual(float32(100), policy2[0])
	assert.Equal(value, value2, "inference is deterministic")

	_, _, err = inferer.Infer(context.Background(), features[:9])
	assert.Error(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = inferer.Infer(ctx, features)
	assert.Error(err)
	runtime.GC()
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)
	conf := smallConf(3)
	d := New(conf)
	if err := d.Init(); err != nil {
		t.Fatalf("%+v", err)
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(d); err != nil {
		t.Fatalf("Encoding Failure %v", err)
	}

	dec := gob.NewDecoder(&buf)
	d2 := New(conf)
	if err := dec.Decode(d2); err != nil {
		t.Fatalf("Decoding Failure %v", err)
	}

	dmodel := d.Model()
	d2model := d2.Model()
	require.Equal(t, len(dmodel), len(d2model))
	for i, n := range dmodel {
		fstVal := n.Value()
		sndVal := d2model[i].Value()
		assert.Equal(fstVal.Data(), sndVal.Data(), "%d - %v vs %v should have the same data", i, dmodel[i], d2model[i])
	}
}

func TestSaveLoad(t *testing.T) {
	conf := smallConf(3)
	d := New(conf)
	require.NoError(t, d.Init())

	var buf bytes.Buffer
	require.NoError(t, d.Save(&buf))
	d2, err := Load(&buf, conf)
	require.NoError(t, err)

	features := make([]float32, 27)
	features[4] = 1
	inf1, err := Infer(d, false)
	require.NoError(t, err)
	inf2, err := Infer(d2, false)
	require.NoError(t, err)

	p1, v1, err := inf1.Infer(context.Background(), features)
	require.NoError(t, err)
	p2, v2, err := inf2.Infer(context.Background(), features)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, v1, v2)
	assert.NoError(t, CloseAll(inf1, inf2))

	_, err = Load(bytes.NewReader([]byte("not a network")), conf)
	assert.Error(t, err)
	_, err = LoadFile("does/not/exist.gob", conf)
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	d := New(smallConf(3))
	require.NoError(t, d.Init())
	d2, err := d.Clone()
	require.NoError(t, err)
	for i, n := range d.Model() {
		assert.Equal(t, n.Value().Data(), d2.Model()[i].Value().Data())
	}
}

func TestInferencer_ExecLog(t *testing.T) {
	d := New(smallConf(3))
	if err := d.Init(); err != nil {
		t.Fatalf("%+v", err)
	}

	inferer, err := Infer(d, false)
	if err != nil {
		t.Fatal(err)
	}
	defer inferer.Close()

	if inferer.ExecLog() != "" {
		t.Error("Should not have any logs")
	}
}

func TestManyErr(t *testing.T) {
	err := manyErr{assert.AnError, assert.AnError}
	assert.Contains(t, err.Error(), assert.AnError.Error())
}
