package dual

import (
	"bytes"
	"context"
	"log"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Inferencer is a struct that holds the state for a *Dual and a VM. By using an Inferece struct,
// there is no longer a need to create a VM every time an inference needs to be done.
//
// An Inferencer evaluates one position at a time and is not safe for concurrent use.
type Inferencer struct {
	d *Dual
	m G.VM

	input *tensor.Dense
	buf   *bytes.Buffer
}

// Infer takes a *Dual, and creates a interence data structure such that it'd be easy to infer
func Infer(d *Dual, toLog bool) (*Inferencer, error) {
	conf := d.Config
	conf.BatchSize = 1
	retVal := &Inferencer{
		d:     New(conf),
		input: tensor.New(tensor.WithShape(1, conf.Features, conf.Height, conf.Width), tensor.Of(Float)),
	}
	if err := retVal.d.Init(); err != nil {
		return nil, err
	}
	retVal.d.SetTesting()

	infModel := retVal.d.Model()
	for i, n := range d.Model() {
		original := n.Value().Data().([]float32)
		cloned := infModel[i].Value().Data().([]float32)
		copy(cloned, original)
	}

	retVal.buf = new(bytes.Buffer)
	if toLog {
		logger := log.New(retVal.buf, "", 0)
		retVal.m = G.NewTapeMachine(retVal.d.g,
			G.WithLogger(logger),
			G.WithWatchlist(),
			G.TraceExec(),
			G.WithValueFmt("%+1.1v"),
			G.WithNaNWatch(),
		)
	} else {
		retVal.m = G.NewTapeMachine(retVal.d.g)
	}
	return retVal, nil
}

// Dual returns the inference copy of the network.
func (m *Inferencer) Dual() *Dual { return m.d }

// Infer takes the feature planes of a position and returns the policy over the actions and the value
// of the position for the player to move.
func (m *Inferencer) Infer(ctx context.Context, features []float32) (policy []float32, value float32, err error) {
	if err = ctx.Err(); err != nil {
		return nil, 0, err
	}
	if expected := m.input.Shape().TotalSize(); len(features) != expected {
		return nil, 0, errors.Errorf("Expected %d features. Got %d", expected, len(features))
	}
	for _, op := range m.d.ops {
		op.Reset()
	}

	// copy board to the provided preallocated input tensor
	data := m.input.Data().([]float32)
	copy(data, features)

	m.m.Reset()
	m.buf.Reset()
	if err = G.Let(m.d.planes, m.input); err != nil {
		return nil, 0, errors.WithStack(err)
	}
	if err = m.m.RunAll(); err != nil {
		return nil, 0, errors.WithStack(err)
	}

	// the VM reuses its buffers on the next run
	out := m.d.policyValue.Data().([]float32)
	policy = make([]float32, m.d.ActionSpace)
	copy(policy, out)
	value = m.d.value.Data().([]float32)[0]
	return policy, value, nil
}

// ExecLog returns the execution log. If Infer was called with toLog = false, then it will return an empty string
func (m *Inferencer) ExecLog() string { return m.buf.String() }

// Close implements a closer, because well, a gorgonia VM is a resource.
func (m *Inferencer) Close() error { return m.m.Close() }

// CloseAll closes all the inferencers, collecting every error.
func CloseAll(infs ...*Inferencer) error {
	var errs manyErr
	for _, inf := range infs {
		if err := inf.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
