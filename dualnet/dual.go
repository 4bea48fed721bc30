package dual

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var Float = G.Float32

// Dual is the whole neural network architecture of the dual network.
//
// The policy and value heads share a residual convolutional trunk. Only the forward pass is built:
// a Dual evaluates positions, it does not learn.
type Dual struct {
	Config
	ops []batchNormOp

	g *G.ExprGraph

	planes       *G.Node
	policyOutput *G.Node
	valueOutput  *G.Node

	policyValue G.Value // policy predicted
	value       G.Value // the actual value predicted
}

// New returns a new, uninitialized *Dual.
func New(conf Config) *Dual {
	retVal := &Dual{
		Config: conf,
	}

	return retVal
}

// Init builds the graph, with randomly initialized weights.
func (d *Dual) Init() error {
	if !d.IsValid() {
		return errors.Errorf("Invalid network config %+v", d.Config)
	}
	d.reset()
	d.g = G.NewGraph()
	return d.fwd(d.ActionSpace)
}

func (d *Dual) fwd(actionSpace int) error {
	boardSize := d.Width * d.Height

	// note, the data should be arranged like so:
	//	BatchSize, Features, Height, Width
	// because Gorgonia only supports doing convolutions on BCHW format
	d.planes = G.NewTensor(d.g, Float, 4, G.WithShape(d.BatchSize, d.Features, d.Height, d.Width), G.WithName("Planes"))

	var m maebe
	initialOut, initalOp := m.res(d.planes, d.K, "Init")
	d.ops = append(d.ops, initalOp)

	// shared stack
	sharedOut := initialOut
	for i := 0; i < d.SharedLayers; i++ {
		var op1, op2 batchNormOp
		sharedOut, op1, op2 = m.share(sharedOut, d.K, i)
		d.ops = append(d.ops, op1, op2)
	}

	// policy head
	policy, pop := m.batchnorm(m.conv(sharedOut, 2, 1, "PolicyHead"))
	policy = m.rectify(policy)
	policy = m.reshape(policy, tensor.Shape{d.BatchSize, boardSize * 2})
	logits := m.linear(policy, actionSpace, "Policy")

	// Read to output which can be used for deciding the policy
	d.policyOutput = m.do(func() (*G.Node, error) { return G.SoftMax(logits) })

	// value head
	value, vop := m.batchnorm(m.conv(sharedOut, 1, 1, "ValueHead"))
	value = m.rectify(value)
	value = m.reshape(value, tensor.Shape{d.BatchSize, boardSize})
	value = m.linear(value, d.FC, "Value") // value hidden
	value = m.rectify(value)

	valueOutput := m.linear(value, 1, "ValueOutput")
	valueOutput = m.reshape(valueOutput, tensor.Shape{d.BatchSize})

	// Read the output to a value
	d.valueOutput = m.do(func() (*G.Node, error) { return G.Tanh(valueOutput) })
	if m.err != nil {
		return m.err
	}
	G.Read(d.policyOutput, &d.policyValue)
	G.Read(d.valueOutput, &d.value)

	// add ops
	d.ops = append(d.ops, pop, vop)
	return nil
}

// Model returns the learnables of the network.
func (d *Dual) Model() G.Nodes {
	retVal := make(G.Nodes, 0, d.g.Nodes().Len())
	for _, n := range d.g.AllNodes() {
		if n.IsVar() && n != d.planes {
			retVal = append(retVal, n)
		}
	}
	return retVal
}

func (d *Dual) SetTesting() {
	for _, op := range d.ops {
		op.SetTesting()
	}
}

func (d *Dual) Clone() (*Dual, error) {
	d2 := New(d.Config)
	if err := d2.Init(); err != nil {
		return nil, err
	}

	model := d.Model()
	model2 := d2.Model()
	for i, n := range model {
		if err := G.Let(model2[i], n.Value()); err != nil {
			return nil, err
		}
	}

	return d2, nil
}

// Dual returns the network itself, so a *Dual can be used wherever a network holder is wanted.
func (d *Dual) Dual() *Dual { return d }

func (d *Dual) reset() {
	d.ops = nil
	d.g = nil

	d.planes = nil
	d.policyOutput = nil
	d.valueOutput = nil
}

func (d *Dual) GobEncode() (retVal []byte, err error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	for _, n := range d.Model() {
		v := n.Value()
		if err = enc.Encode(&v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (d *Dual) GobDecode(p []byte) error {
	if err := d.Init(); err != nil {
		return err
	}

	buf := bytes.NewBuffer(p)
	dec := gob.NewDecoder(buf)
	for _, n := range d.Model() {
		var v G.Value
		if err := dec.Decode(&v); err != nil {
			return errors.Wrapf(err, "Decoding %v", n.Name())
		}
		if err := G.Let(n, v); err != nil {
			return errors.Wrapf(err, "Setting %v", n.Name())
		}
	}
	return nil
}

// Save writes the weights of the network to w.
func (d *Dual) Save(w io.Writer) error {
	return errors.WithStack(gob.NewEncoder(w).Encode(d))
}

// Load reads weights written by Save into a network with the given config.
func Load(r io.Reader, conf Config) (*Dual, error) {
	d := New(conf)
	if err := gob.NewDecoder(r).Decode(d); err != nil {
		return nil, errors.Wrap(err, "Unable to load the network")
	}
	return d, nil
}

// LoadFile is Load, from a file.
func LoadFile(filename string, conf Config) (*Dual, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	return Load(f, conf)
}
