package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// BiLSTM is an Embedding -> Bidirectional(LSTM) -> Dense stack evaluated in
// pure Go from weights exported out of the trained Keras model.
//
// Weight layout follows Keras: LSTM kernels are [input][4*units] and
// [units][4*units] with gates ordered i, f, c, o; the two directions are
// concatenated forward first. The model is immutable once loaded and safe for
// concurrent use.
type BiLSTM struct {
	embedding [][]float32
	maskZero  bool
	forward   lstmCell
	backward  lstmCell
	dense     []denseLayer
}

// ModelFile is the on-disk JSON form of a BiLSTM.
type ModelFile struct {
	Embedding [][]float32  `json:"embedding"`
	MaskZero  bool         `json:"mask_zero"`
	Forward   LSTMWeights  `json:"forward"`
	Backward  LSTMWeights  `json:"backward"`
	Dense     []DenseLayer `json:"dense"`
}

type LSTMWeights struct {
	Kernel          [][]float32 `json:"kernel"`
	RecurrentKernel [][]float32 `json:"recurrent_kernel"`
	Bias            []float32   `json:"bias"`
}

type DenseLayer struct {
	Kernel     [][]float32 `json:"kernel"`
	Bias       []float32   `json:"bias"`
	Activation string      `json:"activation"`
}

type lstmCell struct {
	units int
	LSTMWeights
}

type denseLayer struct {
	activation func(float64) float64
	DenseLayer
}

// LoadBiLSTM reads and validates a model weight export.
func LoadBiLSTM(path string) (*BiLSTM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}

	var mf ModelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	return NewBiLSTM(mf)
}

// NewBiLSTM checks every weight shape against the others and builds the model.
func NewBiLSTM(mf ModelFile) (*BiLSTM, error) {
	if len(mf.Embedding) == 0 || len(mf.Embedding[0]) == 0 {
		return nil, fmt.Errorf("model: empty embedding")
	}
	dim := len(mf.Embedding[0])
	for i, row := range mf.Embedding {
		if len(row) != dim {
			return nil, fmt.Errorf("model: embedding row %d has %d values, want %d", i, len(row), dim)
		}
	}

	fwd, err := newLSTMCell("forward", mf.Forward, dim)
	if err != nil {
		return nil, err
	}
	bwd, err := newLSTMCell("backward", mf.Backward, dim)
	if err != nil {
		return nil, err
	}

	if len(mf.Dense) == 0 {
		return nil, fmt.Errorf("model: no dense layers")
	}
	in := fwd.units + bwd.units
	dense := make([]denseLayer, 0, len(mf.Dense))
	for i, d := range mf.Dense {
		if len(d.Kernel) != in {
			return nil, fmt.Errorf("model: dense %d expects %d inputs, kernel has %d rows", i, in, len(d.Kernel))
		}
		out := len(d.Bias)
		for _, row := range d.Kernel {
			if len(row) != out {
				return nil, fmt.Errorf("model: dense %d kernel/bias width mismatch", i)
			}
		}
		act, err := activation(d.Activation)
		if err != nil {
			return nil, fmt.Errorf("model: dense %d: %w", i, err)
		}
		dense = append(dense, denseLayer{activation: act, DenseLayer: d})
		in = out
	}
	if in != 1 {
		return nil, fmt.Errorf("model: final layer has %d outputs, want 1", in)
	}

	return &BiLSTM{
		embedding: mf.Embedding,
		maskZero:  mf.MaskZero,
		forward:   fwd,
		backward:  bwd,
		dense:     dense,
	}, nil
}

func newLSTMCell(name string, w LSTMWeights, inputDim int) (lstmCell, error) {
	units := len(w.RecurrentKernel)
	if units == 0 {
		return lstmCell{}, fmt.Errorf("model: %s lstm has no units", name)
	}
	gates := 4 * units
	if len(w.Kernel) != inputDim {
		return lstmCell{}, fmt.Errorf("model: %s kernel has %d rows, want %d", name, len(w.Kernel), inputDim)
	}
	for _, row := range w.Kernel {
		if len(row) != gates {
			return lstmCell{}, fmt.Errorf("model: %s kernel width %d, want %d", name, len(row), gates)
		}
	}
	for _, row := range w.RecurrentKernel {
		if len(row) != gates {
			return lstmCell{}, fmt.Errorf("model: %s recurrent kernel width %d, want %d", name, len(row), gates)
		}
	}
	if len(w.Bias) != gates {
		return lstmCell{}, fmt.Errorf("model: %s bias has %d values, want %d", name, len(w.Bias), gates)
	}
	return lstmCell{units: units, LSTMWeights: w}, nil
}

// VocabularySize is the number of embedding rows.
func (m *BiLSTM) VocabularySize() int {
	return len(m.embedding)
}

// Predict implements SequenceModel.
func (m *BiLSTM) Predict(ctx context.Context, seq []int32) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for i, id := range seq {
		if id < 0 || int(id) >= len(m.embedding) {
			return 0, fmt.Errorf("token %d at position %d outside vocabulary of %d", id, i, len(m.embedding))
		}
	}

	hf := m.forward.run(m.embedding, seq, m.maskZero, false)
	hb := m.backward.run(m.embedding, seq, m.maskZero, true)

	x := make([]float64, 0, len(hf)+len(hb))
	x = append(x, hf...)
	x = append(x, hb...)

	for _, d := range m.dense {
		x = d.apply(x)
	}
	return x[0], nil
}

// run returns the final hidden state after reading seq in one direction.
// Masked (zero) steps leave the state untouched.
func (c *lstmCell) run(emb [][]float32, seq []int32, maskZero, reverse bool) []float64 {
	u := c.units
	h := make([]float64, u)
	cs := make([]float64, u)
	z := make([]float64, 4*u)

	for step := range seq {
		t := step
		if reverse {
			t = len(seq) - 1 - step
		}
		id := seq[t]
		if maskZero && id == 0 {
			continue
		}
		x := emb[id]

		for g := range z {
			z[g] = float64(c.Bias[g])
		}
		for i, xi := range x {
			if xi == 0 {
				continue
			}
			row := c.Kernel[i]
			for g := range z {
				z[g] += float64(xi) * float64(row[g])
			}
		}
		for i, hi := range h {
			if hi == 0 {
				continue
			}
			row := c.RecurrentKernel[i]
			for g := range z {
				z[g] += hi * float64(row[g])
			}
		}

		for j := 0; j < u; j++ {
			ig := sigmoid(z[j])
			fg := sigmoid(z[u+j])
			cg := math.Tanh(z[2*u+j])
			og := sigmoid(z[3*u+j])
			cs[j] = fg*cs[j] + ig*cg
			h[j] = og * math.Tanh(cs[j])
		}
	}
	return h
}

func (d *denseLayer) apply(x []float64) []float64 {
	out := make([]float64, len(d.Bias))
	for j := range out {
		sum := float64(d.Bias[j])
		for i, xi := range x {
			sum += xi * float64(d.Kernel[i][j])
		}
		out[j] = d.activation(sum)
	}
	return out
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case "sigmoid":
		return sigmoid, nil
	case "relu":
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case "tanh":
		return math.Tanh, nil
	case "linear", "":
		return func(v float64) float64 { return v }, nil
	default:
		return nil, fmt.Errorf("unsupported activation %q", name)
	}
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
