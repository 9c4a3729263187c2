package hmm

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/corranwm/correctocr/internal/fileio"
)

// dense is the inference-time materialization of Params: a dense
// |Σ|×|Σ| matrix for tran and emis, indexed by a small-integer state
// id, per the design note in §9 ("nested dictionaries of floats ->
// dense 2D tables"). Observations share the same alphabet as states,
// so emis is square too.
type dense struct {
	states []string
	index  map[string]int
	init   []float64
	tran   *mat.Dense
	emis   *mat.Dense
}

func buildDense(p *Params) *dense {
	states := p.States()
	n := len(states)
	idx := make(map[string]int, n)
	for i, s := range states {
		idx[s] = i
	}

	initVec := make([]float64, n)
	for i, s := range states {
		initVec[i] = p.Init[s]
	}

	tran := mat.NewDense(n, n, nil)
	emis := mat.NewDense(n, n, nil)
	for i, s := range states {
		for j, t := range states {
			tran.Set(i, j, p.Tran[s][t])
			emis.Set(i, j, p.Emis[s][t])
		}
	}

	return &dense{states: states, index: idx, init: initVec, tran: tran, emis: emis}
}

// observation returns the column index of a one-rune observed
// character, or false if it falls outside the trained alphabet.
func (d *dense) observation(ch string) (int, bool) {
	i, ok := d.index[ch]
	return i, ok
}

// rowStochastic checks invariant 1 of §8: every row of init, tran and
// emis sums to 1 within tol, using gonum/floats over the dense rows.
func (d *dense) rowStochastic(tol float64) error {
	if diff := math.Abs(floats.Sum(d.init) - 1); diff > tol {
		return &fileio.ParameterError{Err: rowSumError("init", diff)}
	}
	n := len(d.states)
	for i := 0; i < n; i++ {
		if diff := math.Abs(floats.Sum(d.tran.RawRowView(i)) - 1); diff > tol {
			return &fileio.ParameterError{Err: rowSumError("tran["+d.states[i]+"]", diff)}
		}
		if diff := math.Abs(floats.Sum(d.emis.RawRowView(i)) - 1); diff > tol {
			return &fileio.ParameterError{Err: rowSumError("emis["+d.states[i]+"]", diff)}
		}
	}
	return nil
}

func rowSumError(label string, diff float64) error {
	return rowSumErr{label: label, diff: diff}
}

type rowSumErr struct {
	label string
	diff  float64
}

func (e rowSumErr) Error() string {
	return "row sum for " + e.label + " deviates from 1 by " + strconv.FormatFloat(e.diff, 'g', -1, 64)
}
