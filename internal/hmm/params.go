// Package hmm implements the probabilistic character-level model of
// §4.3/§4.4: HMMBuilder constructs the three probability tables from
// aligned training data, and HMM answers k-best decode queries over
// them via a beam-pruned search with optional multi-character retry
// and a persisted LRU cache.
package hmm

import (
	"encoding/json"
	"sort"

	"github.com/corranwm/correctocr/internal/fileio"
)

// Params is the on-disk HMM parameter tuple: init, tran, emis, each a
// mapping keyed by single-character state strings, per §6's stable
// file format.
type Params struct {
	Init map[string]float64
	Tran map[string]map[string]float64
	Emis map[string]map[string]float64
}

// MarshalJSON renders Params as the three-element array
// [init, tran, emis] the external format requires.
func (p *Params) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{p.Init, p.Tran, p.Emis})
}

// UnmarshalJSON reads the three-element array form back into Params.
func (p *Params) UnmarshalJSON(data []byte) error {
	var arr [3]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[0], &p.Init); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[1], &p.Tran); err != nil {
		return err
	}
	return json.Unmarshal(arr[2], &p.Emis)
}

// States returns the outer key set of Init, sorted, which by the
// structural invariant also equals the outer key sets of Tran and
// Emis.
func (p *Params) States() []string {
	out := make([]string, 0, len(p.Init))
	for s := range p.Init {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ParameterCheck enforces the structural invariant of §3: the three
// tables share an outer key set, and every inner Tran row has that
// same key set (Tran is square). Run before every Save, per §4.3.
func (p *Params) ParameterCheck() error {
	initKeys := keySet(p.Init)
	tranKeys := keySetOfMap(p.Tran)
	emisKeys := keySetOfMap(p.Emis)

	if !setsEqual(initKeys, tranKeys) || !setsEqual(initKeys, emisKeys) {
		return &fileio.ParameterError{Err: errMismatchedKeys}
	}
	for s, row := range p.Tran {
		if !setsEqual(keySet(row), initKeys) {
			return &fileio.ParameterError{Err: errNotSquare(s)}
		}
	}
	return nil
}

func keySet(m map[string]float64) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func keySetOfMap(m map[string]map[string]float64) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
