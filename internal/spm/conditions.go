package spm

import (
	"fmt"

	"github.com/berth-dev/batchmaker/internal/mat"
)

var (
	conditionFields  = []string{"name", "onset", "duration", "tmod", "pmod", "orth"}
	modulationFields = []string{"name", "param", "poly"}
)

// ParametricModulation is one parametric modulator of a condition.
type ParametricModulation struct {
	Name  string
	Param []float64 // one value per onset
	Poly  float64   // polynomial expansion order
}

// Modulation carries the modulation settings of one NewConditions call.
// TMod and Orth apply to every condition of the call.
type Modulation struct {
	// PMod holds the parametric modulators of each condition, indexed like
	// the condition names. Nil means no parametric modulation.
	PMod [][]ParametricModulation
	TMod int
	Orth bool
}

// DefaultModulation returns no parametric or time modulation with
// orthogonalisation switched on.
func DefaultModulation() Modulation {
	return Modulation{TMod: 0, Orth: true}
}

// Conditions is the struct array of the conditions of one session.
type Conditions struct {
	records *mat.Struct
}

// NewConditions builds one condition record per name. onsets[i] and
// durations[i] are the event onsets and durations of condition i.
func NewConditions(names []string, onsets, durations [][]float64, mod Modulation) (*Conditions, error) {
	if len(onsets) != len(names) || len(durations) != len(names) {
		return nil, fmt.Errorf("%w: %d names, %d onset lists, %d duration lists",
			ErrLengthMismatch, len(names), len(onsets), len(durations))
	}
	if mod.PMod != nil && len(mod.PMod) != len(names) {
		return nil, fmt.Errorf("%w: %d names, %d parametric modulation lists",
			ErrLengthMismatch, len(names), len(mod.PMod))
	}

	orth := int64(0)
	if mod.Orth {
		orth = 1
	}

	records := mat.NewStruct(conditionFields...)
	for i, name := range names {
		if len(onsets[i]) != len(durations[i]) {
			return nil, fmt.Errorf("condition %s: %w: %d onsets, %d durations",
				name, ErrLengthMismatch, len(onsets[i]), len(durations[i]))
		}

		pmod := mat.NewStruct()
		if mod.PMod != nil {
			var err error
			pmod, err = modulationRecords(mod.PMod[i], len(onsets[i]))
			if err != nil {
				return nil, fmt.Errorf("condition %s: %w", name, err)
			}
		}

		records.Append(
			mat.String(name),
			mat.Column(onsets[i]),
			mat.Column(durations[i]),
			mat.IntScalar(int64(mod.TMod)),
			pmod,
			mat.IntScalar(orth),
		)
	}

	return &Conditions{records: records}, nil
}

// modulationRecords builds the pmod struct array of one condition. An empty
// list still yields a struct array with the modulator fields.
func modulationRecords(pmods []ParametricModulation, nOnsets int) (*mat.Struct, error) {
	records := mat.NewStruct(modulationFields...)
	for _, pm := range pmods {
		if len(pm.Param) != nOnsets {
			return nil, fmt.Errorf("modulator %s: %w: %d values for %d onsets",
				pm.Name, ErrLengthMismatch, len(pm.Param), nOnsets)
		}
		records.Append(
			mat.String(pm.Name),
			mat.Column(pm.Param),
			mat.Scalar(pm.Poly),
		)
	}
	return records, nil
}

// Len returns the number of conditions.
func (c *Conditions) Len() int { return c.records.Len() }

// Record returns the condition struct array.
func (c *Conditions) Record() *mat.Struct { return c.records }
