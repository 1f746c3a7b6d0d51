package spm

import (
	"fmt"

	"github.com/berth-dev/batchmaker/internal/mat"
)

// FixedHPF is the high-pass filter cutoff, in seconds, written into every
// session record. Existing batches depend on it, so the hpf argument of
// NewSession does not override it.
const FixedHPF = 128.0

var sessionFields = []string{"scans", "cond", "multi", "regress", "multi_reg", "hpf"}

// Session is the struct array of all scanning sessions of a model.
type Session struct {
	records *mat.Struct
}

// NewSession builds one session record per entry of scans. cond[i] holds the
// conditions of session i and multiReg[i] its multiple-regressor files; a nil
// multiReg leaves every session without regressor files.
//
// hpf is accepted for callers that carry a cutoff around, but every record
// gets FixedHPF.
func NewSession(scans [][]string, cond []*Conditions, multiReg [][]string, hpf float64) (*Session, error) {
	if len(cond) != len(scans) {
		return nil, fmt.Errorf("%w: %d scan lists, %d condition sets", ErrLengthMismatch, len(scans), len(cond))
	}
	if multiReg != nil && len(multiReg) != len(scans) {
		return nil, fmt.Errorf("%w: %d scan lists, %d regressor lists", ErrLengthMismatch, len(scans), len(multiReg))
	}

	records := mat.NewStruct(sessionFields...)
	for i := range scans {
		if cond[i] == nil {
			return nil, fmt.Errorf("session %d: nil conditions", i+1)
		}

		var regs []string
		if multiReg != nil {
			regs = multiReg[i]
		}

		records.Append(
			// One path per row: SPM reads scans as an n x 1 cellstr.
			mat.Strings(scans[i], true),
			cond[i].Record(),
			mat.Boxed(mat.String("")),
			mat.NewStruct(),
			mat.Strings(regs, false),
			mat.Scalar(FixedHPF),
		)
	}

	return &Session{records: records}, nil
}

// Len returns the number of sessions.
func (s *Session) Len() int { return s.records.Len() }

// Record returns the session struct array.
func (s *Session) Record() *mat.Struct { return s.records }
