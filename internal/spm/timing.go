// Package spm builds the records of an SPM first-level model specification
// batch (matlabbatch{1}.spm.stats.fmri_spec) and exports them as a MAT-file.
//
// Each builder freezes its inputs into mat values at construction time.
// The field names, classes and shapes are the ones SPM's batch loader
// reads without further checking.
package spm

import "github.com/berth-dev/batchmaker/internal/mat"

// TimingParams holds the design timing settings.
type TimingParams struct {
	Units  string  // units for design: "secs" or "scans"
	RT     float64 // interscan interval in seconds
	FmriT  float64 // microtime resolution (time bins per scan)
	FmriT0 float64 // microtime onset (reference time bin)
}

// DefaultTimingParams returns the timing SPM uses when nothing is set.
func DefaultTimingParams() TimingParams {
	return TimingParams{
		Units:  "secs",
		RT:     2.0,
		FmriT:  16.0,
		FmriT0: 8.0,
	}
}

// Record returns the 1x1 timing struct.
func (t TimingParams) Record() *mat.Struct {
	return mat.NewRecord(
		mat.Field{Name: "units", Value: mat.String(t.Units)},
		mat.Field{Name: "RT", Value: mat.Scalar(t.RT)},
		mat.Field{Name: "fmri_t", Value: mat.Scalar(t.FmriT)},
		mat.Field{Name: "fmri_t0", Value: mat.Scalar(t.FmriT0)},
	)
}
