package spm

import (
	"fmt"

	"github.com/berth-dev/batchmaker/internal/mat"
)

// Options are the scalar model settings of a batch.
type Options struct {
	Derivs [2]int  // HRF time and dispersion derivative flags
	Volt   float64 // Volterra expansion order, 1 = none
	Global string  // global intensity normalisation: "None" or "Scaling"
	MThres float64 // masking threshold
	Mask   string  // explicit mask image, "" for none
	CVI    string  // serial correlation model: "AR(1)", "FAST" or "none"
}

// DefaultOptions returns the settings SPM's batch editor starts with.
func DefaultOptions() Options {
	return Options{
		Derivs: [2]int{0, 0},
		Volt:   1.0,
		Global: "None",
		MThres: 0.8,
		Mask:   "",
		CVI:    "AR(1)",
	}
}

// Batchfile is a complete first-level model specification batch.
type Batchfile struct {
	batch    *mat.Cell
	sessions int
}

// NewBatchfile assembles the fmri_spec record and wraps it the way a saved
// batch script holds it: matlabbatch{1}.spm.stats.fmri_spec.
func NewBatchfile(dir string, timing TimingParams, sess *Session, opts Options) *Batchfile {
	bases := mat.NewRecord(mat.Field{Name: "hrf", Value: mat.NewRecord(
		mat.Field{Name: "derivs", Value: mat.IntRow([]int64{int64(opts.Derivs[0]), int64(opts.Derivs[1])})},
	)})

	spec := mat.NewRecord(
		mat.Field{Name: "dir", Value: mat.Boxed(mat.String(dir))},
		mat.Field{Name: "timing", Value: timing.Record()},
		mat.Field{Name: "sess", Value: sess.Record()},
		mat.Field{Name: "fact", Value: mat.NewStruct()},
		mat.Field{Name: "bases", Value: bases},
		mat.Field{Name: "volt", Value: mat.Scalar(opts.Volt)},
		mat.Field{Name: "global", Value: mat.String(opts.Global)},
		mat.Field{Name: "mthres", Value: mat.Scalar(opts.MThres)},
		mat.Field{Name: "mask", Value: mat.Boxed(mat.String(opts.Mask))},
		mat.Field{Name: "cvi", Value: mat.String(opts.CVI)},
	)

	stats := mat.NewRecord(mat.Field{Name: "fmri_spec", Value: spec})
	spm := mat.NewRecord(mat.Field{Name: "stats", Value: stats})
	root := mat.NewRecord(mat.Field{Name: "spm", Value: spm})

	return &Batchfile{batch: mat.Boxed(root), sessions: sess.Len()}
}

// Record returns the matlabbatch cell.
func (b *Batchfile) Record() *mat.Cell { return b.batch }

// Sessions returns the number of session records in the batch.
func (b *Batchfile) Sessions() int { return b.sessions }

// Vars returns the variables of the exported file.
func (b *Batchfile) Vars() []mat.Var {
	return []mat.Var{{Name: "matlabbatch", Value: b.batch}}
}

// Path returns the file name Export writes for name.
func Path(name string) string {
	return name + ".mat"
}

// Export writes the batch to <name>.mat, replacing an existing file.
func (b *Batchfile) Export(name string, opts ...mat.Option) error {
	if err := mat.WriteFile(Path(name), b.Vars(), opts...); err != nil {
		return fmt.Errorf("exporting batch %s: %w", name, err)
	}
	return nil
}
