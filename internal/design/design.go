// Package design loads experiment design files and turns them into an SPM
// first-level batch.
package design

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/berth-dev/batchmaker/internal/spm"
)

// DefaultName is the export name used when a design does not set one.
const DefaultName = "batch"

// Design is a fully resolved design file.
type Design struct {
	Name     string
	Dir      string
	Compress bool
	HPF      float64
	Timing   spm.TimingParams
	Options  spm.Options
	Sessions []Session
}

// Session is one scanning run of a design.
type Session struct {
	Scans      []string
	MultiReg   []string
	TMod       int
	Orth       bool
	Conditions []Condition
}

// Condition is one event type of a session.
type Condition struct {
	Name      string
	Onsets    []float64
	Durations []float64
	PMod      []spm.ParametricModulation
}

func resolve(f *fileSpec, base string) (*Design, error) {
	if f.Dir == "" {
		return nil, fmt.Errorf("%w: dir is required", ErrInvalid)
	}
	if len(f.Sessions) == 0 {
		return nil, fmt.Errorf("%w: at least one session is required", ErrInvalid)
	}

	d := &Design{
		Name:    DefaultName,
		Dir:     absPath(base, f.Dir),
		HPF:     spm.FixedHPF,
		Timing:  spm.DefaultTimingParams(),
		Options: spm.DefaultOptions(),
	}

	setString(&d.Name, f.Name)
	setBool(&d.Compress, f.Compress)
	setFloat(&d.HPF, f.HPF)
	setFloat(&d.Options.Volt, f.Volt)
	setString(&d.Options.Global, f.Global)
	setFloat(&d.Options.MThres, f.MThres)
	setString(&d.Options.CVI, f.CVI)
	if f.Mask != nil && *f.Mask != "" {
		d.Options.Mask = absPath(base, *f.Mask)
	}

	if t := f.Timing; t != nil {
		setString(&d.Timing.Units, t.Units)
		setFloat(&d.Timing.RT, t.RT)
		setFloat(&d.Timing.FmriT, t.FmriT)
		setFloat(&d.Timing.FmriT0, t.FmriT0)
	}

	if f.Bases != nil && f.Bases.Derivs != nil {
		if len(f.Bases.Derivs) != 2 {
			return nil, fmt.Errorf("%w: bases.derivs needs 2 flags, got %d", ErrInvalid, len(f.Bases.Derivs))
		}
		d.Options.Derivs = [2]int{f.Bases.Derivs[0], f.Bases.Derivs[1]}
	}

	for i, ss := range f.Sessions {
		s, err := resolveSession(ss, base)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i+1, err)
		}
		d.Sessions = append(d.Sessions, s)
	}

	return d, nil
}

func resolveSession(ss sessionSpec, base string) (Session, error) {
	mod := spm.DefaultModulation()
	s := Session{TMod: mod.TMod, Orth: mod.Orth}
	if ss.TMod != nil {
		s.TMod = *ss.TMod
	}
	setBool(&s.Orth, ss.Orth)

	for _, p := range ss.Scans {
		s.Scans = append(s.Scans, absPath(base, p))
	}
	if ss.ScansGlob != "" {
		matches, err := filepath.Glob(absPath(base, ss.ScansGlob))
		if err != nil {
			return Session{}, fmt.Errorf("scans_glob %q: %w", ss.ScansGlob, err)
		}
		if len(matches) == 0 {
			return Session{}, fmt.Errorf("%w: scans_glob %q matched nothing", ErrNoScans, ss.ScansGlob)
		}
		sort.Strings(matches)
		s.Scans = append(s.Scans, matches...)
	}
	if len(s.Scans) == 0 {
		return Session{}, ErrNoScans
	}

	for _, p := range ss.MultiReg {
		s.MultiReg = append(s.MultiReg, absPath(base, p))
	}

	for _, cs := range ss.Conditions {
		c := Condition{
			Name:      cs.Name,
			Onsets:    cs.Onsets,
			Durations: cs.Durations,
		}
		// A single duration applies to every onset.
		if len(c.Durations) == 1 && len(c.Onsets) > 1 {
			c.Durations = make([]float64, len(c.Onsets))
			for i := range c.Durations {
				c.Durations[i] = cs.Durations[0]
			}
		}
		for _, ps := range cs.PMod {
			pm := spm.ParametricModulation{Name: ps.Name, Param: ps.Param, Poly: 1}
			setFloat(&pm.Poly, ps.Poly)
			c.PMod = append(c.PMod, pm)
		}
		s.Conditions = append(s.Conditions, c)
	}

	return s, nil
}

// Batchfile builds the SPM batch described by d.
func (d *Design) Batchfile() (*spm.Batchfile, error) {
	scans := make([][]string, len(d.Sessions))
	multiReg := make([][]string, len(d.Sessions))
	conds := make([]*spm.Conditions, len(d.Sessions))

	for i, s := range d.Sessions {
		names := make([]string, len(s.Conditions))
		onsets := make([][]float64, len(s.Conditions))
		durations := make([][]float64, len(s.Conditions))

		mod := spm.Modulation{TMod: s.TMod, Orth: s.Orth}
		if s.hasPMod() {
			mod.PMod = make([][]spm.ParametricModulation, len(s.Conditions))
		}
		for j, c := range s.Conditions {
			names[j] = c.Name
			onsets[j] = c.Onsets
			durations[j] = c.Durations
			if mod.PMod != nil {
				mod.PMod[j] = c.PMod
			}
		}

		c, err := spm.NewConditions(names, onsets, durations, mod)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i+1, err)
		}
		conds[i] = c
		scans[i] = s.Scans
		multiReg[i] = s.MultiReg
	}

	sess, err := spm.NewSession(scans, conds, multiReg, d.HPF)
	if err != nil {
		return nil, err
	}
	return spm.NewBatchfile(d.Dir, d.Timing, sess, d.Options), nil
}

// Warnings lists design settings that are accepted but have no effect.
func (d *Design) Warnings() []string {
	var out []string
	if d.HPF != spm.FixedHPF {
		out = append(out, fmt.Sprintf("hpf %g is ignored; every session is written with %g", d.HPF, spm.FixedHPF))
	}
	return out
}

// ConditionCount returns the number of conditions over all sessions.
func (d *Design) ConditionCount() int {
	n := 0
	for _, s := range d.Sessions {
		n += len(s.Conditions)
	}
	return n
}

func (s Session) hasPMod() bool {
	for _, c := range s.Conditions {
		if len(c.PMod) > 0 {
			return true
		}
	}
	return false
}

func absPath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
