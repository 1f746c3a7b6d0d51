package design

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/berth-dev/batchmaker/internal/mat"
	"github.com/berth-dev/batchmaker/internal/spm"
	"github.com/berth-dev/batchmaker/internal/testutil"
)

func TestLoadYAML(t *testing.T) {
	dir := testutil.TempProject(t, testutil.YAMLProject())

	d, err := Load(filepath.Join(dir, "design.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if d.Name != "sub01_glm" {
		t.Errorf("Name: got %q, want sub01_glm", d.Name)
	}
	if want := filepath.Join(dir, "out", "glm"); d.Dir != want {
		t.Errorf("Dir: got %q, want %q", d.Dir, want)
	}
	if d.Timing.RT != 2.5 {
		t.Errorf("RT: got %v, want 2.5", d.Timing.RT)
	}
	if d.Timing.FmriT != 16 || d.Timing.FmriT0 != 8 {
		t.Errorf("microtime defaults: got %v/%v, want 16/8", d.Timing.FmriT, d.Timing.FmriT0)
	}
	if d.Options.CVI != "FAST" {
		t.Errorf("CVI: got %q, want FAST", d.Options.CVI)
	}
	if d.Options.Global != "None" || d.Options.MThres != 0.8 || d.Options.Volt != 1 {
		t.Errorf("option defaults not applied: %+v", d.Options)
	}
	if len(d.Sessions) != 2 {
		t.Fatalf("sessions: got %d, want 2", len(d.Sessions))
	}

	s1 := d.Sessions[0]
	if len(s1.Scans) != 4 {
		t.Errorf("session 1 scans: got %d, want 4", len(s1.Scans))
	}
	if !strings.HasSuffix(s1.Scans[0], filepath.Join("run1", "vol_001.nii")) {
		t.Errorf("glob order: first scan %q", s1.Scans[0])
	}
	if !s1.Orth {
		t.Error("session 1 orth: want default true")
	}
	faces := s1.Conditions[0]
	if len(faces.Durations) != 3 || faces.Durations[2] != 5 {
		t.Errorf("single duration not expanded: %v", faces.Durations)
	}
	if len(faces.PMod) != 1 || faces.PMod[0].Poly != 1 {
		t.Errorf("pmod: got %+v, want one modulator with poly 1", faces.PMod)
	}

	if d.Sessions[1].Orth {
		t.Error("session 2 orth: want false")
	}
	if d.ConditionCount() != 3 {
		t.Errorf("ConditionCount: got %d, want 3", d.ConditionCount())
	}
	if w := d.Warnings(); len(w) != 0 {
		t.Errorf("Warnings: got %v, want none", w)
	}
}

func TestLoadHCL(t *testing.T) {
	dir := testutil.TempProject(t, testutil.HCLProject())

	d, err := Load(filepath.Join(dir, "design.hcl"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if d.Dir != "/data/sub02/glm" {
		t.Errorf("Dir: got %q", d.Dir)
	}
	if d.Timing.RT != 1.5 || d.Timing.Units != "secs" {
		t.Errorf("timing: got %+v", d.Timing)
	}
	if d.Options.Derivs != [2]int{1, 0} {
		t.Errorf("derivs: got %v, want [1 0]", d.Options.Derivs)
	}

	s := d.Sessions[0]
	if s.TMod != 1 {
		t.Errorf("tmod: got %d, want 1", s.TMod)
	}
	task := s.Conditions[0]
	if task.Name != "task" {
		t.Errorf("condition label: got %q, want task", task.Name)
	}
	want := []float64{0, 20, 40}
	if len(task.Onsets) != len(want) {
		t.Fatalf("range onsets: got %v, want %v", task.Onsets, want)
	}
	for i := range want {
		if task.Onsets[i] != want[i] {
			t.Errorf("onset %d: got %v, want %v", i, task.Onsets[i], want[i])
		}
	}
	if task.PMod[0].Name != "load" || task.PMod[0].Poly != 2 {
		t.Errorf("pmod: got %+v", task.PMod[0])
	}

	if w := d.Warnings(); len(w) != 1 || !strings.Contains(w[0], "hpf 96") {
		t.Errorf("Warnings: got %v, want the ignored hpf", w)
	}
}

func TestDesignBatchfile(t *testing.T) {
	dir := testutil.TempProject(t, testutil.YAMLProject())
	d, err := Load(filepath.Join(dir, "design.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	b, err := d.Batchfile()
	if err != nil {
		t.Fatalf("Batchfile failed: %v", err)
	}
	if b.Sessions() != 2 {
		t.Errorf("sessions: got %d, want 2", b.Sessions())
	}

	// Session 1 mixes a modulated and an unmodulated condition: the second
	// still gets the modulator fields, session 2 gets fieldless pmods.
	houses, err := mat.Lookup(b.Record(), "spm.stats.fmri_spec.sess[0].cond[1].pmod")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if s := houses.(*mat.Struct); s.Len() != 0 || len(s.Fields) != 3 {
		t.Errorf("houses pmod: got %d elements, fields %v", s.Len(), s.Fields)
	}
	plain, err := mat.Lookup(b.Record(), "spm.stats.fmri_spec.sess[1].cond.pmod")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if s := plain.(*mat.Struct); len(s.Fields) != 0 {
		t.Errorf("session 2 pmod fields: got %v, want none", s.Fields)
	}

	orth, err := mat.Lookup(b.Record(), "spm.stats.fmri_spec.sess[1].cond.orth")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if v, _ := orth.(*mat.Int64).Value(); v != 0 {
		t.Errorf("session 2 orth: got %d, want 0", v)
	}
}

func TestBatchfileLengthMismatch(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{
		"design.yaml": `dir: /out
sessions:
  - scans: [a.nii]
    conditions:
      - name: c
        onsets: [1, 2, 3]
        durations: [1, 1]
`,
	})
	d, err := Load(filepath.Join(dir, "design.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := d.Batchfile(); !errors.Is(err, spm.ErrLengthMismatch) {
		t.Errorf("error: got %v, want ErrLengthMismatch", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		body  string
		want  error
		match string
	}{
		{"unknown extension", "design.toml", "dir = 1", ErrUnknownFormat, ""},
		{"missing dir", "design.yaml", "sessions:\n  - scans: [a.nii]\n", ErrInvalid, ""},
		{"no sessions", "design.yaml", "dir: /out\n", ErrInvalid, ""},
		{"empty file", "design.yaml", "", ErrInvalid, ""},
		{"no scans", "design.yaml", "dir: /out\nsessions:\n  - conditions: []\n", ErrNoScans, ""},
		{"glob without match", "design.yaml", "dir: /out\nsessions:\n  - scans_glob: none/*.nii\n", ErrNoScans, ""},
		{"bad derivs", "design.yaml", "dir: /out\nbases:\n  derivs: [1]\nsessions:\n  - scans: [a.nii]\n", ErrInvalid, ""},
		{"unknown key", "design.yaml", "dir: /out\nrepetition: 2\nsessions:\n  - scans: [a.nii]\n", nil, "repetition"},
		{"hcl missing dir", "design.hcl", "session {\n  scans = [\"a.nii\"]\n}\n", nil, "dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.TempProject(t, map[string]string{tt.file: tt.body})
			_, err := Load(filepath.Join(dir, tt.file))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
			if tt.match != "" && !strings.Contains(err.Error(), tt.match) {
				t.Errorf("error %q does not mention %q", err, tt.match)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error: got %v, want os.ErrNotExist", err)
	}
}
