package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/berth-dev/batchmaker/internal/mat"
)

func TestRenderValuePlain(t *testing.T) {
	cond := mat.NewStruct("name", "onset")
	cond.Append(mat.String("faces"), mat.Column([]float64{0, 20, 40}))
	cond.Append(mat.String("houses"), mat.Column(nil))

	root := mat.Boxed(mat.NewRecord(
		mat.Field{Name: "RT", Value: mat.Scalar(2.5)},
		mat.Field{Name: "cond", Value: cond},
		mat.Field{Name: "fact", Value: mat.NewStruct()},
		mat.Field{Name: "derivs", Value: mat.IntRow([]int64{0, 1})},
	))

	var buf bytes.Buffer
	if err := RenderValue(&buf, "matlabbatch", root, false); err != nil {
		t.Fatalf("RenderValue failed: %v", err)
	}

	want := `matlabbatch: cell [1x1]
  {1}: struct [1x1]
    RT: 2.5
    cond: struct [1x2]
      (1)
        name: "faces"
        onset: double [3x1] [0 20 40]
      (2)
        name: "houses"
        onset: double [0x0]
    fact: struct [0x0] {no fields}
    derivs: int64 [1x2] [0 1]
`
	if got := buf.String(); got != want {
		t.Errorf("tree mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderElidesLongArrays(t *testing.T) {
	vals := make([]float64, 20)
	var buf bytes.Buffer
	if err := RenderValue(&buf, "x", mat.Column(vals), false); err != nil {
		t.Fatalf("RenderValue failed: %v", err)
	}
	if !strings.Contains(buf.String(), "(12 more)") {
		t.Errorf("expected elision marker, got %q", buf.String())
	}
}

func TestRenderSummaryPlain(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSummary(&buf, Summary{
		Name:       "sub01",
		Path:       "sub01.mat",
		Sessions:   2,
		Conditions: 3,
		Bytes:      1024,
		Warnings:   []string{"hpf 96 is ignored"},
	}, false)
	if err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"sub01.mat", "sessions    2", "1024 bytes", "compression none", "Warning: hpf 96 is ignored"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
