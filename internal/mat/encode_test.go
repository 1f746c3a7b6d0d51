package mat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedTime = time.Date(2024, time.March, 5, 9, 7, 3, 0, time.UTC)

func encode(t *testing.T, vars []Var, opts ...Option) []byte {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]Option{WithCreated(fixedTime)}, opts...)
	if err := Write(&buf, vars, opts...); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.Bytes()
}

func TestHeaderLayout(t *testing.T) {
	data := encode(t, nil)

	if len(data) != headerSize {
		t.Fatalf("header length: got %d, want %d", len(data), headerSize)
	}
	text := string(data[:headerTextSize])
	if !strings.HasPrefix(text, "MATLAB 5.0 MAT-file Platform: ") {
		t.Errorf("header text: got %q", text)
	}
	if !strings.Contains(text, "Created on: Tue Mar  5 09:07:03 2024") {
		t.Errorf("header timestamp missing: %q", text)
	}
	if !bytes.Equal(data[116:124], make([]byte, 8)) {
		t.Errorf("subsystem offset: got %v, want zeros", data[116:124])
	}
	if data[124] != 0x00 || data[125] != 0x01 {
		t.Errorf("version bytes: got %x %x, want 00 01", data[124], data[125])
	}
	if string(data[126:128]) != "IM" {
		t.Errorf("endian indicator: got %q, want IM", data[126:128])
	}
}

func TestScalarElementLayout(t *testing.T) {
	data := encode(t, []Var{{Name: "x", Value: Scalar(2.5)}})

	if len(data) != headerSize+8+56 {
		t.Fatalf("file length: got %d, want %d", len(data), headerSize+8+56)
	}
	b := data[headerSize:]
	le := binary.LittleEndian

	if got := le.Uint32(b[0:]); got != miMATRIX {
		t.Errorf("matrix tag: got %d, want %d", got, miMATRIX)
	}
	if got := le.Uint32(b[4:]); got != 56 {
		t.Errorf("matrix size: got %d, want 56", got)
	}
	if got := le.Uint32(b[16:]); got != uint32(ClassDouble) {
		t.Errorf("class: got %d, want %d", got, ClassDouble)
	}
	if got := le.Uint32(b[32:]); got != 1 || le.Uint32(b[36:]) != 1 {
		t.Errorf("dims: got %dx%d, want 1x1", got, le.Uint32(b[36:]))
	}
	// Name uses the small element format.
	if got := le.Uint32(b[40:]); got != 1<<16|miINT8 {
		t.Errorf("small name tag: got %#x", got)
	}
	if b[44] != 'x' {
		t.Errorf("name byte: got %q, want 'x'", b[44])
	}
	if got := math.Float64frombits(le.Uint64(b[56:])); got != 2.5 {
		t.Errorf("value: got %v, want 2.5", got)
	}
}

func TestRoundTripNested(t *testing.T) {
	pmod := NewStruct("name", "param", "poly")
	pmod.Append(String("rt"), Column([]float64{0.5, 0.7}), Scalar(1))

	cond := NewStruct("name", "onset", "duration", "tmod", "pmod", "orth")
	cond.Append(String("faces"), Column([]float64{0, 10}), Column([]float64{1, 1}), IntScalar(0), pmod, IntScalar(1))
	cond.Append(String("houses"), Column(nil), Column(nil), IntScalar(0), NewStruct(), IntScalar(1))

	root := Boxed(NewRecord(
		Field{Name: "dir", Value: Boxed(String("/data/out"))},
		Field{Name: "cond", Value: cond},
		Field{Name: "scans", Value: Strings([]string{"a.nii", "b.nii"}, true)},
		Field{Name: "derivs", Value: IntRow([]int64{1, 0})},
	))

	f, err := Read(bytes.NewReader(encode(t, []Var{{Name: "matlabbatch", Value: root}})))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	got, ok := f.Get("matlabbatch")
	if !ok {
		t.Fatal("matlabbatch variable missing")
	}
	assertValueEqual(t, "matlabbatch", got, root)
}

func TestRoundTripCompressed(t *testing.T) {
	vars := []Var{
		{Name: "a", Value: Column([]float64{1, 2, 3})},
		{Name: "b", Value: String("AR(1)")},
	}
	data := encode(t, vars, WithCompression())

	if got := binary.LittleEndian.Uint32(data[headerSize:]); got != miCOMPRESSED {
		t.Fatalf("first element type: got %d, want %d", got, miCOMPRESSED)
	}

	f, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(f.Vars) != 2 {
		t.Fatalf("vars: got %d, want 2", len(f.Vars))
	}
	for i, v := range vars {
		if f.Vars[i].Name != v.Name {
			t.Errorf("var %d name: got %q, want %q", i, f.Vars[i].Name, v.Name)
		}
		assertValueEqual(t, v.Name, f.Vars[i].Value, v.Value)
	}
}

func TestEmptyValueDims(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		class Class
	}{
		{"empty column", Column(nil), ClassDouble},
		{"empty string", String(""), ClassChar},
		{"empty cell", Strings(nil, true), ClassCell},
		{"fieldless struct", NewStruct(), ClassStruct},
		{"empty int row", IntRow(nil), ClassInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Read(bytes.NewReader(encode(t, []Var{{Name: "v", Value: tt.value}})))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			v := f.Vars[0].Value
			if v.Class() != tt.class {
				t.Errorf("class: got %s, want %s", v.Class(), tt.class)
			}
			if d := v.Dims(); len(d) != 2 || d[0] != 0 || d[1] != 0 {
				t.Errorf("dims: got %v, want [0 0]", d)
			}
		})
	}
}

func TestWriteRejectsLongFieldName(t *testing.T) {
	long := strings.Repeat("f", maxFieldNameLen)
	var buf bytes.Buffer
	err := Write(&buf, []Var{{Name: "s", Value: NewRecord(Field{Name: long, Value: Scalar(1)})}})
	if err == nil {
		t.Fatal("expected error for over-long field name")
	}
}

func TestWriteRejectsShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	bad := &Double{Size: []int{2, 2}, Data: []float64{1}}
	if err := Write(&buf, []Var{{Name: "d", Value: bad}}); err == nil {
		t.Fatal("expected error for element count mismatch")
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mat")

	if err := WriteFile(path, []Var{{Name: "x", Value: Scalar(1)}}); err != nil {
		t.Fatalf("first WriteFile failed: %v", err)
	}
	if err := WriteFile(path, []Var{{Name: "y", Value: Scalar(2)}}); err != nil {
		t.Fatalf("second WriteFile failed: %v", err)
	}

	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if _, ok := f.Get("x"); ok {
		t.Error("variable from first write should be gone")
	}
	if _, ok := f.Get("y"); !ok {
		t.Error("variable from second write missing")
	}
}

func TestWriteFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.mat")
	err := WriteFile(path, []Var{{Name: "x", Value: Scalar(1)}})
	if err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
	if errors.Is(err, ErrNotMATFile) {
		t.Errorf("unexpected sentinel in %v", err)
	}
}

// assertValueEqual compares two values structurally.
func assertValueEqual(t *testing.T, path string, got, want Value) {
	t.Helper()
	if got.Class() != want.Class() {
		t.Fatalf("%s: class got %s, want %s", path, got.Class(), want.Class())
	}
	if gd, wd := got.Dims(), want.Dims(); !equalInts(gd, wd) {
		t.Fatalf("%s: dims got %v, want %v", path, gd, wd)
	}

	switch w := want.(type) {
	case *Double:
		g := got.(*Double)
		for i := range w.Data {
			if g.Data[i] != w.Data[i] {
				t.Errorf("%s[%d]: got %v, want %v", path, i, g.Data[i], w.Data[i])
			}
		}
	case *Int64:
		g := got.(*Int64)
		for i := range w.Data {
			if g.Data[i] != w.Data[i] {
				t.Errorf("%s[%d]: got %v, want %v", path, i, g.Data[i], w.Data[i])
			}
		}
	case *Char:
		if g := got.(*Char); g.Text != w.Text {
			t.Errorf("%s: got %q, want %q", path, g.Text, w.Text)
		}
	case *Cell:
		g := got.(*Cell)
		for i := range w.Elems {
			assertValueEqual(t, path+"{}", g.Elems[i], w.Elems[i])
		}
	case *Struct:
		g := got.(*Struct)
		if len(g.Fields) != len(w.Fields) {
			t.Fatalf("%s: fields got %v, want %v", path, g.Fields, w.Fields)
		}
		for j := range w.Fields {
			if g.Fields[j] != w.Fields[j] {
				t.Errorf("%s: field %d got %q, want %q", path, j, g.Fields[j], w.Fields[j])
			}
		}
		for i := range w.Elems {
			for j, f := range w.Fields {
				assertValueEqual(t, path+"."+f, g.Elems[i][j], w.Elems[i][j])
			}
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
