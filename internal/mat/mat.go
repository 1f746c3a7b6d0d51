// Package mat reads and writes MATLAB Level 5 MAT-files.
// Values are explicit typed arrays (double, int64, char, cell, struct) so the
// exact class and dimensions of every element written are visible in Go code.
package mat

import (
	"fmt"
	"unicode/utf8"
)

// Class is the MATLAB array class stored in an array's flags subelement.
type Class uint8

// Array classes. Only the ones batchmaker writes or reads are listed.
const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
)

func (c Class) String() string {
	switch c {
	case ClassCell:
		return "cell"
	case ClassStruct:
		return "struct"
	case ClassObject:
		return "object"
	case ClassChar:
		return "char"
	case ClassSparse:
		return "sparse"
	case ClassDouble:
		return "double"
	case ClassSingle:
		return "single"
	case ClassInt8:
		return "int8"
	case ClassUint8:
		return "uint8"
	case ClassInt16:
		return "int16"
	case ClassUint16:
		return "uint16"
	case ClassInt32:
		return "int32"
	case ClassUint32:
		return "uint32"
	case ClassInt64:
		return "int64"
	case ClassUint64:
		return "uint64"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Value is one MATLAB array.
type Value interface {
	Class() Class
	Dims() []int
}

// Var is a named top-level variable of a MAT-file.
type Var struct {
	Name  string
	Value Value
}

// Double is a real double-precision array stored in column-major order.
type Double struct {
	Size []int
	Data []float64
}

func (d *Double) Class() Class { return ClassDouble }
func (d *Double) Dims() []int  { return d.Size }

// Scalar returns a 1x1 double.
func Scalar(v float64) *Double {
	return &Double{Size: []int{1, 1}, Data: []float64{v}}
}

// Column returns an n x 1 double. An empty slice gives a 0x0 array.
func Column(vals []float64) *Double {
	data := append([]float64(nil), vals...)
	return &Double{Size: vectorDims(len(data), true), Data: data}
}

// Value returns the single element of a 1x1 array.
func (d *Double) Value() (float64, bool) {
	if len(d.Data) != 1 {
		return 0, false
	}
	return d.Data[0], true
}

// Int64 is an int64 array. Integer classes other than int64 are widened to
// it on read; Stored keeps the class that was found in the file.
type Int64 struct {
	Size   []int
	Data   []int64
	Stored Class
}

func (a *Int64) Class() Class {
	if a.Stored != 0 {
		return a.Stored
	}
	return ClassInt64
}

func (a *Int64) Dims() []int { return a.Size }

// IntScalar returns a 1x1 int64.
func IntScalar(v int64) *Int64 {
	return &Int64{Size: []int{1, 1}, Data: []int64{v}}
}

// IntRow returns a 1 x n int64. An empty slice gives a 0x0 array.
func IntRow(vals []int64) *Int64 {
	data := append([]int64(nil), vals...)
	return &Int64{Size: vectorDims(len(data), false), Data: data}
}

// Value returns the single element of a 1x1 array.
func (a *Int64) Value() (int64, bool) {
	if len(a.Data) != 1 {
		return 0, false
	}
	return a.Data[0], true
}

// Char is a character array. Writers emit a 1 x len row, or 0x0 when empty.
// Multi-row arrays read from a file have their rows joined by newlines.
type Char struct {
	Text string
}

func (c *Char) Class() Class { return ClassChar }

func (c *Char) Dims() []int {
	return vectorDims(utf8.RuneCountInString(c.Text), false)
}

// String returns a char row holding s.
func String(s string) *Char {
	return &Char{Text: s}
}

// Cell is a cell array with elements in column-major order.
type Cell struct {
	Size  []int
	Elems []Value
}

func (c *Cell) Class() Class { return ClassCell }
func (c *Cell) Dims() []int  { return c.Size }

// Len returns the number of elements.
func (c *Cell) Len() int { return len(c.Elems) }

// At returns the i-th element in column-major order.
func (c *Cell) At(i int) Value { return c.Elems[i] }

// Boxed wraps v in a 1x1 cell.
func Boxed(v Value) *Cell {
	return &Cell{Size: []int{1, 1}, Elems: []Value{v}}
}

// CellColumn returns an n x 1 cell. An empty slice gives a 0x0 cell.
func CellColumn(vals []Value) *Cell {
	return &Cell{Size: vectorDims(len(vals), true), Elems: append([]Value(nil), vals...)}
}

// CellRow returns a 1 x n cell. An empty slice gives a 0x0 cell.
func CellRow(vals []Value) *Cell {
	return &Cell{Size: vectorDims(len(vals), false), Elems: append([]Value(nil), vals...)}
}

// Strings returns a cell of chars, as a column or a row.
func Strings(vals []string, column bool) *Cell {
	elems := make([]Value, len(vals))
	for i, s := range vals {
		elems[i] = String(s)
	}
	if column {
		return CellColumn(elems)
	}
	return CellRow(elems)
}

// Field is one named member of a struct record.
type Field struct {
	Name  string
	Value Value
}

// Struct is a struct array. Elems[i][j] holds field Fields[j] of element i,
// elements in column-major order.
type Struct struct {
	Size   []int
	Fields []string
	Elems  [][]Value
}

func (s *Struct) Class() Class { return ClassStruct }
func (s *Struct) Dims() []int  { return s.Size }

// NewStruct returns an empty 0x0 struct array with the given fields.
// With no fields it is the fieldless empty struct.
func NewStruct(fields ...string) *Struct {
	return &Struct{Size: []int{0, 0}, Fields: append([]string(nil), fields...)}
}

// NewRecord returns a 1x1 struct built from fields in order.
func NewRecord(fields ...Field) *Struct {
	s := &Struct{Size: []int{1, 1}}
	row := make([]Value, len(fields))
	for i, f := range fields {
		s.Fields = append(s.Fields, f.Name)
		row[i] = f.Value
	}
	s.Elems = [][]Value{row}
	return s
}

// Append adds one element to a row struct array. values must be given in
// field order; a count mismatch is a programming error and panics.
func (s *Struct) Append(values ...Value) {
	if len(values) != len(s.Fields) {
		panic(fmt.Sprintf("mat: Append got %d values for %d fields", len(values), len(s.Fields)))
	}
	s.Elems = append(s.Elems, append([]Value(nil), values...))
	s.Size = []int{1, len(s.Elems)}
}

// Len returns the number of elements.
func (s *Struct) Len() int { return len(s.Elems) }

// Get returns field name of element i.
func (s *Struct) Get(i int, name string) (Value, bool) {
	if i < 0 || i >= len(s.Elems) {
		return nil, false
	}
	for j, f := range s.Fields {
		if f == name {
			return s.Elems[i][j], true
		}
	}
	return nil, false
}

// vectorDims follows scipy's oned_as="row" rule: a zero-length vector is 0x0.
func vectorDims(n int, column bool) []int {
	switch {
	case n == 0:
		return []int{0, 0}
	case column:
		return []int{n, 1}
	default:
		return []int{1, n}
	}
}

func numel(dims []int) int {
	if len(dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
