// Package ui provides terminal output for batchmaker.
// This file renders decoded MAT-file values as an indented tree.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/berth-dev/batchmaker/internal/mat"
)

// maxInline is the number of numeric elements printed before eliding.
const maxInline = 8

// RenderVars writes every variable of a file as a tree.
func RenderVars(w io.Writer, vars []mat.Var, styled bool) error {
	for _, v := range vars {
		if err := RenderValue(w, v.Name, v.Value, styled); err != nil {
			return err
		}
	}
	return nil
}

// RenderValue writes v and its children, one line per node.
func RenderValue(w io.Writer, name string, v mat.Value, styled bool) error {
	var b strings.Builder
	r := treeRenderer{painter: painter{styled: styled}, b: &b}
	r.node(0, name, v)
	_, err := io.WriteString(w, b.String())
	return err
}

type treeRenderer struct {
	painter
	b *strings.Builder
}

func (r treeRenderer) line(depth int, label, rest string) {
	r.b.WriteString(strings.Repeat("  ", depth))
	r.b.WriteString(label)
	if rest != "" {
		r.b.WriteString(": ")
		r.b.WriteString(rest)
	}
	r.b.WriteByte('\n')
}

func (r treeRenderer) node(depth int, name string, v mat.Value) {
	label := r.paint(nameStyle, name)
	kind := r.paint(dimStyle, fmt.Sprintf("%s [%s]", v.Class(), dimString(v.Dims())))

	switch a := v.(type) {
	case *mat.Char:
		r.line(depth, label, r.paint(valueStyle, strconv.Quote(a.Text)))
	case *mat.Double:
		r.line(depth, label, r.numbers(kind, len(a.Data), func(i int) string {
			return strconv.FormatFloat(a.Data[i], 'g', -1, 64)
		}))
	case *mat.Int64:
		r.line(depth, label, r.numbers(kind, len(a.Data), func(i int) string {
			return strconv.FormatInt(a.Data[i], 10)
		}))
	case *mat.Cell:
		r.line(depth, label, kind)
		for i, e := range a.Elems {
			r.node(depth+1, fmt.Sprintf("{%d}", i+1), e)
		}
	case *mat.Struct:
		if len(a.Elems) == 0 {
			fields := "no fields"
			if len(a.Fields) > 0 {
				fields = strings.Join(a.Fields, ", ")
			}
			r.line(depth, label, kind+" "+r.paint(dimStyle, "{"+fields+"}"))
			return
		}
		r.line(depth, label, kind)
		if len(a.Elems) == 1 {
			r.fields(depth+1, a, 0)
			return
		}
		for i := range a.Elems {
			r.line(depth+1, r.paint(dimStyle, fmt.Sprintf("(%d)", i+1)), "")
			r.fields(depth+2, a, i)
		}
	default:
		r.line(depth, label, kind)
	}
}

func (r treeRenderer) fields(depth int, s *mat.Struct, i int) {
	for j, f := range s.Fields {
		r.node(depth, f, s.Elems[i][j])
	}
}

// numbers prints a scalar bare and longer arrays with their class and size.
func (r treeRenderer) numbers(kind string, n int, format func(int) string) string {
	if n == 1 {
		return r.paint(valueStyle, format(0))
	}
	if n == 0 {
		return kind
	}
	shown := n
	if shown > maxInline {
		shown = maxInline
	}
	parts := make([]string, shown)
	for i := range parts {
		parts[i] = format(i)
	}
	list := strings.Join(parts, " ")
	if shown < n {
		list += fmt.Sprintf(" … (%d more)", n-shown)
	}
	return kind + " " + r.paint(valueStyle, "["+list+"]")
}

func dimString(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}
