package ui

import (
	"fmt"
	"io"
	"strings"
)

// Summary describes one exported batch.
type Summary struct {
	Name       string
	Path       string
	Dir        string
	Sessions   int
	Conditions int
	Bytes      int64
	Compressed bool
	Warnings   []string
}

// RenderSummary writes the result of a build. Styled output is boxed.
func RenderSummary(w io.Writer, s Summary, styled bool) error {
	p := painter{styled: styled}

	compression := "none"
	if s.Compressed {
		compression = "zlib"
	}

	rows := [][2]string{
		{"batch", s.Name},
		{"file", s.Path},
		{"spm dir", s.Dir},
		{"sessions", fmt.Sprint(s.Sessions)},
		{"conditions", fmt.Sprint(s.Conditions)},
		{"size", fmt.Sprintf("%d bytes", s.Bytes)},
		{"compression", compression},
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s", p.paint(dimStyle, fmt.Sprintf("%-11s", row[0])), p.paint(valueStyle, row[1]))
	}

	out := b.String()
	if styled {
		out = boxStyle.Render(out)
	}
	out += "\n"

	for _, warning := range s.Warnings {
		out += p.paint(warningStyle, "Warning: "+warning) + "\n"
	}

	_, err := io.WriteString(w, out)
	return err
}
