package mat

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup walks a dotted path such as "spm.stats.fmri_spec.sess[1].hpf"
// starting at v. Field segments step into element 0 of the current struct;
// a trailing [i] selects element i (0-based) of a struct or cell array.
// 1x1 cells are unwrapped transparently before a field segment.
func Lookup(v Value, path string) (Value, error) {
	if path == "" {
		return v, nil
	}
	cur := v
	for _, seg := range strings.Split(path, ".") {
		field, index, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}

		if field != "" {
			cur = unwrapCell(cur)
			s, ok := cur.(*Struct)
			if !ok {
				return nil, fmt.Errorf("%w: %s is a %s, not a struct", ErrNotFound, seg, classOf(cur))
			}
			fv, ok := s.Get(0, field)
			if !ok {
				return nil, fmt.Errorf("%w: no field %q", ErrNotFound, field)
			}
			cur = fv
		}

		if index >= 0 {
			switch a := cur.(type) {
			case *Struct:
				if index >= a.Len() {
					return nil, fmt.Errorf("%w: index %d out of range for %d elements", ErrNotFound, index, a.Len())
				}
				cur = &Struct{Size: []int{1, 1}, Fields: a.Fields, Elems: [][]Value{a.Elems[index]}}
			case *Cell:
				if index >= a.Len() {
					return nil, fmt.Errorf("%w: index %d out of range for %d elements", ErrNotFound, index, a.Len())
				}
				cur = a.At(index)
			default:
				return nil, fmt.Errorf("%w: cannot index %s", ErrNotFound, classOf(cur))
			}
		}
	}
	return cur, nil
}

func parseSegment(seg string) (string, int, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, -1, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, fmt.Errorf("malformed path segment %q", seg)
	}
	index, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("malformed index in %q", seg)
	}
	return seg[:open], index, nil
}

func unwrapCell(v Value) Value {
	for {
		c, ok := v.(*Cell)
		if !ok || c.Len() != 1 {
			return v
		}
		v = c.At(0)
	}
}

func classOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Class().String()
}
