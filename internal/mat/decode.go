package mat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/klauspost/compress/zlib"
)

// File is a decoded MAT-file.
type File struct {
	Header string
	Vars   []Var
}

// Get returns the variable called name.
func (f *File) Get(name string) (Value, bool) {
	for _, v := range f.Vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// ReadFile decodes the MAT-file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MAT-file: %w", err)
	}
	return decodeFile(data)
}

// Read decodes a MAT-file from r.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading MAT-file: %w", err)
	}
	return decodeFile(data)
}

type decoder struct {
	order binary.ByteOrder
}

type element struct {
	typ  uint32
	data []byte
}

func decodeFile(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrNotMATFile, len(data))
	}

	d := &decoder{}
	switch string(data[126:128]) {
	case "IM":
		d.order = binary.LittleEndian
	case "MI":
		d.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad endian indicator %q", ErrNotMATFile, data[126:128])
	}
	if v := d.order.Uint16(data[124:126]); v != version {
		return nil, fmt.Errorf("%w: version 0x%04x", ErrNotMATFile, v)
	}

	f := &File{Header: strings.TrimRight(string(data[:headerTextSize]), " \x00")}
	rest := data[headerSize:]
	for len(rest) > 0 {
		el, next, err := d.next(rest)
		if err != nil {
			return nil, err
		}
		rest = next

		switch el.typ {
		case miMATRIX:
		case miCOMPRESSED:
			inflated, err := inflate(el.data)
			if err != nil {
				return nil, fmt.Errorf("decompressing variable: %w", err)
			}
			el, _, err = d.next(inflated)
			if err != nil {
				return nil, err
			}
			if el.typ != miMATRIX {
				return nil, fmt.Errorf("compressed element holds type %d, want miMATRIX", el.typ)
			}
		default:
			// Top-level non-matrix elements carry no variables.
			continue
		}

		name, v, err := d.matrix(el.data)
		if err != nil {
			return nil, fmt.Errorf("decoding variable: %w", err)
		}
		f.Vars = append(f.Vars, Var{Name: name, Value: v})
	}
	return f, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// next reads one tagged element from b and returns it with the remaining bytes.
func (d *decoder) next(b []byte) (element, []byte, error) {
	if len(b) < 8 {
		return element{}, nil, fmt.Errorf("%w: %d byte tag", ErrTruncated, len(b))
	}
	word := d.order.Uint32(b[0:4])
	if n := word >> 16; n != 0 {
		if n > 4 {
			return element{}, nil, fmt.Errorf("%w: small element of %d bytes", ErrTruncated, n)
		}
		return element{typ: word & 0xffff, data: b[4 : 4+n]}, b[8:], nil
	}

	n := int(d.order.Uint32(b[4:8]))
	if n > len(b)-8 {
		return element{}, nil, fmt.Errorf("%w: element of %d bytes, %d left", ErrTruncated, n, len(b)-8)
	}
	el := element{typ: word, data: b[8 : 8+n]}
	end := 8 + n
	if word != miCOMPRESSED {
		end += padding(n)
	}
	if end > len(b) {
		end = len(b)
	}
	return el, b[end:], nil
}

// matrix decodes the payload of an miMATRIX element.
func (d *decoder) matrix(b []byte) (string, Value, error) {
	// MATLAB writes empty [] cell and struct members as zero-length matrices.
	if len(b) == 0 {
		return "", &Double{Size: []int{0, 0}}, nil
	}

	flagsEl, b, err := d.next(b)
	if err != nil {
		return "", nil, fmt.Errorf("array flags: %w", err)
	}
	if len(flagsEl.data) < 4 {
		return "", nil, fmt.Errorf("%w: array flags", ErrTruncated)
	}
	word := d.order.Uint32(flagsEl.data[0:4])
	class := Class(word & 0xff)
	flags := (word >> 8) & 0xff

	dimsEl, b, err := d.next(b)
	if err != nil {
		return "", nil, fmt.Errorf("dimensions: %w", err)
	}
	dims := make([]int, len(dimsEl.data)/4)
	for i := range dims {
		dims[i] = int(int32(d.order.Uint32(dimsEl.data[4*i:])))
		if dims[i] < 0 {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDims, dims[:i+1])
		}
	}

	nameEl, b, err := d.next(b)
	if err != nil {
		return "", nil, fmt.Errorf("array name: %w", err)
	}
	name := string(nameEl.data)

	if flags&flagComplex != 0 {
		return name, nil, fmt.Errorf("%w: complex %s", ErrUnsupportedClass, class)
	}

	switch class {
	case ClassDouble, ClassSingle:
		el, _, err := d.next(b)
		if err != nil {
			return name, nil, fmt.Errorf("real part: %w", err)
		}
		vals, err := d.floats(el)
		if err != nil {
			return name, nil, err
		}
		return name, &Double{Size: dims, Data: vals}, nil

	case ClassInt8, ClassUint8, ClassInt16, ClassUint16,
		ClassInt32, ClassUint32, ClassInt64, ClassUint64:
		el, _, err := d.next(b)
		if err != nil {
			return name, nil, fmt.Errorf("real part: %w", err)
		}
		vals, err := d.ints(el)
		if err != nil {
			return name, nil, err
		}
		return name, &Int64{Size: dims, Data: vals, Stored: class}, nil

	case ClassChar:
		el, _, err := d.next(b)
		if err != nil {
			return name, nil, fmt.Errorf("char data: %w", err)
		}
		text, err := d.chars(el, dims)
		if err != nil {
			return name, nil, err
		}
		return name, &Char{Text: text}, nil

	case ClassCell:
		n, err := boundedCount(dims, 8, len(b))
		if err != nil {
			return name, nil, err
		}
		c := &Cell{Size: dims}
		for i := 0; i < n; i++ {
			var el element
			el, b, err = d.next(b)
			if err != nil {
				return name, nil, fmt.Errorf("cell element %d: %w", i, err)
			}
			_, v, err := d.matrix(el.data)
			if err != nil {
				return name, nil, fmt.Errorf("cell element %d: %w", i, err)
			}
			c.Elems = append(c.Elems, v)
		}
		return name, c, nil

	case ClassStruct:
		s, err := d.structure(b, dims)
		if err != nil {
			return name, nil, err
		}
		return name, s, nil

	default:
		return name, nil, fmt.Errorf("%w: %s", ErrUnsupportedClass, class)
	}
}

func (d *decoder) structure(b []byte, dims []int) (*Struct, error) {
	lenEl, b, err := d.next(b)
	if err != nil {
		return nil, fmt.Errorf("field name length: %w", err)
	}
	if len(lenEl.data) < 4 {
		return nil, fmt.Errorf("%w: field name length", ErrTruncated)
	}
	length := int(d.order.Uint32(lenEl.data))

	namesEl, b, err := d.next(b)
	if err != nil {
		return nil, fmt.Errorf("field names: %w", err)
	}

	s := &Struct{Size: dims}
	if length > 0 {
		for off := 0; off+length <= len(namesEl.data); off += length {
			raw := namesEl.data[off : off+length]
			if i := bytes.IndexByte(raw, 0); i >= 0 {
				raw = raw[:i]
			}
			s.Fields = append(s.Fields, string(raw))
		}
	}

	n, err := boundedCount(dims, 8*len(s.Fields), len(b))
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		rec := make([]Value, len(s.Fields))
		for j := range s.Fields {
			var el element
			el, b, err = d.next(b)
			if err != nil {
				return nil, fmt.Errorf("field %s of element %d: %w", s.Fields[j], i, err)
			}
			_, v, err := d.matrix(el.data)
			if err != nil {
				return nil, fmt.Errorf("field %s of element %d: %w", s.Fields[j], i, err)
			}
			rec[j] = v
		}
		s.Elems = append(s.Elems, rec)
	}
	return s, nil
}

// maxFieldless bounds a struct array without fields, whose elements carry no
// bytes to check the claimed size against.
const maxFieldless = 1 << 16

// boundedCount returns numel(dims) when each element can be backed by at
// least size bytes of the avail remaining in the payload.
func boundedCount(dims []int, size, avail int) (int, error) {
	if len(dims) == 0 {
		return 0, nil
	}
	for _, d := range dims {
		if d == 0 {
			return 0, nil
		}
	}
	limit := maxFieldless
	if size > 0 {
		limit = avail / size
	}
	n := 1
	for _, d := range dims {
		if n > limit/d {
			return 0, fmt.Errorf("%w: %v elements in %d bytes", ErrTruncated, dims, avail)
		}
		n *= d
	}
	return n, nil
}

func (d *decoder) floats(el element) ([]float64, error) {
	switch el.typ {
	case miDOUBLE:
		out := make([]float64, len(el.data)/8)
		for i := range out {
			out[i] = math.Float64frombits(d.order.Uint64(el.data[8*i:]))
		}
		return out, nil
	case miSINGLE:
		out := make([]float64, len(el.data)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(d.order.Uint32(el.data[4*i:])))
		}
		return out, nil
	}
	ints, err := d.ints(el)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ints))
	for i, n := range ints {
		out[i] = float64(n)
	}
	return out, nil
}

// ints widens any integer storage type to int64. MATLAB narrows the storage
// type of numeric data when the values fit.
func (d *decoder) ints(el element) ([]int64, error) {
	b := el.data
	var out []int64
	switch el.typ {
	case miINT8:
		for _, x := range b {
			out = append(out, int64(int8(x)))
		}
	case miUINT8:
		for _, x := range b {
			out = append(out, int64(x))
		}
	case miINT16:
		for i := 0; i+2 <= len(b); i += 2 {
			out = append(out, int64(int16(d.order.Uint16(b[i:]))))
		}
	case miUINT16:
		for i := 0; i+2 <= len(b); i += 2 {
			out = append(out, int64(d.order.Uint16(b[i:])))
		}
	case miINT32:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, int64(int32(d.order.Uint32(b[i:]))))
		}
	case miUINT32:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, int64(d.order.Uint32(b[i:])))
		}
	case miINT64, miUINT64:
		for i := 0; i+8 <= len(b); i += 8 {
			out = append(out, int64(d.order.Uint64(b[i:])))
		}
	case miDOUBLE:
		for i := 0; i+8 <= len(b); i += 8 {
			out = append(out, int64(math.Float64frombits(d.order.Uint64(b[i:]))))
		}
	default:
		return nil, fmt.Errorf("%w: numeric storage type %d", ErrUnsupportedClass, el.typ)
	}
	return out, nil
}

func (d *decoder) chars(el element, dims []int) (string, error) {
	var runes []rune
	switch el.typ {
	case miUTF8:
		runes = []rune(string(el.data))
	case miUINT16, miUTF16:
		units := make([]uint16, len(el.data)/2)
		for i := range units {
			units[i] = d.order.Uint16(el.data[2*i:])
		}
		runes = utf16.Decode(units)
	case miUINT8, miINT8:
		for _, c := range el.data {
			runes = append(runes, rune(c))
		}
	case miUTF32, miUINT32:
		for i := 0; i+4 <= len(el.data); i += 4 {
			runes = append(runes, rune(d.order.Uint32(el.data[i:])))
		}
	default:
		return "", fmt.Errorf("%w: char storage type %d", ErrUnsupportedClass, el.typ)
	}

	rows := 1
	if len(dims) > 0 {
		rows = dims[0]
	}
	if rows <= 1 || len(runes) == 0 || len(runes)%rows != 0 {
		return string(runes), nil
	}

	// Column-major character matrix: one line per row.
	cols := len(runes) / rows
	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		line := make([]rune, cols)
		for c := 0; c < cols; c++ {
			line[c] = runes[c*rows+r]
		}
		lines[r] = string(line)
	}
	return strings.Join(lines, "\n"), nil
}
