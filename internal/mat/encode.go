package mat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/klauspost/compress/zlib"
)

// Data element types.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
	miUTF32      = 18
)

const (
	headerSize     = 128
	headerTextSize = 116
	version        = 0x0100

	// maxFieldNameLen is MATLAB's namelengthmax plus the terminating NUL.
	maxFieldNameLen = 64

	flagLogical = 0x02
	flagGlobal  = 0x04
	flagComplex = 0x08
)

var order = binary.LittleEndian

type writeOptions struct {
	compress bool
	created  time.Time
}

// Option configures Write.
type Option func(*writeOptions)

// WithCompression stores every variable in a zlib-compressed miCOMPRESSED element.
func WithCompression() Option {
	return func(o *writeOptions) { o.compress = true }
}

// WithCreated sets the creation time printed in the header text.
func WithCreated(t time.Time) Option {
	return func(o *writeOptions) { o.created = t }
}

// WriteFile writes vars to path, replacing any existing file.
func WriteFile(path string, vars []Var, opts ...Option) error {
	var buf bytes.Buffer
	if err := Write(&buf, vars, opts...); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing MAT-file: %w", err)
	}
	return nil
}

// Write encodes a little-endian Level 5 MAT-file holding vars, in order.
func Write(w io.Writer, vars []Var, opts ...Option) error {
	o := writeOptions{created: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := w.Write(header(o.created)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, v := range vars {
		var elem bytes.Buffer
		if err := writeMatrix(&elem, v.Name, v.Value); err != nil {
			return fmt.Errorf("encoding %s: %w", v.Name, err)
		}

		out := elem.Bytes()
		if o.compress {
			packed, err := deflate(out)
			if err != nil {
				return fmt.Errorf("compressing %s: %w", v.Name, err)
			}
			// Compressed elements carry no trailing padding.
			var tag [8]byte
			order.PutUint32(tag[0:], miCOMPRESSED)
			order.PutUint32(tag[4:], uint32(len(packed)))
			out = append(tag[:], packed...)
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing %s: %w", v.Name, err)
		}
	}
	return nil
}

func header(created time.Time) []byte {
	h := make([]byte, headerSize)
	text := fmt.Sprintf("MATLAB 5.0 MAT-file Platform: %s, Created on: %s",
		platform(), created.Format("Mon Jan _2 15:04:05 2006"))
	if len(text) > headerTextSize {
		text = text[:headerTextSize]
	}
	copy(h, text)
	for i := len(text); i < headerTextSize; i++ {
		h[i] = ' '
	}
	// Bytes 116..123 are the subsystem data offset and stay zero.
	order.PutUint16(h[124:], version)
	copy(h[126:], "IM")
	return h
}

func platform() string {
	if runtime.GOOS == "windows" {
		return "nt"
	}
	return "posix"
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeElement writes a tagged data element padded to 8 bytes, using the
// small element format when the payload fits in 4 bytes.
func writeElement(buf *bytes.Buffer, typ uint32, data []byte) {
	var tag [8]byte
	if len(data) <= 4 {
		order.PutUint32(tag[0:], uint32(len(data))<<16|typ)
		copy(tag[4:], data)
		buf.Write(tag[:])
		return
	}
	order.PutUint32(tag[0:], typ)
	order.PutUint32(tag[4:], uint32(len(data)))
	buf.Write(tag[:])
	buf.Write(data)
	if pad := padding(len(data)); pad > 0 {
		buf.Write(make([]byte, pad))
	}
}

func padding(n int) int {
	return (8 - n%8) % 8
}

// writeMatrix writes a complete miMATRIX element: tag, flags, dims, name and
// the class specific payload.
func writeMatrix(buf *bytes.Buffer, name string, v Value) error {
	var body bytes.Buffer
	if err := writeMatrixBody(&body, name, v); err != nil {
		return err
	}
	var tag [8]byte
	order.PutUint32(tag[0:], miMATRIX)
	order.PutUint32(tag[4:], uint32(body.Len()))
	buf.Write(tag[:])
	buf.Write(body.Bytes())
	return nil
}

func writeMatrixBody(body *bytes.Buffer, name string, v Value) error {
	if v == nil {
		return fmt.Errorf("nil value")
	}

	var flags [8]byte
	order.PutUint32(flags[0:], uint32(v.Class()))
	writeElement(body, miUINT32, flags[:])

	dims := v.Dims()
	if len(dims) < 2 {
		return fmt.Errorf("%s array needs at least 2 dimensions, got %v", v.Class(), dims)
	}
	dimBytes := make([]byte, 4*len(dims))
	for i, d := range dims {
		order.PutUint32(dimBytes[4*i:], uint32(int32(d)))
	}
	writeElement(body, miINT32, dimBytes)
	writeElement(body, miINT8, []byte(name))

	switch a := v.(type) {
	case *Double:
		if len(a.Data) != numel(dims) {
			return fmt.Errorf("double has %d elements for dims %v", len(a.Data), dims)
		}
		data := make([]byte, 8*len(a.Data))
		for i, f := range a.Data {
			order.PutUint64(data[8*i:], math.Float64bits(f))
		}
		writeElement(body, miDOUBLE, data)
	case *Int64:
		if len(a.Data) != numel(dims) {
			return fmt.Errorf("int64 has %d elements for dims %v", len(a.Data), dims)
		}
		if a.Stored != 0 && a.Stored != ClassInt64 {
			return fmt.Errorf("%w: writing %s", ErrUnsupportedClass, a.Stored)
		}
		data := make([]byte, 8*len(a.Data))
		for i, n := range a.Data {
			order.PutUint64(data[8*i:], uint64(n))
		}
		writeElement(body, miINT64, data)
	case *Char:
		writeElement(body, miUTF8, []byte(a.Text))
	case *Cell:
		if len(a.Elems) != numel(dims) {
			return fmt.Errorf("cell has %d elements for dims %v", len(a.Elems), dims)
		}
		for i, e := range a.Elems {
			if err := writeMatrix(body, "", e); err != nil {
				return fmt.Errorf("cell element %d: %w", i, err)
			}
		}
	case *Struct:
		return writeStruct(body, a)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedClass, v)
	}
	return nil
}

func writeStruct(body *bytes.Buffer, s *Struct) error {
	if len(s.Elems) != numel(s.Size) {
		return fmt.Errorf("struct has %d elements for dims %v", len(s.Elems), s.Size)
	}

	length := 1
	for _, f := range s.Fields {
		if len(f)+1 > maxFieldNameLen {
			return fmt.Errorf("field name %q longer than %d characters", f, maxFieldNameLen-1)
		}
		if len(f)+1 > length {
			length = len(f) + 1
		}
	}

	var lenBytes [4]byte
	order.PutUint32(lenBytes[:], uint32(length))
	writeElement(body, miINT32, lenBytes[:])

	names := make([]byte, length*len(s.Fields))
	for i, f := range s.Fields {
		copy(names[i*length:], f)
	}
	writeElement(body, miINT8, names)

	for i, rec := range s.Elems {
		if len(rec) != len(s.Fields) {
			return fmt.Errorf("struct element %d has %d values for %d fields", i, len(rec), len(s.Fields))
		}
		for j, fv := range rec {
			if err := writeMatrix(body, "", fv); err != nil {
				return fmt.Errorf("field %s of element %d: %w", s.Fields[j], i, err)
			}
		}
	}
	return nil
}
