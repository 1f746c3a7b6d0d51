package design

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"gopkg.in/yaml.v3"
)

// Load reads a design file and resolves it. The format follows the
// extension: .yaml/.yml or .hcl. Relative paths inside the file are taken
// relative to the file's directory.
func Load(path string) (*Design, error) {
	var spec fileSpec

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading design: %w", err)
		}
		if err := decodeYAML(data, &spec); err != nil {
			return nil, fmt.Errorf("parsing design %s: %w", path, err)
		}
	case ".hcl":
		if err := hclsimple.DecodeFile(path, evalContext(), &spec); err != nil {
			return nil, fmt.Errorf("parsing design %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving design directory: %w", err)
	}
	return resolve(&spec, base)
}

// decodeYAML rejects unknown keys so a misspelt setting is not silently
// replaced by its default.
func decodeYAML(data []byte, spec *fileSpec) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(spec); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty file", ErrInvalid)
		}
		return err
	}
	return nil
}

// evalContext exposes list helpers to HCL designs, e.g.
// onsets = range(0, 300, 30).
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"range":   stdlib.RangeFunc,
			"concat":  stdlib.ConcatFunc,
			"flatten": stdlib.FlattenFunc,
			"length":  stdlib.LengthFunc,
			"format":  stdlib.FormatFunc,
		},
	}
}
