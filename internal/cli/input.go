package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/matstat/internal/domain/matrix"
)

// Input is a submission read from a file or flag.
type Input struct {
	Matrix    matrix.Matrix
	Q         matrix.Matrix
	R         matrix.Matrix
	Source    string
	Tolerance *float64
}

// IsPair reports whether the input carries a Q/R pair instead of a matrix.
func (in *Input) IsPair() bool {
	return in.Matrix == nil && (in.Q != nil || in.R != nil)
}

type rawInput struct {
	Matrix    any      `json:"matrix" yaml:"matrix" toml:"matrix"`
	Q         any      `json:"q" yaml:"q" toml:"q"`
	R         any      `json:"r" yaml:"r" toml:"r"`
	Source    string   `json:"source" yaml:"source" toml:"source"`
	Tolerance *float64 `json:"tolerance" yaml:"tolerance" toml:"tolerance"`
}

var jsonAPI = sonic.Config{UseNumber: true}.Froze()

// ReadInput loads path, picking the decoder from its extension. "-" reads
// JSON from stdin.
func ReadInput(path string, stdin io.Reader) (*Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if path == "-" || format == "" {
		format = "json"
	}
	return DecodeInput(data, format)
}

// DecodeInput decodes a json, yaml or toml document. A JSON document that
// is a bare array is taken as the matrix itself.
func DecodeInput(data []byte, format string) (*Input, error) {
	var raw rawInput
	var err error

	switch format {
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			err = jsonAPI.Unmarshal(trimmed, &raw.Matrix)
		} else {
			err = jsonAPI.Unmarshal(trimmed, &raw)
		}
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &raw)
	case "toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s input: %w", format, err)
	}

	return raw.resolve()
}

func (raw rawInput) resolve() (*Input, error) {
	in := &Input{Source: raw.Source, Tolerance: raw.Tolerance}

	var err error
	switch {
	case raw.Matrix != nil:
		in.Matrix, err = matrix.Parse("matrix", raw.Matrix)
	case raw.Q != nil || raw.R != nil:
		if in.Q, err = matrix.Parse("q", raw.Q); err != nil {
			return nil, err
		}
		in.R, err = matrix.Parse("r", raw.R)
	default:
		return nil, fmt.Errorf("input has neither matrix nor q/r")
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// parseInline decodes a matrix given on the command line as JSON.
func parseInline(field, value string) (matrix.Matrix, error) {
	var v any
	if value == "" {
		return matrix.Parse(field, nil)
	}
	if err := jsonAPI.UnmarshalFromString(value, &v); err != nil {
		return nil, fmt.Errorf("--%s: %w", field, err)
	}
	return matrix.Parse(field, v)
}
