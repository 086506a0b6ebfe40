// Package config reads and writes LTI system descriptions and the CLI
// settings taken from the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/ltisim/internal/lti"
	"github.com/san-kum/ltisim/internal/matx"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidFile indicates a system file that describes no system.
	ErrInvalidFile = errors.New("config: invalid system file")

	// ErrUnknownPreset indicates a preset name with no built-in system.
	ErrUnknownPreset = errors.New("config: unknown preset")
)

// SystemFile is the YAML form of a system. A zero dt without unspecified
// is continuous time. Transfer functions have one input and one numerator
// row per output; zeros/poles/gain files have a single output.
type SystemFile struct {
	Name        string      `yaml:"name"`
	Kind        string      `yaml:"kind,omitempty"`
	Dt          float64     `yaml:"dt,omitempty"`
	Unspecified bool        `yaml:"unspecified,omitempty"`
	Num         [][]float64 `yaml:"num,omitempty"`
	Den         []float64   `yaml:"den,omitempty"`
	Zeros       []Root      `yaml:"zeros,omitempty"`
	Poles       []Root      `yaml:"poles,omitempty"`
	Gain        float64     `yaml:"gain,omitempty"`
	A           [][]float64 `yaml:"a,omitempty"`
	B           [][]float64 `yaml:"b,omitempty"`
	C           [][]float64 `yaml:"c,omitempty"`
	D           [][]float64 `yaml:"d,omitempty"`
}

// Root is a real or complex root. In YAML it is a number or an [re, im]
// pair.
type Root complex128

func (r *Root) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*r = Root(complex(v, 0))
	case yaml.SequenceNode:
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("%w: line %d: root needs [re, im], got %d values", ErrInvalidFile, node.Line, len(pair))
		}
		*r = Root(complex(pair[0], pair[1]))
	default:
		return fmt.Errorf("%w: line %d: root must be a number or a pair", ErrInvalidFile, node.Line)
	}
	return nil
}

func (r Root) MarshalYAML() (any, error) {
	c := complex128(r)
	if imag(c) == 0 {
		return real(c), nil
	}
	return []float64{real(c), imag(c)}, nil
}

func roots(rs []Root) []complex128 {
	out := make([]complex128, len(rs))
	for i, r := range rs {
		out[i] = complex128(r)
	}
	return out
}

func toRoots(cs []complex128) []Root {
	out := make([]Root, len(cs))
	for i, c := range cs {
		out[i] = Root(c)
	}
	return out
}

// Timebase returns the time domain the file describes.
func (f *SystemFile) Timebase() lti.Timebase {
	switch {
	case f.Unspecified:
		return lti.Unspecified()
	case f.Dt != 0:
		return lti.Sampled(f.Dt)
	default:
		return lti.Continuous
	}
}

// SystemKind returns the declared kind, or infers it from the fields that
// are set.
func (f *SystemFile) SystemKind() (lti.Kind, error) {
	if f.Kind != "" {
		k, err := lti.ParseKind(f.Kind)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		return k, nil
	}
	switch {
	case len(f.A) > 0:
		return lti.KindSS, nil
	case len(f.Poles) > 0 || len(f.Zeros) > 0:
		return lti.KindZPK, nil
	case len(f.Den) > 0:
		return lti.KindTF, nil
	default:
		return 0, fmt.Errorf("%w: %q sets no coefficients", ErrInvalidFile, f.Name)
	}
}

// Build constructs the system.
func (f *SystemFile) Build() (*lti.System, error) {
	kind, err := f.SystemKind()
	if err != nil {
		return nil, err
	}
	tb := f.Timebase()
	var args []any
	switch kind {
	case lti.KindTF:
		args = []any{f.Num, f.Den}
	case lti.KindZPK:
		args = []any{roots(f.Zeros), roots(f.Poles), f.Gain}
	default:
		args = []any{f.A, f.B, f.C, f.D}
	}
	sys, err := lti.Make(kind, tb, args...)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", f.Name, err)
	}
	return sys, nil
}

// FromSystem describes sys as a system file.
func FromSystem(name string, sys *lti.System) (*SystemFile, error) {
	f := &SystemFile{Name: name}
	if dt, ok := sys.Dt(); ok {
		f.Dt = dt
	} else if sys.IsDiscrete() {
		f.Unspecified = true
	}

	switch sys.Kind() {
	case lti.KindTF:
		tf, _ := sys.TransferFunction()
		if sys.Inputs() != 1 {
			return nil, fmt.Errorf("%w: %d-input transfer functions have no file form", ErrInvalidFile, sys.Inputs())
		}
		f.Kind = "tf"
		for _, row := range tf.Num {
			f.Num = append(f.Num, row[0])
		}
		f.Den = tf.Den
	case lti.KindZPK:
		zpk, _ := sys.ZerosPolesGain()
		if len(zpk.Zeros) != 1 {
			return nil, fmt.Errorf("%w: %d-output zeros/poles/gain systems have no file form", ErrInvalidFile, len(zpk.Zeros))
		}
		f.Kind = "zpk"
		f.Zeros = toRoots(zpk.Zeros[0])
		f.Poles = toRoots(zpk.Poles)
		f.Gain = zpk.Gain[0]
	default:
		ss, _ := sys.StateSpace()
		f.Kind = "ss"
		f.A, f.B, f.C, f.D = matx.Rows(ss.A), matx.Rows(ss.B), matx.Rows(ss.C), matx.Rows(ss.D)
	}
	return f, nil
}

func Load(path string) (*SystemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := &SystemFile{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}
	return f, nil
}

func Save(path string, f *SystemFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve returns the preset called ref, or loads ref as a file.
func Resolve(ref string) (*SystemFile, error) {
	if f, ok := GetPreset(ref); ok {
		return f, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("%w: %q is neither a preset nor a readable file", ErrUnknownPreset, ref)
	}
	return Load(ref)
}
