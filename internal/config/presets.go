package config

import (
	"math"
	"sort"
)

var resonatorPole = 0.9 * math.Cos(math.Pi/4)

// Presets are the built-in systems.
var Presets = map[string]*SystemFile{
	"first_order": {
		Name: "first_order", Kind: "tf",
		Num: [][]float64{{1}}, Den: []float64{1, 1},
	},
	"lowpass": {
		Name: "lowpass", Kind: "tf", Dt: 0.1,
		Num: [][]float64{{0.1}}, Den: []float64{1, -0.9},
	},
	"resonator": {
		Name: "resonator", Kind: "zpk", Dt: 1,
		Zeros: []Root{1, -1},
		Poles: []Root{Root(complex(resonatorPole, resonatorPole)), Root(complex(resonatorPole, -resonatorPole))},
		Gain:  0.05,
	},
	"double_integrator": {
		Name: "double_integrator", Kind: "ss",
		A: [][]float64{{0, 1}, {0, 0}},
		B: [][]float64{{0}, {1}},
		C: [][]float64{{1, 0}},
		D: [][]float64{{0}},
	},
	"mass_spring": {
		Name: "mass_spring", Kind: "ss",
		A: [][]float64{{0, 1}, {-4, -0.4}},
		B: [][]float64{{0}, {1}},
		C: [][]float64{{1, 0}},
		D: [][]float64{{0}},
	},
	"mimo_mixer": {
		Name: "mimo_mixer", Kind: "ss", Dt: 0.05,
		A: [][]float64{{0.9, 0}, {0, 0.8}},
		B: [][]float64{{1, 0}, {0, 1}},
		C: [][]float64{{1, 1}},
		D: [][]float64{{0, 0}},
	},
}

// GetPreset returns the named preset. The returned file may be modified
// without changing Presets, but its coefficient slices are shared.
func GetPreset(name string) (*SystemFile, bool) {
	p, ok := Presets[name]
	if !ok {
		return nil, false
	}
	f := *p
	return &f, true
}

// ListPresets returns the preset names in order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
