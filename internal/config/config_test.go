package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/ltisim/internal/lti"
)

func TestPresetsBuild(t *testing.T) {
	want := map[string]struct {
		kind     lti.Kind
		discrete bool
		inputs   int
	}{
		"first_order":       {lti.KindTF, false, 1},
		"lowpass":           {lti.KindTF, true, 1},
		"resonator":         {lti.KindZPK, true, 1},
		"double_integrator": {lti.KindSS, false, 1},
		"mass_spring":       {lti.KindSS, false, 1},
		"mimo_mixer":        {lti.KindSS, true, 2},
	}

	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			f, ok := GetPreset(name)
			if !ok {
				t.Fatal("expected preset, got none")
			}
			sys, err := f.Build()
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			w, ok := want[name]
			if !ok {
				t.Fatalf("untested preset %q", name)
			}
			if sys.Kind() != w.kind || sys.IsDiscrete() != w.discrete || sys.Inputs() != w.inputs {
				t.Errorf("got %v discrete=%v inputs=%d", sys.Kind(), sys.IsDiscrete(), sys.Inputs())
			}
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected no preset")
	}
}

func TestLoadRoots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notch.yaml")
	data := []byte(`name: notch
dt: 0.5
zeros: [[0, 1], [0, -1]]
poles: [0.5, -0.5]
gain: 2
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]Root{Root(complex(0, 1)), Root(complex(0, -1))}, f.Zeros); diff != "" {
		t.Errorf("zeros mismatch (-want +got):\n%s", diff)
	}
	kind, err := f.SystemKind()
	if err != nil || kind != lti.KindZPK {
		t.Errorf("inferred kind %v, %v", kind, err)
	}
	sys, err := f.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if dt, ok := sys.Dt(); !ok || dt != 0.5 {
		t.Errorf("dt = %v, %v", dt, ok)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"triple root": "poles: [[1, 2, 3]]\n",
		"map root":    "poles: [{re: 1}]\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalidFile) {
				t.Errorf("expected ErrInvalidFile, got %v", err)
			}
		})
	}

	empty := &SystemFile{Name: "empty"}
	if _, err := empty.Build(); !errors.Is(err, ErrInvalidFile) {
		t.Errorf("expected ErrInvalidFile, got %v", err)
	}
	bad := &SystemFile{Name: "bad", Kind: "tf", Num: [][]float64{{1}}, Den: []float64{0}}
	if _, err := bad.Build(); !errors.Is(err, lti.ErrDegenerateSystem) {
		t.Errorf("expected lti.ErrDegenerateSystem, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	src, _ := GetPreset("resonator")
	sys, err := src.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	f, err := FromSystem("copy", sys)
	if err != nil {
		t.Fatalf("FromSystem failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "copy.yaml")
	if err := Save(path, f); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(f, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSystemStateSpace(t *testing.T) {
	src, _ := GetPreset("mimo_mixer")
	sys, err := src.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	f, err := FromSystem("mixer", sys)
	if err != nil {
		t.Fatalf("FromSystem failed: %v", err)
	}
	if f.Kind != "ss" || f.Dt != 0.05 {
		t.Errorf("got kind %q dt %v", f.Kind, f.Dt)
	}
	if diff := cmp.Diff(src.B, f.B); diff != "" {
		t.Errorf("B mismatch (-want +got):\n%s", diff)
	}

	tf, err := lti.NewDiscrete(lti.Unspecified(), []float64{1}, []float64{1, -0.5})
	if err != nil {
		t.Fatal(err)
	}
	f, err = FromSystem("tf", tf)
	if err != nil {
		t.Fatalf("FromSystem failed: %v", err)
	}
	if !f.Unspecified || f.Dt != 0 {
		t.Errorf("expected an unspecified period, got dt=%v unspecified=%v", f.Dt, f.Unspecified)
	}
}

func TestResolve(t *testing.T) {
	f, err := Resolve("lowpass")
	if err != nil || f.Name != "lowpass" {
		t.Fatalf("Resolve preset: %v", err)
	}
	if _, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("LTISIM_DATA_DIR", "/tmp/runs")
	t.Setenv("LTISIM_SAMPLES", "64")
	t.Setenv("LTISIM_LOG_LEVEL", "debug")

	s, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv failed: %v", err)
	}
	if s.DataDir != "/tmp/runs" || s.Samples != 64 {
		t.Errorf("settings = %+v", s)
	}
	if s.FreqPoints != 200 {
		t.Errorf("expected default freq points 200, got %d", s.FreqPoints)
	}
	if s.Level() != slog.LevelDebug {
		t.Errorf("level = %v", s.Level())
	}

	t.Setenv("LTISIM_SAMPLES", "many")
	if _, err := ParseEnv(); err == nil {
		t.Error("expected an error for a non-numeric sample count")
	}
}

func TestLevelFallback(t *testing.T) {
	if got := (Settings{LogLevel: "chatty"}).Level(); got != slog.LevelInfo {
		t.Errorf("level = %v, want info", got)
	}
}
