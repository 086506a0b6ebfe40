package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/ltisim/internal/lti"
	"gonum.org/v1/gonum/mat"
)

func simulate(t *testing.T) (*lti.Result, *mat.Dense) {
	t.Helper()
	sys, err := lti.NewDiscrete(lti.Sampled(0.1), [][]float64{{0.5}}, [][]float64{{1}}, [][]float64{{1}}, [][]float64{{0}})
	if err != nil {
		t.Fatalf("NewDiscrete failed: %v", err)
	}
	u := mat.NewDense(4, 1, []float64{1, 0, 0, 0})
	res, err := lti.Dlsim(sys, u, nil, nil)
	if err != nil {
		t.Fatalf("Dlsim failed: %v", err)
	}
	return res, u
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res, u := simulate(t)
	rec, err := FromResult(res, u)
	if err != nil {
		t.Fatalf("FromResult failed: %v", err)
	}
	if diff := cmp.Diff([]string{"y0", "x0", "u0"}, rec.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	runID, err := st.Save(RunMetadata{
		System:   "half",
		Kind:     "ss",
		Command:  "run",
		Dt:       0.1,
		Discrete: true,
		Metrics:  map[string]float64{"energy": 1.3125},
	}, rec)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "half_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.System != "half" || meta.Samples != 4 || meta.Metrics["energy"] != 1.3125 {
		t.Errorf("metadata = %+v", meta)
	}

	back, err := st.LoadRecord(runID)
	if err != nil {
		t.Fatalf("load record failed: %v", err)
	}
	if diff := cmp.Diff(rec.T, back.T); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
	y, ok := back.Column("y0")
	if !ok {
		t.Fatal("y0 column missing")
	}
	if diff := cmp.Diff([]float64{0, 1, 0.5, 0.25}, y); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	res, _ := simulate(t)
	rec, err := FromResult(res, nil)
	if err != nil {
		t.Fatalf("FromResult failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{System: "a"}, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{System: "b"}, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].System != "a" {
		t.Errorf("expected oldest run first, got %q", runs[0].System)
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadRecord("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List of a missing dir = %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	res, _ := simulate(t)
	rec, _ := FromResult(res, nil)
	runID, err := st.Save(RunMetadata{System: "test"}, rec)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, responseFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	if _, err := st.Save(RunMetadata{System: "empty"}, &Record{}); !errors.Is(err, ErrEmptyRecord) {
		t.Errorf("expected ErrEmptyRecord, got %v", err)
	}
}

func TestFromMulti(t *testing.T) {
	sys, err := lti.NewDiscrete(lti.Sampled(1), [][]float64{{0.5}}, [][]float64{{1, 2}}, [][]float64{{1}}, nil)
	if err != nil {
		t.Fatalf("NewDiscrete failed: %v", err)
	}
	res, err := lti.Dimpulse(sys, nil, nil, 3)
	if err != nil {
		t.Fatalf("Dimpulse failed: %v", err)
	}
	rec, err := FromMulti(res)
	if err != nil {
		t.Fatalf("FromMulti failed: %v", err)
	}
	got, ok := rec.Column("y0_u1")
	if !ok {
		t.Fatalf("columns = %v", rec.Columns)
	}
	if diff := cmp.Diff([]float64{0, 2, 1}, got); diff != "" {
		t.Errorf("second input mismatch (-want +got):\n%s", diff)
	}
}

func TestExport(t *testing.T) {
	res, u := simulate(t)
	rec, _ := FromResult(res, u)

	var csvOut bytes.Buffer
	if err := WriteCSV(&csvOut, rec); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if lines[0] != "time,y0,x0,u0" || len(lines) != 5 {
		t.Errorf("csv = %q", csvOut.String())
	}

	var jsonOut bytes.Buffer
	meta := &RunMetadata{ID: "half_1", System: "half"}
	if err := ExportJSON(&jsonOut, meta, rec); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	var decoded ExportData
	if err := json.Unmarshal(jsonOut.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.ID != "half_1" || len(decoded.Series["u0"]) != 4 {
		t.Errorf("decoded = %+v", decoded)
	}
}
