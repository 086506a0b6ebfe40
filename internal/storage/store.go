// Package storage keeps simulated responses on disk, one directory per run
// holding metadata.json and response.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ltisim/internal/lti"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFound indicates a run ID with no stored run.
	ErrNotFound = errors.New("storage: run not found")

	// ErrEmptyRecord indicates a record without samples.
	ErrEmptyRecord = errors.New("storage: record has no samples")
)

const (
	metadataFile = "metadata.json"
	responseFile = "response.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	System    string             `json:"system"`
	Kind      string             `json:"kind"`
	Command   string             `json:"command"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt,omitempty"`
	Discrete  bool               `json:"discrete"`
	Method    string             `json:"method,omitempty"`
	Samples   int                `json:"samples"`
	Columns   []string           `json:"columns"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Record is a sampled response. Columns names each column of Data; time is
// kept separately in T.
type Record struct {
	T       []float64
	Columns []string
	Data    *mat.Dense
}

// Column returns the samples of the named column.
func (r *Record) Column(name string) ([]float64, bool) {
	for j, c := range r.Columns {
		if c == name {
			return mat.Col(nil, j, r.Data), true
		}
	}
	return nil, false
}

// FromResult lays out a simulation as y0.., x0.. and u0.. columns. u may be
// nil.
func FromResult(res *lti.Result, u mat.Matrix) (*Record, error) {
	type block struct {
		prefix string
		m      mat.Matrix
	}
	blocks := []block{{"y", res.Y}}
	if res.X != nil {
		blocks = append(blocks, block{"x", res.X})
	}
	if u != nil {
		blocks = append(blocks, block{"u", u})
	}

	rows := len(res.T)
	if rows == 0 {
		return nil, ErrEmptyRecord
	}
	var cols []string
	width := 0
	for _, b := range blocks {
		r, c := b.m.Dims()
		if r != rows {
			return nil, fmt.Errorf("storage: %s has %d rows for %d samples", b.prefix, r, rows)
		}
		for j := 0; j < c; j++ {
			cols = append(cols, fmt.Sprintf("%s%d", b.prefix, j))
		}
		width += c
	}

	data := mat.NewDense(rows, width, nil)
	off := 0
	for _, b := range blocks {
		_, c := b.m.Dims()
		data.Slice(0, rows, off, off+c).(*mat.Dense).Copy(b.m)
		off += c
	}
	return &Record{T: append([]float64(nil), res.T...), Columns: cols, Data: data}, nil
}

// FromMulti lays out per-input responses as y<out>_u<in> columns.
func FromMulti(res *lti.MultiResult) (*Record, error) {
	rows := len(res.T)
	if rows == 0 || len(res.Y) == 0 {
		return nil, ErrEmptyRecord
	}
	_, p := res.Y[0].Dims()
	data := mat.NewDense(rows, p*len(res.Y), nil)
	cols := make([]string, 0, p*len(res.Y))
	for in, y := range res.Y {
		for out := 0; out < p; out++ {
			cols = append(cols, fmt.Sprintf("y%d_u%d", out, in))
			data.SetCol(len(cols)-1, mat.Col(nil, out, y))
		}
	}
	return &Record{T: append([]float64(nil), res.T...), Columns: cols, Data: data}, nil
}

// Save writes rec under a fresh run ID and returns the ID. meta.ID,
// Timestamp, Samples and Columns are filled in.
func (s *Store) Save(meta RunMetadata, rec *Record) (string, error) {
	if rec == nil || len(rec.T) == 0 {
		return "", ErrEmptyRecord
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.System, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Samples = len(rec.T)
	meta.Columns = rec.Columns

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, responseFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := WriteCSV(csvFile, rec); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns the stored runs, oldest first. Unreadable run directories
// are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRecord reads the samples of a run.
func (s *Store) LoadRecord(runID string) (*Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, responseFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, ErrEmptyRecord
	}

	header := records[0]
	rows := records[1:]
	rec := &Record{
		T:       make([]float64, len(rows)),
		Columns: append([]string(nil), header[1:]...),
		Data:    mat.NewDense(len(rows), len(header)-1, nil),
	}
	for i, row := range rows {
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", runID, i+1, err)
			}
			if j == 0 {
				rec.T[i] = v
			} else {
				rec.Data.Set(i, j-1, v)
			}
		}
	}
	return rec, nil
}
