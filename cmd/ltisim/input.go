package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var errNoSamples = errors.New("input file has no samples")

// readInput loads an input signal from a CSV file with one row per sample:
// the time followed by one column per input channel.
func readInput(path string) ([]float64, *mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	t, u, err := parseInput(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, u, nil
}

// parseInput reads t,u0,u1,... rows. A first row that does not start with a
// number is a header.
func parseInput(r io.Reader) ([]float64, *mat.Dense, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) > 0 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][0]), 64); err != nil {
			rows = rows[1:]
		}
	}
	if len(rows) == 0 {
		return nil, nil, errNoSamples
	}
	channels := len(rows[0]) - 1
	if channels < 1 {
		return nil, nil, fmt.Errorf("need a time column and at least one input column, got %d columns", len(rows[0]))
	}

	t := make([]float64, len(rows))
	u := mat.NewDense(len(rows), channels, nil)
	for i, row := range rows {
		vals := make([]float64, len(row))
		for j, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
			vals[j] = v
		}
		t[i] = vals[0]
		u.SetRow(i, vals[1:])
	}
	return t, u, nil
}
