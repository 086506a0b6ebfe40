package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltisim/internal/lti"
)

// PlotOptions sizes and labels a terminal plot. Zero Width and Height let
// asciigraph size the plot from the data.
type PlotOptions struct {
	Width   int
	Height  int
	Caption string
	Theme   Theme
}

func (o PlotOptions) asciigraph(series int, caption string) []asciigraph.Option {
	opts := []asciigraph.Option{asciigraph.Precision(3)}
	if o.Width > 0 {
		opts = append(opts, asciigraph.Width(o.Width))
	}
	if o.Height > 0 {
		opts = append(opts, asciigraph.Height(o.Height))
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	if colors := o.Theme.seriesColors(series); len(colors) > 0 {
		opts = append(opts, asciigraph.SeriesColors(colors...))
	}
	return opts
}

// clip replaces infinities with the finite extremes of s. It reports
// whether anything was replaced, and returns nil when s has no finite value.
func clip(s []float64) ([]float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return nil, false
	}
	out := make([]float64, len(s))
	clipped := false
	for i, v := range s {
		switch {
		case math.IsInf(v, 1):
			out[i], clipped = hi, true
		case math.IsInf(v, -1):
			out[i], clipped = lo, true
		default:
			out[i] = v
		}
	}
	return out, clipped
}

// PlotSeries draws one or more traces on shared axes. Infinite samples are
// drawn at the trace's finite extremes and the caption says so. Traces with
// no finite sample are skipped; with nothing left to draw it returns "".
func PlotSeries(series [][]float64, o PlotOptions) string {
	data := make([][]float64, 0, len(series))
	anyClipped := false
	for _, s := range series {
		c, clipped := clip(s)
		if c == nil {
			continue
		}
		data = append(data, c)
		anyClipped = anyClipped || clipped
	}
	if len(data) == 0 {
		return ""
	}
	caption := o.Caption
	if anyClipped {
		caption = strings.TrimSpace(caption + " (clipped at ±inf)")
	}
	return asciigraph.PlotMany(data, o.asciigraph(len(data), caption)...)
}

func columns(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	_, c := m.Dims()
	out := make([][]float64, c)
	for j := range out {
		out[j] = mat.Col(nil, j, m)
	}
	return out
}

// PlotResult draws every output of a simulation.
func PlotResult(res *lti.Result, o PlotOptions) string {
	if res == nil || len(res.T) == 0 {
		return ""
	}
	if o.Caption == "" {
		o.Caption = fmt.Sprintf("y(t), t in [%g, %g]", res.T[0], res.T[len(res.T)-1])
	}
	return PlotSeries(columns(res.Y), o)
}

// PlotResponse draws the outputs excited by one input channel of an
// impulse or step response.
func PlotResponse(res *lti.MultiResult, input int, o PlotOptions) (string, error) {
	if res == nil || input < 0 || input >= len(res.Y) {
		return "", fmt.Errorf("input %d out of range", input)
	}
	if o.Caption == "" && len(res.T) > 0 {
		o.Caption = fmt.Sprintf("input %d, t in [%g, %g]", input, res.T[0], res.T[len(res.T)-1])
	}
	return PlotSeries(columns(res.Y[input]), o), nil
}

// PlotBode draws magnitude above phase. Height applies to each half.
func PlotBode(b *lti.BodeData, o PlotOptions) string {
	if b == nil || len(b.W) == 0 {
		return ""
	}
	span := fmt.Sprintf("w in [%.3g, %.3g] rad/s", b.W[0], b.W[len(b.W)-1])
	caption := func(what string) string {
		if o.Caption != "" {
			return o.Caption + " " + what
		}
		return what + ", " + span
	}

	mo, po := o, o
	mo.Caption, po.Caption = caption("magnitude (dB)"), caption("phase (deg)")
	var parts []string
	for _, p := range []string{PlotSeries([][]float64{b.Mag}, mo), PlotSeries([][]float64{b.Phase}, po)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
