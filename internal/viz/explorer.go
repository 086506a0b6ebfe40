package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/lti"
	"github.com/san-kum/ltisim/internal/metrics"
)

// View selects the response drawn for the highlighted system.
type View int

const (
	ViewStep View = iota
	ViewImpulse
	ViewBode
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewStep:
		return "step"
	case ViewImpulse:
		return "impulse"
	case ViewBode:
		return "bode"
	}
	return "unknown"
}

const (
	listWidth     = 24
	defaultWidth  = 100
	defaultHeight = 30
)

type panel struct {
	plot    string
	summary []string
	err     error
}

// Explorer is a Bubble Tea model that browses the preset systems and
// draws their responses.
type Explorer struct {
	names         []string
	cursor        int
	view          View
	theme         Theme
	width, height int
	cache         map[string]panel
}

// NewExplorer lists the built-in presets under the named theme.
func NewExplorer(theme string) Explorer {
	return Explorer{
		names:  config.ListPresets(),
		theme:  GetTheme(theme),
		width:  defaultWidth,
		height: defaultHeight,
		cache:  make(map[string]panel),
	}
}

func (m Explorer) Init() tea.Cmd { return nil }

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.names)-1 {
				m.cursor++
			}
		case "tab", "v":
			m.view = (m.view + 1) % viewCount
		case "1":
			m.view = ViewStep
		case "2":
			m.view = ViewImpulse
		case "3":
			m.view = ViewBode
		case "t":
			m.theme = NextTheme(m.theme)
			m.cache = make(map[string]panel)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.cache = make(map[string]panel)
	}
	return m, nil
}

// Selected returns the highlighted preset name and the active view.
func (m Explorer) Selected() (string, View) {
	if len(m.names) == 0 {
		return "", m.view
	}
	return m.names[m.cursor], m.view
}

// Theme returns the active color scheme.
func (m Explorer) Theme() Theme { return m.theme }

func (m Explorer) View() string {
	title := GradientText("LTISIM", m.theme.Secondary, m.theme.Primary)
	header := title + "  " + m.theme.muted().Render("linear time-invariant systems")

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewList(), "  ", m.viewPanel())

	hints := KeyHint.Render("j/k select  tab view  1/2/3 step/impulse/bode  t theme (" + m.theme.Name + ")  q quit")
	return strings.Join([]string{"", header, Separator(max(m.width-2, 8)), body, "", hints}, "\n")
}

func (m Explorer) viewList() string {
	var b strings.Builder
	b.WriteString(m.theme.title().Render("systems") + "\n\n")
	for i, name := range m.names {
		if i == m.cursor {
			b.WriteString(m.theme.selected().Render("▸ "+name) + "\n")
		} else {
			b.WriteString(m.theme.muted().Render("  "+name) + "\n")
		}
	}
	return lipgloss.NewStyle().Width(listWidth).Render(b.String())
}

func (m Explorer) viewPanel() string {
	name, view := m.Selected()
	if name == "" {
		return ErrorText.Render("no presets")
	}
	key := name + "/" + view.String()
	p, ok := m.cache[key]
	if !ok {
		p = m.render(name, view)
		m.cache[key] = p
	}

	heading := m.theme.title().Render(name) + m.theme.muted().Render(" · "+view.String())
	if p.err != nil {
		return m.theme.panel().Render(heading + "\n\n" + ErrorText.Render(p.err.Error()))
	}
	summary := strings.Join(p.summary, "\n")
	return m.theme.panel().Render(heading + "\n\n" + p.plot + "\n\n" + summary)
}

func (m Explorer) plotOptions() PlotOptions {
	return PlotOptions{
		Width:  max(m.width-listWidth-16, 20),
		Height: max(m.height-20, 6),
		Theme:  m.theme,
	}
}

func (m Explorer) render(name string, view View) panel {
	f, ok := config.GetPreset(name)
	if !ok {
		return panel{err: fmt.Errorf("%w: %s", config.ErrUnknownPreset, name)}
	}
	sys, err := f.Build()
	if err != nil {
		return panel{err: err}
	}

	p := panel{summary: describe(sys)}
	opts := m.plotOptions()
	switch view {
	case ViewStep, ViewImpulse:
		var res *lti.MultiResult
		if view == ViewStep {
			res, err = sys.Step(nil, nil, 0)
		} else {
			res, err = sys.Impulse(nil, nil, 0)
		}
		if err != nil {
			return panel{err: err}
		}
		p.plot, err = PlotResponse(res, 0, opts)
		if err != nil {
			return panel{err: err}
		}
		if view == ViewStep && sys.IsSISO() {
			if info, err := metrics.StepInfo(res.T, columns(res.Y[0])[0]); err == nil {
				p.summary = append(p.summary, stepSummary(info)...)
			}
		}
	case ViewBode:
		if sys.Inputs() != 1 {
			return panel{err: fmt.Errorf("bode needs a single-input system, %s has %d inputs", name, sys.Inputs())}
		}
		opts.Height = max(opts.Height/2-1, 4)
		bode, err := sys.Bode(nil, 0)
		if err != nil {
			return panel{err: err}
		}
		p.plot = PlotBode(bode, opts)
		p.summary = append(p.summary, Metric("magnitude", Sparkline(bode.Mag, 16)))
	}
	return p
}

func describe(sys *lti.System) []string {
	lines := []string{
		Metric("form", sys.Kind().String()),
		Metric("time", sys.Timebase().String()),
		Metric("inputs", fmt.Sprint(sys.Inputs())),
		Metric("outputs", fmt.Sprint(sys.Outputs())),
	}
	if poles, err := sys.Poles(); err == nil {
		lines = append(lines, Metric("poles", formatRoots(poles)))
	}
	return lines
}

func stepSummary(info metrics.StepSummary) []string {
	return []string{
		Metric("final", fmt.Sprintf("%.4g", info.FinalValue)),
		Metric("overshoot", fmt.Sprintf("%.2f%%", info.Overshoot)),
		Metric("rise time", formatTime(info.RiseTime)),
		Metric("settling", formatTime(info.SettlingTime)),
	}
}

func formatTime(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3gs", v)
}

func formatRoots(rs []complex128) string {
	if len(rs) == 0 {
		return "none"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		if imag(r) == 0 {
			parts[i] = fmt.Sprintf("%.3g", real(r))
		} else {
			parts[i] = fmt.Sprintf("%.3g%+.3gj", real(r), imag(r))
		}
	}
	return strings.Join(parts, " ")
}

// RunExplorer starts the explorer on the alternate screen.
func RunExplorer(theme string) error {
	_, err := tea.NewProgram(NewExplorer(theme), tea.WithAltScreen()).Run()
	return err
}
