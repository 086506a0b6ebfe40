// Package viz renders LTI responses in the terminal.
//
// Plots are drawn with asciigraph: [PlotResult] for simulations,
// [PlotResponse] for impulse and step responses and [PlotBode] for
// magnitude and phase. [Explorer] is a Bubble Tea model that browses the
// built-in presets.
//
// # Key Bindings
//
//	j/k    - Select a system
//	Tab    - Cycle step, impulse and Bode views
//	1/2/3  - Jump to a view
//	T      - Cycle color themes
//	Q      - Quit
package viz
