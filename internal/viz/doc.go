// Package viz hosts a spin simulator in the terminal.
//
// The live view is a Bubble Tea program whose 60 fps frame tick drives
// Simulator.Tick. It shows the up spins projected onto the x-y plane in a
// Braille canvas, an asciigraph chart of the magnetization history, and the
// current temperature, field and disorder.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single tick while paused
//	R     - Restart with the same seed
//	Tab   - Select temperature or field
//	↑/↓   - Nudge the selected parameter
//	E     - Toggle neighbour edges
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
