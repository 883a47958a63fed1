// Package viz renders a particle field in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: hosts one animator, with a stats sidebar
//   - [Picker]: preset menu that launches an [App]
//   - [Canvas]: Braille dot grid with per-dot intensity and tint
//   - [BrailleSurface]: draws field primitives onto a [Canvas]
//
// # Key Bindings
//
//	Space - Pause/Resume animation
//	R     - Reseed particles
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
//
// Mouse motion over the canvas acts as the pointer for interactive presets.
package viz
