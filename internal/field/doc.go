// Package field implements the particle field behind the animated backdrops.
//
// A [Field] owns a fixed-size set of particles inside a W×H rectangle:
//
//   - [Field.Initialize]: seed particles uniformly inside the bounds
//   - [Field.Step]: move, reflect off the edges, pulse alpha
//   - [Field.Render]: trail fade, glow + core per particle, entanglement lines
//   - [Field.HandleResize]: full reseed against the new bounds
//
// Drawing goes through the [Surface] interface so the same field can be
// rendered into a terminal, a window, an image or an SVG document.
//
// # Example
//
//	f, _ := field.New(field.Baseline(), rand.New(rand.NewSource(1)))
//	_ = f.HandleResize(800, 600)
//	f.Step(16 * time.Millisecond)
//	stats := f.Render(surface)
//
// # Thread Safety
//
// Field instances are NOT thread-safe. The anim package serializes access.
package field
