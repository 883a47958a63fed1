// Package export writes particle frames and trajectories as SVG documents.
package export
