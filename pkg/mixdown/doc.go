// ABOUTME: Offline pattern renderer
// ABOUTME: Sums triggered samples of one loop into a single buffer
// Package mixdown renders one full loop of a step pattern offline.
//
// Render is pure: it reads already gain-adjusted buffers and step flags and
// never touches the live transport. Copies that ring past the end of the
// pattern extend the output instead of being cut.
//
// Example:
//
//	out := mixdown.Render([]mixdown.Track{
//		{Steps: []bool{true, false, true, false}, Buffer: kick},
//	}, 120, 4)
package mixdown
