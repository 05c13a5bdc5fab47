// Package viz draws worlds in the terminal.
//
// [Canvas] is a braille dot grid (2x4 dots per cell) and [Projection]
// maps world coordinates onto it. [Model] is a Bubble Tea program that
// steps a world at 60 Hz, forwards mouse drags to it, and keeps a rolling
// history for replay.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene
//	Tab   - Select a parameter
//	↑/↓   - Tune the selected parameter
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//
// Left-dragging a box corner slides that side of the box horizontally.
package viz
