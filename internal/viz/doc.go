// Package viz hosts the particle background in a terminal.
//
// [Model] is a Bubble Tea program that owns a frame scheduler, a viewport
// and a lifecycle controller drawing into a braille surface. Terminal
// resizes become viewport-size-change notifications; every tick pumps the
// scheduler once.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Tear down and remount with a new seed
//	S     - Toggle the stats sidebar
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help
//	Q     - Quit
//
// # Recording
//
// Recordings rasterize the particle store at full surface resolution and are
// saved as an animated GIF when recording stops or the program quits.
package viz
