// Package terminal draws yard frames in a terminal with tcell.
//
// The canvas is scaled to the screen with one row kept for a status line.
// Slots are shaded by state (free ░, reserved ▒, occupied █) and labeled with
// their ID when the label fits. Trucks are arrows pointing along their
// rotation, colored by phase, and red once stalled.
//
// Usage:
//
//	screen, _ := tcell.NewScreen()
//	screen.Init()
//	defer screen.Fini()
//
//	err := terminal.Run(ctx, screen, frames, func(r rune) {
//		if r == 's' {
//			spawn()
//		}
//	})
package terminal
