package terminal

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

// Cell glyphs
const (
	GlyphFree     = '░'
	GlyphReserved = '▒'
	GlyphOccupied = '█'
	GlyphObstacle = '#'
	GlyphSafeLine = '┄'
	GlyphGate     = 'G'
)

var headingGlyphs = [4]rune{'▲', '▶', '▼', '◀'}

var phaseColors = map[engine.Phase]tcell.Color{
	engine.PhaseAtGate:       tcell.ColorWhite,
	engine.PhaseEntering:     tcell.ColorAqua,
	engine.PhaseMovingToLane: tcell.ColorBlue,
	engine.PhaseMoving:       tcell.ColorGreen,
	engine.PhaseApproaching:  tcell.ColorYellow,
	engine.PhaseBacking:      tcell.ColorFuchsia,
	engine.PhaseParked:       tcell.ColorGray,
}

var (
	styleFree     = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleReserved = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleOccupied = tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	styleSafeLine = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleGate     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleStalled  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Viewport scales canvas pixels to terminal cells
type Viewport struct {
	Cols, Rows int
	scaleX     float64
	scaleY     float64
}

// NewViewport fits a canvas into cols x rows cells
func NewViewport(canvas layout.Size, cols, rows int) Viewport {
	v := Viewport{Cols: cols, Rows: rows}
	if canvas.Width > 0 {
		v.scaleX = float64(cols) / canvas.Width
	}
	if canvas.Height > 0 {
		v.scaleY = float64(rows) / canvas.Height
	}
	return v
}

// Project converts a canvas point to a cell, clamped to the viewport
func (v Viewport) Project(p layout.Point) (int, int) {
	x := clamp(int(math.Floor(p.X*v.scaleX)), 0, v.Cols-1)
	y := clamp(int(math.Floor(p.Y*v.scaleY)), 0, v.Rows-1)
	return x, y
}

// ProjectRect returns the inclusive cell bounds covered by r
func (v Viewport) ProjectRect(r layout.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = v.Project(layout.Point{X: r.X, Y: r.Y})
	x1, y1 = v.Project(layout.Point{X: r.X + r.Width, Y: r.Y + r.Height})
	// the far edge belongs to the next cell unless the rect is smaller than one
	if x1 > x0 {
		x1--
	}
	if y1 > y0 {
		y1--
	}
	return x0, y0, x1, y1
}

// Glyph returns the arrow for a rotation in radians, 0 facing up and
// positive angles turning clockwise
func Glyph(rotation float64) rune {
	quadrant := int(math.Round(rotation/(math.Pi/2))) % 4
	if quadrant < 0 {
		quadrant += 4
	}
	return headingGlyphs[quadrant]
}

// PhaseColor returns the color trucks in phase are drawn with
func PhaseColor(phase engine.Phase) tcell.Color {
	if c, ok := phaseColors[phase]; ok {
		return c
	}
	return tcell.ColorWhite
}

// TruckStyle returns the style of a truck cell
func TruckStyle(t engine.TruckView) tcell.Style {
	if t.Stalled {
		return styleStalled
	}
	return tcell.StyleDefault.Foreground(PhaseColor(t.Phase)).Bold(true)
}

// StatusLine summarizes a frame for the bottom row
func StatusLine(frame *engine.Frame) string {
	if frame == nil {
		return "waiting for frames..."
	}
	occupied, reserved := 0, 0
	for _, s := range frame.Slots {
		switch {
		case s.Occupied:
			occupied++
		case s.Reserved:
			reserved++
		}
	}
	return fmt.Sprintf(" %s  tick %d  trucks %d  parked %d/%d  reserved %d ",
		frame.Zone, frame.Tick, len(frame.Trucks), occupied, len(frame.Slots), reserved)
}

// Renderer draws frames onto a tcell screen
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a renderer for an initialized screen
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw renders the frame with status on the last row
func (r *Renderer) Draw(frame *engine.Frame, status string) {
	r.screen.Clear()
	width, height := r.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	if frame != nil && height > 1 {
		vp := NewViewport(frame.Canvas, width, height-1)
		r.drawYard(vp, frame)
	}

	r.drawText(0, height-1, padRight(status, width), styleStatus)
	r.screen.Show()
}

func (r *Renderer) drawYard(vp Viewport, frame *engine.Frame) {
	if frame.SafeZoneY > 0 {
		_, y := vp.Project(layout.Point{Y: frame.SafeZoneY})
		for x := 0; x < vp.Cols; x++ {
			r.screen.SetContent(x, y, GlyphSafeLine, nil, styleSafeLine)
		}
	}

	if frame.Obstacle != nil && !frame.Obstacle.Empty() {
		r.fill(vp, *frame.Obstacle, GlyphObstacle, styleObstacle)
	}

	for _, slot := range frame.Slots {
		glyph, style := rune(GlyphFree), styleFree
		switch {
		case slot.Occupied:
			glyph, style = GlyphOccupied, styleOccupied
		case slot.Reserved:
			glyph, style = GlyphReserved, styleReserved
		}
		x0, y0, x1, y1 := r.fill(vp, slot.Rect, glyph, style)

		label := strconv.Itoa(slot.ID)
		if len(label) <= x1-x0+1 {
			cx := x0 + (x1-x0+1-len(label))/2
			r.drawText(cx, (y0+y1)/2, label, styleLabel)
		}
	}

	gx, gy := vp.Project(frame.Gate)
	r.screen.SetContent(gx, gy, GlyphGate, nil, styleGate)

	for _, t := range frame.Trucks {
		x, y := vp.Project(t.Pose.Point())
		r.screen.SetContent(x, y, Glyph(t.Rotation), nil, TruckStyle(t))
	}
}

func (r *Renderer) fill(vp Viewport, rect layout.Rect, glyph rune, style tcell.Style) (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = vp.ProjectRect(rect)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r.screen.SetContent(x, y, glyph, nil, style)
		}
	}
	return x0, y0, x1, y1
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	for _, ch := range text {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// Run draws every frame received until ctx is done, frames is closed or the
// user quits with q, Esc or Ctrl-C. onKey receives every other rune pressed.
func Run(ctx context.Context, screen tcell.Screen, frames <-chan *engine.Frame, onKey func(rune)) error {
	renderer := NewRenderer(screen)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	var last *engine.Frame
	renderer.Draw(last, StatusLine(last))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev) {
					return nil
				}
				if ev.Key() == tcell.KeyRune && onKey != nil {
					onKey(ev.Rune())
				}
			case *tcell.EventResize:
				screen.Sync()
				renderer.Draw(last, StatusLine(last))
			}

		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			last = frame
			renderer.Draw(last, StatusLine(last))
		}
	}
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + fmt.Sprintf("%*s", width-n, "")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
