package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidLayout = errors.New("invalid layout")
	ErrUnknownSlot   = errors.New("unknown slot")
)

// AreaSpec describes one row or column of bays
type AreaSpec struct {
	Area        Area        `json:"area"`
	Origin      Point       `json:"origin"`
	Orientation Orientation `json:"orientation,omitempty"`
	SlotWidth   float64     `json:"slot_width,omitempty"`
	SlotHeight  float64     `json:"slot_height,omitempty"`
	Gap         float64     `json:"gap"`
	Count       int         `json:"count"`
	FirstID     int         `json:"first_id,omitempty"` // 0 continues numbering from the previous area
	Kind        Kind        `json:"kind,omitempty"`
}

// footprint resolves the slot width and height for the area
func (s AreaSpec) footprint() (float64, float64) {
	orientation := s.Orientation
	if orientation == "" {
		orientation = s.Area.DefaultOrientation()
	}

	w, h := DefaultBayWidth, DefaultBayLength
	if orientation == Horizontal {
		w, h = DefaultBayLength, DefaultBayWidth
	}
	if s.SlotWidth > 0 {
		w = s.SlotWidth
	}
	if s.SlotHeight > 0 {
		h = s.SlotHeight
	}
	return w, h
}

// ZoneConfig is the geometric description of a yard
type ZoneConfig struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Canvas      Size       `json:"canvas"`
	Gate        Point      `json:"gate"`
	SafeZoneY   float64    `json:"safe_zone_y"`
	Obstacle    *Rect      `json:"obstacle,omitempty"`
	Areas       []AreaSpec `json:"areas"`
}

// Generate lays out the slots described by specs. Slots within an area are
// placed left to right for top and bottom areas and top to bottom for left
// and right areas. IDs are sequential across areas in declaration order.
func Generate(specs []AreaSpec) []Slot {
	var slots []Slot
	nextID := 1

	for _, spec := range specs {
		if spec.Count <= 0 {
			continue
		}
		if spec.FirstID > 0 {
			nextID = spec.FirstID
		}

		kind := spec.Kind
		if kind == "" {
			kind = spec.Area.DefaultKind()
		}

		w, h := spec.footprint()
		horizontalRun := spec.Area.DefaultOrientation() == Vertical

		for i := 0; i < spec.Count; i++ {
			rect := Rect{X: spec.Origin.X, Y: spec.Origin.Y, Width: w, Height: h}
			if horizontalRun {
				rect.X += float64(i) * (w + spec.Gap)
			} else {
				rect.Y += float64(i) * (h + spec.Gap)
			}
			slots = append(slots, Slot{ID: nextID, Rect: rect, Area: spec.Area, Kind: kind})
			nextID++
		}
	}

	return slots
}

// ValidateZoneConfig checks a zone description before any layout is built
func ValidateZoneConfig(cfg *ZoneConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: zone config is nil", ErrInvalidLayout)
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLayout)
	}
	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas must have positive width and height, got %.0fx%.0f",
			ErrInvalidLayout, cfg.Canvas.Width, cfg.Canvas.Height)
	}

	lastID := 0
	for i, spec := range cfg.Areas {
		if !spec.Area.Valid() {
			return fmt.Errorf("%w: areas[%d] has unknown area %q", ErrInvalidLayout, i, spec.Area)
		}
		if spec.Orientation != "" && spec.Orientation != Vertical && spec.Orientation != Horizontal {
			return fmt.Errorf("%w: areas[%d] has unknown orientation %q", ErrInvalidLayout, i, spec.Orientation)
		}
		if spec.Kind != "" && spec.Kind != KindYard && spec.Kind != KindDock {
			return fmt.Errorf("%w: areas[%d] has unknown kind %q", ErrInvalidLayout, i, spec.Kind)
		}
		if spec.SlotWidth < 0 || spec.SlotHeight < 0 || spec.Gap < 0 {
			return fmt.Errorf("%w: areas[%d] dimensions must not be negative", ErrInvalidLayout, i)
		}
		if spec.Count <= 0 {
			continue
		}
		if spec.FirstID > 0 && spec.FirstID <= lastID {
			return fmt.Errorf("%w: areas[%d] first_id %d must be greater than %d",
				ErrInvalidLayout, i, spec.FirstID, lastID)
		}
		if spec.FirstID > 0 {
			lastID = spec.FirstID + spec.Count - 1
		} else {
			lastID += spec.Count
		}
	}

	if cfg.Obstacle != nil {
		if cfg.Obstacle.Empty() {
			return fmt.Errorf("%w: obstacle must have positive size", ErrInvalidLayout)
		}
		if cfg.SafeZoneY >= cfg.Obstacle.Y && cfg.SafeZoneY <= cfg.Obstacle.Y+cfg.Obstacle.Height {
			return fmt.Errorf("%w: safe_zone_y %.0f runs through the obstacle", ErrInvalidLayout, cfg.SafeZoneY)
		}
	}

	return nil
}

// Layout is the immutable slot registry of one zone
type Layout struct {
	Name      string
	Canvas    Size
	Gate      Point
	SafeZoneY float64
	Obstacle  *Rect

	slots []Slot
	index map[int]int
}

// NewLayout validates cfg and generates its slots
func NewLayout(cfg *ZoneConfig) (*Layout, error) {
	if err := ValidateZoneConfig(cfg); err != nil {
		return nil, err
	}

	slots := Generate(cfg.Areas)
	index := make(map[int]int, len(slots))
	for i, slot := range slots {
		if _, dup := index[slot.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate slot id %d", ErrInvalidLayout, slot.ID)
		}
		index[slot.ID] = i
	}

	var obstacle *Rect
	if cfg.Obstacle != nil {
		o := *cfg.Obstacle
		obstacle = &o
	}

	return &Layout{
		Name:      cfg.Name,
		Canvas:    cfg.Canvas,
		Gate:      cfg.Gate,
		SafeZoneY: cfg.SafeZoneY,
		Obstacle:  obstacle,
		slots:     slots,
		index:     index,
	}, nil
}

// Slots returns a copy of the slots in generation order
func (l *Layout) Slots() []Slot {
	out := make([]Slot, len(l.slots))
	copy(out, l.slots)
	return out
}

// Len returns the number of slots
func (l *Layout) Len() int {
	return len(l.slots)
}

// Slot looks up a slot by id
func (l *Layout) Slot(id int) (Slot, bool) {
	i, ok := l.index[id]
	if !ok {
		return Slot{}, false
	}
	return l.slots[i], true
}

// MustSlot looks up a slot that is known to exist. A miss means a caller kept
// a slot id from another layout and is treated as a programming error.
func (l *Layout) MustSlot(id int) Slot {
	slot, ok := l.Slot(id)
	if !ok {
		panic(fmt.Sprintf("layout %q: %v %d", l.Name, ErrUnknownSlot, id))
	}
	return slot
}

// CountByArea returns the number of slots per area
func (l *Layout) CountByArea() map[Area]int {
	counts := make(map[Area]int)
	for _, slot := range l.slots {
		counts[slot.Area]++
	}
	return counts
}
