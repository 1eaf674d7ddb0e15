package engine

import (
	"slices"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

// SlotFilter restricts allocation to some kinds or areas. Empty fields match
// everything.
type SlotFilter struct {
	Kinds []layout.Kind `json:"kinds,omitempty"`
	Areas []layout.Area `json:"areas,omitempty"`
}

// Match reports whether slot passes the filter
func (f SlotFilter) Match(slot layout.Slot) bool {
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, slot.Kind) {
		return false
	}
	if len(f.Areas) > 0 && !slices.Contains(f.Areas, slot.Area) {
		return false
	}
	return true
}

// FilterForASN derives the default filter from an ASN's location type
func FilterForASN(a asn.ASN) SlotFilter {
	switch a.LocationType {
	case asn.LocationDoor:
		return SlotFilter{Kinds: []layout.Kind{layout.KindDock}}
	case asn.LocationYard:
		return SlotFilter{Kinds: []layout.Kind{layout.KindYard}}
	}
	return SlotFilter{}
}

// Allocate returns the first slot in generation order that is not reserved
// and passes filter
func Allocate(slots []layout.Slot, reserved map[int]bool, filter SlotFilter) (layout.Slot, bool) {
	for _, slot := range slots {
		if reserved[slot.ID] || !filter.Match(slot) {
			continue
		}
		return slot, true
	}
	return layout.Slot{}, false
}
