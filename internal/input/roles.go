package input

import (
	"github.com/philipparndt/goroom/internal/host"
)

// Roles assigns the UI role to the left hand and the world role to the right
// hand, for controllers and tracked hands alike.
type Roles struct {
	bound map[host.Slot]host.InputSource
}

// NewRoles creates a policy with no connected slots
func NewRoles() *Roles {
	return &Roles{bound: make(map[host.Slot]host.InputSource)}
}

// Connect binds a source to a slot
func (r *Roles) Connect(slot host.Slot, src host.InputSource) {
	r.bound[slot] = src
}

// Disconnect unbinds a slot
func (r *Roles) Disconnect(slot host.Slot) {
	delete(r.bound, slot)
}

// Reset unbinds every slot
func (r *Roles) Reset() {
	clear(r.bound)
}

// Refresh updates bound sources with the latest state reported for their id
func (r *Roles) Refresh(sources []host.InputSource) {
	for slot, b := range r.bound {
		for _, s := range sources {
			if s.ID == b.ID {
				r.bound[slot] = s
				break
			}
		}
	}
}

// Bound returns the source in a slot
func (r *Roles) Bound(slot host.Slot) (host.InputSource, bool) {
	s, ok := r.bound[slot]
	return s, ok
}

// slotOf finds the slot a source id is bound to
func (r *Roles) slotOf(id host.SourceID) (host.Slot, bool) {
	for slot, b := range r.bound {
		if b.ID == id {
			return slot, true
		}
	}
	return host.Slot{}, false
}

// Handedness resolves the physical hand of a source: explicit handedness
// first, then the opposite of an explicitly known sibling, then the slot default.
// Sources that are in no slot and report no handedness resolve to HandNone.
func (r *Roles) Handedness(src host.InputSource) host.Handedness {
	if src.Handedness != host.HandNone {
		return src.Handedness
	}
	if src.ID == "" {
		return host.HandNone
	}
	slot, ok := r.slotOf(src.ID)
	if !ok {
		return host.HandNone
	}
	if b := r.bound[slot]; b.Handedness != host.HandNone {
		return b.Handedness
	}
	sibling := host.Slot{Kind: slot.Kind, Index: 1 - slot.Index}
	if s, ok := r.bound[sibling]; ok && s.Handedness != host.HandNone {
		return s.Handedness.Opposite()
	}
	return slotDefault(slot)
}

// Controller 1 and hand 0 are the left side by runtime convention
func slotDefault(slot host.Slot) host.Handedness {
	switch {
	case slot.Kind == host.SlotController && slot.Index == 0:
		return host.HandRight
	case slot.Kind == host.SlotController:
		return host.HandLeft
	case slot.Index == 0:
		return host.HandLeft
	default:
		return host.HandRight
	}
}

// IsUIHand reports whether the source drives the in-scene menu
func (r *Roles) IsUIHand(src host.InputSource) bool {
	return r.Handedness(src) == host.HandLeft
}

// IsWorldHand reports whether the source may mutate the world
func (r *Roles) IsWorldHand(src host.InputSource) bool {
	return r.Handedness(src) == host.HandRight
}

// UISource returns the connected source acting as the UI hand, preferring
// tracked hands over controllers
func (r *Roles) UISource() (host.InputSource, bool) {
	return r.firstWith(host.HandLeft)
}

// WorldSource returns the connected source acting as the world hand
func (r *Roles) WorldSource() (host.InputSource, bool) {
	return r.firstWith(host.HandRight)
}

func (r *Roles) firstWith(hand host.Handedness) (host.InputSource, bool) {
	order := []host.Slot{
		{Kind: host.SlotHand, Index: 0}, {Kind: host.SlotHand, Index: 1},
		{Kind: host.SlotController, Index: 0}, {Kind: host.SlotController, Index: 1},
	}
	for _, slot := range order {
		if s, ok := r.bound[slot]; ok && r.Handedness(s) == hand {
			return s, true
		}
	}
	return host.InputSource{}, false
}
