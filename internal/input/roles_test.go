package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goroom/internal/host"
)

var (
	controller0 = host.Slot{Kind: host.SlotController, Index: 0}
	controller1 = host.Slot{Kind: host.SlotController, Index: 1}
	hand0       = host.Slot{Kind: host.SlotHand, Index: 0}
	hand1       = host.Slot{Kind: host.SlotHand, Index: 1}
)

func TestRolesExplicitHandedness(t *testing.T) {
	r := NewRoles()
	left := host.InputSource{ID: "l", Handedness: host.HandLeft}
	right := host.InputSource{ID: "r", Handedness: host.HandRight}
	r.Connect(controller0, left)
	r.Connect(controller1, right)

	assert.True(t, r.IsUIHand(left))
	assert.False(t, r.IsWorldHand(left))
	assert.True(t, r.IsWorldHand(right))
	assert.False(t, r.IsUIHand(right))
}

func TestRolesInferFromSibling(t *testing.T) {
	r := NewRoles()
	known := host.InputSource{ID: "a", Handedness: host.HandRight}
	unknown := host.InputSource{ID: "b"}
	// controller1 would default to left; the sibling decides instead
	r.Connect(controller1, known)
	r.Connect(controller0, unknown)

	assert.Equal(t, host.HandLeft, r.Handedness(unknown))
	assert.True(t, r.IsUIHand(unknown))
}

func TestRolesSlotDefaults(t *testing.T) {
	r := NewRoles()
	c0 := host.InputSource{ID: "c0"}
	c1 := host.InputSource{ID: "c1"}
	h0 := host.InputSource{ID: "h0", HasHand: true}
	h1 := host.InputSource{ID: "h1", HasHand: true}
	r.Connect(controller0, c0)
	r.Connect(controller1, c1)
	r.Connect(hand0, h0)
	r.Connect(hand1, h1)

	assert.Equal(t, host.HandRight, r.Handedness(c0))
	assert.Equal(t, host.HandLeft, r.Handedness(c1))
	assert.Equal(t, host.HandLeft, r.Handedness(h0))
	assert.Equal(t, host.HandRight, r.Handedness(h1))
}

func TestRolesUnknownSourceIsNeither(t *testing.T) {
	r := NewRoles()
	stranger := host.InputSource{ID: "x"}
	assert.False(t, r.IsUIHand(stranger))
	assert.False(t, r.IsWorldHand(stranger))
}

func TestRolesNeverBoth(t *testing.T) {
	r := NewRoles()
	sources := []host.InputSource{
		{ID: "a", Handedness: host.HandLeft},
		{ID: "b"},
		{ID: "c", HasHand: true},
		{ID: "d", Handedness: host.HandRight, HasHand: true},
	}
	for i, slot := range []host.Slot{controller0, controller1, hand0, hand1} {
		r.Connect(slot, sources[i])
	}
	for _, s := range sources {
		assert.False(t, r.IsUIHand(s) && r.IsWorldHand(s), "source %s has both roles", s.ID)
	}
}

func TestRolesDisconnectAndRefresh(t *testing.T) {
	r := NewRoles()
	r.Connect(hand1, host.InputSource{ID: "h"})
	r.Refresh([]host.InputSource{{ID: "h", Handedness: host.HandLeft, HasHand: true}})

	src, ok := r.Bound(hand1)
	require.True(t, ok)
	assert.Equal(t, host.HandLeft, src.Handedness)

	ui, ok := r.UISource()
	require.True(t, ok)
	assert.Equal(t, host.SourceID("h"), ui.ID)

	r.Disconnect(hand1)
	_, ok = r.UISource()
	assert.False(t, ok)
	assert.Equal(t, host.HandLeft, r.Handedness(src), "explicit handedness survives unbinding")
	assert.Equal(t, host.HandNone, r.Handedness(host.InputSource{ID: "h"}))
}
