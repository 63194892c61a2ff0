// Package tools is the interaction state machine: it turns world-hand input
// events into placements, drags, strokes and measurements.
package tools

import (
	"fmt"
	"strings"
)

// Mode is the active tool
type Mode int

const (
	ModeSelect Mode = iota
	ModeMove
	ModeRotate
	ModeDraw
	ModeMeasure
	ModeAdd
)

var modeNames = [...]string{"select", "move", "rotate", "draw", "measure", "add"}

// String returns the mode name shown on the menu
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next advances the ring select, move, rotate, draw, measure, add
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

// ParseMode is the inverse of Mode.String
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Mode(i), nil
		}
	}
	return ModeSelect, fmt.Errorf("unknown mode %q", name)
}
