// Package clock owns the master (frame, scanline, cycle) triple that every
// timing-dependent decision in the core consults.
package clock

// Clock tracks the co-scheduled position of the machine. Nothing else in the
// core measures time; every subsystem asks the Clock "where are we" instead
// of keeping its own counter.
type Clock struct {
	Frame    uint64
	Scanline int // 0..=261
	Cycle    int // 0..=340
}

// New returns a Clock positioned at the start of frame 0.
func New() *Clock {
	return &Clock{Scanline: 0, Cycle: 0}
}

// Reset returns the clock to frame 0, scanline 0, cycle 0.
func (c *Clock) Reset() {
	c.Frame = 0
	c.Scanline = 0
	c.Cycle = 0
}

// IsLastCycleOfFrame reports whether the current position is the final PPU
// cycle of the frame. On the pre-render line, rendering enabled and an odd
// frame index skip cycle (261,340) entirely, so the last cycle of the
// frame becomes (261,339) instead of (261,340).
func (c *Clock) IsLastCycleOfFrame(renderingEnabled bool) bool {
	if c.Scanline != 261 {
		return false
	}
	if c.Cycle == 340 {
		return true
	}
	return c.Cycle == 339 && renderingEnabled && c.Frame%2 == 1
}

// TickPPU advances the clock by one PPU cycle, wrapping scanline/frame and
// applying the odd-frame skip described in spec §4.1.
func (c *Clock) TickPPU(renderingEnabled bool) {
	if c.IsLastCycleOfFrame(renderingEnabled) {
		c.Frame++
		c.Scanline = 0
		c.Cycle = 0
		return
	}
	c.Cycle++
	if c.Cycle > 340 {
		c.Cycle = 0
		c.Scanline++
		if c.Scanline > 261 {
			c.Scanline = 0
			c.Frame++
		}
	}
}

// ScanlineKind classifies the current scanline per spec §4.3.
type ScanlineKind int

const (
	Visible ScanlineKind = iota
	PostRender
	StartVBlank
	Idle
	PreRender
)

// Kind returns which of the five scanline kinds the clock is currently on.
func (c *Clock) Kind() ScanlineKind {
	switch {
	case c.Scanline >= 0 && c.Scanline <= 239:
		return Visible
	case c.Scanline == 240:
		return PostRender
	case c.Scanline == 241:
		return StartVBlank
	case c.Scanline >= 242 && c.Scanline <= 260:
		return Idle
	default: // 261
		return PreRender
	}
}
