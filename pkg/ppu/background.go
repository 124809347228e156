package ppu

// runBackgroundPipeline drives the 8-cycle fetch sequence (nametable byte,
// attribute byte, pattern low, pattern high) across cycles 1-256 and
// 321-336, plus the shift/reload/increment machinery, per spec.md §4.3.
// Grounded on the teacher's fetchBackgroundTileWithScroll (renderer.go),
// restated around the v/t scroll-address registers instead of recomputing
// tile coordinates from scratch each pixel.
func (p *PPU) runBackgroundPipeline() {
	renderingCycle := (p.clk.Cycle >= 1 && p.clk.Cycle <= 256) || (p.clk.Cycle >= 321 && p.clk.Cycle <= 336)
	if renderingCycle {
		p.shiftBackgroundRegisters()
		switch p.clk.Cycle % 8 {
		case 1:
			p.reloadShiftRegisters()
			p.fetchNametableByte()
		case 3:
			p.fetchAttributeByte()
		case 5:
			p.fetchPatternLow()
		case 7:
			p.fetchPatternHigh()
		case 0:
			if p.renderingEnabled() {
				p.incrementCoarseX()
			}
		}
	}
	if p.clk.Cycle == 256 && p.renderingEnabled() {
		p.incrementY()
	}
	if p.clk.Cycle == 257 {
		p.shiftBackgroundRegisters()
		p.reloadShiftRegisters()
		if p.renderingEnabled() {
			p.copyHorizontal()
		}
	}
	if p.clk.Cycle == 337 || p.clk.Cycle == 339 {
		p.fetchNametableByte() // unused fetches, still consume a nametable read per hardware
	}
}

func (p *PPU) fetchNametableByte() {
	addr := 0x2000 | (p.v & 0x0FFF)
	p.latchNT = p.Bus.ReadNametable(addr)
}

func (p *PPU) fetchAttributeByte() {
	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	at := p.Bus.ReadNametable(addr)
	shift := ((p.v >> 4) & 4) | (p.v & 2)
	p.latchAttr = (at >> shift) & 0x03
}

func (p *PPU) patternTableBase(bgSide bool) uint16 {
	if bgSide {
		if p.ctrl&CtrlBgPattern != 0 {
			return 0x1000
		}
		return 0
	}
	if p.ctrl&CtrlSpritePattern != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) fetchPatternLow() {
	fineY := (p.v >> 12) & 7
	addr := p.patternTableBase(true) + uint16(p.latchNT)*16 + fineY
	p.Mapper.OnPPURead(addr)
	p.latchLo = p.Mapper.PpuPeek(addr).Value
}

func (p *PPU) fetchPatternHigh() {
	fineY := (p.v >> 12) & 7
	addr := p.patternTableBase(true) + uint16(p.latchNT)*16 + fineY + 8
	p.Mapper.OnPPURead(addr)
	p.latchHi = p.Mapper.PpuPeek(addr).Value
}

// reloadShiftRegisters loads the freshly fetched tile into the low byte of
// the 16-bit pattern/attribute shift registers (PrepareForNextTile).
func (p *PPU) reloadShiftRegisters() {
	p.bgShiftLo = (p.bgShiftLo &^ 0xFF) | uint16(p.latchLo)
	p.bgShiftHi = (p.bgShiftHi &^ 0xFF) | uint16(p.latchHi)
	lo, hi := uint16(0), uint16(0)
	if p.latchAttr&1 != 0 {
		lo = 0xFF
	}
	if p.latchAttr&2 != 0 {
		hi = 0xFF
	}
	p.attrShiftLo = (p.attrShiftLo &^ 0xFF) | lo
	p.attrShiftHi = (p.attrShiftHi &^ 0xFF) | hi
}

// shiftBackgroundRegisters is PrepareForNextPixel: shift all four 16-bit
// registers left one bit every rendering cycle.
func (p *PPU) shiftBackgroundRegisters() {
	p.bgShiftLo <<= 1
	p.bgShiftHi <<= 1
	p.attrShiftLo <<= 1
	p.attrShiftHi <<= 1
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontal() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVertical() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// bgPixel selects one background pixel from the shift registers using the
// fine-X scroll, returning its palette byte and whether it's opaque.
func (p *PPU) bgPixel(col int) (uint8, bool) {
	if p.mask&MaskShowBg == 0 || (col < 8 && p.mask&MaskShowBgLeft == 0) {
		return p.Bus.ReadPalette(0x3F00), false
	}
	shift := 15 - p.x
	lo := uint8((p.bgShiftLo >> shift) & 1)
	hi := uint8((p.bgShiftHi >> shift) & 1)
	palLo := uint8((p.attrShiftLo >> shift) & 1)
	palHi := uint8((p.attrShiftHi >> shift) & 1)
	pixel := lo | hi<<1
	if pixel == 0 {
		return p.Bus.ReadPalette(0x3F00), false
	}
	palette := palLo | palHi<<1
	addr := 0x3F00 + uint16(palette)*4 + uint16(pixel)
	return p.Bus.ReadPalette(addr), true
}
