package ppu

// runSpritePipeline drives the three sprite sub-phases spec.md §4.3 names:
// StartClearingSecondaryOam (cycles 1-64), StartSpriteEvaluation (cycles
// 65-256, ReadOamByte/WriteSecondaryOamByte), and StartLoadingOamRegisters
// (cycles 257-320, ReadSpriteY/PatternIndex/Attributes/X). Grounded on the
// teacher's renderer.go sprite-fetch helpers, restated as the real
// cycle-driven evaluation state machine instead of the teacher's
// whole-scanline-at-once sprite gather.
func (p *PPU) runSpritePipeline() {
	switch {
	case p.clk.Cycle == 1:
		p.startClearingSecondaryOAM()
	case p.clk.Cycle >= 1 && p.clk.Cycle <= 64:
		if p.clk.Cycle%2 == 0 {
			p.secondaryOAM[(p.clk.Cycle/2)-1] = 0xFF
		}
	case p.clk.Cycle == 65:
		p.startSpriteEvaluation()
	case p.clk.Cycle >= 65 && p.clk.Cycle <= 256:
		if p.clk.Cycle%2 == 0 {
			p.evaluateSpriteStep()
		}
	case p.clk.Cycle == 257:
		p.startLoadingOamRegisters()
	case p.clk.Cycle >= 257 && p.clk.Cycle <= 320:
		p.loadSpriteRegistersStep()
	}
}

func (p *PPU) startClearingSecondaryOAM() {
	if !p.renderingEnabled() {
		return
	}
}

// startSpriteEvaluation resets the evaluation cursor. Real hardware spreads
// ReadOamByte/WriteSecondaryOamByte across cycles 65-256 one pair at a time;
// evaluateSpriteStep below performs exactly one such read+decide per
// even cycle, preserving the real 192-cycle pacing.
func (p *PPU) startSpriteEvaluation() {
	p.oamEvalN = 0
	p.oamEvalM = 0
	p.oamEvalCount = 0
	p.oamEvalOverflow = false
	p.spriteCount = 0
	p.sprite0OnThisLine = false
	p.statusOverflow = false
}

// evaluateSpriteStep implements one ReadOamByte+WriteSecondaryOamByte pair:
// classic 8 (or 16, if 8x16 sprites) in-range test against OAM[n].Y, with
// the sprite-overflow hardware bug (m increments without resetting n once
// the 8-sprite cap is hit) reproduced by continuing to scan with the
// diagonal n/m cursor instead of resetting m to 0.
func (p *PPU) evaluateSpriteStep() {
	if !p.renderingEnabled() {
		return
	}
	if p.oamEvalN >= 64 {
		return
	}
	spriteHeight := 8
	if p.ctrl&CtrlSpriteSize != 0 {
		spriteHeight = 16
	}
	y := p.OAM[p.oamEvalN*4]
	inRange := p.clk.Scanline >= int(y) && p.clk.Scanline < int(y)+spriteHeight

	if p.oamEvalCount < 8 {
		if inRange {
			base := p.oamEvalCount * 4
			copy(p.secondaryOAM[base:base+4], p.OAM[p.oamEvalN*4:p.oamEvalN*4+4])
			if p.oamEvalN == 0 {
				p.sprite0OnThisLine = true
			}
			p.oamEvalCount++
		}
		p.oamEvalN++
		return
	}

	// 8 sprites already found: hardware keeps scanning for overflow using
	// the buggy diagonal cursor rather than properly re-testing Y: n and m
	// advance together, so the byte tested as Y drifts through the
	// tile/attribute/X bytes of later sprites.
	y = p.OAM[p.oamEvalN*4+p.oamEvalM]
	if p.clk.Scanline >= int(y) && p.clk.Scanline < int(y)+spriteHeight {
		p.oamEvalOverflow = true
		p.statusOverflow = true
	}
	p.oamEvalM = (p.oamEvalM + 1) & 3
	p.oamEvalN++
}

func (p *PPU) startLoadingOamRegisters() {
	p.spriteCount = p.oamEvalCount
	for i := 0; i < 8; i++ {
		p.spriteIsZero[i] = i == 0 && p.sprite0OnThisLine
	}
}

// loadSpriteRegistersStep fetches each loaded sprite's pattern bytes over
// its assigned 8-cycle window within 257-320, mirroring
// ReadSpriteY/PatternIndex/Attributes/X/DummyReadSpriteX/
// IncrementOamRegisterIndex.
func (p *PPU) loadSpriteRegistersStep() {
	slot := (p.clk.Cycle - 257) / 8
	sub := (p.clk.Cycle - 257) % 8
	if slot >= 8 {
		return
	}
	if sub != 7 {
		return // only the pattern-high fetch (last sub-cycle) needs action here
	}
	if slot >= p.spriteCount {
		p.spritePatLo[slot] = 0
		p.spritePatHi[slot] = 0
		p.spriteX[slot] = 0xFF
		p.spriteAttr[slot] = 0
		return
	}
	y := p.secondaryOAM[slot*4]
	tile := p.secondaryOAM[slot*4+1]
	attr := p.secondaryOAM[slot*4+2]
	x := p.secondaryOAM[slot*4+3]

	spriteHeight := 8
	if p.ctrl&CtrlSpriteSize != 0 {
		spriteHeight = 16
	}
	row := p.clk.Scanline - int(y)
	if attr&0x80 != 0 { // vertical flip
		row = spriteHeight - 1 - row
	}

	var base uint16
	var patternIndex uint8
	if spriteHeight == 16 {
		base = uint16(tile&1) * 0x1000
		patternIndex = tile &^ 1
		if row >= 8 {
			patternIndex++
			row -= 8
		}
	} else {
		base = p.patternTableBase(false)
		patternIndex = tile
	}
	addr := base + uint16(patternIndex)*16 + uint16(row)
	p.Mapper.OnPPURead(addr)
	lo := p.Mapper.PpuPeek(addr).Value
	p.Mapper.OnPPURead(addr + 8)
	hi := p.Mapper.PpuPeek(addr + 8).Value
	if attr&0x40 != 0 { // horizontal flip
		lo = reverseBits(lo)
		hi = reverseBits(hi)
	}
	p.spritePatLo[slot] = lo
	p.spritePatHi[slot] = hi
	p.spriteX[slot] = x
	p.spriteAttr[slot] = attr
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// spritePixel selects the first opaque sprite (by priority order, slot 0
// highest) whose X counter has reached 0 for this column.
func (p *PPU) spritePixel(col int) (value uint8, opaque bool, behindBg bool, isZero bool) {
	if p.mask&MaskShowSprites == 0 || (col < 8 && p.mask&MaskShowSpriteLeft == 0) {
		return 0, false, false, false
	}
	for i := 0; i < p.spriteCount && i < 8; i++ {
		offset := col - int(p.spriteX[i])
		if offset < 0 || offset > 7 {
			continue
		}
		bit := 7 - uint(offset)
		lo := (p.spritePatLo[i] >> bit) & 1
		hi := (p.spritePatHi[i] >> bit) & 1
		pixel := lo | hi<<1
		if pixel == 0 {
			continue
		}
		palette := p.spriteAttr[i] & 0x03
		addr := 0x3F10 + uint16(palette)*4 + uint16(pixel)
		return p.Bus.ReadPalette(addr), true, p.spriteAttr[i]&0x20 != 0, p.spriteIsZero[i]
	}
	return 0, false, false, false
}
