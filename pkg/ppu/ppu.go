// Package ppu implements the NES picture processing unit as a per-PPU-cycle
// action grid: one scanline kind (visible/post-render/start-vblank/idle/
// pre-render) and cycle number selects a fixed, ordered list of actions,
// exactly as spec.md §4.3 describes. Grounded on the teacher's pkg/ppu
// (register bit layout, v/t/x/w scroll machine, palette conversion) but
// restated around Step() running one PPU cycle at a time instead of the
// teacher's Step() that advanced a whole CPU-cycle's worth of PPU clocks
// internally, and around bus.Bus/mapper.Mapper for nametable/palette/CHR
// storage instead of the teacher's own VRAM array. Scanline/cycle/frame
// position and the odd-frame skip live in clock.Clock rather than as
// private counters here, so the (scanline-kind, cycle) dispatch in Step
// reads off Clock.Kind() instead of re-deriving it.
package ppu

import (
	"github.com/nescore/pkg/clock"
	"github.com/nescore/pkg/logger"
	"github.com/nescore/pkg/mapper"
)

// PPUCTRL/PPUMASK/PPUSTATUS bit layout (teacher's pkg/ppu/ppu.go constants).
const (
	CtrlNametableMask = 0x03
	CtrlIncrement32   = 0x04
	CtrlSpritePattern = 0x08
	CtrlBgPattern     = 0x10
	CtrlSpriteSize    = 0x20
	CtrlMasterSlave   = 0x40
	CtrlNMIEnable     = 0x80

	MaskGreyscale      = 0x01
	MaskShowBgLeft     = 0x02
	MaskShowSpriteLeft = 0x04
	MaskShowBg         = 0x08
	MaskShowSprites    = 0x10
	MaskEmphasisMask   = 0xE0

	StatusOverflow = 0x20
	StatusSprite0  = 0x40
	StatusVBlank   = 0x80
)

// Bus is the PPU-visible nametable/palette surface, satisfied by bus.Bus.
type Bus interface {
	ReadNametable(addr uint16) uint8
	WriteNametable(addr uint16, value uint8)
	ReadPalette(addr uint16) uint8
	WritePalette(addr uint16, value uint8)
}

// CPUNotify is the NMI edge interface the PPU drives, satisfied by cpu.CPU.
type CPUNotify interface {
	TriggerNMI()
	ReleaseNMI()
}

// Mapper is the CHR-space surface the PPU peeks/pokes through and the A12
// edge notification mapper IRQ counters (e.g. MMC3) depend on.
type Mapper interface {
	PpuPeek(addr uint16) mapper.PpuPeek
	PpuWrite(addr uint16, value uint8)
	OnPPURead(addr uint16)
}

const (
	ScanlinesPerFrame = 262
	CyclesPerScanline = 341
	PreRenderLine     = 261
	PostRenderLine    = 240
	VBlankStartLine   = 241
)

// PPU is the full picture-processing-unit state: registers, the scroll
// address machine, background/sprite shift pipelines, and the persistent
// 256x240 ARGB frame buffer.
type PPU struct {
	Bus    Bus
	Mapper Mapper
	CPU    CPUNotify
	log    *logger.Sinks

	ctrl uint8
	mask uint8

	statusOverflow bool
	statusSprite0  bool
	statusVBlank   bool

	oamAddr uint8
	OAM     [256]uint8

	v, t uint16
	x    uint8
	w    bool

	readBuffer uint8

	clk *clock.Clock

	bgShiftLo, bgShiftHi     uint16
	attrShiftLo, attrShiftHi uint16
	latchNT, latchAttr       uint8
	latchLo, latchHi         uint8

	secondaryOAM      [32]uint8
	spriteCount       int
	sprite0OnThisLine bool
	spritePatLo       [8]uint8
	spritePatHi     [8]uint8
	spriteX         [8]uint8
	spriteAttr      [8]uint8
	spriteIsZero    [8]bool
	oamEvalN        int
	oamEvalM        int
	oamEvalCount    int
	oamEvalOverflow bool

	suppressVBlankThisFrame bool

	FrameBuffer   [256 * 240]uint32
	FrameComplete bool
}

// New creates a PPU with no Bus/Mapper/CPU wired; call the Set* methods
// before running the core.
func New(log *logger.Sinks) *PPU {
	if log == nil {
		log = logger.Nop()
	}
	p := &PPU{log: log, clk: clock.New()}
	p.Reset()
	return p
}

func (p *PPU) SetBus(b Bus)       { p.Bus = b }
func (p *PPU) SetMapper(m Mapper) { p.Mapper = m }
func (p *PPU) SetCPU(c CPUNotify) { p.CPU = c }

// ScanlineCycle reports the PPU's current (scanline, cycle) position, for
// diagnostics and trace-formatting tools (e.g. the nestest golden-trace
// test) that need to stamp a PPU position alongside the CPU state.
func (p *PPU) ScanlineCycle() (int, int) { return p.clk.Scanline, p.clk.Cycle }

// Reset puts the PPU in its power-up state: rendering disabled, scanline
// counter at the pre-render line so the first Step begins a fresh frame.
func (p *PPU) Reset() {
	p.ctrl, p.mask = 0, 0
	p.statusOverflow, p.statusSprite0, p.statusVBlank = false, false, false
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.clk.Reset()
	p.clk.Scanline = PreRenderLine
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(MaskShowBg|MaskShowSprites) != 0
}

// Step executes exactly one PPU cycle (341 per scanline, 262 scanlines per
// frame) and runs the action list the current (scanline-kind, cycle) pair
// selects, per spec.md §4.3's action grid.
func (p *PPU) Step() {
	switch p.clk.Kind() {
	case clock.PreRender:
		p.stepPreRender()
	case clock.Visible:
		p.stepVisible()
	case clock.PostRender:
		// post-render: idle, no actions.
	case clock.StartVBlank:
		if p.clk.Cycle == 1 {
			p.startVBlank()
		}
	}

	startFrame := p.clk.Frame
	p.clk.TickPPU(p.renderingEnabled())
	if p.clk.Frame != startFrame {
		p.FrameComplete = true
	}
}

func (p *PPU) startVBlank() {
	if p.suppressVBlankThisFrame {
		p.suppressVBlankThisFrame = false
		return
	}
	p.statusVBlank = true
	if p.ctrl&CtrlNMIEnable != 0 && p.CPU != nil {
		p.CPU.TriggerNMI()
	}
}

func (p *PPU) stepPreRender() {
	if p.clk.Cycle == 1 {
		p.statusVBlank = false
		p.statusSprite0 = false
		p.statusOverflow = false
		if p.CPU != nil {
			p.CPU.ReleaseNMI()
		}
	}
	p.runBackgroundPipeline()
	if p.clk.Cycle >= 280 && p.clk.Cycle <= 304 && p.renderingEnabled() {
		p.copyVertical()
	}
	if p.clk.Cycle >= 1 && p.clk.Cycle <= 8 && p.renderingEnabled() && p.oamAddr >= 8 {
		// OAMADDR corruption: the pre-render line's secondary-OAM clear
		// glitches the first 8 OAM bytes when OAMADDR didn't start at 0.
		p.OAM[p.clk.Cycle-1] = p.OAM[(int(p.oamAddr)&0xF8)+p.clk.Cycle-1]
	}
	p.runSpritePipeline()
}

func (p *PPU) stepVisible() {
	if p.clk.Cycle >= 1 && p.clk.Cycle <= 256 {
		p.emitPixel()
	}
	p.runBackgroundPipeline()
	p.runSpritePipeline()
}

func (p *PPU) emitPixel() {
	col := p.clk.Cycle - 1
	row := p.clk.Scanline
	bg, bgOpaque := p.bgPixel(col)
	sp, spOpaque, spPriority, spIsZero := p.spritePixel(col)

	var out uint8
	hit := false
	switch {
	case !bgOpaque && !spOpaque:
		out = p.Bus.ReadPalette(0x3F00)
	case !bgOpaque && spOpaque:
		out = sp
	case bgOpaque && !spOpaque:
		out = bg
	default:
		if spIsZero && col != 255 {
			hit = true
		}
		if spPriority {
			out = bg
		} else {
			out = sp
		}
	}
	if hit {
		p.statusSprite0 = true
	}
	p.FrameBuffer[row*256+col] = argbColor(out, p.mask&MaskEmphasisMask)
}
