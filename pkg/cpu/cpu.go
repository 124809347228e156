// Package cpu implements a cycle-accurate 6502 (2A03) core: a per-cycle
// micro-step interpreter driven by static addressing-mode step tables and
// a 256-entry opcode table, including the documented unofficial opcodes.
// Grounded on the teacher's pkg/cpu (register file, flag helpers, stack
// helpers) but restated around single-cycle Step() instead of the
// teacher's single-instruction Step() int, since the PPU/APU need to be
// clocked in lockstep with every individual CPU cycle.
package cpu

import "github.com/nescore/pkg/logger"

// Bus is the memory surface the CPU drives: system RAM, PPU/APU register
// ports, and cartridge space, all behind one Read/Write pair. Also exposes
// the DMA hooks the bus uses to steal cycles without a parallel goroutine.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	TickCPUCycle()
	IsOAMDMAActive() bool
	StepOAMDMA() bool
	IsDMCFetchPending() bool
	ServiceDMCFetch() uint8
}

// CPU is the 6502 register file plus the scratch state the addressing-mode
// step builders and instruction executors share across cycles.
type CPU struct {
	Registers

	Bus Bus
	log *logger.Sinks

	mode RunMode

	queue []microOp
	qi    int

	exec func(c *CPU, val uint8, addr uint16)

	ea      uint16
	ptr     uint8
	lo, hi  uint8
	val     uint8
	crossed bool
	accMode bool

	skipNext  bool // set by the page-crossing early-exit cycle
	pendingPC uint16

	nmiLine intStatus
	nmiPrev bool
	irqLine intStatus

	Cycles int64

	intentKind   IntentKind
	intentVector uint16
	branchDelta  int8
}

// New creates a CPU wired to bus, logging through log (nil becomes a no-op
// sink, matching the rest of the module's non-global logger convention).
func New(bus Bus, log *logger.Sinks) *CPU {
	if log == nil {
		log = logger.Nop()
	}
	c := &CPU{Bus: bus, log: log}
	c.Reset()
	return c
}

// Reset asserts the RESET line: it queues the 7-cycle reset sequence
// (buildResetOps) and drops the CPU into InterruptSequence mode, the same
// way TriggerNMI/SetIRQ feed dispatchNext's beginInterrupt. The queue is
// only drained by subsequent Step() calls, so callers that run the system
// through Core.Step() keep the PPU/APU ticking across all 7 cycles instead
// of the reset happening instantaneously between frames.
func (c *CPU) Reset() {
	c.nmiLine, c.irqLine, c.nmiPrev = intInactive, intInactive, false
	c.Cycles = 0
	c.intentKind = IntentReset
	c.queue = c.buildResetOps()
	c.qi = 0
	c.mode = InterruptSequence
}

// TriggerNMI latches the NMI line; it is edge-triggered, so repeated calls
// before the edge is serviced have no additional effect.
func (c *CPU) TriggerNMI() {
	if !c.nmiPrev {
		c.nmiLine = intPending
	}
	c.nmiPrev = true
}

// ReleaseNMI clears the edge-detector's memory of the line being asserted,
// called by the PPU when it deasserts (e.g. VBlank flag read via $2002).
func (c *CPU) ReleaseNMI() { c.nmiPrev = false }

// SetIRQ sets the level-triggered IRQ line's asserted state.
func (c *CPU) SetIRQ(asserted bool) {
	if asserted {
		if c.irqLine == intInactive {
			c.irqLine = intPending
		}
	} else {
		c.irqLine = intInactive
	}
}

// Step executes exactly one CPU cycle, including DMA-stolen cycles and
// interrupt sequencing, and ticks the bus's open-bus decay once.
func (c *CPU) Step() {
	defer func() {
		c.Cycles++
		c.Bus.TickCPUCycle()
	}()

	if c.Bus.IsDMCFetchPending() {
		c.Bus.ServiceDMCFetch()
		return
	}
	if c.Bus.IsOAMDMAActive() {
		c.Bus.StepOAMDMA()
		return
	}

	switch c.mode {
	case Jammed:
		return
	case StartNext:
		c.pollInterrupts()
		c.dispatchNext()
		return
	case InterruptSequence, Instruction:
		c.runQueuedCycle()
	}
}

// pollInterrupts promotes a Pending interrupt line to Ready at the one
// point in the instruction cycle where real 6502 hardware polls it: here,
// the boundary between instructions.
func (c *CPU) pollInterrupts() {
	if c.nmiLine == intPending {
		c.nmiLine = intReady
	}
	if c.irqLine == intPending && !c.getFlag(FlagInterrupt) {
		c.irqLine = intReady
	}
}

func (c *CPU) dispatchNext() {
	if c.nmiLine == intReady {
		c.nmiLine = intInactive
		c.beginInterrupt(IntentNMI, 0xFFFA)
		return
	}
	if c.irqLine == intReady {
		c.irqLine = intPending
		c.beginInterrupt(IntentIRQ, 0xFFFE)
		return
	}
	opcode := c.fetchPC()
	c.decode(opcode)
}

func (c *CPU) decode(opcode uint8) {
	info := opcodeTable[opcode]
	if info.Mode == AddrAccumulator {
		c.accMode = true
	} else {
		c.accMode = false
	}
	c.exec = info.Exec
	if info.Special != nil {
		c.queue = info.Special(c)
	} else {
		c.queue = c.buildMicroOps(info.Mode, info.Kind)
	}
	c.qi = 0
	c.skipNext = false
	if len(c.queue) == 0 {
		c.mode = StartNext
		return
	}
	c.mode = Instruction
}

func (c *CPU) runQueuedCycle() {
	if c.qi >= len(c.queue) {
		c.mode = StartNext
		return
	}
	op := c.queue[c.qi]
	c.qi++
	op(c)
	if c.mode == Jammed {
		return
	}
	if c.skipNext {
		c.skipNext = false
		c.qi++
	}
	if c.qi >= len(c.queue) {
		c.mode = StartNext
	}
}

// Stack helpers shared by the generic step builders and the special-cased
// stack/interrupt instructions in special.go.
func (c *CPU) push(v uint8) {
	c.Bus.Write(0x100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.Bus.Read(0x100 | uint16(c.SP))
}
