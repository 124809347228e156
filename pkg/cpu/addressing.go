package cpu

// AddrMode names one of the 6502's addressing modes. Static step tables
// are generated per (AddrMode, OpKind) pair in buildMicroOps rather than
// per opcode: the decode PLA of a real 6502 keys its cycle schedule off
// exactly that pair, and every opcode sharing a mode/kind shares its
// schedule too.
type AddrMode int

const (
	AddrImplied AddrMode = iota
	AddrAccumulator
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrZeroPageY
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirectX
	AddrIndirectY
	AddrIndirect // JMP ($nnnn) only
	AddrRelative // branches only
)

// OpKind classifies how an instruction uses the address its addressing
// mode resolves: Read loads an operand, Write stores one, RMW does both
// with the dummy-write quirk in between, and the Special kinds are the
// handful of instructions (stack ops, jumps, BRK/RTI) whose cycle
// sequence doesn't factor through a generic addressing mode at all.
type OpKind int

const (
	KindRead OpKind = iota
	KindWrite
	KindRMW
	KindImplied
	KindSpecial
)

type microOp func(c *CPU)

// buildMicroOps returns the cycles after the opcode fetch for one
// instruction dispatch. The opcode fetch itself (cycle 1) already
// happened in Step before this is called.
func (c *CPU) buildMicroOps(mode AddrMode, kind OpKind) []microOp {
	switch kind {
	case KindImplied:
		return []microOp{func(c *CPU) { c.Bus.Read(c.PC); c.exec(c, 0, 0) }}
	case KindRead:
		return c.buildReadOps(mode)
	case KindWrite:
		return c.buildWriteOps(mode)
	case KindRMW:
		return c.buildRMWOps(mode)
	}
	return nil
}

func (c *CPU) fetchPC() uint8 {
	v := c.Bus.Read(c.PC)
	c.PC++
	return v
}

// --- Read-class: operand ends up in c.val, then c.exec runs. ---

func (c *CPU) buildReadOps(mode AddrMode) []microOp {
	switch mode {
	case AddrImmediate:
		return []microOp{func(c *CPU) {
			c.val = c.fetchPC()
			c.exec(c, c.val, 0)
		}}
	case AddrZeroPage:
		return []microOp{
			func(c *CPU) { c.ea = uint16(c.fetchPC()) },
			func(c *CPU) { c.val = c.Bus.Read(c.ea); c.exec(c, c.val, c.ea) },
		}
	case AddrZeroPageX, AddrZeroPageY:
		return []microOp{
			func(c *CPU) { c.ptr = c.fetchPC() },
			func(c *CPU) { c.Bus.Read(uint16(c.ptr)); c.ea = uint16(c.ptr + c.indexFor(mode)) },
			func(c *CPU) { c.val = c.Bus.Read(c.ea); c.exec(c, c.val, c.ea) },
		}
	case AddrAbsolute:
		return []microOp{
			func(c *CPU) { c.lo = c.fetchPC() },
			func(c *CPU) { c.hi = c.fetchPC(); c.ea = uint16(c.hi)<<8 | uint16(c.lo) },
			func(c *CPU) { c.val = c.Bus.Read(c.ea); c.exec(c, c.val, c.ea) },
		}
	case AddrAbsoluteX, AddrAbsoluteY:
		return c.buildAbsIndexedRead(mode)
	case AddrIndirectX:
		return []microOp{
			func(c *CPU) { c.ptr = c.fetchPC() },
			func(c *CPU) { c.Bus.Read(uint16(c.ptr)) },
			func(c *CPU) { c.lo = c.Bus.Read(uint16(c.ptr + c.X)) },
			func(c *CPU) { c.hi = c.Bus.Read(uint16(c.ptr + c.X + 1)); c.ea = uint16(c.hi)<<8 | uint16(c.lo) },
			func(c *CPU) { c.val = c.Bus.Read(c.ea); c.exec(c, c.val, c.ea) },
		}
	case AddrIndirectY:
		return c.buildIndirectYRead()
	}
	return nil
}

func (c *CPU) indexFor(mode AddrMode) uint8 {
	if mode == AddrZeroPageY || mode == AddrAbsoluteY {
		return c.Y
	}
	return c.X
}

func (c *CPU) buildAbsIndexedRead(mode AddrMode) []microOp {
	return []microOp{
		func(c *CPU) { c.lo = c.fetchPC() },
		func(c *CPU) {
			c.hi = c.fetchPC()
			sum := uint16(c.lo) + uint16(c.indexFor(mode))
			c.crossed = sum > 0xFF
			c.ea = uint16(c.hi)<<8 + sum
		},
		func(c *CPU) {
			// Wrong-page guess read; real on a page-cross, otherwise this
			// cycle also happens to be the real read.
			wrong := (uint16(c.hi) << 8) | (c.ea & 0xFF)
			v := c.Bus.Read(wrong)
			if !c.crossed {
				c.val = v
				c.exec(c, c.val, c.ea)
				c.skipNext = true
			}
		},
		func(c *CPU) { c.val = c.Bus.Read(c.ea); c.exec(c, c.val, c.ea) },
	}
}

func (c *CPU) buildIndirectYRead() []microOp {
	return []microOp{
		func(c *CPU) { c.ptr = c.fetchPC() },
		func(c *CPU) { c.lo = c.Bus.Read(uint16(c.ptr)) },
		func(c *CPU) {
			c.hi = c.Bus.Read(uint16(c.ptr + 1))
			sum := uint16(c.lo) + uint16(c.Y)
			c.crossed = sum > 0xFF
			c.ea = uint16(c.hi)<<8 + sum
		},
		func(c *CPU) {
			wrong := (uint16(c.hi) << 8) | (c.ea & 0xFF)
			v := c.Bus.Read(wrong)
			if !c.crossed {
				c.val = v
				c.exec(c, c.val, c.ea)
				c.skipNext = true
			}
		},
		func(c *CPU) { c.val = c.Bus.Read(c.ea); c.exec(c, c.val, c.ea) },
	}
}

// --- Write-class: address resolves the same way as Read, minus the
// page-crossing early-exit (a store always takes the full cycle count). ---

func (c *CPU) buildWriteOps(mode AddrMode) []microOp {
	switch mode {
	case AddrZeroPage:
		return []microOp{
			func(c *CPU) { c.ea = uint16(c.fetchPC()) },
			func(c *CPU) { c.exec(c, 0, c.ea) },
		}
	case AddrZeroPageX, AddrZeroPageY:
		return []microOp{
			func(c *CPU) { c.ptr = c.fetchPC() },
			func(c *CPU) { c.Bus.Read(uint16(c.ptr)); c.ea = uint16(c.ptr + c.indexFor(mode)) },
			func(c *CPU) { c.exec(c, 0, c.ea) },
		}
	case AddrAbsolute:
		return []microOp{
			func(c *CPU) { c.lo = c.fetchPC() },
			func(c *CPU) { c.hi = c.fetchPC(); c.ea = uint16(c.hi)<<8 | uint16(c.lo) },
			func(c *CPU) { c.exec(c, 0, c.ea) },
		}
	case AddrAbsoluteX, AddrAbsoluteY:
		return []microOp{
			func(c *CPU) { c.lo = c.fetchPC() },
			func(c *CPU) {
				c.hi = c.fetchPC()
				sum := uint16(c.lo) + uint16(c.indexFor(mode))
				c.ea = uint16(c.hi)<<8 + sum
			},
			func(c *CPU) { c.Bus.Read((uint16(c.hi) << 8) | (c.ea & 0xFF)) },
			func(c *CPU) { c.exec(c, 0, c.ea) },
		}
	case AddrIndirectX:
		return []microOp{
			func(c *CPU) { c.ptr = c.fetchPC() },
			func(c *CPU) { c.Bus.Read(uint16(c.ptr)) },
			func(c *CPU) { c.lo = c.Bus.Read(uint16(c.ptr + c.X)) },
			func(c *CPU) { c.hi = c.Bus.Read(uint16(c.ptr + c.X + 1)); c.ea = uint16(c.hi)<<8 | uint16(c.lo) },
			func(c *CPU) { c.exec(c, 0, c.ea) },
		}
	case AddrIndirectY:
		return []microOp{
			func(c *CPU) { c.ptr = c.fetchPC() },
			func(c *CPU) { c.lo = c.Bus.Read(uint16(c.ptr)) },
			func(c *CPU) {
				c.hi = c.Bus.Read(uint16(c.ptr + 1))
				sum := uint16(c.lo) + uint16(c.Y)
				c.ea = uint16(c.hi)<<8 + sum
			},
			func(c *CPU) { c.Bus.Read((uint16(c.hi) << 8) | (c.ea & 0xFF)) },
			func(c *CPU) { c.exec(c, 0, c.ea) },
		}
	}
	return nil
}

// --- RMW-class: read, dummy write-back of the unmodified value, then the
// real write of the modified value (the dummy-write quirk used by sprite
// DMA-sensitive and double-write-dependent code). ---

func (c *CPU) buildRMWOps(mode AddrMode) []microOp {
	if mode == AddrAccumulator {
		return []microOp{func(c *CPU) { c.exec(c, c.A, 0) }}
	}
	addr := c.buildWriteOps(mode) // reuses address resolution, drop final exec cycle
	addrOnly := addr[:len(addr)-1]
	rmw := append([]microOp{}, addrOnly...)
	rmw = append(rmw,
		func(c *CPU) { c.val = c.Bus.Read(c.ea) },
		func(c *CPU) { c.Bus.Write(c.ea, c.val) }, // dummy write-back
		func(c *CPU) { c.exec(c, c.val, c.ea) },
	)
	return rmw
}
