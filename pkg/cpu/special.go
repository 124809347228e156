package cpu

// buildInterruptOps returns the 6 post-trigger cycles shared by NMI, IRQ
// and BRK: a throwaway/padding read, the 3-byte push of PC and status, the
// low vector byte fetch (where NMI can hijack an in-flight BRK/IRQ
// sequence, per spec.md §4.2), and the high vector byte fetch that lands
// in PC.
func (c *CPU) buildInterruptOps(kind IntentKind) []microOp {
	isBRK := kind == IntentBRK
	return []microOp{
		func(c *CPU) {
			if isBRK {
				c.fetchPC() // signature/padding byte
			} else {
				c.Bus.Read(c.PC)
			}
		},
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC & 0xFF)) },
		func(c *CPU) {
			flags := c.P | FlagUnused
			if isBRK {
				flags |= FlagBreak
			} else {
				flags &^= FlagBreak
			}
			c.push(flags)
		},
		func(c *CPU) {
			vec := c.intentVector
			if (kind == IntentIRQ || kind == IntentBRK) && c.nmiLine != intInactive {
				vec = 0xFFFA
				c.nmiLine = intInactive
				c.intentVector = vec
			}
			c.lo = c.Bus.Read(vec)
			c.setFlag(FlagInterrupt, true)
		},
		func(c *CPU) {
			c.hi = c.Bus.Read(c.intentVector + 1)
			c.PC = uint16(c.hi)<<8 | uint16(c.lo)
		},
	}
}

// buildResetOps returns the 7-cycle power-up/reset sequence: two dummy
// reads at the current PC (real hardware fetches garbage there; the value
// is discarded either way), three suppressed stack "pushes" that only
// decrement SP without driving the bus (the 6502 holds R/W high through
// reset), and the $FFFC/$FFFD vector fetch that lands in PC. A/X/Y are
// left untouched, matching real hardware — only SP, P and PC change.
func (c *CPU) buildResetOps() []microOp {
	return []microOp{
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.SP-- },
		func(c *CPU) { c.SP-- },
		func(c *CPU) {
			c.SP--
			c.P = FlagUnused | FlagInterrupt
		},
		func(c *CPU) { c.lo = c.Bus.Read(0xFFFC) },
		func(c *CPU) {
			c.hi = c.Bus.Read(0xFFFD)
			c.PC = uint16(c.hi)<<8 | uint16(c.lo)
		},
	}
}

func (c *CPU) beginInterrupt(kind IntentKind, vector uint16) {
	c.intentKind = kind
	c.intentVector = vector
	c.queue = c.buildInterruptOps(kind)
	c.mode = InterruptSequence
	c.Bus.Read(c.PC) // discarded opcode fetch; the 6 queued cycles follow
	c.qi = 0
}

// specialBRK is the opcode-0x00 entry point: its padding byte and the rest
// of the interrupt sequence are built the same way as a hardware IRQ,
// differing only in the pushed B flag and in starting from a real opcode
// fetch instead of a bus-driven trigger.
func specialBRK(c *CPU) []microOp {
	c.intentVector = 0xFFFE
	return c.buildInterruptOps(IntentBRK)
}

func specialJSR(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.lo = c.fetchPC() },
		func(c *CPU) { c.Bus.Read(0x100 | uint16(c.SP)) }, // internal delay
		func(c *CPU) { c.push(uint8(c.PC >> 8)) },
		func(c *CPU) { c.push(uint8(c.PC & 0xFF)) },
		func(c *CPU) {
			c.hi = c.fetchPC()
			c.PC = uint16(c.hi)<<8 | uint16(c.lo)
		},
	}
}

func specialRTS(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.Bus.Read(0x100 | uint16(c.SP)) },
		func(c *CPU) { c.lo = c.pop() },
		func(c *CPU) { c.hi = c.pop(); c.PC = uint16(c.hi)<<8 | uint16(c.lo) },
		func(c *CPU) { c.fetchPC() }, // discard, PC++ for the return address
	}
}

func specialRTI(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.Bus.Read(0x100 | uint16(c.SP)) },
		func(c *CPU) { c.P = (c.pop() | FlagUnused) &^ FlagBreak },
		func(c *CPU) { c.lo = c.pop() },
		func(c *CPU) { c.hi = c.pop(); c.PC = uint16(c.hi)<<8 | uint16(c.lo) },
	}
}

func specialPHA(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.push(c.A) },
	}
}

func specialPHP(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.push(c.P | FlagUnused | FlagBreak) },
	}
}

func specialPLA(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.Bus.Read(0x100 | uint16(c.SP)) },
		func(c *CPU) { c.A = c.pop(); c.setZN(c.A) },
	}
}

func specialPLP(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.Bus.Read(c.PC) },
		func(c *CPU) { c.Bus.Read(0x100 | uint16(c.SP)) },
		func(c *CPU) { c.P = (c.pop() | FlagUnused) &^ FlagBreak },
	}
}

func specialJMPAbsolute(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.lo = c.fetchPC() },
		func(c *CPU) { c.hi = c.fetchPC(); c.PC = uint16(c.hi)<<8 | uint16(c.lo) },
	}
}

// specialJMPIndirect reproduces the page-wrap bug: if the pointer's low
// byte is $FF, the high byte is fetched from the start of the same page
// rather than the next one.
func specialJMPIndirect(c *CPU) []microOp {
	return []microOp{
		func(c *CPU) { c.lo = c.fetchPC() },
		func(c *CPU) { c.hi = c.fetchPC() },
		func(c *CPU) { c.ptr = c.lo; c.val = c.Bus.Read(uint16(c.hi)<<8 | uint16(c.ptr)) },
		func(c *CPU) {
			hiAddr := uint16(c.hi)<<8 | uint16(c.ptr+1)
			c.PC = uint16(c.Bus.Read(hiAddr))<<8 | uint16(c.val)
		},
	}
}

// branch builds the relative-addressing step sequence for one of the
// eight conditional branches: 2 cycles untaken, 3 taken-same-page, 4
// taken-crossing-page (the "oops" cycle), per spec.md's BranchTaken /
// BranchOops substates. Because the taken/crossed outcome is only known
// after the operand fetch, later cycles are appended to c.queue from
// inside the earlier ones instead of being laid out up front.
func branch(cond func(c *CPU) bool) func(c *CPU) []microOp {
	return func(c *CPU) []microOp {
		return []microOp{
			func(c *CPU) {
				offset := int8(c.fetchPC())
				if !cond(c) {
					return // untaken: 2 cycles total
				}
				c.branchDelta = offset
				c.queue = append(c.queue, branchTakenCycle)
			},
		}
	}
}

func branchTakenCycle(c *CPU) {
	c.Bus.Read(c.PC) // dummy read of the not-yet-branched-to next opcode
	c.pendingPC = uint16(int32(c.PC) + int32(c.branchDelta))
	c.crossed = (c.PC & 0xFF00) != (c.pendingPC & 0xFF00)
	if !c.crossed {
		c.PC = c.pendingPC
		return
	}
	// Land PC with the correct low byte but the unmodified high byte; the
	// oops cycle below fixes the high byte after a dummy read there.
	c.PC = (c.PC & 0xFF00) | (c.pendingPC & 0xFF)
	c.queue = append(c.queue, branchOopsCycle)
}

func branchOopsCycle(c *CPU) {
	c.Bus.Read(c.PC) // dummy read at the wrong-page address
	c.PC = c.pendingPC
}
