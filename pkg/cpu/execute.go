package cpu

// This file holds the instruction semantics the opcode table's Exec
// closures call into. Read-class Exec funcs receive the operand already
// loaded in val; Write-class Exec funcs receive addr and must write
// themselves; RMW-class Exec funcs receive the old value in val (or in
// c.A when c.accMode) and must both update the register/flags and write
// the new value back out.

func (c *CPU) writeResult(addr uint16, v uint8) {
	if c.accMode {
		c.A = v
		return
	}
	c.Bus.Write(addr, v)
}

// --- loads / stores ---

func execLDA(c *CPU, val uint8, _ uint16) { c.A = val; c.setZN(c.A) }
func execLDX(c *CPU, val uint8, _ uint16) { c.X = val; c.setZN(c.X) }
func execLDY(c *CPU, val uint8, _ uint16) { c.Y = val; c.setZN(c.Y) }

func execSTA(c *CPU, _ uint8, addr uint16) { c.Bus.Write(addr, c.A) }
func execSTX(c *CPU, _ uint8, addr uint16) { c.Bus.Write(addr, c.X) }
func execSTY(c *CPU, _ uint8, addr uint16) { c.Bus.Write(addr, c.Y) }

// SAX stores A&X; an unofficial opcode grounded on the NES's documented
// unofficial-opcode corpus (used by e.g. some mappers' init code).
func execSAX(c *CPU, _ uint8, addr uint16) { c.Bus.Write(addr, c.A&c.X) }

// LAX loads A and X from the same fetch in one instruction.
func execLAX(c *CPU, val uint8, _ uint16) { c.A = val; c.X = val; c.setZN(val) }

// --- transfers ---

func (c *CPU) execImplied(op func(c *CPU)) { op(c) }

// --- ALU ---

func (c *CPU) adc(operand uint8) {
	carry := uint16(0)
	if c.getFlag(FlagCarry) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(operand) + carry
	result := uint8(sum)
	c.setFlag(FlagCarry, sum > 0xFF)
	c.setFlag(FlagOverflow, (c.A^operand)&0x80 == 0 && (c.A^result)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) sbc(operand uint8) { c.adc(operand ^ 0xFF) }

func execADC(c *CPU, val uint8, _ uint16) { c.adc(val) }
func execSBC(c *CPU, val uint8, _ uint16) { c.sbc(val) }

func (c *CPU) compare(reg, operand uint8) {
	result := reg - operand
	c.setFlag(FlagCarry, reg >= operand)
	c.setZN(result)
}

func execCMP(c *CPU, val uint8, _ uint16) { c.compare(c.A, val) }
func execCPX(c *CPU, val uint8, _ uint16) { c.compare(c.X, val) }
func execCPY(c *CPU, val uint8, _ uint16) { c.compare(c.Y, val) }

func execAND(c *CPU, val uint8, _ uint16) { c.A &= val; c.setZN(c.A) }
func execORA(c *CPU, val uint8, _ uint16) { c.A |= val; c.setZN(c.A) }
func execEOR(c *CPU, val uint8, _ uint16) { c.A ^= val; c.setZN(c.A) }

func execBIT(c *CPU, val uint8, _ uint16) {
	c.setFlag(FlagZero, c.A&val == 0)
	c.setFlag(FlagOverflow, val&0x40 != 0)
	c.setFlag(FlagNegative, val&0x80 != 0)
}

// --- read-modify-write ---

func execASL(c *CPU, val uint8, addr uint16) {
	c.setFlag(FlagCarry, val&0x80 != 0)
	r := val << 1
	c.setZN(r)
	c.writeResult(addr, r)
}

func execLSR(c *CPU, val uint8, addr uint16) {
	c.setFlag(FlagCarry, val&1 != 0)
	r := val >> 1
	c.setZN(r)
	c.writeResult(addr, r)
}

func execROL(c *CPU, val uint8, addr uint16) {
	oldCarry := uint8(0)
	if c.getFlag(FlagCarry) {
		oldCarry = 1
	}
	c.setFlag(FlagCarry, val&0x80 != 0)
	r := (val << 1) | oldCarry
	c.setZN(r)
	c.writeResult(addr, r)
}

func execROR(c *CPU, val uint8, addr uint16) {
	oldCarry := uint8(0)
	if c.getFlag(FlagCarry) {
		oldCarry = 0x80
	}
	c.setFlag(FlagCarry, val&1 != 0)
	r := (val >> 1) | oldCarry
	c.setZN(r)
	c.writeResult(addr, r)
}

func execINC(c *CPU, val uint8, addr uint16) {
	r := val + 1
	c.setZN(r)
	c.writeResult(addr, r)
}

func execDEC(c *CPU, val uint8, addr uint16) {
	r := val - 1
	c.setZN(r)
	c.writeResult(addr, r)
}

// --- unofficial read-modify-write combos ---

func execSLO(c *CPU, val uint8, addr uint16) {
	c.setFlag(FlagCarry, val&0x80 != 0)
	r := val << 1
	c.writeResult(addr, r)
	c.A |= r
	c.setZN(c.A)
}

func execRLA(c *CPU, val uint8, addr uint16) {
	oldCarry := uint8(0)
	if c.getFlag(FlagCarry) {
		oldCarry = 1
	}
	c.setFlag(FlagCarry, val&0x80 != 0)
	r := (val << 1) | oldCarry
	c.writeResult(addr, r)
	c.A &= r
	c.setZN(c.A)
}

func execSRE(c *CPU, val uint8, addr uint16) {
	c.setFlag(FlagCarry, val&1 != 0)
	r := val >> 1
	c.writeResult(addr, r)
	c.A ^= r
	c.setZN(c.A)
}

func execRRA(c *CPU, val uint8, addr uint16) {
	oldCarry := uint8(0)
	if c.getFlag(FlagCarry) {
		oldCarry = 0x80
	}
	c.setFlag(FlagCarry, val&1 != 0)
	r := (val >> 1) | oldCarry
	c.writeResult(addr, r)
	c.adc(r)
}

func execDCP(c *CPU, val uint8, addr uint16) {
	r := val - 1
	c.writeResult(addr, r)
	c.compare(c.A, r)
}

func execISC(c *CPU, val uint8, addr uint16) {
	r := val + 1
	c.writeResult(addr, r)
	c.sbc(r)
}

// --- unofficial read-immediate combos ---

func execANC(c *CPU, val uint8, _ uint16) {
	c.A &= val
	c.setZN(c.A)
	c.setFlag(FlagCarry, c.A&0x80 != 0)
}

func execALR(c *CPU, val uint8, _ uint16) {
	c.A &= val
	c.setFlag(FlagCarry, c.A&1 != 0)
	c.A >>= 1
	c.setZN(c.A)
}

func execARR(c *CPU, val uint8, _ uint16) {
	c.A &= val
	carry := uint8(0)
	if c.getFlag(FlagCarry) {
		carry = 0x80
	}
	c.A = (c.A >> 1) | carry
	c.setZN(c.A)
	c.setFlag(FlagCarry, c.A&0x40 != 0)
	c.setFlag(FlagOverflow, (c.A>>6)&1 != (c.A>>5)&1)
}

// AXS/SBX: X = (A&X) - operand, with borrow but no decimal mode.
func execAXS(c *CPU, val uint8, _ uint16) {
	base := c.A & c.X
	c.setFlag(FlagCarry, base >= val)
	c.X = base - val
	c.setZN(c.X)
}

// LAS: AND memory with SP, store in A, X, and SP.
func execLAS(c *CPU, val uint8, _ uint16) {
	r := val & c.SP
	c.A, c.X, c.SP = r, r, r
	c.setZN(r)
}

// XAA is famously unstable on real hardware (depends on analog bus decay);
// this models the commonly cited A = (A | magic) & X & imm approximation
// with magic = 0x00, which reduces to A & X & imm.
func execXAA(c *CPU, val uint8, _ uint16) {
	c.A = c.A & c.X & val
	c.setZN(c.A)
}

// execAHX / execSHXWrite / execSHYWrite (behind the execAHXWrite / execSHX /
// execSHY table entries) and execTAS are the high-byte-store family: each ANDs a register (or A&X) with the high
// byte of the target address plus one, a quirk of how the 6502's address
// bus glitches mid-cycle on these combos. Later-revision semantics are
// used per DESIGN.md's resolution of this spec's open question.
func execAHX(c *CPU, addr uint16) uint8 { return c.A & c.X & (uint8(addr>>8) + 1) }

func execSHXWrite(c *CPU, addr uint16) uint8 { return c.X & (uint8(addr>>8) + 1) }
func execSHYWrite(c *CPU, addr uint16) uint8 { return c.Y & (uint8(addr>>8) + 1) }

func execTAS(c *CPU, _ uint8, addr uint16) {
	c.SP = c.A & c.X
	c.Bus.Write(addr, c.SP&(uint8(addr>>8)+1))
}

func execAHXWrite(c *CPU, _ uint8, addr uint16) { c.Bus.Write(addr, execAHX(c, addr)) }
func execSHX(c *CPU, _ uint8, addr uint16)      { c.Bus.Write(addr, execSHXWrite(c, addr)) }
func execSHY(c *CPU, _ uint8, addr uint16)      { c.Bus.Write(addr, execSHYWrite(c, addr)) }

// LXA (aka ATX/OAL): another unstable immediate combo, modeled with the
// same (A | magic) & X & imm formula as XAA but with a 0xFF "magic" constant.
func execLXA(c *CPU, val uint8, _ uint16) {
	r := (c.A | 0xFF) & c.X & val
	c.A, c.X = r, r
	c.setZN(r)
}

// --- implied-mode register ops ---

func execCLC(c *CPU, _ uint8, _ uint16) { c.setFlag(FlagCarry, false) }
func execSEC(c *CPU, _ uint8, _ uint16) { c.setFlag(FlagCarry, true) }
func execCLD(c *CPU, _ uint8, _ uint16) { c.setFlag(FlagDecimal, false) }
func execSED(c *CPU, _ uint8, _ uint16) { c.setFlag(FlagDecimal, true) }
func execCLI(c *CPU, _ uint8, _ uint16) { c.setFlag(FlagInterrupt, false) }
func execSEI(c *CPU, _ uint8, _ uint16) { c.setFlag(FlagInterrupt, true) }
func execCLV(c *CPU, _ uint8, _ uint16) { c.setFlag(FlagOverflow, false) }

func execTAX(c *CPU, _ uint8, _ uint16) { c.X = c.A; c.setZN(c.X) }
func execTAY(c *CPU, _ uint8, _ uint16) { c.Y = c.A; c.setZN(c.Y) }
func execTXA(c *CPU, _ uint8, _ uint16) { c.A = c.X; c.setZN(c.A) }
func execTYA(c *CPU, _ uint8, _ uint16) { c.A = c.Y; c.setZN(c.A) }
func execTSX(c *CPU, _ uint8, _ uint16) { c.X = c.SP; c.setZN(c.X) }
func execTXS(c *CPU, _ uint8, _ uint16) { c.SP = c.X }

func execINX(c *CPU, _ uint8, _ uint16) { c.X++; c.setZN(c.X) }
func execINY(c *CPU, _ uint8, _ uint16) { c.Y++; c.setZN(c.Y) }
func execDEX(c *CPU, _ uint8, _ uint16) { c.X--; c.setZN(c.X) }
func execDEY(c *CPU, _ uint8, _ uint16) { c.Y--; c.setZN(c.Y) }

func execNOP(c *CPU, _ uint8, _ uint16) {}
