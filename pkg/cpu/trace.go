package cpu

// AtInstructionStart reports whether the CPU is parked between
// instructions (StartNext), the one point where a debugger or trace tool
// can safely read PC/A/X/Y/P/SP as "the state before this opcode runs"
// without catching it mid-sequence.
func (c *CPU) AtInstructionStart() bool { return c.mode == StartNext }

// OpcodeInfo exposes the static decode table entry for opcode, for
// debuggers and trace-formatting tools (e.g. the nestest golden-trace
// test) that need the mnemonic and addressing mode without duplicating
// the decode table.
func OpcodeInfo(opcode uint8) OpInfo { return opcodeTable[opcode] }

// OperandLength reports how many bytes after the opcode byte itself a
// given addressing mode consumes.
func OperandLength(mode AddrMode) int {
	switch mode {
	case AddrImplied, AddrAccumulator:
		return 0
	case AddrAbsolute, AddrAbsoluteX, AddrAbsoluteY, AddrIndirect:
		return 2
	default:
		return 1
	}
}
