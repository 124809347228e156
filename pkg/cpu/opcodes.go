package cpu

// ExecFunc implements a Read/Write/RMW-class instruction once its
// addressing mode has resolved an operand value and/or address.
type ExecFunc func(c *CPU, val uint8, addr uint16)

// SpecialFunc builds the custom microOp queue for an instruction whose
// cycle sequence doesn't factor through a generic addressing mode.
type SpecialFunc func(c *CPU) []microOp

// OpInfo is one entry of the 256-slot opcode table: the decoded mnemonic,
// its addressing mode and R/W/RMW class, and the instruction semantics,
// either as a generic Exec (for Read/Write/RMW/Implied kinds) or a
// Special queue builder.
type OpInfo struct {
	Name    string
	Mode    AddrMode
	Kind    OpKind
	Exec    ExecFunc
	Special SpecialFunc
	Illegal bool
}

var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]OpInfo {
	var t [256]OpInfo

	jam := func(op uint8) {
		t[op] = OpInfo{Name: "JAM", Kind: KindSpecial, Illegal: true, Special: func(c *CPU) []microOp {
			return []microOp{func(c *CPU) { c.mode = Jammed }}
		}}
	}
	read := func(op uint8, name string, mode AddrMode, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: mode, Kind: KindRead, Exec: fn}
	}
	readIllegal := func(op uint8, name string, mode AddrMode, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: mode, Kind: KindRead, Exec: fn, Illegal: true}
	}
	write := func(op uint8, name string, mode AddrMode, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: mode, Kind: KindWrite, Exec: fn}
	}
	writeIllegal := func(op uint8, name string, mode AddrMode, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: mode, Kind: KindWrite, Exec: fn, Illegal: true}
	}
	rmw := func(op uint8, name string, mode AddrMode, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: mode, Kind: KindRMW, Exec: fn}
	}
	rmwIllegal := func(op uint8, name string, mode AddrMode, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: mode, Kind: KindRMW, Exec: fn, Illegal: true}
	}
	impl := func(op uint8, name string, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: AddrImplied, Kind: KindImplied, Exec: fn}
	}
	implIllegal := func(op uint8, name string, fn ExecFunc) {
		t[op] = OpInfo{Name: name, Mode: AddrImplied, Kind: KindImplied, Exec: fn, Illegal: true}
	}
	special := func(op uint8, name string, fn SpecialFunc) {
		t[op] = OpInfo{Name: name, Kind: KindSpecial, Special: fn}
	}
	nop := func(op uint8, mode AddrMode) { readIllegal(op, "NOP", mode, execNOP) }

	// --- BRK / stack / control flow ---
	special(0x00, "BRK", specialBRK)
	special(0x08, "PHP", specialPHP)
	special(0x28, "PLP", specialPLP)
	special(0x20, "JSR", specialJSR)
	special(0x40, "RTI", specialRTI)
	special(0x48, "PHA", specialPHA)
	special(0x60, "RTS", specialRTS)
	special(0x68, "PLA", specialPLA)
	special(0x4C, "JMP", specialJMPAbsolute)
	special(0x6C, "JMP", specialJMPIndirect)

	special(0x10, "BPL", branch(func(c *CPU) bool { return !c.getFlag(FlagNegative) }))
	special(0x30, "BMI", branch(func(c *CPU) bool { return c.getFlag(FlagNegative) }))
	special(0x50, "BVC", branch(func(c *CPU) bool { return !c.getFlag(FlagOverflow) }))
	special(0x70, "BVS", branch(func(c *CPU) bool { return c.getFlag(FlagOverflow) }))
	special(0x90, "BCC", branch(func(c *CPU) bool { return !c.getFlag(FlagCarry) }))
	special(0xB0, "BCS", branch(func(c *CPU) bool { return c.getFlag(FlagCarry) }))
	special(0xD0, "BNE", branch(func(c *CPU) bool { return !c.getFlag(FlagZero) }))
	special(0xF0, "BEQ", branch(func(c *CPU) bool { return c.getFlag(FlagZero) }))
	t[0x20].Mode, t[0x4C].Mode, t[0x6C].Mode = AddrAbsolute, AddrAbsolute, AddrIndirect
	for _, op := range []uint8{0x10, 0x30, 0x50, 0x70, 0x90, 0xB0, 0xD0, 0xF0} {
		t[op].Mode = AddrRelative
	}

	// --- flag / register implied ops ---
	impl(0x18, "CLC", execCLC)
	impl(0x38, "SEC", execSEC)
	impl(0xD8, "CLD", execCLD)
	impl(0xF8, "SED", execSED)
	impl(0x58, "CLI", execCLI)
	impl(0x78, "SEI", execSEI)
	impl(0xB8, "CLV", execCLV)
	impl(0xAA, "TAX", execTAX)
	impl(0xA8, "TAY", execTAY)
	impl(0x8A, "TXA", execTXA)
	impl(0x98, "TYA", execTYA)
	impl(0xBA, "TSX", execTSX)
	impl(0x9A, "TXS", execTXS)
	impl(0xE8, "INX", execINX)
	impl(0xC8, "INY", execINY)
	impl(0xCA, "DEX", execDEX)
	impl(0x88, "DEY", execDEY)
	impl(0xEA, "NOP", execNOP)
	implIllegal(0x1A, "NOP", execNOP)
	implIllegal(0x3A, "NOP", execNOP)
	implIllegal(0x5A, "NOP", execNOP)
	implIllegal(0x7A, "NOP", execNOP)
	implIllegal(0xDA, "NOP", execNOP)
	implIllegal(0xFA, "NOP", execNOP)

	// --- LDA/LDX/LDY, ORA/AND/EOR/ADC/CMP/SBC families (cc=01/10 read group) ---
	type rm struct {
		op   uint8
		mode AddrMode
	}
	group := func(modes []rm, name string, fn ExecFunc) {
		for _, m := range modes {
			read(m.op, name, m.mode, fn)
		}
	}
	group([]rm{{0xA9, AddrImmediate}, {0xA5, AddrZeroPage}, {0xB5, AddrZeroPageX}, {0xAD, AddrAbsolute},
		{0xBD, AddrAbsoluteX}, {0xB9, AddrAbsoluteY}, {0xA1, AddrIndirectX}, {0xB1, AddrIndirectY}}, "LDA", execLDA)
	group([]rm{{0xA2, AddrImmediate}, {0xA6, AddrZeroPage}, {0xB6, AddrZeroPageY}, {0xAE, AddrAbsolute}, {0xBE, AddrAbsoluteY}}, "LDX", execLDX)
	group([]rm{{0xA0, AddrImmediate}, {0xA4, AddrZeroPage}, {0xB4, AddrZeroPageX}, {0xAC, AddrAbsolute}, {0xBC, AddrAbsoluteX}}, "LDY", execLDY)
	group([]rm{{0x09, AddrImmediate}, {0x05, AddrZeroPage}, {0x15, AddrZeroPageX}, {0x0D, AddrAbsolute},
		{0x1D, AddrAbsoluteX}, {0x19, AddrAbsoluteY}, {0x01, AddrIndirectX}, {0x11, AddrIndirectY}}, "ORA", execORA)
	group([]rm{{0x29, AddrImmediate}, {0x25, AddrZeroPage}, {0x35, AddrZeroPageX}, {0x2D, AddrAbsolute},
		{0x3D, AddrAbsoluteX}, {0x39, AddrAbsoluteY}, {0x21, AddrIndirectX}, {0x31, AddrIndirectY}}, "AND", execAND)
	group([]rm{{0x49, AddrImmediate}, {0x45, AddrZeroPage}, {0x55, AddrZeroPageX}, {0x4D, AddrAbsolute},
		{0x5D, AddrAbsoluteX}, {0x59, AddrAbsoluteY}, {0x41, AddrIndirectX}, {0x51, AddrIndirectY}}, "EOR", execEOR)
	group([]rm{{0x69, AddrImmediate}, {0x65, AddrZeroPage}, {0x75, AddrZeroPageX}, {0x6D, AddrAbsolute},
		{0x7D, AddrAbsoluteX}, {0x79, AddrAbsoluteY}, {0x61, AddrIndirectX}, {0x71, AddrIndirectY}}, "ADC", execADC)
	group([]rm{{0xE9, AddrImmediate}, {0xE5, AddrZeroPage}, {0xF5, AddrZeroPageX}, {0xED, AddrAbsolute},
		{0xFD, AddrAbsoluteX}, {0xF9, AddrAbsoluteY}, {0xE1, AddrIndirectX}, {0xF1, AddrIndirectY}}, "SBC", execSBC)
	readIllegal(0xEB, "SBC", AddrImmediate, execSBC)
	group([]rm{{0xC9, AddrImmediate}, {0xC5, AddrZeroPage}, {0xD5, AddrZeroPageX}, {0xCD, AddrAbsolute},
		{0xDD, AddrAbsoluteX}, {0xD9, AddrAbsoluteY}, {0xC1, AddrIndirectX}, {0xD1, AddrIndirectY}}, "CMP", execCMP)
	group([]rm{{0xE0, AddrImmediate}, {0xE4, AddrZeroPage}, {0xEC, AddrAbsolute}}, "CPX", execCPX)
	group([]rm{{0xC0, AddrImmediate}, {0xC4, AddrZeroPage}, {0xCC, AddrAbsolute}}, "CPY", execCPY)
	group([]rm{{0x24, AddrZeroPage}, {0x2C, AddrAbsolute}}, "BIT", execBIT)

	// --- unofficial loads ---
	for _, m := range []rm{{0xA3, AddrIndirectX}, {0xA7, AddrZeroPage}, {0xAF, AddrAbsolute},
		{0xB3, AddrIndirectY}, {0xB7, AddrZeroPageY}, {0xBF, AddrAbsoluteY}} {
		readIllegal(m.op, "LAX", m.mode, execLAX)
	}
	readIllegal(0x0B, "ANC", AddrImmediate, execANC)
	readIllegal(0x2B, "ANC", AddrImmediate, execANC)
	readIllegal(0x4B, "ALR", AddrImmediate, execALR)
	readIllegal(0x6B, "ARR", AddrImmediate, execARR)
	readIllegal(0xCB, "AXS", AddrImmediate, execAXS)
	readIllegal(0x8B, "XAA", AddrImmediate, execXAA)
	readIllegal(0xAB, "LXA", AddrImmediate, execLXA)
	readIllegal(0xBB, "LAS", AddrAbsoluteY, execLAS)

	// --- stores ---
	storeGroup := func(modes []rm, name string, fn ExecFunc) {
		for _, m := range modes {
			write(m.op, name, m.mode, fn)
		}
	}
	storeGroup([]rm{{0x85, AddrZeroPage}, {0x95, AddrZeroPageX}, {0x8D, AddrAbsolute},
		{0x9D, AddrAbsoluteX}, {0x99, AddrAbsoluteY}, {0x81, AddrIndirectX}, {0x91, AddrIndirectY}}, "STA", execSTA)
	storeGroup([]rm{{0x86, AddrZeroPage}, {0x96, AddrZeroPageY}, {0x8E, AddrAbsolute}}, "STX", execSTX)
	storeGroup([]rm{{0x84, AddrZeroPage}, {0x94, AddrZeroPageX}, {0x8C, AddrAbsolute}}, "STY", execSTY)
	for _, m := range []rm{{0x83, AddrIndirectX}, {0x87, AddrZeroPage}, {0x8F, AddrAbsolute}, {0x97, AddrZeroPageY}} {
		writeIllegal(m.op, "SAX", m.mode, execSAX)
	}
	writeIllegal(0x93, "AHX", AddrIndirectY, execAHXWrite)
	writeIllegal(0x9F, "AHX", AddrAbsoluteY, execAHXWrite)
	writeIllegal(0x9E, "SHX", AddrAbsoluteY, execSHX)
	writeIllegal(0x9C, "SHY", AddrAbsoluteX, execSHY)
	writeIllegal(0x9B, "TAS", AddrAbsoluteY, execTAS)

	// --- read-modify-write ---
	rmwGroup := func(modes []rm, name string, fn ExecFunc) {
		for _, m := range modes {
			rmw(m.op, name, m.mode, fn)
		}
	}
	rmwGroup([]rm{{0x0A, AddrAccumulator}, {0x06, AddrZeroPage}, {0x16, AddrZeroPageX}, {0x0E, AddrAbsolute}, {0x1E, AddrAbsoluteX}}, "ASL", execASL)
	rmwGroup([]rm{{0x4A, AddrAccumulator}, {0x46, AddrZeroPage}, {0x56, AddrZeroPageX}, {0x4E, AddrAbsolute}, {0x5E, AddrAbsoluteX}}, "LSR", execLSR)
	rmwGroup([]rm{{0x2A, AddrAccumulator}, {0x26, AddrZeroPage}, {0x36, AddrZeroPageX}, {0x2E, AddrAbsolute}, {0x3E, AddrAbsoluteX}}, "ROL", execROL)
	rmwGroup([]rm{{0x6A, AddrAccumulator}, {0x66, AddrZeroPage}, {0x76, AddrZeroPageX}, {0x6E, AddrAbsolute}, {0x7E, AddrAbsoluteX}}, "ROR", execROR)
	rmwGroup([]rm{{0xE6, AddrZeroPage}, {0xF6, AddrZeroPageX}, {0xEE, AddrAbsolute}, {0xFE, AddrAbsoluteX}}, "INC", execINC)
	rmwGroup([]rm{{0xC6, AddrZeroPage}, {0xD6, AddrZeroPageX}, {0xCE, AddrAbsolute}, {0xDE, AddrAbsoluteX}}, "DEC", execDEC)

	for _, m := range []rm{{0x03, AddrIndirectX}, {0x07, AddrZeroPage}, {0x0F, AddrAbsolute}, {0x13, AddrIndirectY}, {0x17, AddrZeroPageX}, {0x1B, AddrAbsoluteY}, {0x1F, AddrAbsoluteX}} {
		rmwIllegal(m.op, "SLO", m.mode, execSLO)
	}
	for _, m := range []rm{{0x23, AddrIndirectX}, {0x27, AddrZeroPage}, {0x2F, AddrAbsolute}, {0x33, AddrIndirectY}, {0x37, AddrZeroPageX}, {0x3B, AddrAbsoluteY}, {0x3F, AddrAbsoluteX}} {
		rmwIllegal(m.op, "RLA", m.mode, execRLA)
	}
	for _, m := range []rm{{0x43, AddrIndirectX}, {0x47, AddrZeroPage}, {0x4F, AddrAbsolute}, {0x53, AddrIndirectY}, {0x57, AddrZeroPageX}, {0x5B, AddrAbsoluteY}, {0x5F, AddrAbsoluteX}} {
		rmwIllegal(m.op, "SRE", m.mode, execSRE)
	}
	for _, m := range []rm{{0x63, AddrIndirectX}, {0x67, AddrZeroPage}, {0x6F, AddrAbsolute}, {0x73, AddrIndirectY}, {0x77, AddrZeroPageX}, {0x7B, AddrAbsoluteY}, {0x7F, AddrAbsoluteX}} {
		rmwIllegal(m.op, "RRA", m.mode, execRRA)
	}
	for _, m := range []rm{{0xC3, AddrIndirectX}, {0xC7, AddrZeroPage}, {0xCF, AddrAbsolute}, {0xD3, AddrIndirectY}, {0xD7, AddrZeroPageX}, {0xDB, AddrAbsoluteY}, {0xDF, AddrAbsoluteX}} {
		rmwIllegal(m.op, "DCP", m.mode, execDCP)
	}
	for _, m := range []rm{{0xE3, AddrIndirectX}, {0xE7, AddrZeroPage}, {0xEF, AddrAbsolute}, {0xF3, AddrIndirectY}, {0xF7, AddrZeroPageX}, {0xFB, AddrAbsoluteY}, {0xFF, AddrAbsoluteX}} {
		rmwIllegal(m.op, "ISC", m.mode, execISC)
	}

	// --- unofficial NOPs (read-and-discard, various widths) ---
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		nop(op, AddrImmediate)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		nop(op, AddrZeroPage)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		nop(op, AddrZeroPageX)
	}
	nop(0x0C, AddrAbsolute)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		nop(op, AddrAbsoluteX)
	}

	// --- JAM / KIL: halts the CPU until reset ---
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		jam(op)
	}

	return t
}
