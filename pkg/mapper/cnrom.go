package mapper

// CNROM (mapper 3) — fixed 32KB PRG, switchable 8KB CHR ROM bank. Grounded
// on the teacher's Mapper3, including its optional AND-type bus-conflict
// emulation for submapper 1 boards.
type CNROM struct {
	data         *Data
	chrBank      uint8
	chrBanks     uint8
	mirror       MirroringMode
	busConflicts bool
	prgWindows   []Window
	chrWindows   []Window
}

func NewCNROM(data *Data) *CNROM {
	m := &CNROM{data: data, mirror: Horizontal, busConflicts: false}
	if len(data.CHRROM) > 0 {
		m.chrBanks = uint8(len(data.CHRROM) / 0x2000)
	}
	m.prgWindows = []Window{{Start: 0x8000, End: 0xFFFF, Size: len(data.PRGROM), Source: SourcePRGROM, Register: -1}}
	m.chrWindows = []Window{{Start: 0x0000, End: 0x1FFF, Size: 0x2000, Source: SourceCHRROM, Register: 0}}
	return m
}

func (m *CNROM) SetMirroring(mode MirroringMode) { m.mirror = mode }
func (m *CNROM) SetBusConflicts(v bool)          { m.busConflicts = v }

func (m *CNROM) Peek(addr uint16) ReadResult {
	if _, off, ok := resolveWindow(m.prgWindows, addr, fixedBank); ok {
		return Driven(m.data.PRGROM[off])
	}
	if addr >= 0x6000 && len(m.data.PRGRAM) > 0 {
		off := int(addr - 0x6000)
		if off < len(m.data.PRGRAM) {
			return Driven(m.data.PRGRAM[off])
		}
	}
	return OpenBus()
}

func (m *CNROM) chrBankOf(Window) int {
	bank := m.chrBank
	if m.chrBanks > 0 {
		bank %= m.chrBanks
	}
	return int(bank)
}

func (m *CNROM) PpuPeek(addr uint16) PpuPeek {
	if addr < 0x2000 {
		if len(m.data.CHRROM) > 0 {
			if _, off, ok := resolveWindow(m.chrWindows, addr, m.chrBankOf); ok && off < len(m.data.CHRROM) {
				return PpuPeek{Value: m.data.CHRROM[off], Source: SourceCHR}
			}
		}
		return PpuPeek{Value: chrByte(m.data, int(addr)), Source: SourceCHR}
	}
	return PpuPeek{Source: SourceNametable}
}

func (m *CNROM) PpuWrite(addr uint16, value uint8) {
	if addr < 0x2000 && len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

func (m *CNROM) OnCPURead(addr uint16) {}

func (m *CNROM) OnCPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000:
		effective := value
		if m.busConflicts {
			effective = value & m.Peek(addr).Value
		}
		m.chrBank = effective & 0x03
	case addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0:
		off := int(addr - 0x6000)
		if off < len(m.data.PRGRAM) {
			m.data.PRGRAM[off] = value
		}
	}
}

func (m *CNROM) OnPPURead(addr uint16) {}
func (m *CNROM) OnEndOfCPUCycle()      {}
func (m *CNROM) IRQPending() bool      { return false }
func (m *CNROM) AckIRQ()               {}

func (m *CNROM) Layout() Layout {
	return Layout{
		PRG:       m.prgWindows,
		CHR:       m.chrWindows,
		Mirroring: m.mirror,
	}
}
