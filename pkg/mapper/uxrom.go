package mapper

// UxROM (mapper 2) — switchable 16KB PRG bank at $8000, last bank fixed at
// $C000, CHR RAM only. Grounded on the teacher's Mapper2.
type UxROM struct {
	data       *Data
	prgBank    uint8
	prgBanks   uint8
	mirror     MirroringMode
	prgWindows []Window
}

func NewUxROM(data *Data) *UxROM {
	m := &UxROM{data: data, prgBanks: uint8(len(data.PRGROM) / 0x4000), mirror: Horizontal}
	m.prgWindows = []Window{
		{Start: 0x8000, End: 0xBFFF, Size: 0x4000, Source: SourcePRGROM, Register: 0},
		{Start: 0xC000, End: 0xFFFF, Size: 0x4000, Source: SourcePRGROM, Register: -1},
	}
	return m
}

func (m *UxROM) SetMirroring(mode MirroringMode) { m.mirror = mode }

// bankOf resolves a PRG window's bank: the switchable window (Register 0)
// uses prgBank modulo the bank count, the fixed window (Register -1) is
// always the last physical bank.
func (m *UxROM) bankOf(w Window) int {
	if w.Register < 0 {
		if m.prgBanks == 0 {
			return 0
		}
		return int(m.prgBanks) - 1
	}
	bank := m.prgBank
	if m.prgBanks > 0 {
		bank %= m.prgBanks
	}
	return int(bank)
}

func (m *UxROM) Peek(addr uint16) ReadResult {
	if _, off, ok := resolveWindow(m.prgWindows, addr, m.bankOf); ok {
		if off < len(m.data.PRGROM) {
			return Driven(m.data.PRGROM[off])
		}
	}
	if addr >= 0x6000 && len(m.data.PRGRAM) > 0 {
		off := int(addr - 0x6000)
		if off < len(m.data.PRGRAM) {
			return Driven(m.data.PRGRAM[off])
		}
	}
	return OpenBus()
}

func (m *UxROM) PpuPeek(addr uint16) PpuPeek {
	if addr < 0x2000 {
		return PpuPeek{Value: chrByte(m.data, int(addr)), Source: SourceCHR}
	}
	return PpuPeek{Source: SourceNametable}
}

func (m *UxROM) PpuWrite(addr uint16, value uint8) {
	if addr < 0x2000 && len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

func (m *UxROM) OnCPURead(addr uint16) {}

func (m *UxROM) OnCPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000:
		m.prgBank = value & 0x0F
	case addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0:
		off := int(addr - 0x6000)
		if off < len(m.data.PRGRAM) {
			m.data.PRGRAM[off] = value
		}
	}
}

func (m *UxROM) OnPPURead(addr uint16) {}
func (m *UxROM) OnEndOfCPUCycle()      {}
func (m *UxROM) IRQPending() bool      { return false }
func (m *UxROM) AckIRQ()               {}

func (m *UxROM) Layout() Layout {
	return Layout{
		PRG: m.prgWindows,
		CHR: []Window{
			{Start: 0x0000, End: 0x1FFF, Size: 0x2000, Source: chrSource(m.data), Register: -1},
		},
		Mirroring: m.mirror,
	}
}
