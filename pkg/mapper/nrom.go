package mapper

// NROM (mapper 0) — identity mapping, no bank switching. Grounded on the
// teacher's Mapper0 in pkg/cartridge/mapper/mapper0.go, restated against the
// Peek/PpuPeek contract.
type NROM struct {
	data       *Data
	mirror     MirroringMode
	prgMask    int
	prgWindows []Window
}

// NewNROM creates an NROM mapper. mirror comes from the cartridge header
// since NROM has no register to select it itself.
func NewNROM(data *Data) *NROM {
	return &NROM{
		data:    data,
		mirror:  Horizontal,
		prgMask: len(data.PRGROM) - 1,
		prgWindows: []Window{
			{Start: 0x8000, End: 0xFFFF, Size: len(data.PRGROM), Source: SourcePRGROM, Register: -1},
		},
	}
}

// SetMirroring lets the cartridge loader apply the header's mirroring bit.
func (m *NROM) SetMirroring(mode MirroringMode) { m.mirror = mode }

func (m *NROM) Peek(addr uint16) ReadResult {
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

func (m *NROM) PpuPeek(addr uint16) PpuPeek {
	if addr < 0x2000 {
		return PpuPeek{Value: chrByte(m.data, int(addr)), Source: SourceCHR}
	}
	return PpuPeek{Source: SourceNametable}
}

func (m *NROM) OnCPURead(addr uint16) {}

func (m *NROM) OnCPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0 {
		off := int(addr - 0x6000)
		if off < len(m.data.PRGRAM) {
			m.data.PRGRAM[off] = value
		}
	}
}

func (m *NROM) PpuWrite(addr uint16, value uint8) {
	if addr < 0x2000 && len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

func (m *NROM) OnPPURead(addr uint16) {}
func (m *NROM) OnEndOfCPUCycle()      {}
func (m *NROM) IRQPending() bool      { return false }
func (m *NROM) AckIRQ()               {}

func (m *NROM) Layout() Layout {
	return Layout{
		PRG: m.prgWindows,
		CHR: []Window{
			{Start: 0x0000, End: 0x1FFF, Size: 0x2000, Source: chrSource(m.data), Register: -1},
		},
		Mirroring: m.mirror,
	}
}

// chrByte reads CHR ROM if present, else CHR RAM, else 0 — the common
// fallback chain every simple mapper needs.
func chrByte(d *Data, addr int) uint8 {
	if len(d.CHRROM) > 0 {
		if addr < len(d.CHRROM) {
			return d.CHRROM[addr]
		}
		return 0
	}
	if addr < len(d.CHRRAM) {
		return d.CHRRAM[addr]
	}
	return 0
}

func chrSource(d *Data) BankSource {
	if len(d.CHRROM) > 0 {
		return SourceCHRROM
	}
	return SourceCHRRAM
}
