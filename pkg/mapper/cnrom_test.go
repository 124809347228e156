package mapper

import "testing"

func TestCNROM_FixedPRGSwitchableCHR(t *testing.T) {
	data := &Data{PRGROM: sequentialPRG(0x8000), CHRROM: sequentialCHR(4 * 0x2000)}
	m := NewCNROM(data)

	if got := m.Peek(0x8000).Value; got != data.PRGROM[0] {
		t.Errorf("expected fixed PRG, got %02X", got)
	}

	m.OnCPUWrite(0x8000, 3)
	if got := m.PpuPeek(0x0000).Value; got != data.CHRROM[3*0x2000] {
		t.Errorf("expected CHR bank 3 selected, got %02X want %02X", got, data.CHRROM[3*0x2000])
	}
}

func TestCNROM_BusConflictAND(t *testing.T) {
	data := &Data{PRGROM: sequentialPRG(0x8000), CHRROM: sequentialCHR(4 * 0x2000)}
	m := NewCNROM(data)
	m.SetBusConflicts(true)

	// PRG byte at $8000 is 0x00, so an AND-conflicted write of any value
	// collapses to bank 0 regardless of the value written.
	m.OnCPUWrite(0x8000, 0xFF)
	if m.chrBank != 0 {
		t.Errorf("expected bus conflict to mask write down to 0, got bank %d", m.chrBank)
	}
}
