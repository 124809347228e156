package core

import (
	"bytes"
	"testing"

	"github.com/nescore/pkg/cartridge"
)

// buildNROM builds a minimal 32KB-PRG/8KB-CHR NROM image with the given PRG
// bytes placed at the start of the PRG image (CPU $8000), and a reset
// vector pointing at $8000.
func buildNROM(prg []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("NES\x1a")
	buf.WriteByte(2) // 32KB PRG
	buf.WriteByte(1) // 8KB CHR
	buf.WriteByte(0) // mapper 0, horizontal mirroring
	buf.WriteByte(0)
	buf.Write(make([]byte, 8))

	prgROM := make([]byte, 32768)
	copy(prgROM, prg)
	prgROM[0x7FFC] = 0x00 // reset vector low -> $8000
	prgROM[0x7FFD] = 0x80 // reset vector high
	buf.Write(prgROM)
	buf.Write(make([]byte, 8192))
	return buf.Bytes()
}

func newTestCore(t *testing.T, prg []byte) *Core {
	t.Helper()
	cart, err := cartridge.Load(bytes.NewReader(buildNROM(prg)))
	if err != nil {
		t.Fatalf("unexpected cartridge load error: %v", err)
	}
	c := New(nil)
	c.LoadCartridge(cart)
	return c
}

func TestCoreStepAdvancesCPUAndAPUCycleCounters(t *testing.T) {
	c := newTestCore(t, []byte{0xEA}) // NOP
	startCPU, startAPU := c.CPU.Cycles, c.APU.Cycles
	c.Step()
	if c.CPU.Cycles != startCPU+1 {
		t.Errorf("expected CPU cycles to advance by 1, got %d", c.CPU.Cycles-startCPU)
	}
	if c.APU.Cycles != startAPU+1 {
		t.Errorf("expected APU cycles to advance by 1, got %d", c.APU.Cycles-startAPU)
	}
}

func TestCoreRunsAJMPLoopWithoutCrashing(t *testing.T) {
	// JMP $8000 forever.
	c := newTestCore(t, []byte{0x4C, 0x00, 0x80})
	for i := 0; i < 1000; i++ {
		c.Step()
	}
	if c.CPU.PC != 0x8000 {
		t.Errorf("expected PC to stay at the JMP target, got %04X", c.CPU.PC)
	}
}

func TestCoreStepFrameProducesAFrame(t *testing.T) {
	c := newTestCore(t, []byte{0x4C, 0x00, 0x80}) // infinite JMP loop
	startFrame := c.Frame
	c.StepFrame()
	if c.Frame != startFrame+1 {
		t.Errorf("expected StepFrame to complete exactly one frame, got frame=%d", c.Frame)
	}
}

func TestSetButtonReachesControllerPad(t *testing.T) {
	c := newTestCore(t, []byte{0xEA})
	c.Controller.Write(1)   // strobe high: the pad reloads its shift register
	c.SetButton(0, 0, true) // ButtonA
	v := c.Controller.Read(0)
	if v&1 != 1 {
		t.Errorf("expected button A bit set on first read after SetButton, got %02X", v)
	}
}
