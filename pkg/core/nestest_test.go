package core

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/nescore/pkg/cartridge"
	"github.com/nescore/pkg/cpu"
)

// nestestTraceLines is the number of log lines spec.md §8 scenario #10
// requires to match exactly: nestest runs far longer than this, but the
// tail of the log exercises the interrupt/illegal-opcode test harness
// itself rather than new CPU behavior.
const nestestTraceLines = 8991

// disassembleOperand renders the addressing-mode-appropriate operand text
// for the opcode at pc, reading operand bytes non-intrusively via Bus.Peek.
// It approximates nestest.log's disassembly column: real nestest also
// annotates indirect/indexed operands with the resolved effective address
// and value (e.g. "LDA $00,X @ 00 = 42"), which this intentionally omits.
func disassembleOperand(c *Core, pc uint16, mode cpu.AddrMode) string {
	b1 := c.Bus.Peek(pc + 1)
	switch mode {
	case cpu.AddrImplied:
		return ""
	case cpu.AddrAccumulator:
		return "A"
	case cpu.AddrImmediate:
		return fmt.Sprintf("#$%02X", b1)
	case cpu.AddrZeroPage:
		return fmt.Sprintf("$%02X", b1)
	case cpu.AddrZeroPageX:
		return fmt.Sprintf("$%02X,X", b1)
	case cpu.AddrZeroPageY:
		return fmt.Sprintf("$%02X,Y", b1)
	case cpu.AddrIndirectX:
		return fmt.Sprintf("($%02X,X)", b1)
	case cpu.AddrIndirectY:
		return fmt.Sprintf("($%02X),Y", b1)
	case cpu.AddrRelative:
		target := uint16(int32(pc) + 2 + int32(int8(b1)))
		return fmt.Sprintf("$%04X", target)
	default: // Absolute, AbsoluteX, AbsoluteY, Indirect
		b2 := c.Bus.Peek(pc + 2)
		addr := uint16(b2)<<8 | uint16(b1)
		switch mode {
		case cpu.AddrAbsoluteX:
			return fmt.Sprintf("$%04X,X", addr)
		case cpu.AddrAbsoluteY:
			return fmt.Sprintf("$%04X,Y", addr)
		case cpu.AddrIndirect:
			return fmt.Sprintf("($%04X)", addr)
		default:
			return fmt.Sprintf("$%04X", addr)
		}
	}
}

// formatNestestLine renders one nestest-style trace line for the
// instruction about to execute: PC, its raw opcode bytes, a disassembly,
// and the CPU/PPU register snapshot. Grounded on the State/Display format
// in original_source/tests/nestest.rs and spec.md §8 scenario #10.
func formatNestestLine(c *Core) string {
	pc := c.CPU.PC
	opcode := c.Bus.Peek(pc)
	info := cpu.OpcodeInfo(opcode)
	length := cpu.OperandLength(info.Mode)

	hexBytes := fmt.Sprintf("%02X", opcode)
	for i := 1; i <= length; i++ {
		hexBytes += fmt.Sprintf(" %02X", c.Bus.Peek(pc+uint16(i)))
	}

	operand := disassembleOperand(c, pc, info.Mode)
	disasm := info.Name
	if operand != "" {
		disasm += " " + operand
	}

	scanline, ppuCycle := c.PPU.ScanlineCycle()
	return fmt.Sprintf("%04X  %-9s %-31s A:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d",
		pc, hexBytes, disasm,
		c.CPU.A, c.CPU.X, c.CPU.Y, c.CPU.P, c.CPU.SP,
		scanline, ppuCycle, c.CPU.Cycles)
}

// TestNestestGoldenTrace drives the nestest automated (no-PPU-wait) entry
// point at $C000 and diffs the per-instruction trace against a checked-in
// golden log for the first nestestTraceLines lines, per spec.md §8
// scenario #10. Neither nestest.nes nor its golden log ship in this
// repository (no rights to redistribute the commercial-adjacent test ROM),
// so the test skips gracefully when they're absent. It is the only test in
// this module that needs ROM fixtures; the cartridge/mapper tests build
// their images in memory.
func TestNestestGoldenTrace(t *testing.T) {
	const (
		romPath = "testdata/nestest.nes"
		logPath = "testdata/nestest.log"
	)

	romData, err := os.ReadFile(romPath)
	if err != nil {
		t.Skipf("nestest ROM not found at %s, skipping golden-trace comparison: %v", romPath, err)
	}
	goldenData, err := os.ReadFile(logPath)
	if err != nil {
		t.Skipf("nestest golden log not found at %s, skipping golden-trace comparison: %v", logPath, err)
	}

	cart, err := cartridge.Load(bytes.NewReader(romData))
	if err != nil {
		t.Fatalf("failed to load nestest ROM: %v", err)
	}
	c := New(nil)
	c.LoadCartridge(cart)

	// LoadCartridge queued the 7-cycle reset sequence but hasn't run it
	// yet; drain it so CPU.Cycles lands on 7 (matching the golden log's
	// first CYC: value) before forcing PC to nestest's automated entry
	// point, which skips the PPU-warmup screen nestest otherwise waits on.
	for !c.CPU.AtInstructionStart() {
		c.Step()
	}
	c.CPU.PC = 0xC000

	golden := strings.Split(strings.TrimRight(string(goldenData), "\n"), "\n")
	want := nestestTraceLines
	if len(golden) < want {
		want = len(golden)
	}

	for i := 0; i < want; i++ {
		if !c.CPU.AtInstructionStart() {
			t.Fatalf("line %d: CPU not parked at an instruction boundary", i+1)
		}
		got := formatNestestLine(c)
		if got != golden[i] {
			t.Fatalf("trace mismatch at line %d:\n got:  %s\nwant: %s", i+1, got, golden[i])
		}
		c.Step()
		for !c.CPU.AtInstructionStart() {
			c.Step()
		}
	}
}
