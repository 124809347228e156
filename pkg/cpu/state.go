package cpu

// RunMode tags which of the CPU's four high-level states is active. The
// CPU spends almost all of its life in Instruction, stepping one queued
// microOp per cycle; StartNext is the single cycle between instructions
// where a pending interrupt can be latched in before the next opcode
// fetch; InterruptSequence runs the shared 7-cycle BRK-like sequence for
// NMI/IRQ/reset; Jammed models an illegal JAM opcode halting the CPU.
type RunMode int

const (
	StartNext RunMode = iota
	Instruction
	InterruptSequence
	Jammed
)

// IntentKind distinguishes the four interrupt sequence entry points:
// they share almost all of their microcode, differing in whether the
// return address is pushed (Reset does not), the pushed B flag (set only
// for BRK) and which vector is read.
type IntentKind int

const (
	IntentNMI IntentKind = iota
	IntentIRQ
	IntentReset
	IntentBRK
)

// intStatus tags the interrupt line's three-stage lifecycle (spec.md
// §4.2): a line transitions Inactive -> Pending the cycle it's asserted,
// Pending -> Ready when the CPU polls it at the next instruction boundary
// (an IRQ only while the I flag is clear), and leaves Ready when that
// boundary dispatches into InterruptSequence: an NMI returns to Inactive,
// an IRQ to Pending so the I flag gates it again.
type intStatus int

const (
	intInactive intStatus = iota
	intPending
	intReady
)
