package apu

import "testing"

type stubBus struct {
	requestedAddr uint16
	requested     bool
}

func (s *stubBus) RequestDMCFetch(addr uint16) {
	s.requestedAddr = addr
	s.requested = true
}

func createTestAPU() *APU {
	a := New()
	a.Reset()
	return a
}

func TestAPUCreation(t *testing.T) {
	a := createTestAPU()
	if a.Cycles != 0 {
		t.Errorf("expected cycles=0, got %d", a.Cycles)
	}
	if a.frameMode != 0 {
		t.Errorf("expected frame mode=0, got %d", a.frameMode)
	}
	if a.frameIRQ {
		t.Error("frame IRQ should be false initially")
	}
}

func TestPulseChannelRegisters(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4000, 0xBF)
	if a.Pulse1.DutyCycle != 2 {
		t.Errorf("expected duty cycle=2, got %d", a.Pulse1.DutyCycle)
	}
	if !a.Pulse1.Length.Halt {
		t.Error("length halt should be true")
	}
	if !a.Pulse1.Envelope.Constant {
		t.Error("envelope constant should be true")
	}
	if a.Pulse1.Volume != 15 {
		t.Errorf("expected volume=15, got %d", a.Pulse1.Volume)
	}

	a.WriteRegister(0x4001, 0x88)
	if !a.Pulse1.Sweep.Enabled || !a.Pulse1.Sweep.Negate {
		t.Error("sweep should be enabled and negating")
	}

	a.WriteRegister(0x4002, 0x55)
	a.WriteRegister(0x4003, 0x12)
	if a.Pulse1.TimerValue != 0x255 {
		t.Errorf("expected timer=0x255, got %04X", a.Pulse1.TimerValue)
	}
}

// Length-register writes schedule a pending reload that only lands on the
// APU's next Step() call, never immediately.
func TestLengthCounterReloadIsDeferredOneStep(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x08) // lengthTable[1] = 254

	if a.Pulse1.Length.Value != 0 {
		t.Errorf("reload should not be visible before the next Step(), got %d", a.Pulse1.Length.Value)
	}
	a.Step()
	if a.Pulse1.Length.Value != lengthTable[1] {
		t.Errorf("expected length=%d after one Step(), got %d", lengthTable[1], a.Pulse1.Length.Value)
	}
}

// If a half-frame clock decrements the counter on the very cycle the
// pending reload would apply, the reload is dropped.
func TestLengthCounterReloadSuppressedByCoincidentDecrement(t *testing.T) {
	a := createTestAPU()
	a.Pulse1.Enabled = true
	a.Pulse1.Length.Enabled = true
	a.Pulse1.Length.Value = 5

	a.Pulse1.Length.scheduleReload(lengthTable[1])
	a.Pulse1.Length.decremented = true // simulate a half-frame clock firing first this cycle
	a.applyPendingLengthReloads()

	if a.Pulse1.Length.Value != 5 {
		t.Errorf("reload should have been suppressed, got %d", a.Pulse1.Length.Value)
	}
}

func TestFrameSequencer4StepAssertsIRQAtCycle14915(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4017, 0x00) // 4-step, IRQ enabled
	a.resetPending = -1
	a.frameCycle = 0

	for i := int64(0); i < frameSequencerLength4Step; i++ {
		a.Step()
	}

	if !a.frameIRQ {
		t.Error("expected frame IRQ asserted after one full 4-step sequence")
	}
	if !a.IRQAsserted() {
		t.Error("expected IRQAsserted() to report true after the frame IRQ fires")
	}
}

func TestFrameSequencer4StepIRQInhibited(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4017, 0x40) // 4-step, IRQ inhibited
	a.resetPending = -1
	a.frameCycle = 0

	for i := int64(0); i < frameSequencerLength4Step; i++ {
		a.Step()
	}

	if a.frameIRQ {
		t.Error("frame IRQ should stay clear when inhibited")
	}
}

func TestFrameSequencer5StepNeverAssertsIRQ(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4017, 0x80) // 5-step mode
	a.resetPending = -1
	a.frameCycle = 0

	for i := int64(0); i < frameSequencerLength5Step+10; i++ {
		a.Step()
	}

	if a.frameIRQ {
		t.Error("5-step mode never asserts the frame IRQ")
	}
}

func TestDMCRequestsFetchWhenBufferEmpty(t *testing.T) {
	a := createTestAPU()
	b := &stubBus{}
	a.SetBus(b)

	a.WriteRegister(0x4010, 0x00) // rate index 0
	a.WriteRegister(0x4012, 0x01) // sample address = 0xC000 + 1*64
	a.WriteRegister(0x4013, 0x00) // sample length = 0*16+1 = 1
	a.WriteRegister(0x4015, 0x10) // enable DMC

	for i := 0; i < int(dmcRates[0])+1; i++ {
		a.stepDMC()
		if b.requested {
			break
		}
	}

	if !b.requested {
		t.Fatal("expected DMC to request a DMA fetch once its timer underflowed")
	}
	if b.requestedAddr != a.DMC.CurrentAddress {
		t.Errorf("expected fetch at %04X, got %04X", a.DMC.CurrentAddress, b.requestedAddr)
	}
}

func TestDMCDeliverByteAdvancesAddressAndLength(t *testing.T) {
	a := createTestAPU()
	a.DMC.CurrentAddress = 0xC040
	a.DMC.CurrentLength = 2
	a.DMC.Loop = false
	a.DMC.IRQEnabled = false

	a.DeliverDMCByte(0xAA)

	if a.DMC.SampleBuffer != 0xAA {
		t.Errorf("expected sample buffer=0xAA, got %02X", a.DMC.SampleBuffer)
	}
	if a.DMC.BufferEmpty {
		t.Error("buffer should no longer be empty")
	}
	if a.DMC.CurrentAddress != 0xC041 {
		t.Errorf("expected address to advance to 0xC041, got %04X", a.DMC.CurrentAddress)
	}
	if a.DMC.CurrentLength != 1 {
		t.Errorf("expected length to decrement to 1, got %d", a.DMC.CurrentLength)
	}
}

func TestDMCDeliverByteAtEndWithoutLoopSetsIRQ(t *testing.T) {
	a := createTestAPU()
	a.DMC.CurrentAddress = 0xFFFF
	a.DMC.CurrentLength = 1
	a.DMC.Loop = false
	a.DMC.IRQEnabled = true

	a.DeliverDMCByte(0x55)

	if a.DMC.CurrentAddress != 0x8000 {
		t.Errorf("expected address wraparound to 0x8000, got %04X", a.DMC.CurrentAddress)
	}
	if !a.DMC.IRQ {
		t.Error("expected DMC IRQ to be set at end of sample without loop")
	}
}

func TestDMCDeliverByteAtEndWithLoopRestarts(t *testing.T) {
	a := createTestAPU()
	a.DMC.SampleAddress = 0xC100
	a.DMC.SampleLength = 32
	a.DMC.CurrentAddress = 0xFFFF
	a.DMC.CurrentLength = 1
	a.DMC.Loop = true

	a.DeliverDMCByte(0x55)

	if a.DMC.CurrentAddress != a.DMC.SampleAddress || a.DMC.CurrentLength != a.DMC.SampleLength {
		t.Error("expected loop to restart from SampleAddress/SampleLength")
	}
	if a.DMC.IRQ {
		t.Error("looped sample should not set IRQ")
	}
}

func TestWriteDMCClearsIRQWhenDisabled(t *testing.T) {
	a := createTestAPU()
	a.DMC.IRQ = true
	a.writeDMC(0, 0x00) // IRQ-enable bit cleared

	if a.DMC.IRQ {
		t.Error("expected DMC IRQ to clear when IRQ-enable bit is written false")
	}
}

func TestWriteStatusClearsDMCIRQAndDisablesChannels(t *testing.T) {
	a := createTestAPU()
	a.DMC.IRQ = true
	a.DMC.CurrentLength = 5
	a.writeStatus(0x00)

	if a.DMC.IRQ {
		t.Error("expected DMC IRQ to clear on $4015 write")
	}
	if a.DMC.CurrentLength != 0 {
		t.Error("expected DMC current length cleared when disabled")
	}
}

func TestStatusRegisterEnablesAndDisablesChannels(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4015, 0x1F)
	if !a.Pulse1.Enabled || !a.Pulse2.Enabled || !a.Triangle.Enabled || !a.Noise.Enabled || !a.DMC.Enabled {
		t.Error("expected all channels enabled")
	}

	a.WriteRegister(0x4015, 0x00)
	if a.Pulse1.Enabled || a.Triangle.Enabled {
		t.Error("expected channels disabled")
	}
}

func TestReadStatusReportsLengthCounterActivity(t *testing.T) {
	a := createTestAPU()
	a.Pulse1.Length.Value = 10
	status := a.ReadRegister(0x4015)
	if status&0x01 == 0 {
		t.Error("expected bit 0 set when pulse1 length counter is active")
	}
}

func TestEnvelopeGenerator(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4000, 0x08)
	a.WriteRegister(0x4003, 0x08)

	if a.Pulse1.Envelope.Counter != 0 {
		t.Errorf("expected envelope counter=0, got %d", a.Pulse1.Envelope.Counter)
	}
	for i := 0; i < 16; i++ {
		a.stepEnvelope(&a.Pulse1.Envelope)
	}
	if a.Pulse1.Envelope.Counter != 14 {
		t.Errorf("expected envelope counter=14, got %d", a.Pulse1.Envelope.Counter)
	}
}

func TestSweepUnit(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4001, 0x81)
	a.WriteRegister(0x4002, 0x00)
	a.WriteRegister(0x4003, 0x01)

	original := a.Pulse1.TimerValue
	a.stepSweep(&a.Pulse1, &a.Pulse1.Sweep, true)
	if a.Pulse1.TimerValue <= original {
		t.Errorf("expected timer to increase from %d, got %d", original, a.Pulse1.TimerValue)
	}
}

func TestChannelOutput(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4000, 0x5F)
	a.WriteRegister(0x4002, 0x00)
	a.WriteRegister(0x4003, 0x01)
	a.Step() // commit the pending length reload

	a.stepPulse(&a.Pulse1)
	if a.getPulseOutput(&a.Pulse1) == 0 {
		t.Error("expected non-zero output from enabled pulse channel")
	}

	a.WriteRegister(0x4015, 0x00)
	if a.getPulseOutput(&a.Pulse1) != 0 {
		t.Error("expected zero output from disabled pulse channel")
	}
}

func TestAudioMixing(t *testing.T) {
	a := createTestAPU()
	a.WriteRegister(0x4015, 0x1F)
	a.WriteRegister(0x4000, 0x1F)
	a.WriteRegister(0x4004, 0x1F)
	a.WriteRegister(0x4008, 0x81)
	a.WriteRegister(0x400C, 0x1F)

	sample := a.mixChannels()
	if sample < -1.0 || sample > 1.0 {
		t.Errorf("mixed sample out of range [-1,1]: %f", sample)
	}
}

func TestAPUStepIncrementsCyclesAndProducesOutput(t *testing.T) {
	a := createTestAPU()
	initial := a.Cycles
	for i := 0; i < 10; i++ {
		a.Step()
	}
	if a.Cycles != initial+10 {
		t.Errorf("expected cycles=%d, got %d", initial+10, a.Cycles)
	}
	if len(a.Output) == 0 {
		t.Error("expected output buffer to have a sample after 10 steps")
	}
}
