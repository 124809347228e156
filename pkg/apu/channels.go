package apu

var dutyCycles = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noisePeriods = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

var dmcRates = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
}

func (a *APU) stepPulse(pulse *PulseChannel) {
	if !pulse.Enabled {
		return
	}
	if pulse.Timer > 0 {
		pulse.Timer--
	} else {
		pulse.Timer = pulse.TimerValue
		pulse.Sequence = (pulse.Sequence + 1) % 8
	}
}

func (a *APU) stepTriangle() {
	if !a.Triangle.Enabled {
		return
	}
	if a.Triangle.Timer > 0 {
		a.Triangle.Timer--
	} else {
		a.Triangle.Timer = a.Triangle.TimerValue
		if a.Triangle.Length.Value > 0 && a.Triangle.LinearCounter > 0 {
			a.Triangle.Sequence = (a.Triangle.Sequence + 1) % 32
		}
	}
}

func (a *APU) stepNoise() {
	if !a.Noise.Enabled {
		return
	}
	if a.Noise.Timer > 0 {
		a.Noise.Timer--
		return
	}
	a.Noise.Timer = a.Noise.TimerValue
	var bit uint16
	if a.Noise.Mode {
		bit = (a.Noise.ShiftReg & 1) ^ ((a.Noise.ShiftReg >> 6) & 1)
	} else {
		bit = (a.Noise.ShiftReg & 1) ^ ((a.Noise.ShiftReg >> 1) & 1)
	}
	a.Noise.ShiftReg = (a.Noise.ShiftReg >> 1) | (bit << 14)
}

// stepDMC advances the DMC frequency timer and, on underflow, requests a
// DMA fetch (via Bus.RequestDMCFetch) instead of reading memory directly;
// the bus delivers the fetched byte back through DeliverDMCByte once the
// CPU services the stolen cycle.
func (a *APU) stepDMC() {
	if !a.DMC.Enabled {
		return
	}
	if a.DMC.Timer > 0 {
		a.DMC.Timer--
		return
	}
	a.DMC.Timer = dmcRates[a.DMC.Rate&0x0F]
	a.stepDMCOutputUnit()

	if a.DMC.BufferEmpty && a.DMC.CurrentLength > 0 && a.Bus != nil {
		a.Bus.RequestDMCFetch(a.DMC.CurrentAddress)
	}
}

func (a *APU) stepDMCOutputUnit() {
	if a.DMC.BitsRemaining == 0 {
		a.DMC.BitsRemaining = 8
		if a.DMC.BufferEmpty {
			a.DMC.Silence = true
		} else {
			a.DMC.Buffer = a.DMC.SampleBuffer
			a.DMC.BufferEmpty = true
			a.DMC.Silence = false
		}
	}
	if !a.DMC.Silence {
		bit := a.DMC.Buffer & 1
		a.DMC.Buffer >>= 1
		if bit == 1 && a.DMC.LoadCounter <= 125 {
			a.DMC.LoadCounter += 2
		} else if bit == 0 && a.DMC.LoadCounter >= 2 {
			a.DMC.LoadCounter -= 2
		}
	}
	a.DMC.BitsRemaining--
}

func (a *APU) stepEnvelope(env *EnvelopeGenerator) {
	if env.Start {
		env.Start = false
		env.Counter = 15
		env.Divider = env.Volume
		return
	}
	if env.Divider > 0 {
		env.Divider--
		return
	}
	env.Divider = env.Volume
	if env.Counter > 0 {
		env.Counter--
	} else if env.Loop {
		env.Counter = 15
	}
}

func (a *APU) stepLengthCounter(lc *LengthCounter) {
	if lc.Enabled && !lc.Halt && lc.Value > 0 {
		lc.Value--
		lc.decremented = true
	}
}

func (a *APU) stepSweep(pulse *PulseChannel, sweep *SweepUnit, channel1 bool) {
	if sweep.Reload {
		sweep.Counter = sweep.Period
		sweep.Reload = false
		if sweep.Enabled && sweep.Period == 0 {
			a.performSweep(pulse, sweep, channel1)
		}
		return
	}
	if sweep.Counter > 0 {
		sweep.Counter--
		return
	}
	sweep.Counter = sweep.Period
	if sweep.Enabled {
		a.performSweep(pulse, sweep, channel1)
	}
}

func (a *APU) performSweep(pulse *PulseChannel, sweep *SweepUnit, channel1 bool) {
	change := pulse.TimerValue >> sweep.Shift
	var target uint16
	if sweep.Negate {
		if channel1 {
			target = pulse.TimerValue - change - 1
		} else {
			target = pulse.TimerValue - change
		}
	} else {
		target = pulse.TimerValue + change
	}
	if target >= 8 && target <= 0x7FF {
		pulse.TimerValue = target
	}
}

func (a *APU) getPulseOutput(pulse *PulseChannel) uint8 {
	if !pulse.Enabled || pulse.Length.Value == 0 {
		return 0
	}
	if pulse.TimerValue < 8 || pulse.TimerValue > 0x7FF {
		return 0
	}
	if a.isSweepMuting(pulse, &pulse.Sweep) {
		return 0
	}
	if dutyCycles[pulse.DutyCycle][pulse.Sequence] == 0 {
		return 0
	}
	if pulse.Envelope.Constant {
		return pulse.Volume
	}
	return pulse.Envelope.Counter
}

func (a *APU) isSweepMuting(pulse *PulseChannel, sweep *SweepUnit) bool {
	if !sweep.Enabled {
		return false
	}
	change := pulse.TimerValue >> sweep.Shift
	var target uint16
	if sweep.Negate {
		if change > pulse.TimerValue {
			return true
		}
		target = pulse.TimerValue - change
	} else {
		target = pulse.TimerValue + change
	}
	return target < 8 || target > 0x7FF
}

func (a *APU) getTriangleOutput() uint8 {
	if !a.Triangle.Enabled || a.Triangle.Length.Value == 0 || a.Triangle.LinearCounter == 0 {
		return 0
	}
	return triangleSequence[a.Triangle.Sequence]
}

func (a *APU) getNoiseOutput() uint8 {
	if !a.Noise.Enabled || a.Noise.Length.Value == 0 || a.Noise.ShiftReg&1 != 0 {
		return 0
	}
	if a.Noise.Envelope.Constant {
		return a.Noise.Volume
	}
	return a.Noise.Envelope.Counter
}

func (a *APU) getDMCOutput() uint8 {
	return a.DMC.LoadCounter
}

// mixChannels applies the standard NES non-linear mixing formula.
func (a *APU) mixChannels() float32 {
	pulse1 := a.getPulseOutput(&a.Pulse1)
	pulse2 := a.getPulseOutput(&a.Pulse2)
	triangle := a.getTriangleOutput()
	noise := a.getNoiseOutput()
	dmc := a.getDMCOutput()

	pulseSum := pulse1 + pulse2
	var pulseOut float32
	if pulseSum > 0 {
		pulseOut = 95.52 / ((8128.0 / float32(pulseSum)) + 100.0)
	}

	tndSum := float32(triangle)/8227.0 + float32(noise)/12241.0 + float32(dmc)/22638.0
	var tndOut float32
	if tndSum > 0 {
		tndOut = 163.67 / (1.0/tndSum + 24.329)
	}

	out := (pulseOut + tndOut) * 2.0
	if out > 1.0 {
		out = 1.0
	} else if out < -1.0 {
		out = -1.0
	}
	return out
}

func (a *APU) stepLinearCounter() {
	if a.Triangle.LinearControl {
		a.Triangle.LinearCounter = a.Triangle.LinearReload
	} else if a.Triangle.LinearCounter > 0 {
		a.Triangle.LinearCounter--
	}
	if !a.Triangle.Length.Halt {
		a.Triangle.LinearControl = false
	}
}
