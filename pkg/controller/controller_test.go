package controller

import "testing"

func TestStrobeHighContinuouslyReportsButtonA(t *testing.T) {
	c := New()
	c.Pads[0].SetButton(ButtonA, true)
	c.Write(1) // strobe high
	if c.Read(0) != 1 {
		t.Errorf("expected bit 0 (A) while strobe high")
	}
	if c.Read(0) != 1 {
		t.Errorf("expected repeated reads to keep reporting A while strobe high")
	}
}

func TestStrobeLowShiftsOutAllEightButtonsInOrder(t *testing.T) {
	c := New()
	c.Pads[0].SetButton(ButtonA, true)
	c.Pads[0].SetButton(ButtonStart, true)
	c.Write(1)
	c.Write(0) // strobe low, latch frozen at current buttons

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, Up, Down, Left, Right
	for i, w := range want {
		if got := c.Read(0); got != w {
			t.Errorf("bit %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestReadPastEighthBitReturnsOne(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)
	for i := 0; i < 8; i++ {
		c.Read(0)
	}
	if c.Read(0) != 1 {
		t.Errorf("expected 1 from the ninth read (shift register saturates high)")
	}
}

func TestTwoPortsAreIndependentButShareStrobe(t *testing.T) {
	c := New()
	c.Pads[1].SetButton(ButtonB, true)
	c.Write(1)
	c.Write(0)
	if c.Read(1) != 0 {
		t.Errorf("expected port 1 bit 0 (A) clear")
	}
	if c.Read(1) != 1 {
		t.Errorf("expected port 1 bit 1 (B) set")
	}
}
