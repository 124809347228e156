package audiodump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		m.pos = int(offset)
	case 2:
		m.pos = len(m.buf) + int(offset)
	}
	return int64(m.pos), nil
}

func TestWriterProducesValidRIFFHeader(t *testing.T) {
	mw := &memWriteSeeker{}
	w, err := New(mw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteSamples([]float32{0, 0.5, -0.5, 1.0}); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	if !bytes.Equal(mw.buf[0:4], []byte("RIFF")) {
		t.Error("expected RIFF magic at offset 0")
	}
	if !bytes.Equal(mw.buf[8:12], []byte("WAVE")) {
		t.Error("expected WAVE magic at offset 8")
	}
	dataSize := binary.LittleEndian.Uint32(mw.buf[40:44])
	if dataSize != 8 { // 4 samples * 2 bytes
		t.Errorf("expected data chunk size=8, got %d", dataSize)
	}
}

func TestWriteSamplesClampsOutOfRangeValues(t *testing.T) {
	mw := &memWriteSeeker{}
	w, _ := New(mw)
	if err := w.WriteSamples([]float32{2.0, -2.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Close()

	first := int16(binary.LittleEndian.Uint16(mw.buf[44:46]))
	second := int16(binary.LittleEndian.Uint16(mw.buf[46:48]))
	if first != 32767 {
		t.Errorf("expected clamp to max int16, got %d", first)
	}
	if second != -32767 {
		t.Errorf("expected clamp to min, got %d", second)
	}
}
