package cartridge

import (
	"bytes"
	"testing"

	"github.com/nescore/pkg/mapper"
)

func buildINES(mapperNumber uint8, prgBanks, chrBanks uint8, flags6 uint8) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("NES\x1a")
	buf.WriteByte(prgBanks)
	buf.WriteByte(chrBanks)
	buf.WriteByte(flags6 | (mapperNumber << 4))
	buf.WriteByte(mapperNumber &^ 0x0F)
	buf.Write(make([]byte, 8)) // flags8-10 + padding
	buf.Write(make([]byte, int(prgBanks)*16384))
	buf.Write(make([]byte, int(chrBanks)*8192))
	return buf.Bytes()
}

func TestLoadNROMWithVerticalMirroring(t *testing.T) {
	img := buildINES(0, 2, 1, 0x01) // mapper 0, vertical mirroring
	cart, err := Load(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Data.PRGROM) != 32768 {
		t.Errorf("expected 32KB PRG ROM, got %d", len(cart.Data.PRGROM))
	}
	if cart.Mapper.Layout().Mirroring != mapper.Vertical {
		t.Errorf("expected vertical mirroring applied from header, got %v", cart.Mapper.Layout().Mirroring)
	}
}

func TestLoadWithCHRRAMWhenCHRBanksZero(t *testing.T) {
	img := buildINES(2, 1, 0, 0) // UxROM, no CHR ROM
	cart, err := Load(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Data.CHRRAM) != 8192 {
		t.Errorf("expected 8KB CHR RAM fallback, got %d", len(cart.Data.CHRRAM))
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	img := buildINES(0, 1, 1, 0)
	img[0] = 'X'
	if _, err := Load(bytes.NewReader(img)); err == nil {
		t.Errorf("expected an error for a corrupted magic number")
	}
}

func TestLoadSkipsTrainerWhenPresent(t *testing.T) {
	img := buildINES(0, 1, 1, 0x04) // trainer flag set
	// insert 512 trainer bytes right after the 16-byte header
	withTrainer := append(append(append([]byte{}, img[:16]...), make([]byte, 512)...), img[16:]...)
	cart, err := Load(bytes.NewReader(withTrainer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Data.PRGROM) != 16384 {
		t.Errorf("expected 16KB PRG ROM read after trainer skip, got %d", len(cart.Data.PRGROM))
	}
}

func TestLoadUnknownMapperErrors(t *testing.T) {
	img := buildINES(99, 1, 1, 0)
	if _, err := Load(bytes.NewReader(img)); err == nil {
		t.Errorf("expected an error for an unsupported mapper number")
	}
}
