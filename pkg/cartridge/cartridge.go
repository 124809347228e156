// Package cartridge loads an iNES ROM image and constructs the matching
// mapper.Mapper. Grounded on the teacher's pkg/cartridge/cartridge.go
// (header struct, trainer/PRG/CHR read sequence, mirroring-bit decode) but
// restated against pkg/mapper.New/mapper.Data instead of the teacher's own
// cartridge/mapper package, since mirroring is now a runtime property of
// the mapper's Layout() rather than a separate Cartridge.Mirroring field.
package cartridge

import (
	"fmt"
	"io"

	"github.com/nescore/pkg/mapper"
)

// iNESHeader is the 16-byte iNES file header.
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // 16KB units
	CHRROMSize uint8 // 8KB units
	Flags6     uint8
	Flags7     uint8
	Flags8     uint8
	Flags9     uint8
	Flags10    uint8
	Padding    [5]uint8
}

// Cartridge is the loaded ROM image plus its constructed mapper.
type Cartridge struct {
	Header iNESHeader
	Data   *mapper.Data
	Mapper mapper.Mapper
}

// mirroringSetter is implemented by mappers whose board has no mirroring
// register of its own (NROM, UxROM, CNROM): the iNES header's mirroring bit
// is the only source of truth for them.
type mirroringSetter interface {
	SetMirroring(mode mapper.MirroringMode)
}

// Load parses an iNES image from r and constructs its mapper.
func Load(r io.Reader) (*Cartridge, error) {
	cart := &Cartridge{}
	if err := cart.readHeader(r); err != nil {
		return nil, fmt.Errorf("cartridge: reading header: %w", err)
	}
	if string(cart.Header.Magic[:]) != "NES\x1a" {
		return nil, fmt.Errorf("cartridge: not an iNES image (bad magic)")
	}

	if cart.Header.Flags6&0x04 != 0 {
		trainer := make([]uint8, 512)
		if _, err := io.ReadFull(r, trainer); err != nil {
			return nil, fmt.Errorf("cartridge: reading trainer: %w", err)
		}
	}

	data := &mapper.Data{}

	prgSize := int(cart.Header.PRGROMSize) * 16384
	data.PRGROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(r, data.PRGROM); err != nil {
		return nil, fmt.Errorf("cartridge: reading PRG ROM: %w", err)
	}

	mapperNumber := (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)

	chrSize := int(cart.Header.CHRROMSize) * 8192
	if chrSize > 0 {
		data.CHRROM = make([]uint8, chrSize)
		if _, err := io.ReadFull(r, data.CHRROM); err != nil {
			return nil, fmt.Errorf("cartridge: reading CHR ROM: %w", err)
		}
	} else {
		chrRAMSize := 8192
		if mapperNumber == 4 {
			chrRAMSize = 32768 // MMC3 boards commonly pair with 32KB CHR RAM
		}
		data.CHRRAM = make([]uint8, chrRAMSize)
	}

	if cart.Header.Flags6&0x02 != 0 {
		data.PRGRAM = make([]uint8, 32768) // battery-backed boards: assume 32KB
	} else {
		data.PRGRAM = make([]uint8, 8192)
	}

	m, err := mapper.New(mapperNumber, data)
	if err != nil {
		return nil, fmt.Errorf("cartridge: %w", err)
	}

	if setter, ok := m.(mirroringSetter); ok {
		mode := mapper.Horizontal
		switch {
		case cart.Header.Flags6&0x08 != 0:
			mode = mapper.FourScreen
		case cart.Header.Flags6&0x01 != 0:
			mode = mapper.Vertical
		}
		setter.SetMirroring(mode)
	}

	cart.Data = data
	cart.Mapper = m
	return cart, nil
}

func (c *Cartridge) readHeader(r io.Reader) error {
	raw := make([]uint8, 16)
	if _, err := io.ReadFull(r, raw); err != nil {
		return err
	}
	copy(c.Header.Magic[:], raw[0:4])
	c.Header.PRGROMSize = raw[4]
	c.Header.CHRROMSize = raw[5]
	c.Header.Flags6 = raw[6]
	c.Header.Flags7 = raw[7]
	c.Header.Flags8 = raw[8]
	c.Header.Flags9 = raw[9]
	c.Header.Flags10 = raw[10]
	copy(c.Header.Padding[:], raw[11:16])
	return nil
}
