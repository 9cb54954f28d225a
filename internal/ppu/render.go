package ppu

import (
	"github.com/teskje/goomba/internal/bitops"
	"github.com/teskje/goomba/internal/frame"
)

// tileDataAddr resolves a tile id to its VRAM tile-data base address,
// honoring LCDC bit 4's signed/unsigned addressing mode (spec.md §4.7).
func (p *PPU) tileDataAddr(id byte) uint16 {
	if p.lcdc&0x10 != 0 {
		return 0x8000 + uint16(id)*16
	}
	return uint16(int32(0x9000) + int32(int8(id))*16)
}

// applyPalette maps a 2-bit color index through a BGP/OBP0/OBP1 palette
// byte to one of the four DMG shades.
func applyPalette(palette, colorIndex byte) frame.Shade {
	lo := uint(colorIndex) * 2
	return frame.Shade(bitops.Bits(palette, lo, lo+1))
}
