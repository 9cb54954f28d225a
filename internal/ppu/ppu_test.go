package ppu

import (
	"testing"

	"github.com/teskje/goomba/internal/frame"
)

func newTestPPU() *PPU {
	p := New(func(bit int) {})
	p.CPUWrite(0xFF40, 0x91) // LCD on, BG on, bg tile data at 0x8000
	return p
}

func stepN(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Step()
	}
}

func TestModeSequenceWithinOneLine(t *testing.T) {
	p := newTestPPU()
	if p.Mode() != OamScan {
		t.Fatalf("initial mode = %v, want OamScan", p.Mode())
	}
	stepN(p, oamScanDots)
	if p.Mode() != Draw {
		t.Fatalf("mode after %d dots = %v, want Draw", oamScanDots, p.Mode())
	}
	stepN(p, drawDots)
	if p.Mode() != HBlank {
		t.Fatalf("mode after draw = %v, want HBlank", p.Mode())
	}
}

func TestLYIncrementsEveryLineDots(t *testing.T) {
	p := newTestPPU()
	stepN(p, lineDots)
	if p.LY() != 1 {
		t.Fatalf("LY = %d, want 1", p.LY())
	}
}

func TestVBlankEntersAtLine144AndRaisesInterrupt(t *testing.T) {
	var requested []int
	p := New(func(bit int) { requested = append(requested, bit) })
	p.CPUWrite(0xFF40, 0x91)

	stepN(p, lineDots*144)
	if p.Mode() != VBlank {
		t.Fatalf("mode = %v, want VBlank at line 144", p.Mode())
	}
	found := false
	for _, b := range requested {
		if b == 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected VBlank interrupt (bit 0) to be requested")
	}
}

func TestFramePublishedAfter154Lines(t *testing.T) {
	p := newTestPPU()
	stepN(p, lineDots*154)
	f := p.ConsumeFrame()
	if f == nil {
		t.Fatal("expected a completed frame after 154 lines")
	}
	if p.LY() != 0 {
		t.Fatalf("LY = %d, want 0 after frame wrap", p.LY())
	}
}

func TestLYCMatchSetsSTATBitAndRaisesOnRisingEdge(t *testing.T) {
	var gotStat bool
	p := New(func(bit int) {
		if bit == 1 {
			gotStat = true
		}
	})
	p.CPUWrite(0xFF40, 0x91)
	p.CPUWrite(0xFF45, 1) // LYC = 1
	p.CPUWrite(0xFF41, 0x40) // enable LYC STAT source

	stepN(p, lineDots) // LY -> 1
	if p.CPURead(0xFF44) != 1 {
		t.Fatalf("LY = %d, want 1", p.CPURead(0xFF44))
	}
	if p.CPURead(0xFF41)&0x04 == 0 {
		t.Fatal("expected STAT coincidence bit set")
	}
	if !gotStat {
		t.Fatal("expected LYC STAT interrupt on rising edge")
	}
}

func TestBGTileRenderingProducesShadeFromPalette(t *testing.T) {
	p := newTestPPU()
	p.CPUWrite(0xFF47, 0xE4) // standard palette: 0,1,2,3 -> distinct shades
	p.vram[0] = 0xFF // tile 0 row 0 low byte: all bits set -> color bit0=1
	p.vram[1] = 0xFF // high byte set too -> color index 3 for all 8 pixels

	stepN(p, oamScanDots+drawDots)
	if p.Mode() != HBlank {
		t.Fatalf("mode = %v, want HBlank after one scanline render", p.Mode())
	}
	if got := p.frameBuf.At(0, 0); got != frame.Black {
		t.Fatalf("pixel (0,0) shade = %v, want Black (palette 0xE4 maps index 3 -> black)", got)
	}
}

func runToHBlank(p *PPU) {
	for p.Mode() != HBlank {
		p.Step()
	}
}

func TestDrawXStaysWithinBounds(t *testing.T) {
	p := newTestPPU()
	for i := 0; i < lineDots; i++ {
		p.Step()
		if p.drawX < 0 || p.drawX > 160 {
			t.Fatalf("draw_x = %d out of [0,160] at dot %d", p.drawX, i)
		}
	}
}

func TestSCXFineScrollDiscardsLeadingPixels(t *testing.T) {
	p := newTestPPU()
	p.CPUWrite(0xFF47, 0xE4)
	p.CPUWrite(0xFF43, 3) // SCX=3: discard first 3 pops
	// tile 0: color index 1 everywhere (low=FF, high=00).
	p.vram[0], p.vram[1] = 0xFF, 0x00

	runToHBlank(p)
	// With SCX=3, the first 3 columns of tile 0 are discarded, so screen
	// column 0 shows tile 0's 4th pixel (still color 1 -> Light).
	if got := p.frameBuf.At(0, 0); got != frame.Light {
		t.Fatalf("pixel (0,0) shade = %v, want Light (color 1 after SCX discard)", got)
	}
}

func TestWindowActivationSwitchesToWindowTileMap(t *testing.T) {
	p := newTestPPU()
	p.CPUWrite(0xFF47, 0xE4)
	p.CPUWrite(0xFF40, 0x91|0x20|0x40) // bg+window on, window map at 0x9C00
	p.CPUWrite(0xFF4A, 0)              // WY=0: window visible from line 0
	p.CPUWrite(0xFF4B, 8)              // WX=8: window starts at screen column 1

	// Bg tile map (0x9800) entries default to tile 0 (color 1 everywhere).
	// Window tile map (0x9C00) entries default to tile 0 too, but we point
	// its first entry at tile 1 (color 3 everywhere) so the two are
	// distinguishable once the window activates mid-line.
	p.vram[0], p.vram[1] = 0xFF, 0x00   // tile 0: color 1 everywhere
	p.vram[16], p.vram[17] = 0xFF, 0xFF // tile 1: color 3 everywhere
	p.vram[0x9C00-0x8000] = 1           // window map entry 0 -> tile 1

	runToHBlank(p)
	if got := p.frameBuf.At(0, 0); got != applyPalette(0xE4, 1) {
		t.Fatalf("pixel (0,0) shade = %v, want bg color 1 (window not active yet)", got)
	}
	if got := p.frameBuf.At(1, 0); got != frame.Black {
		t.Fatalf("pixel (1,0) shade = %v, want Black (window tile color 3 active)", got)
	}
}

func TestObjectMergeKeepsHigherPriorityPixel(t *testing.T) {
	p := newTestPPU()
	p.CPUWrite(0xFF40, 0x91|0x02) // enable objects
	p.CPUWrite(0xFF48, 0xE4)      // OBP0 palette
	p.CPUWrite(0xFF49, 0x1B)      // OBP1 palette (reversed shades)

	// Two overlapping 8x8 objects at the same screen column, OAM index 0
	// (higher priority) and index 1. Object tile data: tile 0 all color 1,
	// tile 1 all color 2.
	p.vram[0], p.vram[1] = 0xFF, 0x00 // obj tile 0: color 1 everywhere
	p.vram[16], p.vram[17] = 0x00, 0xFF // obj tile 1: color 2 everywhere

	writeOAM := func(base int, y, x, tile, flags byte) {
		p.oam[base] = y
		p.oam[base+1] = x
		p.oam[base+2] = tile
		p.oam[base+3] = flags
	}
	writeOAM(0, 16, 8, 0, 0x00)   // index 0: on-screen row 0, col 0, tile 0, OBP0
	writeOAM(4, 16, 8, 1, 0x10)   // index 1: same cell, tile 1, OBP1

	runToHBlank(p)
	// Index 0 is higher priority and is fetched first, so its color-1/OBP0
	// pixel should win over index 1's color-2/OBP1 pixel at column 0.
	want := applyPalette(0xE4, 1)
	if got := p.frameBuf.At(0, 0); got != want {
		t.Fatalf("pixel (0,0) shade = %v, want %v (higher-priority object wins)", got, want)
	}
}
