// Package ppu implements the DMG video controller: the OamScan/Draw/
// HBlank/VBlank mode state machine, the background/window/object pixel
// fetcher state machines feeding a pair of FIFOs, and the LCDC/STAT
// register semantics, including STAT/VBlank interrupt edge detection.
//
// OAM scan runs 80 dots. Draw runs a variable number of dots, popping one
// pixel per dot from the bg/obj FIFOs once primed, and ends the instant the
// 160th pixel is pushed to the frame buffer. HBlank pads out the remainder
// of the 456-dot line. See DESIGN.md.
package ppu

import (
	"sort"

	"github.com/teskje/goomba/internal/bitops"
	"github.com/teskje/goomba/internal/frame"
)

// InterruptRequester raises IF bits 0 (VBlank) and 1 (LcdStat).
type InterruptRequester func(bit int)

type Mode int

const (
	PpuOff Mode = iota
	OamScan
	Draw
	HBlank
	VBlank
)

const (
	oamScanDots = 80
	drawDots    = 172 // Draw ends when drawX reaches 160: 166 dots with no objects and SCX&7 == 0, longer with stalls; it is not padded to 172
	lineDots    = 456
	vblankLine  = 144
	lastLine    = 153
)

type objEntry struct {
	y, x  byte
	index byte
}

// screenX is an object's leftmost visible screen column (may be negative).
func screenX(o objEntry) int { return int(o.x) - 8 }

// objPixel is one pending pixel in the object FIFO: its color index, the
// OBP0/OBP1 palette byte it was fetched with, and its bg-over-obj priority
// flag.
type objPixel struct {
	color, palette byte
	bgOverObj      bool
}

type bgFetchStep int

const (
	stepLocateTileID bgFetchStep = iota
	stepFetchTileID
	stepLocateRowLow
	stepFetchRowLow
	stepLocateRowHigh
	stepFetchRowHigh
	stepPushPixels
)

type objFetchStep int

const (
	stepObjFetchFlags objFetchStep = iota
	stepObjFetchTileID
	stepObjLocateRowLow
	stepObjFetchRowLow
	stepObjLocateRowHigh
	stepObjFetchRowHigh
	stepObjPushPixels
)

type PPU struct {
	vram [0x2000]byte // 0x8000-0x9FFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F

	lcdc, stat      byte
	scy, scx        byte
	ly, lyc         byte
	bgp, obp0, obp1 byte
	wy, wx          byte

	dot int // 0..455 within the current line

	mode Mode

	scanned            []objEntry // objects selected during OamScan, up to 10
	windowLine         int        // internal window line counter
	windowUsedThisLine bool

	statLine bool // latched prior STAT-interrupt line for edge detection

	// Pixel pipeline (Draw mode only).
	bgFifo  []byte     // color indices 0-3, capacity 8
	objFifo []objPixel // capacity 8

	bgStep  bgFetchStep
	objStep objFetchStep

	fetchingObj bool
	curObj      objEntry
	pendingObjs []objEntry // objects not yet fetched this line, x-ascending

	bgTileAddr, bgRowAddr uint16
	bgTileID              byte
	bgRowLow, bgRowHigh   byte

	objRowAddr             uint16
	objID, objFlags        byte
	objRowLow, objRowHigh  byte

	bgX, drawX int // tile-fetch cursor and output cursor, pixels
	bgDiscard  int // remaining SCX&7 leading pops to drop silently

	insideWindow bool

	frameBuf   *frame.Frame
	frameReady *frame.Frame

	req InterruptRequester
}

func New(req InterruptRequester) *PPU {
	return &PPU{req: req, frameBuf: frame.New()}
}

func (p *PPU) Mode() Mode { return p.mode }
func (p *PPU) LY() byte   { return p.ly }

// ConsumeFrame returns and clears the last completed frame, or nil if none
// is ready since the last call.
func (p *PPU) ConsumeFrame() *frame.Frame {
	f := p.frameReady
	p.frameReady = nil
	return f
}

func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode == Draw {
			return 0xFF
		}
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.mode == OamScan || p.mode == Draw {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | (p.stat & 0x7F)
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode == Draw {
			return
		}
		p.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.mode == OamScan || p.mode == Draw {
			return
		}
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if prev&0x80 != 0 && value&0x80 == 0 {
			p.ly, p.dot = 0, 0
			p.setMode(PpuOff)
		} else if prev&0x80 == 0 && value&0x80 != 0 {
			p.ly, p.dot = 0, 0
			p.beginLine()
		}
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		// LY is read-only on real hardware.
	case addr == 0xFF45:
		p.lyc = value
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	}
}

// OAMWrite bypasses the mode-gated OAM lock, used by DMA transfers which are
// not subject to CPU-side bus arbitration in this core (spec.md §4.6).
func (p *PPU) OAMWrite(offset uint16, v byte) {
	if offset < uint16(len(p.oam)) {
		p.oam[offset] = v
	}
}

// OAMRead bypasses the mode-gated OAM lock, exposing raw OAM contents for
// tooling (e.g. a memory dump command) rather than CPU-visible access.
func (p *PPU) OAMRead(offset uint16) byte {
	if offset < uint16(len(p.oam)) {
		return p.oam[offset]
	}
	return 0xFF
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	if m >= OamScan && m <= VBlank {
		// STAT bits 1-0: HBlank = 0, VBlank = 1, OamScan = 2, Draw = 3.
		p.stat = p.stat&^0x03 | [...]byte{OamScan: 2, Draw: 3, HBlank: 0, VBlank: 1}[m]
	}
}

// Step advances the PPU by exactly one dot; call four times per machine
// cycle from the orchestrator.
func (p *PPU) Step() {
	if p.lcdc&0x80 == 0 {
		p.mode = PpuOff
		return
	}
	if p.mode == PpuOff {
		p.beginLine()
	}

	switch p.mode {
	case OamScan:
		p.stepOamScan()
	case Draw:
		p.stepDraw()
	case HBlank, VBlank:
	}

	p.dot++
	switch {
	case p.mode == OamScan && p.dot == oamScanDots:
		p.beginDraw()
	case p.mode == Draw && p.drawX >= frame.Width:
		p.setMode(HBlank)
	case p.dot == lineDots:
		p.dot = 0
		p.onLineEnd()
	}

	p.updateStatInterrupt()
}

func (p *PPU) beginLine() {
	p.dot = 0
	p.scanned = p.scanned[:0]
	p.windowUsedThisLine = false
	p.insideWindow = false
	p.setMode(OamScan)
}

// beginDraw resets the pixel pipeline for a fresh scanline and sorts the
// objects selected by OamScan into fetch order (leftmost screen column
// first; ties keep OAM index order, so the higher-priority object of an
// overlapping pair is fetched, and therefore pushed, first).
func (p *PPU) beginDraw() {
	p.setMode(Draw)
	p.bgFifo = p.bgFifo[:0]
	p.objFifo = p.objFifo[:0]
	p.bgStep = stepLocateTileID
	p.fetchingObj = false
	p.bgX = 0
	p.drawX = 0
	p.bgDiscard = int(p.scx & 7)
	p.insideWindow = false

	p.pendingObjs = append(p.pendingObjs[:0], p.scanned...)
	sort.SliceStable(p.pendingObjs, func(i, j int) bool {
		return screenX(p.pendingObjs[i]) < screenX(p.pendingObjs[j])
	})
}

func (p *PPU) stepOamScan() {
	// One OAM entry (4 bytes) is examined every 2 dots; 40 entries over 80
	// dots total.
	if p.dot%2 != 0 {
		return
	}
	idx := p.dot / 2
	if idx >= 40 || len(p.scanned) >= 10 {
		return
	}
	base := idx * 4
	y := p.oam[base]
	x := p.oam[base+1]
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}
	minY := int(p.ly) + 16 - height + 1
	maxY := int(p.ly) + 16
	oy := int(y)
	if oy >= minY && oy <= maxY {
		p.scanned = append(p.scanned, objEntry{y: y, x: x, index: byte(idx)})
	}
}

func (p *PPU) onLineEnd() {
	if p.windowUsedThisLine {
		p.windowLine++
	}
	switch {
	case p.mode == HBlank && p.ly+1 < vblankLine:
		p.ly++
		p.beginLine()
	case p.mode == HBlank && p.ly+1 == vblankLine:
		p.ly++
		p.setMode(VBlank)
		p.req(0)
		p.frameReady = p.frameBuf
		p.frameBuf = frame.New()
	case p.mode == VBlank && int(p.ly) == lastLine:
		p.ly = 0
		p.windowLine = 0
		p.beginLine()
	case p.mode == VBlank:
		p.ly++
	}
}

func (p *PPU) updateStatInterrupt() {
	lycMatch := p.ly == p.lyc
	p.stat = bitops.WithBit(p.stat, 2, lycMatch)

	line := lycMatch && bitops.Bit(p.stat, 6)
	switch p.mode {
	case HBlank:
		line = line || bitops.Bit(p.stat, 3)
	case VBlank:
		line = line || bitops.Bit(p.stat, 4)
	case OamScan:
		line = line || bitops.Bit(p.stat, 5)
	}

	if line && !p.statLine {
		p.req(1)
	}
	p.statLine = line
}
