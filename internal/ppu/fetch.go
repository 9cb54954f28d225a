package ppu

import (
	"github.com/teskje/goomba/internal/bitops"
	"github.com/teskje/goomba/internal/frame"
)

// stepDraw runs one dot of the Draw-phase pixel pipeline: window-activation
// check, object-fetch trigger, one sub-step of whichever fetcher
// (background or object) is active, and one pixel pop/mix/publish if both
// FIFOs can supply a pixel this dot.
func (p *PPU) stepDraw() {
	bgEnabled := p.lcdc&0x01 != 0
	windowEnabled := bgEnabled && p.lcdc&0x20 != 0
	if windowEnabled && !p.insideWindow && p.ly >= p.wy && int(p.wx) <= p.drawX+7 {
		p.insideWindow = true
		p.windowUsedThisLine = true
		p.bgFifo = p.bgFifo[:0]
		p.bgStep = stepLocateTileID
		p.bgX = 0
	}

	objEnabled := p.lcdc&0x02 != 0
	if objEnabled && !p.fetchingObj && len(p.pendingObjs) > 0 && screenX(p.pendingObjs[0]) <= p.drawX {
		p.curObj = p.pendingObjs[0]
		p.pendingObjs = p.pendingObjs[1:]
		p.fetchingObj = true
		p.objStep = stepObjFetchFlags
	}

	if p.fetchingObj {
		p.advanceObjFetch()
		return // obj FIFO is locked and no pixel pops while a fetch runs
	}
	p.advanceBgFetch()

	if len(p.bgFifo) == 0 {
		return
	}

	bgColor := p.bgFifo[0]
	p.bgFifo = p.bgFifo[1:]

	var objColor, objPalette byte
	var objPriority bool
	if len(p.objFifo) > 0 {
		op := p.objFifo[0]
		p.objFifo = p.objFifo[1:]
		objColor, objPalette, objPriority = op.color, op.palette, op.bgOverObj
	}

	if p.bgDiscard > 0 {
		p.bgDiscard--
		return
	}

	p.emitPixel(bgColor, objColor, objPalette, objPriority)
	p.drawX++
}

// emitPixel applies the bg/object priority rule and palette lookup, writing
// the winning shade into the in-progress frame buffer at the current
// (drawX, ly).
func (p *PPU) emitPixel(bgColor, objColor, objPalette byte, objBgOverObj bool) {
	bgEnabled := p.lcdc&0x01 != 0

	var shade frame.Shade
	switch {
	case !bgEnabled && objColor == 0:
		shade = frame.White
	case objColor != 0 && (!bgEnabled || !(objBgOverObj && bgColor != 0)):
		shade = applyPalette(objPalette, objColor)
	case bgEnabled:
		shade = applyPalette(p.bgp, bgColor)
	default:
		shade = frame.White
	}
	p.frameBuf.Set(p.drawX, int(p.ly), shade)
}

// advanceBgFetch runs one sub-step of the background/window fetcher. The
// PushPixels step stalls (does not advance) while the FIFO it would feed
// still holds unconsumed pixels, per spec.md §4.7.
func (p *PPU) advanceBgFetch() {
	switch p.bgStep {
	case stepLocateTileID:
		p.bgTileAddr = p.bgTileMapAddr()
		p.bgStep = stepFetchTileID
	case stepFetchTileID:
		p.bgTileID = p.vram[p.bgTileAddr-0x8000]
		p.bgStep = stepLocateRowLow
	case stepLocateRowLow:
		p.bgRowAddr = p.bgTileRowAddr()
		p.bgStep = stepFetchRowLow
	case stepFetchRowLow:
		p.bgRowLow = p.vram[p.bgRowAddr-0x8000]
		p.bgStep = stepLocateRowHigh
	case stepLocateRowHigh:
		p.bgStep = stepFetchRowHigh
	case stepFetchRowHigh:
		p.bgRowHigh = p.vram[p.bgRowAddr+1-0x8000]
		p.bgStep = stepPushPixels
	case stepPushPixels:
		if len(p.bgFifo) > 0 {
			return
		}
		var colors [8]byte
		for i := 0; i < 8; i++ {
			bit := uint(7 - i)
			colors[i] = colorBit(p.bgRowHigh, p.bgRowLow, bit)
		}
		p.bgFifo = append(p.bgFifo, colors[:]...)
		p.bgX += 8
		p.bgStep = stepLocateTileID
	}
}

// bgTileMapAddr computes the VRAM address of the tile-id byte for the
// fetcher's current tile column, per spec.md §4.7's tile-id addressing
// formula.
func (p *PPU) bgTileMapAddr() uint16 {
	var base uint16
	var tx, ty int
	if p.insideWindow {
		if p.lcdc&0x40 != 0 {
			base = 0x9C00
		} else {
			base = 0x9800
		}
		tx = p.bgX
		ty = p.windowLine
	} else {
		if p.lcdc&0x08 != 0 {
			base = 0x9C00
		} else {
			base = 0x9800
		}
		tx = (p.bgX + int(p.scx)) & 0xFF
		ty = (int(p.ly) + int(p.scy)) & 0xFF
	}
	offset := uint16((ty>>3)<<5+(tx>>3)) & 0x3FF
	return base + offset
}

// bgTileRowAddr computes the VRAM address of the low byte of the current
// tile row, honoring LCDC bit 4's signed/unsigned tile-data addressing.
func (p *PPU) bgTileRowAddr() uint16 {
	addr := p.tileDataAddr(p.bgTileID)
	var ty int
	if p.insideWindow {
		ty = p.windowLine
	} else {
		ty = (int(p.ly) + int(p.scy)) & 0xFF
	}
	return addr + uint16(ty&7)*2
}

// advanceObjFetch runs one sub-step of the object fetcher for p.curObj.
func (p *PPU) advanceObjFetch() {
	base := int(p.curObj.index) * 4
	switch p.objStep {
	case stepObjFetchFlags:
		p.objFlags = p.oam[base+3]
		p.objStep = stepObjFetchTileID
	case stepObjFetchTileID:
		p.objID = p.oam[base+2]
		p.objStep = stepObjLocateRowLow
	case stepObjLocateRowLow:
		p.objRowAddr = p.objTileRowAddr()
		p.objStep = stepObjFetchRowLow
	case stepObjFetchRowLow:
		p.objRowLow = p.vram[p.objRowAddr-0x8000]
		p.objStep = stepObjLocateRowHigh
	case stepObjLocateRowHigh:
		p.objStep = stepObjFetchRowHigh
	case stepObjFetchRowHigh:
		p.objRowHigh = p.vram[p.objRowAddr+1-0x8000]
		p.objStep = stepObjPushPixels
	case stepObjPushPixels:
		p.pushObjRow()
		p.fetchingObj = false
		p.objStep = stepObjFetchFlags
	}
}

// objTileRowAddr resolves the tile-row VRAM address for the current object,
// applying y-flip and the 8x16 tall-object tile-id rule of spec.md §4.7.
func (p *PPU) objTileRowAddr() uint16 {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}
	id := p.objID
	row := int(p.ly) + 16 - int(p.curObj.y)
	if p.objFlags&0x40 != 0 {
		row = height - 1 - row
	}
	if height == 16 {
		if row < 8 {
			id &^= 0x01
		} else {
			id |= 0x01
			row -= 8
		}
	}
	return 0x8000 + uint16(id)*16 + uint16(row)*2
}

// pushObjRow merges the just-fetched object row into the object FIFO,
// preserving any pre-existing non-transparent pixel (so a higher-priority
// object fetched earlier this line wins over one fetched later). Columns
// that scrolled past before the fetch completed (screenX < drawX, e.g. an
// object whose OAM x places part of it off the left edge) are clipped.
func (p *PPU) pushObjRow() {
	xFlip := p.objFlags&0x20 != 0
	bgOverObj := p.objFlags&0x80 != 0
	palette := p.obp0
	if p.objFlags&0x10 != 0 {
		palette = p.obp1
	}

	offset := p.drawX - screenX(p.curObj)
	if offset < 0 {
		offset = 0
	}

	if len(p.objFifo) < 8 {
		old := p.objFifo
		p.objFifo = make([]objPixel, 8)
		copy(p.objFifo, old)
	}
	for i := offset; i < 8; i++ {
		col := i
		if !xFlip {
			col = 7 - i
		}
		c := colorBit(p.objRowHigh, p.objRowLow, uint(col))
		fifoIdx := i - offset
		if c != 0 && p.objFifo[fifoIdx].color == 0 {
			p.objFifo[fifoIdx] = objPixel{color: c, palette: palette, bgOverObj: bgOverObj}
		}
	}
}

// colorBit combines bit n of the high/low tile-row bytes into a 2-bit color
// index (0-3), high bit first.
func colorBit(high, low byte, n uint) byte {
	hi := byte(0)
	if bitops.Bit(high, n) {
		hi = 1
	}
	lo := byte(0)
	if bitops.Bit(low, n) {
		lo = 1
	}
	return hi<<1 | lo
}
